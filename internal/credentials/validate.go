package credentials

// RequiredFields are the service-account identity fields every decoded
// credential must carry.
var RequiredFields = []string{"project_id", "client_email", "private_key"}

// BrokenFields returns the names of required fields that are missing from
// the candidate object or are not a non-empty string. The type check is
// strict: a number or nested object in a required slot is broken, not merely
// empty, so accidentally-nested metadata is rejected too. The result lists
// every broken field, not just the first.
func BrokenFields(candidate map[string]any) []string {
	var broken []string
	for _, name := range RequiredFields {
		v, ok := candidate[name]
		if !ok {
			broken = append(broken, name)
			continue
		}
		s, isString := v.(string)
		if !isString || s == "" {
			broken = append(broken, name)
		}
	}
	return broken
}
