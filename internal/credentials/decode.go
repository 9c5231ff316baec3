// Package credentials decodes the service-account JSON blob that arrives in
// a single environment variable. Deployment tooling and copy-paste mangle
// the blob in predictable ways (outer quotes, double stringification,
// base64, raw newlines inside the PEM key), so decoding tries a fixed cascade
// of strategies and accepts the first one that yields a structurally valid,
// field-valid object.
package credentials

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
)

// Credential is the decoded service-account document. PrivateKey holds real
// newlines, as the PEM-consuming signing libraries require.
type Credential struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  string

	fields map[string]any
}

// JSON re-serializes the full decoded document for clients that take the
// whole service-account blob (e.g. option.WithCredentialsJSON). Marshalling
// re-escapes the private key's newlines, so the output is always clean JSON.
func (c *Credential) JSON() ([]byte, error) {
	data, err := json.Marshal(c.fields)
	if err != nil {
		return nil, fmt.Errorf("failed to re-serialize credential: %w", err)
	}
	return data, nil
}

// strategy is one fallible way of turning the raw value into a JSON object.
type strategy struct {
	label string
	parse func(trimmed string) (map[string]any, error)
}

var strategies = []strategy{
	{"direct", parseDirect},
	{"outer-quoted", parseOuterQuoted},
	{"double-encoded", parseDoubleEncoded},
	{"base64", parseBase64},
	{"base64-string", parseBase64String},
}

// Decode runs the strategy cascade over the raw environment value. The first
// strategy whose result parses to an object wins, but the winner must also
// pass field validation: a candidate that parses yet has broken fields fails
// the whole decode immediately, because trying further strategies against a
// structurally valid document would only mask the configuration mistake.
//
// Failure is either EMPTY (blank input) or PARSE_ERROR. A PARSE_ERROR from
// exhausted strategies aggregates each strategy's own failure; one from
// validation names every broken field.
func Decode(raw string) (*Credential, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, apperr.New(apperr.CodeEmpty, "credential variable is not set or blank")
	}

	var attempts []string
	for _, s := range strategies {
		candidate, err := s.parse(trimmed)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", s.label, err))
			continue
		}
		if broken := BrokenFields(candidate); len(broken) > 0 {
			ae := apperr.New(apperr.CodeParse,
				fmt.Sprintf("credential decoded (%s) but fields are missing or invalid: %s",
					s.label, strings.Join(broken, ", ")))
			ae.BrokenFields = broken
			return nil, ae
		}
		return finalize(candidate), nil
	}

	return nil, apperr.New(apperr.CodeParse,
		"credential could not be decoded by any strategy: "+strings.Join(attempts, "; "))
}

// finalize converts the validated candidate into a Credential, turning any
// still-escaped newline sequences in private_key into real newlines.
func finalize(fields map[string]any) *Credential {
	key := unescapeNewlines(fields["private_key"].(string))
	fields["private_key"] = key
	return &Credential{
		ProjectID:   fields["project_id"].(string),
		ClientEmail: fields["client_email"].(string),
		PrivateKey:  key,
		fields:      fields,
	}
}

// parseObject parses s as JSON and requires the result to be an object.
func parseObject(s string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parsed to %T, not an object", v)
	}
	return obj, nil
}

// parseLoose normalizes control characters and then parses as an object.
func parseLoose(s string) (map[string]any, error) {
	return parseObject(NormalizeControlChars(s))
}

// unescapeNewlines turns literal backslash-n sequences into real newlines.
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func parseDirect(trimmed string) (map[string]any, error) {
	return parseLoose(trimmed)
}

// parseOuterQuoted handles a value wrapped in one extra pair of double
// quotes. First the quotes are simply stripped; if the inside still does not
// parse, the whole value is parsed once as a JSON string and its content
// unescaped and parsed again, which covers double stringification.
func parseOuterQuoted(trimmed string) (map[string]any, error) {
	if len(trimmed) < 2 || trimmed[0] != '"' || trimmed[len(trimmed)-1] != '"' {
		return nil, fmt.Errorf("value is not wrapped in quotes")
	}
	obj, err := parseLoose(trimmed[1 : len(trimmed)-1])
	if err == nil {
		return obj, nil
	}

	var inner any
	if uerr := json.Unmarshal([]byte(trimmed), &inner); uerr != nil {
		return nil, fmt.Errorf("quote strip failed (%v) and quoted parse failed: %w", err, uerr)
	}
	s, ok := inner.(string)
	if !ok {
		return nil, fmt.Errorf("quoted value parsed to %T, not a string", inner)
	}
	return parseLoose(unescapeNewlines(s))
}

// parseDoubleEncoded handles JSON-of-a-JSON-string without outer quotes in
// the shell sense: the raw value itself parses to a string holding the
// actual document.
func parseDoubleEncoded(trimmed string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, err
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("parsed to %T, not a string", v)
	}
	return parseLoose(unescapeNewlines(s))
}

func parseBase64(trimmed string) (map[string]any, error) {
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("not valid base64: %w", err)
	}
	return parseLoose(string(decoded))
}

// parseBase64String handles a base64 wrapping of a JSON-encoded string.
func parseBase64String(trimmed string) (map[string]any, error) {
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("not valid base64: %w", err)
	}
	var v any
	if err := json.Unmarshal(decoded, &v); err != nil {
		return nil, err
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("decoded to %T, not a string", v)
	}
	return parseLoose(unescapeNewlines(s))
}
