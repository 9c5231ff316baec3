package credentials

import "strings"

// NormalizeControlChars rewrites raw newline and carriage-return bytes that
// appear inside quoted string literals of an intended-JSON document into the
// escaped `\n` sequence, so a PEM key pasted with real line breaks still
// parses. A `\r\n` pair inside a string collapses to a single `\n`.
// Characters outside strings pass through unchanged, as do sequences that
// are already escaped.
//
// Escape tracking is intentionally naive: a backslash suppresses special
// handling of the next character for exactly one step. That is not the full
// JSON escape grammar (`\uXXXX` is not understood), but it is sufficient for
// service-account documents, where only the newlines inside private_key
// matter.
func NormalizeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		switch c {
		case '\\':
			b.WriteByte(c)
			escaped = true
		case '"':
			b.WriteByte(c)
			inString = !inString
		case '\n':
			if inString {
				b.WriteString(`\n`)
			} else {
				b.WriteByte(c)
			}
		case '\r':
			if inString {
				b.WriteString(`\n`)
				if i+1 < len(s) && s[i+1] == '\n' {
					i++
				}
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
