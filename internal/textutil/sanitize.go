package textutil

import "strings"

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters are lowercased, digits and hyphens/underscores are kept, everything
// else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

// MaxIdentifierLength caps SanitizeIdentifier output, leaving room under the
// 255 character LP name limit for prefixes and numeric suffixes.
const MaxIdentifierLength = 200

// SanitizeIdentifier converts a value into a token usable as an LP-format
// variable or constraint name: lowercase ASCII letters, digits, and
// underscores, never starting with a digit. Tokens longer than
// MaxIdentifierLength are truncated, so distinct values may collide.
func SanitizeIdentifier(value string) string {
	token := strings.ReplaceAll(SanitizeToken(Fold(value)), "-", "_")
	if token[0] >= '0' && token[0] <= '9' {
		token = "n" + token
	}
	if len(token) > MaxIdentifierLength {
		token = strings.TrimRight(token[:MaxIdentifierLength], "_")
	}
	return token
}
