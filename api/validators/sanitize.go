package validators

import "strings"

const maxIdentifierLen = 128

// SanitizeString trims whitespace and caps the result at maxLen bytes.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
