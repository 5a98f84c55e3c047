package rules

import (
	"strings"
	"unicode"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// SanitizePhone strips everything except digits and a single leading plus
// sign. The client applies it on every keystroke; it is idempotent, so running
// it again on an already clean value is a no-op.
func SanitizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validatePhone enforces the format rule on a raw (possibly unsanitized)
// value: no letters anywhere, and 10 to 15 digits once sanitized.
func validatePhone(raw string) string {
	for _, r := range raw {
		if unicode.IsLetter(r) {
			return "Phone number must contain digits only"
		}
	}
	digits := strings.TrimPrefix(SanitizePhone(raw), "+")
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "Phone number must contain 10 to 15 digits"
	}
	return ""
}
