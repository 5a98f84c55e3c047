package rules

import "unicode"

// Strength labels, advisory only. Nothing beyond the 8-character minimum ever
// blocks submission.
const (
	StrengthNone   = "none"
	StrengthWeak   = "weak"
	StrengthMedium = "medium"
	StrengthStrong = "strong"
)

// PasswordStrength scores a password 0..4: one point each for length >= 8,
// mixed case, a digit, and a special character. The score grows monotonically
// with the criteria met.
func PasswordStrength(password string) int {
	if password == "" {
		return 0
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	score := 0
	if len(password) >= minPasswordLen {
		score++
	}
	if upper && lower {
		score++
	}
	if digit {
		score++
	}
	if special {
		score++
	}
	return score
}

// StrengthLabel maps a 0..4 score to the categorical label shown next to the
// password field.
func StrengthLabel(score int) string {
	switch {
	case score <= 0:
		return StrengthNone
	case score <= 1:
		return StrengthWeak
	case score <= 2:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}
