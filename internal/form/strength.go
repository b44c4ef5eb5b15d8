package form

import "strings"

// Strength grades a password.
type Strength int

// Password strengths.
const (
	Weak Strength = iota
	Medium
	Strong
)

// String returns "Weak", "Medium" or "Strong".
func (s Strength) String() string {
	switch s {
	case Strong:
		return "Strong"
	case Medium:
		return "Medium"
	default:
		return "Weak"
	}
}

// PasswordStrength counts the character classes present in pw: digit,
// upper case, lower case and one of "!@#$%^&*". All four is Strong, two or
// three is Medium, fewer is Weak.
func PasswordStrength(pw string) Strength {
	var digit, upper, lower, special bool
	for _, r := range pw {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case strings.ContainsRune(passwordSpecialChars, r):
			special = true
		}
	}

	score := 0
	for _, ok := range []bool{digit, upper, lower, special} {
		if ok {
			score++
		}
	}
	switch {
	case score == 4:
		return Strong
	case score >= 2:
		return Medium
	default:
		return Weak
	}
}
