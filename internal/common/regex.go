package common

import "regexp"

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	lastFourPattern = regexp.MustCompile(`^[0-9]{4}$`)
)

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsLastFourDigits reports whether s is exactly four decimal digits.
func IsLastFourDigits(s string) bool {
	return lastFourPattern.MatchString(s)
}
