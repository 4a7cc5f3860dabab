package utils

import "strings"

// MinPasswordLength applies to registration only; existing hashes are
// verified as-is.
const MinPasswordLength = 6

// IsValidEmail checks if the email string looks like an address.
func IsValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

// IsValidPassword checks the registration password requirement.
func IsValidPassword(password string) bool {
	return len(password) >= MinPasswordLength
}
