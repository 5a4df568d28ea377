package utils

import "unicode"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// ValidPassword requires MinPasswordLength characters with at least one
// letter and one digit.
func ValidPassword(p string) bool {
	return len([]rune(p)) >= MinPasswordLength && HasLetter(p) && HasNumber(p)
}

// HasLetter returns true if s contains at least one letter.
func HasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// HasNumber returns true if s contains at least one ASCII digit (0-9)
func HasNumber(s string) bool {
	for _, r := range s {
		if '0' <= r && r <= '9' {
			return true
		}
	}
	return false
}
