package utils

import (
	"fmt"
	"regexp"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateUsername validates a username (3-32 word characters)
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 32 {
		return fmt.Errorf("username must be 3-32 characters: %s", username)
	}
	if !regexp.MustCompile(`^\w+$`).MatchString(username) {
		return fmt.Errorf("username may contain only letters, digits and underscore: %s", username)
	}
	return nil
}

// ValidatePassword enforces a minimum password length
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
}
