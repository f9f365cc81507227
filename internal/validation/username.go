package validation

import (
	"errors"
	"regexp"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9]+$`)

// ValidateUsername accepts 6 to 32 lowercase letters and digits.
func ValidateUsername(username string) error {
	if len(username) < 6 {
		return errors.New("username must be at least 6 characters")
	}
	if len(username) > 32 {
		return errors.New("username is too long (max 32 characters)")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username may only contain lowercase letters and numbers")
	}
	return nil
}
