package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ValidateName validates the display name shown next to messages and todos.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if utf8.RuneCountInString(trimmed) > 50 {
		return errors.New("name is too long (max 50 characters)")
	}

	return nil
}
