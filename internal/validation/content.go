package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateMessage checks bulletin board content: 1 to 500 characters.
func ValidateMessage(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("message is required")
	}
	if utf8.RuneCountInString(content) > 500 {
		return errors.New("message is too long (max 500 characters)")
	}
	return nil
}

func ValidateTodoTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return errors.New("title is required")
	}
	if utf8.RuneCountInString(trimmed) > 100 {
		return errors.New("title is too long (max 100 characters)")
	}
	return nil
}

func ValidateTodoDescription(description string) error {
	if utf8.RuneCountInString(description) > 1000 {
		return fmt.Errorf("description is too long (max %d characters)", 1000)
	}
	return nil
}
