package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is wrapped by every "row does not exist" failure.
	ErrNotFound = errors.New("not found")

	// ErrImageURL is wrapped when the object store cannot sign a URL.
	ErrImageURL = errors.New("failed to issue image url")

	ErrUnauthorized = errors.New("unauthorized")
)

// FieldIssue is one rejected input field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports input the caller must fix before retrying.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.Field + ": " + issue.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Issues: []FieldIssue{{Field: field, Message: message}}}
}

// validator collects field issues so a request reports all of them at once.
type validator struct {
	issues []FieldIssue
}

func (v *validator) check(field string, err error) {
	if err != nil {
		v.issues = append(v.issues, FieldIssue{Field: field, Message: err.Error()})
	}
}

func (v *validator) err() error {
	if len(v.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: v.issues}
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}
