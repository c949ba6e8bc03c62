package domain

import (
	"errors"
	"strings"
)

var (
	ErrUnknownItem        = errors.New("unknown item")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrSubmissionFailed   = errors.New("order submission failed")
)

type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries field-level problems with user input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Message returns the message for field, or "" if the field is valid.
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// OrNil returns nil when no field failed, so callers can `return verr.OrNil()`.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
