package service

import (
	"fmt"
	"strings"
)

// ValidationError reports user-correctable input problems. Fields lists
// every missing field at once; Reason covers malformed values.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("missing fields: %s", strings.Join(e.Fields, ", "))
	}
	return e.Reason
}

func newMissingFields(fields []string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func newInvalidInput(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
