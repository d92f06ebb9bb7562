package validation

import "strings"

// FieldError is a single failed check on a record field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Errors is returned by the validator when one or more checks fail.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Path+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
