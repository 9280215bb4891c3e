package service

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when an authenticated user is not permitted
// to perform the operation (not owning the product or order, missing
// the admin role)
var ErrForbidden = errors.New("forbidden")

// ValidationError reports a malformed or missing request field. The
// message is safe to return to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalidField(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
