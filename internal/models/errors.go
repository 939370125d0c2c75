package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrCredentialExchange = errors.New("credential exchange rejected")
	ErrUpstreamTimeout    = errors.New("upstream call timed out")
	ErrStoreWrite         = errors.New("store write failed")
	ErrConditionFailed    = errors.New("conditional write failed")
)

// ValidationError carries a message that is safe to surface to the
// caller. Every other failure is rendered as a generic status at the
// boundary.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
