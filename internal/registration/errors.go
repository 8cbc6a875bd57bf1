package registration

import (
	"errors"
	"fmt"
)

// ErrEmptyData is returned when an export is requested but no registrations exist.
var ErrEmptyData = errors.New("No registrations found") //nolint:staticcheck // message is part of the API response

// errNoData is the message used when the intake body carries no fields.
const errNoData = "No data received"

// ValidationError reports an intake payload that cannot be accepted.
// Field is empty when the problem is with the payload as a whole.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

func missingField(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("Missing or empty field: %s", field),
	}
}

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("Invalid field %s: %s", field, reason),
	}
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
