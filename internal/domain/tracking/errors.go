package tracking

import (
	"errors"
	"fmt"
)

var (
	ErrClientNotFound      = errors.New("client not found")
	ErrPeriodNotFound      = errors.New("period not found")
	ErrTimeslotNotFound    = errors.New("timeslot not found")
	ErrNoOpenPeriod        = errors.New("no open period for client")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCadence      = errors.New("invalid billing period")
	ErrInvalidPeriodBounds = errors.New("invalid period bounds")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func invalidCadence(err error) error {
	return &ValidationError{Field: "billing_period", Message: "unknown billing period", Err: err}
}
