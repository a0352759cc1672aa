package service

import (
	"errors"
	"fmt"
)

// ErrNotFound covers both an unknown booking id and an already-settled
// booking; callers get no distinction between the two.
var ErrNotFound = errors.New("active booking not found")

// ErrSlotTaken is returned when a slot already has an open booking for the
// requested date and location.
var ErrSlotTaken = errors.New("slot already booked")

// ValidationError is a caller error detected before any mutation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a caller-input error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
