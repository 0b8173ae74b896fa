package booking

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNoSeats          = errors.New("please select at least one seat")
	ErrTooManySeats     = errors.New("you can select at most 8 seats per booking")
	ErrInvalidSeat      = errors.New("unknown seat")
	ErrSeatUnavailable  = errors.New("some selected seats have already been booked")
	ErrEmptyCode        = errors.New("please enter a booking code")
	ErrAlreadyCancelled = errors.New("this booking has already been cancelled")
)

// ValidationError reports customer fields that failed validation.  Fields
// maps the JSON field name to a human readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "please fill in all required information: " + strings.Join(names, ", ")
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
