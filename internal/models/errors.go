package models

import "errors"

// Error kinds shared by the services. Callers wrap them with context and
// classify with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidSlot  = errors.New("slot not offered")
	ErrConflict     = errors.New("slot already booked")
	ErrIOFailure    = errors.New("io failure")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("capability unavailable")
)

// ErrorKind names the kind of err for tool results and metrics. Errors that
// match no sentinel are reported as io_failure.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidSlot):
		return "invalid_slot"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "io_failure"
	}
}
