package webmidi

import (
	"errors"
	"fmt"
)

// Error definitions for validation and resolution failures.
var (
	ErrPortClosed       = errors.New("port is not open")
	ErrPortDestroyed    = errors.New("port has been destroyed")
	ErrUnknownParameter = errors.New("unknown registered parameter")
)

// RangeError reports a numeric argument outside its documented inclusive
// bounds. It is always returned before any byte reaches the transport.
type RangeError struct {
	What  string
	Min   float64
	Max   float64
	Value interface{}
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s out of range: expected a value between %g and %g, got %v", e.What, e.Min, e.Max, e.Value)
}

func newRangeError(what string, min, max float64, value interface{}) *RangeError {
	return &RangeError{What: what, Min: min, Max: max, Value: value}
}

// TypeError reports a named identifier that has no table entry, or an
// argument whose shape cannot be interpreted at all.
type TypeError struct {
	What   string
	Reason string
}

func (e *TypeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid %s", e.What)
	}
	return fmt.Sprintf("invalid %s: %s", e.What, e.Reason)
}

func newTypeError(what, reason string) *TypeError {
	return &TypeError{What: what, Reason: reason}
}
