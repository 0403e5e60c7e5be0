package suggest

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the model server could not be reached or
	// answered with something other than a generation.
	ErrUnavailable = errors.New("suggestion gateway unavailable")
	// ErrTimeout means no answer arrived before the deadline.
	ErrTimeout = errors.New("suggestion gateway timed out")
)

// GatewayError is returned by every failed gateway call. Kind is
// ErrUnavailable or ErrTimeout; Err is the underlying cause.
type GatewayError struct {
	Op   string
	Kind error
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("suggest: %s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("suggest: %s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
