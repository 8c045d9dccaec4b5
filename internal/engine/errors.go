package engine

import (
	"fmt"

	"github.com/project-samarth/samarth/internal/parser"
)

// DuplicateIntentError is a configuration-time fault: two handlers bound
// to the same intent
type DuplicateIntentError struct {
	Intent parser.Intent
}

func (e DuplicateIntentError) Error() string {
	return fmt.Sprintf("handler already registered for intent %q", e.Intent)
}

// UnroutableIntentError is a configuration-time fault: binding a handler
// to an intent that dispatch never routes
type UnroutableIntentError struct {
	Intent parser.Intent
}

func (e UnroutableIntentError) Error() string {
	return fmt.Sprintf("intent %q cannot be bound to a handler", e.Intent)
}

// NoHandlerError indicates dispatch of an unknown or unbound intent
type NoHandlerError struct {
	Intent parser.Intent
}

func (e NoHandlerError) Error() string {
	return fmt.Sprintf("no handler registered for intent %q", e.Intent)
}

// InvalidParamsError is a handler-level contract violation: a required
// parameter slot is absent
type InvalidParamsError struct {
	Handler string
	Slot    string
}

func (e InvalidParamsError) Error() string {
	return fmt.Sprintf("%s: missing required parameter %q", e.Handler, e.Slot)
}

// HandlerExecutionError wraps a failure inside a handler so that
// arbitrary faults never escape to the transport layer untyped
type HandlerExecutionError struct {
	Intent parser.Intent
	Err    error
}

func (e HandlerExecutionError) Error() string {
	return fmt.Sprintf("handler for intent %q failed: %v", e.Intent, e.Err)
}

func (e HandlerExecutionError) Unwrap() error {
	return e.Err
}
