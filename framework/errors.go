package framework

import (
	"errors"
	"fmt"
)

// ErrorKind classifies terminal failures a strategy can surface to its caller.
// Tool-level failures never appear here: those are rendered into observation
// strings so the driving model can see and react to them.
type ErrorKind string

const (
	ErrModelCall         ErrorKind = "model_call_failed"
	ErrStepBudget        ErrorKind = "step_budget_exhausted"
	ErrWallClock         ErrorKind = "wall_clock_exceeded"
	ErrPlanEmpty         ErrorKind = "plan_parse_empty"
	ErrAttemptsExhausted ErrorKind = "attempts_exhausted"
	ErrUnknownStrategy   ErrorKind = "unknown_strategy"
)

// RuntimeError is the typed error carried across the façade surface.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
}

// Error renders the kind and message.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errf builds a RuntimeError with a formatted message.
func Errf(kind ErrorKind, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from an error chain, or "" when the error is
// not a RuntimeError.
func KindOf(err error) ErrorKind {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
