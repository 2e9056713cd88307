// Package trade validates trade requests against the game state, executes
// validated trades with conservation of goods and currency, and composes both
// with post-trade pricing into a single atomic operation.
package trade

import "fmt"

// ValidationError is an expected, recoverable rejection of a trade request.
// Path locates the offending input, e.g. "towns[1].resources.ore".
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid trade at %s: %s", e.Path, e.Message)
}

func invalid(path, format string, args ...any) *ValidationError {
	return &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// ExecutionError signals that a validated trade could not be applied. It
// means a data-model invariant was broken and must be treated as a defect.
type ExecutionError struct {
	Message string
	Cause   error
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("trade execution: %s: %v", e.Message, e.Cause)
	}
	return "trade execution: " + e.Message
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}
