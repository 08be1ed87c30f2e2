package lua

import (
	"errors"
	"fmt"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrFunctionNotFound is returned when a named global is not a function.
	ErrFunctionNotFound = errors.New("lua function not found")
)

// ScriptError reports a failure inside a Lua script.
type ScriptError struct {
	// Script is the file or chunk name.
	Script string
	// Function is the called function, empty for top-level chunks.
	Function string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("lua %s: %s: %v", e.Script, e.Function, e.Err)
	}
	return fmt.Sprintf("lua %s: %v", e.Script, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScriptError) Unwrap() error {
	return e.Err
}
