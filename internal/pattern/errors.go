package pattern

import (
	"errors"
	"strconv"
)

// Sentinel errors for the pattern compiler.
var (
	// ErrInvalidPattern is matched by every *InvalidPatternError.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrEmptySpec is returned when compiling the zero Spec.
	ErrEmptySpec = errors.New("pattern spec is empty")
)

// InvalidPatternError reports a malformed wildcard pattern.
type InvalidPatternError struct {
	// Pattern is the offending wildcard string.
	Pattern string

	// Offset is the byte index of the first malformed token.
	Offset int
}

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return "invalid pattern " + strconv.Quote(e.Pattern) + ": three or more consecutive '*' are not allowed"
}

// Is allows errors.Is to match InvalidPatternError with ErrInvalidPattern.
func (e *InvalidPatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}
