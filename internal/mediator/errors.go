package mediator

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for the mediator.
var (
	// ErrActorFailed is matched by every *ActorInvocationError.
	ErrActorFailed = errors.New("actor failed")

	// ErrActorPanic is matched by an *ActorInvocationError for a panic.
	ErrActorPanic = errors.New("actor panicked")

	// ErrNilActor is reported when Act is given a nil actor.
	ErrNilActor = errors.New("actor cannot be nil")

	// ErrNoMediator is returned by Listen on a nil Chain.
	ErrNoMediator = errors.New("chain is not bound to a mediator")
)

// ActorInvocationError wraps a failure raised by an actor during Publish.
type ActorInvocationError struct {
	// Event is the delivery that failed.
	Event Event

	// Index is the actor's position in its entry.
	Index int

	// Err is the error returned by the actor. Nil if the actor panicked.
	Err error

	// Panicked is true if the actor panicked.
	Panicked bool

	// PanicValue is the value passed to panic().
	PanicValue any

	// Stack is the stack trace at the time of the panic.
	Stack []byte
}

// Error implements the error interface.
func (e *ActorInvocationError) Error() string {
	prefix := "actor " + strconv.Itoa(e.Index) + " for pattern " + strconv.Quote(e.Event.Pattern) +
		" on event " + strconv.Quote(e.Event.Name)
	if e.Panicked {
		return prefix + " panicked: " + fmt.Sprint(e.PanicValue)
	}
	if e.Err == nil {
		return prefix + " failed"
	}
	return prefix + " failed: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ActorInvocationError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match ErrActorFailed, and ErrActorPanic for panics.
func (e *ActorInvocationError) Is(target error) bool {
	if target == ErrActorFailed {
		return true
	}
	return e.Panicked && target == ErrActorPanic
}

// UnknownPatternWarning reports an Unlisten of a pattern that was never
// registered. It is logged, never returned.
type UnknownPatternWarning struct {
	// Pattern is the canonical form that was not found.
	Pattern string
}

// Error implements the error interface.
func (w *UnknownPatternWarning) Error() string {
	return "unlisten: pattern " + strconv.Quote(w.Pattern) + " is not registered"
}
