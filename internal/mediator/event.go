package mediator

import (
	"context"
	"time"
)

// Event identifies one delivery of a published event to an actor.
type Event struct {
	// Name is the published event name.
	Name string

	// ID is unique per Publish call and shared by every actor it reaches.
	ID string

	// Pattern is the canonical form of the pattern that matched.
	Pattern string

	// Source labels the mediator that dispatched the event.
	Source string

	// Timestamp is when Publish was called.
	Timestamp time.Time
}

// Actor is a callback attached to a pattern.
type Actor interface {
	// Act handles one matching event. The payload is passed through exactly
	// as it was published.
	Act(ctx context.Context, ev Event, payload any) error
}

// ActorFunc is a function adapter for Actor.
type ActorFunc func(ctx context.Context, ev Event, payload any) error

// Act implements the Actor interface.
func (f ActorFunc) Act(ctx context.Context, ev Event, payload any) error {
	return f(ctx, ev, payload)
}

// Simple adapts a callback that cannot fail.
func Simple(fn func(name string, payload any)) Actor {
	if fn == nil {
		return nil
	}
	return ActorFunc(func(_ context.Context, ev Event, payload any) error {
		fn(ev.Name, payload)
		return nil
	})
}

// isNilActor reports whether a is nil or wraps a nil function.
func isNilActor(a Actor) bool {
	if a == nil {
		return true
	}
	if f, ok := a.(ActorFunc); ok && f == nil {
		return true
	}
	return false
}
