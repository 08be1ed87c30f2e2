package mediator

import "context"

// Publisher is anything that accepts published events.
// *Mediator implements it.
type Publisher interface {
	Publish(ctx context.Context, name string, payload any)
}

// Emitter is a host's native event emission primitive.
type Emitter interface {
	Emit(ctx context.Context, name string, payload any)
}

// EmitterFunc is a function adapter for Emitter.
type EmitterFunc func(ctx context.Context, name string, payload any)

// Emit implements the Emitter interface.
func (f EmitterFunc) Emit(ctx context.Context, name string, payload any) {
	f(ctx, name, payload)
}

// Tap sits in front of a host emitter. Every emission is published to the
// mediator first and then passed to the native emitter unmodified, so the
// mediator adds delivery without replacing the host's own.
type Tap struct {
	publisher Publisher
	native    Emitter
}

// NewTap creates a tap that publishes to p before calling native.
// A nil native emitter makes the tap a plain publisher.
func NewTap(p Publisher, native Emitter) *Tap {
	return &Tap{
		publisher: p,
		native:    native,
	}
}

// Emit implements the Emitter interface.
func (t *Tap) Emit(ctx context.Context, name string, payload any) {
	if t.publisher != nil {
		t.publisher.Publish(ctx, name, payload)
	}
	if t.native != nil {
		t.native.Emit(ctx, name, payload)
	}
}
