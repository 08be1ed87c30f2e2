package actor

import (
	"context"
	"fmt"

	"github.com/dshills/mediator/internal/mediator"
	"github.com/dshills/mediator/internal/payload"
)

// Emit is an actor that republishes events under a new name.
// The nested publish runs synchronously inside the current one, so a
// route that emits into a pattern matching itself loops.
type Emit struct {
	publisher mediator.Publisher
	event     string
	set       map[string]any
}

// NewEmit creates an emit actor. set holds gjson paths written into the
// payload before republishing; with no set the payload is passed through
// unchanged.
func NewEmit(p mediator.Publisher, event string, set map[string]any) *Emit {
	return &Emit{
		publisher: p,
		event:     event,
		set:       set,
	}
}

// Act implements mediator.Actor.
func (a *Emit) Act(ctx context.Context, ev mediator.Event, p any) error {
	out := p
	if len(a.set) > 0 {
		raw, err := payload.Set(p, a.set)
		if err != nil {
			return fmt.Errorf("emit %s: %w", a.event, err)
		}
		out = raw
	}
	a.publisher.Publish(ctx, a.event, out)
	return nil
}
