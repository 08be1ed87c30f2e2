package mediator

import "github.com/dshills/mediator/internal/pattern"

// Chain is the handle returned by Listen. It is bound to one registry entry
// so Act calls always target the pattern that produced the chain.
//
// A nil Chain is inert: Act returns nil and Unlisten does nothing.
type Chain struct {
	m *Mediator
	e *entry
}

// Act appends a to the chain's pattern and returns the chain.
// A nil actor is ignored and reported as ErrNilActor.
func (c *Chain) Act(a Actor) *Chain {
	if c == nil || c.e == nil {
		return c
	}
	c.m.act(c.e, a)
	return c
}

// ActFunc is shorthand for Act(ActorFunc(fn)).
func (c *Chain) ActFunc(fn ActorFunc) *Chain {
	return c.Act(fn)
}

// Listen continues the chain with another pattern on the same mediator.
func (c *Chain) Listen(spec pattern.Spec) (*Chain, error) {
	if c == nil || c.m == nil {
		return nil, ErrNoMediator
	}
	return c.m.Listen(spec)
}

// Unlisten deactivates the chain's pattern. Its actors are kept.
func (c *Chain) Unlisten() {
	if c == nil || c.e == nil {
		return
	}
	c.m.Unlisten(c.e.spec)
}

// Pattern returns the canonical form of the chain's pattern.
func (c *Chain) Pattern() string {
	if c == nil || c.e == nil {
		return ""
	}
	return c.e.key
}

// Mediator returns the mediator the chain registers into.
func (c *Chain) Mediator() *Mediator {
	if c == nil {
		return nil
	}
	return c.m
}
