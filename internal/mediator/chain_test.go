package mediator

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/mediator/internal/pattern"
)

func TestChain_InterleavedChainsDoNotInterfere(t *testing.T) {
	m := newTestMediator()
	rec := &recorder{}

	a := m.MustListen(pattern.Wildcard("a"))
	b := m.MustListen(pattern.Wildcard("b"))

	// Acting on a after b was listened still targets a.
	a.ActFunc(rec.actor("on-a"))
	b.ActFunc(rec.actor("on-b"))

	m.Publish(context.Background(), "a", nil)

	calls := rec.snapshot()
	if len(calls) != 1 || calls[0].actor != "on-a" {
		t.Errorf("expected only on-a, got %+v", calls)
	}
}

func TestChain_NestedListenInsideAct(t *testing.T) {
	m := newTestMediator()
	rec := &recorder{}

	outer := m.MustListen(pattern.Wildcard("outer"))
	outer.Act(Simple(func(string, any) {
		m.MustListen(pattern.Wildcard("inner")).ActFunc(rec.actor("inner"))
	}))
	outer.ActFunc(rec.actor("outer-2"))

	m.Publish(context.Background(), "outer", nil)
	m.Publish(context.Background(), "inner", nil)

	calls := rec.snapshot()
	if len(calls) != 2 || calls[0].actor != "outer-2" || calls[1].actor != "inner" {
		t.Errorf("expected outer-2 then inner, got %+v", calls)
	}
}

func TestChain_Listen(t *testing.T) {
	m := newTestMediator()
	rec := &recorder{}

	first := m.MustListen(pattern.Wildcard("one")).ActFunc(rec.actor("one"))
	second, err := first.Listen(pattern.Wildcard("two"))
	if err != nil {
		t.Fatalf("Listen error: %v", err)
	}
	second.ActFunc(rec.actor("two"))

	if second.Mediator() != m {
		t.Error("expected continued chain to use the same mediator")
	}
	if second.Pattern() != "two" {
		t.Errorf("expected pattern two, got %s", second.Pattern())
	}

	m.Publish(context.Background(), "two", nil)
	if calls := rec.snapshot(); len(calls) != 1 || calls[0].actor != "two" {
		t.Errorf("expected only two, got %+v", calls)
	}
}

func TestChain_Unlisten(t *testing.T) {
	m := newTestMediator()
	rec := &recorder{}

	c := m.MustListen(pattern.Wildcard("x")).ActFunc(rec.actor("x"))
	c.Unlisten()
	m.Publish(context.Background(), "x", nil)

	if rec.count() != 0 {
		t.Errorf("expected no calls after chain Unlisten, got %d", rec.count())
	}
}

func TestChain_Nil(t *testing.T) {
	var c *Chain

	// Should not panic
	if c.Act(Simple(func(string, any) {})) != nil {
		t.Error("expected nil chain to stay nil")
	}
	c.Unlisten()
	if c.Pattern() != "" || c.Mediator() != nil {
		t.Error("expected empty accessors on nil chain")
	}
	if _, err := c.Listen(pattern.Wildcard("x")); !errors.Is(err, ErrNoMediator) {
		t.Errorf("expected ErrNoMediator, got %v", err)
	}

	// Zero chain
	z := &Chain{}
	z.ActFunc(func(context.Context, Event, any) error { return nil })
	z.Unlisten()
}
