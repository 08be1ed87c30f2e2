// Package actor builds the mediator actors named in a configuration file.
//
// Three actor types exist: "log" writes the event to the logger with
// selected payload fields, "emit" republishes the event under another name
// with fields set on its payload, and "lua" calls a function defined in a
// Lua script.
package actor

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/mediator/internal/actor/lua"
	"github.com/dshills/mediator/internal/config"
	"github.com/dshills/mediator/internal/logging"
	"github.com/dshills/mediator/internal/mediator"
	"github.com/dshills/mediator/internal/pattern"
)

// Errors returned by Build.
var (
	ErrUnknownType = errors.New("unknown actor type")
	ErrNoPublisher = errors.New("emit actor requires a publisher")
	ErrNoLuaHost   = errors.New("lua actor requires a lua host")
)

// Deps carries what built actors need at run time.
type Deps struct {
	// Logger receives log actor output. Defaults to logging.Default().
	Logger *logging.Logger

	// Publisher is where emit actors republish.
	Publisher mediator.Publisher

	// Lua resolves lua actors.
	Lua *lua.Host

	// ResolvePath maps a configured script path to a file path.
	ResolvePath func(string) string
}

// Listener is the registration half of a mediator.
type Listener interface {
	Listen(spec pattern.Spec) (*mediator.Chain, error)
}

// Build creates the actor described by cfg.
func Build(ctx context.Context, cfg config.Actor, deps Deps) (mediator.Actor, error) {
	switch cfg.Type {
	case config.ActorLog:
		logger := deps.Logger
		if logger == nil {
			logger = logging.Default()
		}
		return NewLog(logger, cfg.Fields), nil

	case config.ActorEmit:
		if deps.Publisher == nil {
			return nil, ErrNoPublisher
		}
		return NewEmit(deps.Publisher, cfg.Event, cfg.Set), nil

	case config.ActorLua:
		if deps.Lua == nil {
			return nil, ErrNoLuaHost
		}
		script := cfg.Script
		if deps.ResolvePath != nil {
			script = deps.ResolvePath(script)
		}
		return deps.Lua.Actor(ctx, script, cfg.Function)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
}

// Wire listens every route on l and attaches its actors in order.
// It stops at the first route that fails; routes before it stay
// registered.
func Wire(ctx context.Context, l Listener, routes []config.Route, deps Deps) error {
	for i, r := range routes {
		spec, err := r.Spec()
		if err != nil {
			return fmt.Errorf("route %d (%s): %w", i, r, err)
		}

		actors := make([]mediator.Actor, 0, len(r.Actors))
		for j, cfg := range r.Actors {
			a, err := Build(ctx, cfg, deps)
			if err != nil {
				return fmt.Errorf("route %d (%s) actor %d: %w", i, r, j, err)
			}
			actors = append(actors, a)
		}

		chain, err := l.Listen(spec)
		if err != nil {
			return fmt.Errorf("route %d (%s): %w", i, r, err)
		}
		for _, a := range actors {
			chain.Act(a)
		}
	}
	return nil
}
