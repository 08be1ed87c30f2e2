package config

import (
	"errors"
	"fmt"

	"github.com/dshills/mediator/internal/logging"
)

// Validate checks the configuration and returns every problem found,
// joined with errors.Join.
func (c *Config) Validate() error {
	if len(c.Routes) == 0 && len(c.Scripts.Files) == 0 {
		return ErrNoRoutes
	}

	var errs []error
	add := func(field, msg string, err error) {
		errs = append(errs, &ValidationError{Field: field, Message: msg, Err: err})
	}

	if !logging.ValidLevel(c.Logging.Level) {
		add("logging.level", fmt.Sprintf("unknown level %q", c.Logging.Level), nil)
	}

	for i, r := range c.Routes {
		field := fmt.Sprintf("routes[%d]", i)
		if r.Pattern == "" && r.Regex == "" {
			add(field, "one of pattern or regex is required", nil)
		} else if _, err := r.Spec(); err != nil {
			add(field, err.Error(), err)
		}

		if len(r.Actors) == 0 {
			add(field+".actors", "at least one actor is required", nil)
		}
		for j, a := range r.Actors {
			validateActor(fmt.Sprintf("%s.actors[%d]", field, j), a, add)
		}
	}

	for i, f := range c.Scripts.Files {
		if f == "" {
			add(fmt.Sprintf("scripts.files[%d]", i), "empty path", nil)
		}
	}

	return errors.Join(errs...)
}

func validateActor(field string, a Actor, add func(field, msg string, err error)) {
	switch a.Type {
	case ActorLog:
	case ActorEmit:
		if a.Event == "" {
			add(field+".event", "emit actor requires an event name", nil)
		}
	case ActorLua:
		if a.Script == "" {
			add(field+".script", "lua actor requires a script", nil)
		}
		if a.Function == "" {
			add(field+".function", "lua actor requires a function", nil)
		}
	case "":
		add(field+".type", "actor type is required", nil)
	default:
		add(field+".type", fmt.Sprintf("unknown actor type %q", a.Type), nil)
	}
}
