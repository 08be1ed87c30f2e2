package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/mediator/internal/config/loader"
	"github.com/dshills/mediator/internal/pattern"
)

// Actor types understood by the host.
const (
	ActorLog  = "log"
	ActorEmit = "emit"
	ActorLua  = "lua"
)

// Config is the complete host configuration.
type Config struct {
	Logging  Logging  `toml:"logging" yaml:"logging"`
	Mediator Mediator `toml:"mediator" yaml:"mediator"`
	Routes   []Route  `toml:"routes" yaml:"routes"`
	Scripts  Scripts  `toml:"scripts" yaml:"scripts"`

	// path is the file the configuration was loaded from.
	path string
}

// Logging configures the process logger.
type Logging struct {
	Level string `toml:"level" yaml:"level"`
}

// Mediator configures the mediator instance.
type Mediator struct {
	// Source is stamped on every published event.
	Source string `toml:"source" yaml:"source"`
}

// Route binds one pattern to a list of actors.
// Exactly one of Pattern and Regex is set.
type Route struct {
	Pattern string  `toml:"pattern" yaml:"pattern"`
	Regex   string  `toml:"regex" yaml:"regex"`
	Actors  []Actor `toml:"actors" yaml:"actors"`
}

// Actor describes one built-in actor.
type Actor struct {
	// Type is one of ActorLog, ActorEmit or ActorLua.
	Type string `toml:"type" yaml:"type"`

	// Fields lists payload paths the log actor attaches.
	Fields []string `toml:"fields" yaml:"fields"`

	// Event and Set configure the emit actor.
	Event string         `toml:"event" yaml:"event"`
	Set   map[string]any `toml:"set" yaml:"set"`

	// Script and Function configure the lua actor.
	Script   string `toml:"script" yaml:"script"`
	Function string `toml:"function" yaml:"function"`
}

// Scripts lists Lua files run at startup.
type Scripts struct {
	Files []string `toml:"files" yaml:"files"`
}

// Default returns a configuration with default settings and no routes.
func Default() *Config {
	return &Config{
		Logging:  Logging{Level: "info"},
		Mediator: Mediator{Source: "mediator"},
	}
}

// Load reads, overlays and validates the configuration at path.
// A missing file yields the defaults, which fail validation with
// ErrNoRoutes unless the environment adds nothing else either.
func Load(path string) (*Config, error) {
	l, err := loader.ForPath(path)
	if err != nil {
		return nil, err
	}
	return LoadFrom(l, loader.NewEnvLoader(loader.DefaultEnvPrefix))
}

// LoadFrom reads the configuration from l, overlays env and validates it.
// env may be nil.
func LoadFrom(l loader.Loader, env *loader.EnvLoader) (*Config, error) {
	cfg := Default()
	if _, err := l.Load(cfg); err != nil {
		return nil, err
	}
	cfg.path = l.Path()

	if env != nil {
		cfg.applyEnv(env.Load())
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(values map[string]string) {
	for path, val := range values {
		switch path {
		case "logging.level":
			c.Logging.Level = val
		case "mediator.source":
			c.Mediator.Source = val
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Mediator.Source == "" {
		c.Mediator.Source = "mediator"
	}
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// ResolvePath resolves a script path relative to the configuration file.
func (c *Config) ResolvePath(name string) string {
	if name == "" || filepath.IsAbs(name) || c.path == "" {
		return name
	}
	return filepath.Join(filepath.Dir(c.path), name)
}

// Spec returns the pattern spec of the route.
func (r Route) Spec() (pattern.Spec, error) {
	switch {
	case r.Pattern != "" && r.Regex != "":
		return pattern.Spec{}, fmt.Errorf("route sets both pattern and regex")
	case r.Regex != "":
		return pattern.ParseRegex(r.Regex)
	case r.Pattern != "":
		if err := pattern.Validate(r.Pattern); err != nil {
			return pattern.Spec{}, err
		}
		return pattern.Wildcard(r.Pattern), nil
	default:
		return pattern.Spec{}, pattern.ErrEmptySpec
	}
}

// String describes the route for listings.
func (r Route) String() string {
	types := make([]string, len(r.Actors))
	for i, a := range r.Actors {
		types[i] = a.Type
	}
	spec := r.Pattern
	if r.Regex != "" {
		spec = "/" + r.Regex + "/"
	}
	return fmt.Sprintf("%s -> [%s]", spec, strings.Join(types, ", "))
}
