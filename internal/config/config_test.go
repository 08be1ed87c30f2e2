package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/mediator/internal/config/loader"
	"github.com/dshills/mediator/internal/pattern"
)

const sampleTOML = `
[logging]
level = "debug"

[mediator]
source = "cli"

[[routes]]
pattern = "user:*:success"
actors = [{ type = "log", fields = ["user.id"] }]

[[routes]]
regex = ":failure$"
actors = [{ type = "emit", event = "alert:raised", set = { severity = "high" } }]

[[routes]]
pattern = "**"
actors = [{ type = "lua", script = "hooks.lua", function = "on_event" }]

[scripts]
files = ["bootstrap.lua"]
`

const sampleYAML = `
logging:
  level: warn
routes:
  - pattern: "user:*:success"
    actors:
      - type: log
        fields: [user.id]
  - regex: ":failure$"
    actors:
      - type: emit
        event: alert:raised
        set:
          severity: high
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "mediator.toml", sampleTOML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Mediator.Source != "cli" {
		t.Errorf("Mediator.Source = %q, want cli", cfg.Mediator.Source)
	}
	if len(cfg.Routes) != 3 {
		t.Fatalf("expected 3 routes, got %d", len(cfg.Routes))
	}

	emit := cfg.Routes[1].Actors[0]
	if emit.Type != ActorEmit || emit.Event != "alert:raised" {
		t.Errorf("unexpected emit actor: %+v", emit)
	}
	if emit.Set["severity"] != "high" {
		t.Errorf("Set = %v", emit.Set)
	}

	lua := cfg.Routes[2].Actors[0]
	if lua.Script != "hooks.lua" || lua.Function != "on_event" {
		t.Errorf("unexpected lua actor: %+v", lua)
	}
	if len(cfg.Scripts.Files) != 1 || cfg.Scripts.Files[0] != "bootstrap.lua" {
		t.Errorf("Scripts.Files = %v", cfg.Scripts.Files)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "mediator.yaml", sampleYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Mediator.Source != "mediator" {
		t.Errorf("expected default source, got %q", cfg.Mediator.Source)
	}
	if len(cfg.Routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(cfg.Routes))
	}
	if cfg.Routes[0].Actors[0].Fields[0] != "user.id" {
		t.Errorf("Fields = %v", cfg.Routes[0].Actors[0].Fields)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MEDIATOR_LOG_LEVEL", "error")
	t.Setenv("MEDIATOR_SOURCE", "env")

	cfg, err := Load(writeFile(t, "mediator.toml", sampleTOML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error", cfg.Logging.Level)
	}
	if cfg.Mediator.Source != "env" {
		t.Errorf("Mediator.Source = %q, want env", cfg.Mediator.Source)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, ErrNoRoutes) {
		t.Errorf("expected ErrNoRoutes, got %v", err)
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load("mediator.ini")
	if !errors.Is(err, loader.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	_, err := Load(writeFile(t, "mediator.toml", "[[routes]\n"))

	var perr *loader.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("expected ParseError, got %T: %v", err, err)
	}
}

func TestLoad_InvalidPattern(t *testing.T) {
	path := writeFile(t, "mediator.toml", `
[[routes]]
pattern = "a:***"
actors = [{ type = "log" }]
`)

	_, err := Load(path)
	if !errors.Is(err, pattern.ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Field != "routes[0]" {
		t.Errorf("Field = %q, want routes[0]", verr.Field)
	}
}

func TestConfig_Validate(t *testing.T) {
	log := []Actor{{Type: ActorLog}}

	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{
			name:  "bad level",
			cfg:   Config{Logging: Logging{Level: "loud"}, Routes: []Route{{Pattern: "a", Actors: log}}},
			field: "logging.level",
		},
		{
			name:  "no pattern",
			cfg:   Config{Logging: Logging{Level: "info"}, Routes: []Route{{Actors: log}}},
			field: "routes[0]",
		},
		{
			name:  "both pattern and regex",
			cfg:   Config{Logging: Logging{Level: "info"}, Routes: []Route{{Pattern: "a", Regex: "b", Actors: log}}},
			field: "routes[0]",
		},
		{
			name:  "bad regex",
			cfg:   Config{Logging: Logging{Level: "info"}, Routes: []Route{{Regex: "(", Actors: log}}},
			field: "routes[0]",
		},
		{
			name:  "no actors",
			cfg:   Config{Logging: Logging{Level: "info"}, Routes: []Route{{Pattern: "a"}}},
			field: "routes[0].actors",
		},
		{
			name:  "missing type",
			cfg:   Config{Logging: Logging{Level: "info"}, Routes: []Route{{Pattern: "a", Actors: []Actor{{}}}}},
			field: "routes[0].actors[0].type",
		},
		{
			name:  "unknown type",
			cfg:   Config{Logging: Logging{Level: "info"}, Routes: []Route{{Pattern: "a", Actors: []Actor{{Type: "shell"}}}}},
			field: "routes[0].actors[0].type",
		},
		{
			name:  "emit without event",
			cfg:   Config{Logging: Logging{Level: "info"}, Routes: []Route{{Pattern: "a", Actors: []Actor{{Type: ActorEmit}}}}},
			field: "routes[0].actors[0].event",
		},
		{
			name:  "lua without script",
			cfg:   Config{Logging: Logging{Level: "info"}, Routes: []Route{{Pattern: "a", Actors: []Actor{{Type: ActorLua, Function: "f"}}}}},
			field: "routes[0].actors[0].script",
		},
		{
			name:  "lua without function",
			cfg:   Config{Logging: Logging{Level: "info"}, Routes: []Route{{Pattern: "a", Actors: []Actor{{Type: ActorLua, Script: "s.lua"}}}}},
			field: "routes[0].actors[0].function",
		},
		{
			name:  "empty script path",
			cfg:   Config{Logging: Logging{Level: "info"}, Scripts: Scripts{Files: []string{""}}},
			field: "scripts.files[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("expected validation failure, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field+":") {
				t.Errorf("expected error for %s, got %v", tt.field, err)
			}
		})
	}
}

func TestConfig_Validate_CollectsAll(t *testing.T) {
	cfg := Config{
		Logging: Logging{Level: "loud"},
		Routes: []Route{
			{Pattern: "***", Actors: []Actor{{Type: ActorEmit}}},
		},
	}
	err := cfg.Validate()
	for _, field := range []string{"logging.level", "routes[0]", "routes[0].actors[0].event"} {
		if !strings.Contains(err.Error(), field+":") {
			t.Errorf("expected %s in %v", field, err)
		}
	}
}

func TestConfig_Validate_ScriptsOnly(t *testing.T) {
	cfg := Default()
	cfg.Scripts.Files = []string{"bootstrap.lua"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("scripts-only config should be valid, got %v", err)
	}
}

func TestConfig_ResolvePath(t *testing.T) {
	cfg := &Config{path: filepath.Join("etc", "mediator", "mediator.toml")}

	if got, want := cfg.ResolvePath("hooks.lua"), filepath.Join("etc", "mediator", "hooks.lua"); got != want {
		t.Errorf("ResolvePath(relative) = %q, want %q", got, want)
	}

	abs := filepath.Join(string(filepath.Separator), "opt", "hooks.lua")
	if got := cfg.ResolvePath(abs); got != abs {
		t.Errorf("ResolvePath(absolute) = %q, want %q", got, abs)
	}

	if got := (&Config{}).ResolvePath("hooks.lua"); got != "hooks.lua" {
		t.Errorf("ResolvePath without file = %q, want hooks.lua", got)
	}
}

func TestRoute_Spec(t *testing.T) {
	spec, err := Route{Pattern: "user:*"}.Spec()
	if err != nil {
		t.Fatalf("Spec failed: %v", err)
	}
	if spec.Kind() != pattern.KindWildcard || spec.Source() != "user:*" {
		t.Errorf("unexpected spec %v", spec)
	}

	spec, err = Route{Regex: ":success$"}.Spec()
	if err != nil {
		t.Fatalf("Spec failed: %v", err)
	}
	if spec.Kind() != pattern.KindRegex || spec.Canonical() != "/:success$/" {
		t.Errorf("unexpected spec %v", spec)
	}

	if _, err := (Route{}).Spec(); !errors.Is(err, pattern.ErrEmptySpec) {
		t.Errorf("expected ErrEmptySpec, got %v", err)
	}
}

func TestRoute_String(t *testing.T) {
	r := Route{Regex: ":failure$", Actors: []Actor{{Type: ActorLog}, {Type: ActorEmit}}}
	if got, want := r.String(), "/:failure$/ -> [log, emit]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
