// Package app wires a configured mediator into a command-line host.
//
// The host reads events as newline-delimited JSON, one object per line:
//
//	{"name": "user:login:success", "payload": {"user": {"id": 7}}}
//
// and publishes each through a Tap, so configured actors run before the
// host's own emitter (which echoes events when enabled). With watching
// enabled the configuration file is reloaded on change: a new mediator is
// built from it and swapped in whole.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"text/tabwriter"

	"github.com/tidwall/sjson"

	"github.com/dshills/mediator/internal/actor"
	"github.com/dshills/mediator/internal/actor/lua"
	"github.com/dshills/mediator/internal/config"
	"github.com/dshills/mediator/internal/config/watcher"
	"github.com/dshills/mediator/internal/logging"
	"github.com/dshills/mediator/internal/mediator"
	"github.com/dshills/mediator/internal/payload"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// LogLevel overrides the configured log level when set.
	LogLevel string

	// Watch reloads the configuration when the file changes.
	Watch bool

	// Echo writes every published event to Output.
	Echo bool

	// Output receives echoed events and listings. Defaults to os.Stdout.
	Output io.Writer

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer
}

// App is a running mediator host.
type App struct {
	opts Options
	log  *logging.Logger

	cfg     atomic.Pointer[config.Config]
	rt      atomic.Pointer[runtime]
	reloads atomic.Uint64

	watcher *watcher.Watcher

	// reloadMu serializes Reload calls.
	reloadMu sync.Mutex
	// outMu guards Output.
	outMu sync.Mutex

	closed atomic.Bool
}

// runtime is one generation of mediator built from one configuration.
type runtime struct {
	m    *mediator.Mediator
	host *lua.Host
	tap  *mediator.Tap
}

func (rt *runtime) close() {
	if rt != nil && rt.host != nil {
		_ = rt.host.Close()
	}
}

// New loads the configuration and builds the mediator.
func New(opts Options) (*App, error) {
	if opts.ConfigPath == "" {
		return nil, &InitError{Component: "config", Err: ErrNoConfig}
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	a := &App{
		opts: opts,
		log: logging.New(logging.Config{
			Level:  logging.ParseLevel(level),
			Output: opts.LogOutput,
			Prefix: "mediator",
		}),
	}

	rt, err := a.build(cfg)
	if err != nil {
		return nil, &InitError{Component: "mediator", Err: err}
	}
	a.cfg.Store(cfg)
	a.rt.Store(rt)

	if opts.Watch {
		if err := a.startWatcher(); err != nil {
			rt.close()
			return nil, &InitError{Component: "watcher", Err: err}
		}
	}

	a.log.Info("loaded %s: %d routes, %d scripts", opts.ConfigPath, len(cfg.Routes), len(cfg.Scripts.Files))
	return a, nil
}

// build creates a mediator generation from cfg.
func (a *App) build(cfg *config.Config) (*runtime, error) {
	ctx := context.Background()

	m := mediator.New(
		mediator.WithLogger(a.log),
		mediator.WithSource(cfg.Mediator.Source),
	)
	host := lua.NewHost(m, lua.WithLogger(a.log))
	rt := &runtime{
		m:    m,
		host: host,
		tap:  mediator.NewTap(m, a.nativeEmitter()),
	}

	for _, file := range cfg.Scripts.Files {
		if err := host.LoadFile(ctx, cfg.ResolvePath(file)); err != nil {
			rt.close()
			return nil, err
		}
	}

	deps := actor.Deps{
		Logger:      a.log,
		Publisher:   m,
		Lua:         host,
		ResolvePath: cfg.ResolvePath,
	}
	if err := actor.Wire(ctx, m, cfg.Routes, deps); err != nil {
		rt.close()
		return nil, err
	}
	return rt, nil
}

// nativeEmitter is the host's own emission, run after the mediator.
func (a *App) nativeEmitter() mediator.Emitter {
	if !a.opts.Echo {
		return nil
	}
	return mediator.EmitterFunc(func(_ context.Context, name string, p any) {
		line, err := encodeEvent(name, p)
		if err != nil {
			a.log.Warn("echo %s: %v", name, err)
			return
		}
		a.outMu.Lock()
		defer a.outMu.Unlock()
		_, _ = fmt.Fprintln(a.opts.Output, line)
	})
}

// encodeEvent renders an event in the input line format.
func encodeEvent(name string, p any) (string, error) {
	line, err := sjson.Set("{}", "name", name)
	if err != nil {
		return "", err
	}
	if p == nil {
		return line, nil
	}
	raw, err := payload.Marshal(p)
	if err != nil {
		return "", err
	}
	return sjson.SetRaw(line, "payload", string(raw))
}

// Publish emits one event through the current mediator generation.
func (a *App) Publish(ctx context.Context, name string, p any) error {
	if a.closed.Load() {
		return ErrClosed
	}
	a.rt.Load().tap.Emit(ctx, name, p)
	return nil
}

// Mediator returns the current mediator generation.
func (a *App) Mediator() *mediator.Mediator {
	return a.rt.Load().m
}

// Config returns the configuration the current generation was built from.
func (a *App) Config() *config.Config {
	return a.cfg.Load()
}

// Logger returns the application logger.
func (a *App) Logger() *logging.Logger {
	return a.log
}

// Reloads returns how many times the configuration was reloaded.
func (a *App) Reloads() uint64 {
	return a.reloads.Load()
}

// List writes the registered patterns of the current mediator to w.
func (a *App) List(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tKIND\tACTIVE\tACTORS")
	for _, e := range a.Mediator().Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%d\n", e.Pattern, e.Kind, e.Active, e.Actors)
	}
	return tw.Flush()
}

// Close stops the watcher and releases the current generation.
func (a *App) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if a.watcher != nil {
		err = a.watcher.Stop()
	}

	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	rt := a.rt.Load()
	s := rt.m.Stats()
	a.log.Info("shutdown: %d published, %d matched, %d actor calls, %d failures",
		s.EventsPublished, s.EventsMatched, s.ActorsInvoked, s.ActorFailures)
	rt.close()
	return err
}
