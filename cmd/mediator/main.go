// Package main is the entry point for the mediator host.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/mediator/internal/app"
	"github.com/dshills/mediator/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// cliOptions holds flags that do not belong to app.Options.
type cliOptions struct {
	app  app.Options
	list bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts.app)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	if opts.list {
		if err := application.List(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, `Reading events from stdin, one JSON object per line: {"name": "...", "payload": ...}`)
		fmt.Fprintln(os.Stderr, "Press Ctrl-D to finish.")
	}

	if err := application.Run(ctx, os.Stdin); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() cliOptions {
	var opts cliOptions
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.app.ConfigPath, "config", "mediator.toml", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.app.ConfigPath, "c", "mediator.toml", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.app.LogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	flag.BoolVar(&opts.app.Watch, "watch", false, "Reload routes when the configuration file changes")
	flag.BoolVar(&opts.app.Watch, "w", false, "Reload routes when the configuration file changes (shorthand)")
	flag.BoolVar(&opts.app.Echo, "echo", false, "Echo every input event to stdout")
	flag.BoolVar(&opts.app.Echo, "e", false, "Echo every input event to stdout (shorthand)")
	flag.BoolVar(&opts.list, "list", false, "List registered patterns and exit")
	flag.BoolVar(&opts.list, "l", false, "List registered patterns and exit (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Mediator - pattern-routed event mediator\n\n")
		fmt.Fprintf(os.Stderr, "Usage: mediator [options] < events.ndjson\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mediator -c routes.toml < events.ndjson    Route a batch of events\n")
		fmt.Fprintf(os.Stderr, "  mediator -c routes.yaml -l                 Show registered patterns\n")
		fmt.Fprintf(os.Stderr, "  tail -f app.log | mediator -w -e           Route a live stream, reloading on edit\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Mediator %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.app.LogLevel != "" && !logging.ValidLevel(opts.app.LogLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.app.LogLevel)
		os.Exit(1)
	}

	return opts
}
