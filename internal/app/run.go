package app

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// maxLineSize bounds one input event line.
const maxLineSize = 1 << 20

// Run publishes every event line read from r until r is exhausted or ctx
// is cancelled. Malformed lines are logged and skipped.
func (a *App) Run(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	lineNo := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return ctx.Err()
				}
			}
			lineNo++
			if err := a.handleLine(ctx, lineNo, line); err != nil {
				return err
			}
		}
	}
}

// handleLine publishes one input line. Only a closed app is an error.
func (a *App) handleLine(ctx context.Context, lineNo int, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	name, p, ok := decodeEvent(line)
	if !ok {
		a.log.WithField("line", lineNo).Warn("skipping malformed event: %s", truncate(line, 80))
		return nil
	}
	return a.Publish(ctx, name, p)
}

// decodeEvent parses {"name": ..., "payload": ...}. The payload is kept as
// raw JSON; an absent payload is nil.
func decodeEvent(line string) (string, any, bool) {
	if !gjson.Valid(line) {
		return "", nil, false
	}
	doc := gjson.Parse(line)
	if !doc.IsObject() {
		return "", nil, false
	}

	name := doc.Get("name")
	if name.Type != gjson.String || name.Str == "" {
		return "", nil, false
	}

	var p any
	if raw := doc.Get("payload"); raw.Exists() && raw.Type != gjson.Null {
		p = json.RawMessage(raw.Raw)
	}
	return name.Str, p, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
