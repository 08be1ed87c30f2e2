package actor

import (
	"context"

	"github.com/dshills/mediator/internal/logging"
	"github.com/dshills/mediator/internal/mediator"
	"github.com/dshills/mediator/internal/payload"
)

// Log is an actor that writes each event to a logger.
type Log struct {
	logger *logging.Logger
	fields []string
}

// NewLog creates a log actor. fields are gjson paths looked up in the
// payload and attached to the log line.
func NewLog(logger *logging.Logger, fields []string) *Log {
	return &Log{
		logger: logger.WithComponent("actor.log"),
		fields: fields,
	}
}

// Act implements mediator.Actor.
func (a *Log) Act(_ context.Context, ev mediator.Event, p any) error {
	if !a.logger.Enabled(logging.LevelInfo) {
		return nil
	}
	a.logger.
		WithField("id", ev.ID).
		WithField("pattern", ev.Pattern).
		WithFields(payload.Fields(p, a.fields)).
		Info("event %s", ev.Name)
	return nil
}
