package mediator

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/mediator/internal/logging"
)

// Option configures a Mediator.
type Option func(*config)

// config contains configuration for the mediator.
type config struct {
	logger       *logging.Logger
	errorHandler func(error)
	source       string
	newID        func() string
	now          func() time.Time
}

// defaultConfig returns sensible default configuration.
func defaultConfig() config {
	return config{
		logger: logging.Default(),
		source: "mediator",
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *logging.Logger) Option {
	return func(c *config) {
		if l == nil {
			l = logging.Null
		}
		c.logger = l
	}
}

// WithErrorHandler sets the host error channel. It receives every
// *ActorInvocationError and misuse error such as ErrNilActor.
func WithErrorHandler(h func(error)) Option {
	return func(c *config) {
		c.errorHandler = h
	}
}

// WithSource sets the label stamped on every Event.
func WithSource(source string) Option {
	return func(c *config) {
		if source != "" {
			c.source = source
		}
	}
}

// WithIDGenerator replaces the UUID event ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *config) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithClock replaces the clock used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
