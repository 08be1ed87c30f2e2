package mediator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dshills/mediator/internal/logging"
	"github.com/dshills/mediator/internal/mediator/dispatch"
	"github.com/dshills/mediator/internal/pattern"
)

// Mediator owns a pattern registry and dispatches published events to it.
// It is safe for concurrent use.
type Mediator struct {
	mu      sync.RWMutex
	entries []*entry          // registration order
	byKey   map[string]*entry // Spec.Key -> entry

	executor *dispatch.Executor
	cfg      config
	log      *logging.Logger

	// Stats
	published     atomic.Uint64
	matched       atomic.Uint64
	invoked       atomic.Uint64
	failures      atomic.Uint64
	panics        atomic.Uint64
	activeEntries atomic.Int64
}

// entry pairs one compiled pattern with its active flag and actors.
// All fields after matcher are guarded by Mediator.mu.
type entry struct {
	spec    pattern.Spec
	id      string // Spec.Key
	key     string // Spec.Canonical, for display
	matcher pattern.Matcher

	active bool
	actors []Actor
}

// hit is a snapshot of one matching entry taken during Publish.
type hit struct {
	key    string
	actors []Actor
}

// New creates a mediator with an empty registry.
func New(opts ...Option) *Mediator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Mediator{
		byKey: make(map[string]*entry),
		cfg:   cfg,
		log:   cfg.logger.WithComponent("mediator"),
	}
	m.executor = dispatch.NewExecutor(dispatch.WithPanicHandler(m.onPanic))
	return m
}

// onPanic counts a recovered actor panic and logs its stack.
func (m *Mediator) onPanic(event any, value any, stack []byte) {
	m.panics.Add(1)
	if !m.log.Enabled(logging.LevelDebug) {
		return
	}
	name := ""
	if ev, ok := event.(Event); ok {
		name = ev.Name
	}
	m.log.Debug("actor panic on %q: %v\n%s", name, value, stack)
}

// Listen registers spec, or reactivates it if it is already known, and
// returns a Chain bound to its entry. A malformed wildcard returns an
// *pattern.InvalidPatternError and leaves the registry unchanged.
func (m *Mediator) Listen(spec pattern.Spec) (*Chain, error) {
	id, key := spec.Key(), spec.Canonical()

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.byKey[id]; ok && !spec.IsZero() {
		if !e.active {
			e.active = true
			m.activeEntries.Add(1)
			m.log.Debug("reactivated pattern %q with %d actors", key, len(e.actors))
		}
		return &Chain{m: m, e: e}, nil
	}

	matcher, err := pattern.Compile(spec)
	if err != nil {
		return nil, fmt.Errorf("listen %q: %w", key, err)
	}

	e := &entry{
		spec:    spec,
		id:      id,
		key:     key,
		matcher: matcher,
		active:  true,
	}
	m.entries = append(m.entries, e)
	m.byKey[id] = e
	m.activeEntries.Add(1)

	m.log.Debug("listening on %s pattern %q", spec.Kind(), key)

	return &Chain{m: m, e: e}, nil
}

// MustListen is like Listen but panics if spec does not compile.
func (m *Mediator) MustListen(spec pattern.Spec) *Chain {
	c, err := m.Listen(spec)
	if err != nil {
		panic(err)
	}
	return c
}

// Unlisten deactivates the entry for spec. Its actors are kept.
// Unlistening an unknown pattern is a no-op and logs an
// *UnknownPatternWarning.
func (m *Mediator) Unlisten(spec pattern.Spec) {
	m.mu.Lock()
	e, ok := m.byKey[spec.Key()]
	if ok && e.active {
		e.active = false
		m.activeEntries.Add(-1)
	}
	m.mu.Unlock()

	if !ok {
		m.log.Warn("%v", &UnknownPatternWarning{Pattern: spec.Canonical()})
		return
	}
	m.log.Debug("unlistened pattern %q", e.key)
}

// act appends a to e. Called through Chain.
func (m *Mediator) act(e *entry, a Actor) {
	if isNilActor(a) {
		m.report(fmt.Errorf("act on %q: %w", e.key, ErrNilActor))
		return
	}

	m.mu.Lock()
	e.actors = append(e.actors, a)
	n := len(e.actors)
	m.mu.Unlock()

	m.log.Debug("attached actor %d to pattern %q", n-1, e.key)
}

// Publish dispatches name and payload to every actor of every active
// pattern that matches name. It returns once all of them have run.
// Actor failures are reported and never stop the remaining actors.
// ctx is handed to actors unchanged.
func (m *Mediator) Publish(ctx context.Context, name string, payload any) {
	if ctx == nil {
		ctx = context.Background()
	}
	m.published.Add(1)

	matches := m.match(name)
	if len(matches) == 0 {
		m.log.Debug("event %q matched no patterns", name)
		return
	}
	m.matched.Add(1)

	ev := Event{
		Name:      name,
		ID:        m.cfg.newID(),
		Source:    m.cfg.source,
		Timestamp: m.cfg.now(),
	}

	if m.log.Enabled(logging.LevelDebug) {
		m.log.WithField("id", ev.ID).Debug("event %q matched %d patterns", name, len(matches))
	}

	for _, mt := range matches {
		ev.Pattern = mt.key
		for i, a := range mt.actors {
			m.invoke(ctx, ev, payload, i, a)
		}
	}
}

// match returns the active entries matching name in registration order.
// Actor slices are capped so later appends never show up in the snapshot.
func (m *Mediator) match(name string) []hit {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []hit
	for _, e := range m.entries {
		if !e.active || len(e.actors) == 0 {
			continue
		}
		if !e.matcher.Match(name) {
			continue
		}
		n := len(e.actors)
		matches = append(matches, hit{key: e.key, actors: e.actors[:n:n]})
	}
	return matches
}

// invoke runs one actor in isolation.
func (m *Mediator) invoke(ctx context.Context, ev Event, payload any, index int, a Actor) {
	m.invoked.Add(1)

	handler := dispatch.HandlerFunc(func(ctx context.Context, _ any) error {
		return a.Act(ctx, ev, payload)
	})
	result := m.executor.Execute(ctx, ev, handler)
	if result.IsSuccess() {
		return
	}

	m.failures.Add(1)
	err := &ActorInvocationError{
		Event: ev,
		Index: index,
		Err:   result.Error,
	}
	if result.Panicked {
		err.Panicked = true
		err.PanicValue = result.PanicValue
		err.Stack = result.PanicStack
	}
	m.report(err)
}

// report sends err to the logger and the host error handler.
func (m *Mediator) report(err error) {
	m.log.Error("%v", err)

	h := m.cfg.errorHandler
	if h == nil {
		return
	}
	// A panicking error handler must not abort the publish.
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("error handler panicked: %v", r)
		}
	}()
	h(err)
}

// IsActive reports whether spec is registered and active.
func (m *Mediator) IsActive(spec pattern.Spec) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.byKey[spec.Key()]
	return ok && e.active
}

// Patterns returns the canonical form of every registered pattern,
// active or not, in registration order.
func (m *Mediator) Patterns() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.entries) == 0 {
		return nil
	}
	patterns := make([]string, len(m.entries))
	for i, e := range m.entries {
		patterns[i] = e.key
	}
	return patterns
}

// Entries returns a snapshot of every registered entry in registration order.
func (m *Mediator) Entries() []EntryInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]EntryInfo, len(m.entries))
	for i, e := range m.entries {
		infos[i] = EntryInfo{
			Pattern: e.key,
			Kind:    e.spec.Kind(),
			Active:  e.active,
			Actors:  len(e.actors),
		}
	}
	return infos
}

// EntryInfo describes one registry entry.
type EntryInfo struct {
	// Pattern is the canonical pattern form.
	Pattern string

	// Kind is the pattern's source form.
	Kind pattern.Kind

	// Active is false after Unlisten.
	Active bool

	// Actors is the number of attached actors.
	Actors int
}

// Stats contains mediator statistics.
type Stats struct {
	// EventsPublished is the total number of Publish calls.
	EventsPublished uint64

	// EventsMatched is the number of Publish calls that reached an actor.
	EventsMatched uint64

	// ActorsInvoked is the total number of actor invocations.
	ActorsInvoked uint64

	// ActorFailures is the number of invocations that errored or panicked.
	ActorFailures uint64

	// ActorPanics is the number of invocations that panicked.
	ActorPanics uint64

	// Entries is the number of registered patterns.
	Entries int

	// ActiveEntries is the number of patterns currently listened.
	ActiveEntries int
}

// Stats returns dispatch statistics.
func (m *Mediator) Stats() Stats {
	m.mu.RLock()
	entries := len(m.entries)
	m.mu.RUnlock()

	return Stats{
		EventsPublished: m.published.Load(),
		EventsMatched:   m.matched.Load(),
		ActorsInvoked:   m.invoked.Load(),
		ActorFailures:   m.failures.Load(),
		ActorPanics:     m.panics.Load(),
		Entries:         entries,
		ActiveEntries:   int(m.activeEntries.Load()),
	}
}
