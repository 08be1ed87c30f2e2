// Package mediator routes published events to actors registered against
// name patterns.
//
// Publishers call Publish with an event name and an arbitrary payload. The
// mediator tests the name against every active pattern and invokes the
// actors attached to each match. Publishers never learn who, if anyone,
// was listening.
//
// # Registration
//
// Listen registers (or reactivates) a pattern and returns a Chain bound to
// that pattern's entry. Act attaches actors to the entry:
//
//	m := mediator.New()
//
//	ch, err := m.Listen(pattern.Wildcard("user:*:success"))
//	if err != nil {
//	    return err
//	}
//	ch.ActFunc(audit).ActFunc(notify)
//
// Each Chain carries its own entry, so interleaved or nested chains never
// interfere with one another.
//
// Listening to a pattern that is already registered reuses its entry.
// Actors accumulate on that single entry and run once per publish no matter
// how many times the pattern was listened.
//
// Unlisten deactivates an entry without discarding its actors. A later
// Listen of the same pattern brings the previous actors back:
//
//	m.Unlisten(pattern.Wildcard("user:*:success")) // stops delivery
//	m.Listen(pattern.Wildcard("user:*:success"))   // audit and notify run again
//
// # Dispatch
//
// Publish is synchronous. Matching entries run in the order they were first
// listened, and actors within an entry run in the order they were attached.
// No lock is held while actors run, so actors may publish or register
// listeners themselves. The mediator performs no cycle detection.
//
// An actor that returns an error or panics is reported as an
// *ActorInvocationError to the logger and the error handler configured with
// WithErrorHandler. The remaining actors still run and Publish itself never
// fails.
//
// # Host Integration
//
// Tap wraps a host's native emitter so every emission is published to the
// mediator first and then delivered natively, unmodified.
package mediator
