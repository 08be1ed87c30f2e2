// Package dispatch runs mediator actors with failure isolation.
//
// The Executor invokes one handler at a time in the caller's goroutine. A
// handler that returns an error or panics produces a Result describing the
// failure; the panic never escapes Execute. This keeps one failing actor
// from aborting the remaining actors of a publish.
//
// There are no timeouts and no cancellation checks: a handler that blocks
// blocks its caller.
package dispatch
