package lua

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds one top-level entry into a State.
const DefaultExecutionTimeout = 5 * time.Second

// State wraps a sandboxed gopher-lua state.
//
// All access goes through Do, which serializes callers. A call made with a
// context returned by Do for the same State is re-entrant: it runs directly
// on the caller's goroutine without locking.
type State struct {
	L *lua.LState

	mu sync.Mutex

	timeout time.Duration
	sandbox *Sandbox

	// ctx is the context of the innermost running Do call.
	ctx    context.Context
	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the timeout for one top-level call.
// Zero disables it.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

type stateKey struct{}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		timeout: DefaultExecutionTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	openSafeLibraries(s.L)

	s.sandbox = NewSandbox(s.L)
	s.sandbox.Install()

	return s
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenPackage(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Not opened: io, os, debug, channel, coroutine.
}

// Do runs fn with exclusive access to the Lua state. fn receives a context
// that marks the state as held; passing it back into Do re-enters without
// blocking. Panics raised by fn are returned as errors.
func (s *State) Do(ctx context.Context, fn func(ctx context.Context, L *lua.LState) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Value(stateKey{}) == s {
		return s.reenter(ctx, fn)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	held := context.WithValue(ctx, stateKey{}, s)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		held, cancel = context.WithTimeout(held, s.timeout)
		defer cancel()
	}

	s.L.SetContext(held)
	defer s.L.RemoveContext()

	s.ctx = held
	defer func() { s.ctx = nil }()

	return doWithRecovery(func() error {
		return fn(held, s.L)
	})
}

func (s *State) reenter(ctx context.Context, fn func(ctx context.Context, L *lua.LState) error) error {
	if s.closed {
		return ErrStateClosed
	}
	prev := s.ctx
	s.ctx = ctx
	defer func() { s.ctx = prev }()

	return doWithRecovery(func() error {
		return fn(ctx, s.L)
	})
}

// Context returns the context of the running call, for Go functions
// invoked from Lua. Outside Do it returns context.Background().
func (s *State) Context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// doWithRecovery executes a function with panic recovery.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// DoFile executes a Lua file.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.Do(ctx, func(_ context.Context, L *lua.LState) error {
		return L.DoFile(path)
	})
}

// DoString executes a Lua string.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.Do(ctx, func(_ context.Context, L *lua.LState) error {
		return L.DoString(code)
	})
}

// Call calls fn with args and returns its results.
// It must run inside Do.
func Call(L *lua.LState, fn lua.LValue, args ...lua.LValue) ([]lua.LValue, error) {
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: got %s", ErrFunctionNotFound, fn.Type())
	}

	stackTop := L.GetTop()
	L.Push(fn)
	for _, arg := range args {
		L.Push(arg)
	}
	if err := L.PCall(len(args), lua.MultRet, nil); err != nil {
		return nil, err
	}

	nRet := L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := 0; i < nRet; i++ {
		results[i] = L.Get(stackTop + i + 1)
	}
	L.Pop(nRet)
	return results, nil
}

// CallGlobal calls the global function name.
func (s *State) CallGlobal(ctx context.Context, name string, args ...lua.LValue) ([]lua.LValue, error) {
	var results []lua.LValue
	err := s.Do(ctx, func(_ context.Context, L *lua.LState) error {
		fn := L.GetGlobal(name)
		if fn.Type() != lua.LTFunction {
			return fmt.Errorf("%w: %q", ErrFunctionNotFound, name)
		}
		var err error
		results, err = Call(L, fn, args...)
		return err
	})
	return results, err
}

// HasFunction reports whether the global name is a function.
func (s *State) HasFunction(name string) bool {
	found := false
	_ = s.Do(context.Background(), func(_ context.Context, L *lua.LState) error {
		found = L.GetGlobal(name).Type() == lua.LTFunction
		return nil
	})
	return found
}

// Sandbox returns the sandbox installed in the state.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases all resources associated with the Lua state.
// After Close is called, Do returns ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.L.Close()
	s.closed = true
	return nil
}
