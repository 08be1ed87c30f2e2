package lua

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/mediator/internal/logging"
	"github.com/dshills/mediator/internal/mediator"
	"github.com/dshills/mediator/internal/payload"
	"github.com/dshills/mediator/internal/pattern"
)

// ModuleName is the global and require name of the Lua API.
const ModuleName = "mediator"

const (
	chainTypeName = "mediator.chain"
	regexTypeName = "mediator.regex"
)

// Registry is the part of a mediator a Host drives.
// *mediator.Mediator implements it.
type Registry interface {
	mediator.Publisher
	Listen(spec pattern.Spec) (*mediator.Chain, error)
	Unlisten(spec pattern.Spec)
	Patterns() []string
}

// Host runs Lua scripts against a mediator.
type Host struct {
	state  *State
	bridge *Bridge
	reg    Registry
	log    *logging.Logger

	mu     sync.Mutex
	loaded map[string]bool
}

// HostOption configures a Host.
type HostOption func(*hostConfig)

type hostConfig struct {
	logger    *logging.Logger
	stateOpts []StateOption
}

// WithLogger sets the logger used by scripts and the host.
func WithLogger(l *logging.Logger) HostOption {
	return func(c *hostConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStateOptions passes options to the underlying State.
func WithStateOptions(opts ...StateOption) HostOption {
	return func(c *hostConfig) {
		c.stateOpts = append(c.stateOpts, opts...)
	}
}

// NewHost creates a Lua host bound to reg.
func NewHost(reg Registry, opts ...HostOption) *Host {
	cfg := hostConfig{logger: logging.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	state := NewState(cfg.stateOpts...)
	h := &Host{
		state:  state,
		bridge: NewBridge(state.L),
		reg:    reg,
		log:    cfg.logger.WithComponent("lua"),
		loaded: make(map[string]bool),
	}
	h.install()
	return h
}

// State returns the host's Lua state.
func (h *Host) State() *State {
	return h.state
}

// Close releases the Lua state. Actors created by the host fail with
// ErrStateClosed afterwards.
func (h *Host) Close() error {
	return h.state.Close()
}

// LoadFile runs the script at path once. Later calls for the same file are
// no-ops.
func (h *Host) LoadFile(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.loaded[abs] {
		return nil
	}

	if err := h.state.DoFile(ctx, abs); err != nil {
		return &ScriptError{Script: path, Err: err}
	}
	h.loaded[abs] = true
	h.log.Debug("loaded script %s", path)
	return nil
}

// LoadString runs code as a chunk labelled name.
func (h *Host) LoadString(ctx context.Context, name, code string) error {
	if err := h.state.DoString(ctx, code); err != nil {
		return &ScriptError{Script: name, Err: err}
	}
	return nil
}

// Actor returns an actor that calls the global function defined by
// script. The script is loaded first if needed.
func (h *Host) Actor(ctx context.Context, script, function string) (mediator.Actor, error) {
	if err := h.LoadFile(ctx, script); err != nil {
		return nil, err
	}
	if !h.state.HasFunction(function) {
		return nil, &ScriptError{Script: script, Function: function, Err: ErrFunctionNotFound}
	}

	return mediator.ActorFunc(func(ctx context.Context, ev mediator.Event, p any) error {
		return h.state.Do(ctx, func(_ context.Context, L *lua.LState) error {
			if _, err := Call(L, L.GetGlobal(function), h.args(ev, p)...); err != nil {
				return &ScriptError{Script: script, Function: function, Err: err}
			}
			return nil
		})
	}), nil
}

// funcActor wraps a Lua function passed to chain:act.
func (h *Host) funcActor(fn *lua.LFunction, label string) mediator.Actor {
	return mediator.ActorFunc(func(ctx context.Context, ev mediator.Event, p any) error {
		return h.state.Do(ctx, func(_ context.Context, L *lua.LState) error {
			if _, err := Call(L, fn, h.args(ev, p)...); err != nil {
				return &ScriptError{Script: label, Err: err}
			}
			return nil
		})
	})
}

// args builds the (name, payload, event) arguments of an actor call.
func (h *Host) args(ev mediator.Event, p any) []lua.LValue {
	var lp lua.LValue
	if v, err := payload.Decode(p); err == nil {
		lp = h.bridge.ToLuaValue(v)
	} else {
		lp = h.bridge.ToLuaValue(p)
	}

	et := h.state.L.NewTable()
	et.RawSetString("name", lua.LString(ev.Name))
	et.RawSetString("id", lua.LString(ev.ID))
	et.RawSetString("pattern", lua.LString(ev.Pattern))
	et.RawSetString("source", lua.LString(ev.Source))
	et.RawSetString("timestamp", lua.LNumber(ev.Timestamp.UnixMilli()))

	segs := h.state.L.NewTable()
	for _, seg := range pattern.Segments(ev.Name) {
		segs.Append(lua.LString(seg))
	}
	et.RawSetString("segments", segs)

	return []lua.LValue{lua.LString(ev.Name), lp, et}
}

// install registers the mediator module and its userdata types.
func (h *Host) install() {
	L := h.state.L

	chainMT := L.NewTypeMetatable(chainTypeName)
	L.SetField(chainMT, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"act":      h.chainAct,
		"listen":   h.chainListen,
		"unlisten": h.chainUnlisten,
		"pattern":  h.chainPattern,
	}))
	L.SetField(chainMT, "__tostring", L.NewFunction(h.chainPattern))

	regexMT := L.NewTypeMetatable(regexTypeName)
	L.SetField(regexMT, "__tostring", L.NewFunction(func(L *lua.LState) int {
		spec, _ := L.CheckUserData(1).Value.(pattern.Spec)
		L.Push(lua.LString(spec.Canonical()))
		return 1
	}))

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"listen":   h.luaListen,
		"unlisten": h.luaUnlisten,
		"regex":    h.luaRegex,
		"publish":  h.luaPublish,
		"patterns": h.luaPatterns,
		"log":      h.luaLog,
	})
	L.SetGlobal(ModuleName, mod)
	L.PreloadModule(ModuleName, func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	h.state.Sandbox().AllowModule(ModuleName)
}

// checkSpec reads a wildcard string or regex userdata at stack index n.
func (h *Host) checkSpec(L *lua.LState, n int) pattern.Spec {
	switch v := L.Get(n).(type) {
	case lua.LString:
		return pattern.Wildcard(string(v))
	case *lua.LUserData:
		if spec, ok := v.Value.(pattern.Spec); ok {
			return spec
		}
	}
	L.ArgError(n, "pattern string or mediator.regex value expected")
	return pattern.Spec{}
}

func (h *Host) pushChain(L *lua.LState, c *mediator.Chain) {
	ud := L.NewUserData()
	ud.Value = c
	L.SetMetatable(ud, L.GetTypeMetatable(chainTypeName))
	L.Push(ud)
}

func (h *Host) checkChain(L *lua.LState) *mediator.Chain {
	ud := L.CheckUserData(1)
	c, ok := ud.Value.(*mediator.Chain)
	if !ok {
		L.ArgError(1, "mediator.chain expected")
	}
	return c
}

// listen(pattern) -> chain
func (h *Host) luaListen(L *lua.LState) int {
	spec := h.checkSpec(L, 1)
	c, err := h.reg.Listen(spec)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	h.pushChain(L, c)
	return 1
}

// unlisten(pattern)
func (h *Host) luaUnlisten(L *lua.LState) int {
	h.reg.Unlisten(h.checkSpec(L, 1))
	return 0
}

// regex(expr) -> regex
func (h *Host) luaRegex(L *lua.LState) int {
	spec, err := pattern.ParseRegex(L.CheckString(1))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	ud := L.NewUserData()
	ud.Value = spec
	L.SetMetatable(ud, L.GetTypeMetatable(regexTypeName))
	L.Push(ud)
	return 1
}

// publish(name, payload)
func (h *Host) luaPublish(L *lua.LState) int {
	name := L.CheckString(1)
	p := h.bridge.ToGoValue(L.Get(2))
	h.reg.Publish(h.state.Context(), name, p)
	return 0
}

// patterns() -> {string...}
func (h *Host) luaPatterns(L *lua.LState) int {
	t := L.NewTable()
	for i, p := range h.reg.Patterns() {
		t.RawSetInt(i+1, lua.LString(p))
	}
	L.Push(t)
	return 1
}

// log(level, message)
func (h *Host) luaLog(L *lua.LState) int {
	level := logging.ParseLevel(L.CheckString(1))
	msg := L.CheckString(2)
	switch level {
	case logging.LevelDebug:
		h.log.Debug("%s", msg)
	case logging.LevelWarn:
		h.log.Warn("%s", msg)
	case logging.LevelError:
		h.log.Error("%s", msg)
	default:
		h.log.Info("%s", msg)
	}
	return 0
}

// chain:act(fn) -> chain
func (h *Host) chainAct(L *lua.LState) int {
	c := h.checkChain(L)
	fn := L.CheckFunction(2)
	c.Act(h.funcActor(fn, fmt.Sprintf("actor for %s", c.Pattern())))
	L.Push(L.Get(1))
	return 1
}

// chain:listen(pattern) -> chain
func (h *Host) chainListen(L *lua.LState) int {
	c := h.checkChain(L)
	next, err := c.Listen(h.checkSpec(L, 2))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	h.pushChain(L, next)
	return 1
}

// chain:unlisten()
func (h *Host) chainUnlisten(L *lua.LState) int {
	h.checkChain(L).Unlisten()
	return 0
}

// chain:pattern() -> string
func (h *Host) chainPattern(L *lua.LState) int {
	L.Push(lua.LString(h.checkChain(L).Pattern()))
	return 1
}
