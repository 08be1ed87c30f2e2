// Package lua runs mediator actors written in Lua.
//
// A Host owns one sandboxed gopher-lua state bound to a mediator. Scripts
// loaded into it get a global "mediator" module (also available through
// require("mediator")):
//
//	local m = require("mediator")
//
//	m.listen("user:*:success"):act(function(name, payload, event)
//	    m.publish("audit:" .. name, { id = event.id })
//	end)
//
//	m.listen(m.regex(":failure$")):act(on_failure)
//	m.unlisten("user:*:success")
//
// Listen accepts a wildcard string or a value returned by regex. The chain
// it returns supports act, listen and unlisten, mirroring the Go API.
// Actor functions receive the event name, the payload converted to Lua
// values and an event table with id, pattern, source and timestamp fields,
// plus segments, the event name split into its segments.
//
// gopher-lua states are not goroutine-safe, so every entry into the state
// is serialized. An actor that publishes from Lua re-enters the same state
// on the same goroutine; State detects that through the context and runs
// the nested call without taking the lock again.
package lua
