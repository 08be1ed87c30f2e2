// Package config defines the mediator host configuration.
//
// A configuration file lists routes, each pairing one pattern (wildcard or
// regex) with the actors that should run when a published event matches
// it, plus optional Lua scripts that register routes themselves:
//
//	[logging]
//	level = "info"
//
//	[[routes]]
//	pattern = "user:*:success"
//	actors = [{ type = "log", fields = ["user.id"] }]
//
//	[[routes]]
//	regex = ":failure$"
//	actors = [{ type = "emit", event = "alert:raised", set = { severity = "high" } }]
//
//	[scripts]
//	files = ["bootstrap.lua"]
//
// TOML and YAML files are accepted. Environment variables with the
// MEDIATOR_ prefix override file values. Load validates the result, so an
// invalid pattern such as "***" is reported before anything is registered.
package config
