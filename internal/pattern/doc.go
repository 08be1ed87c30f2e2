// Package pattern compiles event name patterns into matchers.
//
// # Event Names
//
// Event names are free-form strings divided into segments by any of the
// separator characters:
//
//	:  /  .  ?  _  &  ;
//
// Examples:
//
//	event:login:success
//	user/profile.updated
//	cart?item&added
//
// # Wildcard Patterns
//
// Wildcard patterns use two tokens:
//
//   - "*" matches zero or more characters within one segment
//   - "**" matches any characters, crossing segment boundaries
//
// Three or more consecutive "*" characters are rejected with an
// *InvalidPatternError. Every other character matches itself. Newlines are
// not separators: both tokens match them.
//
// Wildcard patterns are anchored at the start of the event name only, so a
// pattern matches any event name it is a prefix of:
//
//	*                  matches event:login:success
//	*:login:success    matches event:login:success (not user:event:login:success)
//	**:success         matches login:success, anything:goes:here:success
//	user:login         matches user:login and user:login:success
//
// # Identity
//
// Spec.Key identifies a pattern by kind and source text. Canonical is the
// display form only.
//
// # Regular Expressions
//
// A Regex spec is used verbatim. No anchors are added, so callers control
// exact matching with ^ and $:
//
//	pattern.MustRegex(`:success$`)
//
// # Usage
//
//	m, err := pattern.Compile(pattern.Wildcard("**:success"))
//	if err != nil {
//	    return err
//	}
//	m.Match("user:login:success") // true
package pattern
