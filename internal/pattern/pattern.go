package pattern

import (
	"regexp"
	"strings"
)

// Wildcard tokens recognised in wildcard patterns.
const (
	// WildcardSingle matches zero or more characters within one segment.
	WildcardSingle = "*"

	// WildcardMulti matches any characters across segments.
	WildcardMulti = "**"

	// Separators lists every character that bounds a segment.
	Separators = ":/.?_&;"
)

// Kind identifies which form a Spec was built from.
type Kind int

const (
	// KindNone is the zero Spec; it cannot be compiled.
	KindNone Kind = iota

	// KindWildcard is a literal string with optional * and ** tokens.
	KindWildcard

	// KindRegex is a caller-supplied regular expression.
	KindRegex
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindWildcard:
		return "wildcard"
	case KindRegex:
		return "regex"
	default:
		return "none"
	}
}

// Spec is the source form of a pattern: either a wildcard string or a
// regular expression. The zero value is KindNone.
type Spec struct {
	kind Kind
	text string
	re   *regexp.Regexp
}

// Wildcard returns a spec for a wildcard pattern string.
func Wildcard(s string) Spec {
	return Spec{kind: KindWildcard, text: s}
}

// Regex returns a spec that matches with re as-is.
// A nil expression yields the zero Spec.
func Regex(re *regexp.Regexp) Spec {
	if re == nil {
		return Spec{}
	}
	return Spec{kind: KindRegex, text: re.String(), re: re}
}

// ParseRegex compiles expr and returns a regex spec.
func ParseRegex(expr string) (Spec, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Spec{}, err
	}
	return Regex(re), nil
}

// MustRegex is like ParseRegex but panics if expr does not compile.
func MustRegex(expr string) Spec {
	return Regex(regexp.MustCompile(expr))
}

// Kind returns the spec's form.
func (s Spec) Kind() Kind {
	return s.kind
}

// Source returns the wildcard string or the regex source.
func (s Spec) Source() string {
	return s.text
}

// Key returns the registry identity of the spec. Two specs share a key
// only when they have the same kind and the same source text.
func (s Spec) Key() string {
	switch s.kind {
	case KindWildcard:
		return "w:" + s.text
	case KindRegex:
		return "r:" + s.text
	default:
		return ""
	}
}

// Canonical returns the display form of the spec: the literal text of a
// wildcard, or a regex wrapped in slashes. It is not an identity; the
// wildcard "/x/" and the regex "x" share a canonical form.
func (s Spec) Canonical() string {
	switch s.kind {
	case KindWildcard:
		return s.text
	case KindRegex:
		return "/" + s.text + "/"
	default:
		return ""
	}
}

// String returns the canonical form.
func (s Spec) String() string {
	return s.Canonical()
}

// IsZero reports whether s is the zero Spec.
func (s Spec) IsZero() bool {
	return s.kind == KindNone
}

// IsWildcard returns true if s contains any wildcard token.
func IsWildcard(s string) bool {
	return strings.Contains(s, WildcardSingle)
}

// IsSeparator reports whether c bounds a segment.
func IsSeparator(c rune) bool {
	return strings.ContainsRune(Separators, c)
}

// Segments splits an event name on every separator character.
// Empty segments between adjacent separators are kept.
func Segments(name string) []string {
	if name == "" {
		return nil
	}
	var segs []string
	start := 0
	for i, c := range name {
		if IsSeparator(c) {
			segs = append(segs, name[start:i])
			start = i + 1
		}
	}
	return append(segs, name[start:])
}
