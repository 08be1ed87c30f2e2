package pattern

import (
	"regexp"
	"strings"
)

// Matcher tests event names against a compiled pattern.
// Implementations are immutable and safe for concurrent use.
type Matcher interface {
	// Match reports whether name satisfies the pattern.
	Match(name string) bool

	// String returns the canonical form of the source spec.
	String() string
}

// segmentClass matches zero or more non-separator characters.
const segmentClass = `[^:/.?_&;]*`

// Compile converts spec into a Matcher.
func Compile(spec Spec) (Matcher, error) {
	switch spec.kind {
	case KindWildcard:
		return compileWildcard(spec.text)
	case KindRegex:
		return &regexMatcher{re: spec.re}, nil
	default:
		return nil, ErrEmptySpec
	}
}

// MustCompile is like Compile but panics on error.
func MustCompile(spec Spec) Matcher {
	m, err := Compile(spec)
	if err != nil {
		panic(err)
	}
	return m
}

// Validate checks a wildcard string without building a matcher.
func Validate(wildcard string) error {
	if off := tripleStar(wildcard); off >= 0 {
		return &InvalidPatternError{Pattern: wildcard, Offset: off}
	}
	return nil
}

func compileWildcard(src string) (Matcher, error) {
	if err := Validate(src); err != nil {
		return nil, err
	}

	// Literal patterns need no regex: prefix semantics are identical.
	if !IsWildcard(src) {
		return &prefixMatcher{prefix: src}, nil
	}

	expr := Translate(src)
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &wildcardMatcher{source: src, re: re}, nil
}

// Translate returns the regular expression source for a wildcard string.
// The expression is anchored at the start only. Translate does not reject
// runs of three or more '*'; call Validate first.
func Translate(src string) string {
	var b strings.Builder
	b.Grow(len(src) + 8)
	b.WriteString(`(?s)^`)

	for i := 0; i < len(src); {
		if src[i] == '*' {
			if i+1 < len(src) && src[i+1] == '*' {
				b.WriteString(".*")
				i += 2
				continue
			}
			b.WriteString(segmentClass)
			i++
			continue
		}

		// Copy the literal run up to the next '*' in one piece.
		j := strings.IndexByte(src[i:], '*')
		if j < 0 {
			j = len(src) - i
		}
		b.WriteString(regexp.QuoteMeta(src[i : i+j]))
		i += j
	}

	return b.String()
}

// tripleStar returns the offset of the first run of three or more '*',
// or -1 if there is none.
func tripleStar(s string) int {
	run := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '*' {
			run = 0
			continue
		}
		run++
		if run == 3 {
			return i - 2
		}
	}
	return -1
}

// prefixMatcher matches wildcard patterns that contain no tokens.
type prefixMatcher struct {
	prefix string
}

func (m *prefixMatcher) Match(name string) bool {
	return strings.HasPrefix(name, m.prefix)
}

func (m *prefixMatcher) String() string {
	return m.prefix
}

// wildcardMatcher matches translated wildcard patterns.
type wildcardMatcher struct {
	source string
	re     *regexp.Regexp
}

func (m *wildcardMatcher) Match(name string) bool {
	return m.re.MatchString(name)
}

func (m *wildcardMatcher) String() string {
	return m.source
}

// regexMatcher matches caller-supplied expressions verbatim.
type regexMatcher struct {
	re *regexp.Regexp
}

func (m *regexMatcher) Match(name string) bool {
	return m.re.MatchString(name)
}

func (m *regexMatcher) String() string {
	return "/" + m.re.String() + "/"
}
