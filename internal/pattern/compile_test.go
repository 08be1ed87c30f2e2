package pattern

import (
	"errors"
	"regexp"
	"sync"
	"testing"
)

func TestCompile_Wildcard(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		// Single-segment wildcard
		{"*", "event:login:success", true},
		{"*", "", true},
		{"*:login:success", "event:login:success", true},
		{"*:login:success", "user:event:login:success", false},
		{"*:login:success", "event:logout:success", false},
		{"event:*:success", "event:login:success", true},
		{"event:*:success", "event:a:b:success", false},
		{"event:*", "event:", true},

		// Globstar
		{"**:success", "login:success", true},
		{"**:success", "anything:goes:here:success", true},
		{"**:success", "success", false},
		{"**", "a/b.c?d_e&f;g", true},
		{"user:**:done", "user:x:y:z:done", true},
		{"user:**:done", "admin:x:done", false},

		// Every separator bounds a single star
		{"a*c", "abc", true},
		{"a*c", "a:c", false},
		{"a*c", "a/c", false},
		{"a*c", "a.c", false},
		{"a*c", "a?c", false},
		{"a*c", "a_c", false},
		{"a*c", "a&c", false},
		{"a*c", "a;c", false},
		{"a**c", "a:b/c", true},

		// Anchored at the start, open at the end
		{"login", "login:success", true},
		{"login", "user:login", false},
		{"*:login", "user:login:extra", true},
		{"event:login:success", "event:login:success", true},
		{"event:login:success", "event:login:failure", false},

		// Literal characters are not regex metacharacters
		{"a.b", "axb", false},
		{"a.b", "a.b", true},
		{"price+tax", "price+tax", true},
		{"(x)", "(x)", true},
		{"[id]:*", "[id]:42", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"~"+tt.name, func(t *testing.T) {
			m, err := Compile(Wildcard(tt.pattern))
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.pattern, err)
			}
			if got := m.Match(tt.name); got != tt.want {
				t.Errorf("Match(%q) with pattern %q = %v, want %v", tt.name, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestCompile_InvalidPattern(t *testing.T) {
	tests := []struct {
		pattern string
		offset  int
	}{
		{"***", 0},
		{"****", 0},
		{"a:***", 2},
		{"**:a:***:b", 5},
		{"x*****", 1},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			m, err := Compile(Wildcard(tt.pattern))
			if err == nil {
				t.Fatalf("expected error for %q, got matcher %v", tt.pattern, m)
			}
			if !errors.Is(err, ErrInvalidPattern) {
				t.Errorf("expected ErrInvalidPattern, got %v", err)
			}
			var ipe *InvalidPatternError
			if !errors.As(err, &ipe) {
				t.Fatalf("expected *InvalidPatternError, got %T", err)
			}
			if ipe.Pattern != tt.pattern {
				t.Errorf("expected pattern %q in error, got %q", tt.pattern, ipe.Pattern)
			}
			if ipe.Offset != tt.offset {
				t.Errorf("expected offset %d, got %d", tt.offset, ipe.Offset)
			}
		})
	}
}

func TestCompile_Regex(t *testing.T) {
	m, err := Compile(MustRegex(`:success$`))
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	if !m.Match("user:login:success") {
		t.Error("expected match for user:login:success")
	}
	if m.Match("user:login:success:extra") {
		t.Error("expected no match for user:login:success:extra")
	}
	if m.String() != "/:success$/" {
		t.Errorf("expected canonical /:success$/, got %s", m.String())
	}
}

func TestCompile_RegexNotAnchored(t *testing.T) {
	m := MustCompile(Regex(regexp.MustCompile(`login`)))

	if !m.Match("user:login:success") {
		t.Error("expected unanchored regex to match in the middle")
	}
}

func TestCompile_RegexStarIsRepetition(t *testing.T) {
	m := MustCompile(MustRegex(`^a*b`))

	if !m.Match("aaab") {
		t.Error("expected a* to repeat in regex form")
	}
	if m.Match("a:b") {
		t.Error("expected regex form not to apply segment rules")
	}
}

func TestCompile_EmptySpec(t *testing.T) {
	_, err := Compile(Spec{})
	if !errors.Is(err, ErrEmptySpec) {
		t.Errorf("expected ErrEmptySpec, got %v", err)
	}

	_, err = Compile(Regex(nil))
	if !errors.Is(err, ErrEmptySpec) {
		t.Errorf("expected ErrEmptySpec for nil regex, got %v", err)
	}
}

func TestCompile_EmptyWildcardMatchesEverything(t *testing.T) {
	m := MustCompile(Wildcard(""))

	for _, name := range []string{"", "a", "a:b:c"} {
		if !m.Match(name) {
			t.Errorf("expected empty pattern to match %q", name)
		}
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		pattern  string
		expected string
	}{
		{"*", `(?s)^[^:/.?_&;]*`},
		{"**", `(?s)^.*`},
		{"**:success", `(?s)^.*:success`},
		{"a.*", `(?s)^a\.[^:/.?_&;]*`},
		{"*:**", `(?s)^[^:/.?_&;]*:.*`},
		{"plain", `(?s)^plain`},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := Translate(tt.pattern); got != tt.expected {
				t.Errorf("Translate(%q) = %q, want %q", tt.pattern, got, tt.expected)
			}
		})
	}
}

func TestCompile_WildcardExpr(t *testing.T) {
	m := MustCompile(Wildcard("user:*"))

	wm, ok := m.(*wildcardMatcher)
	if !ok {
		t.Fatalf("expected *wildcardMatcher, got %T", m)
	}
	if wm.re.String() != Translate("user:*") {
		t.Errorf("expected expr %q, got %q", Translate("user:*"), wm.re.String())
	}
	if m.String() != "user:*" {
		t.Errorf("expected String user:*, got %s", m.String())
	}
}

func TestCompile_LiteralUsesPrefixMatcher(t *testing.T) {
	m := MustCompile(Wildcard("user:login"))

	if _, ok := m.(*prefixMatcher); !ok {
		t.Errorf("expected *prefixMatcher for literal pattern, got %T", m)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("**:a:*"); err != nil {
		t.Errorf("expected valid pattern, got %v", err)
	}
	if err := Validate("a***"); err == nil {
		t.Error("expected error for a***")
	}
}

func TestMustCompile_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic")
		}
	}()
	MustCompile(Wildcard("***"))
}

func TestMatcher_Concurrent(t *testing.T) {
	m := MustCompile(Wildcard("**:success"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if !m.Match("a:b:success") {
					t.Error("expected match")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkMatch_Wildcard(b *testing.B) {
	m := MustCompile(Wildcard("*:login:**"))
	for i := 0; i < b.N; i++ {
		m.Match("event:login:success:extra")
	}
}

func BenchmarkMatch_Literal(b *testing.B) {
	m := MustCompile(Wildcard("event:login"))
	for i := 0; i < b.N; i++ {
		m.Match("event:login:success")
	}
}

func TestInvalidPatternError_QuotesPattern(t *testing.T) {
	err := &InvalidPatternError{Pattern: "a\"b\n***"}

	want := `invalid pattern "a\"b\n***": three or more consecutive '*' are not allowed`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCompile_NewlinesInNames(t *testing.T) {
	tests := []struct {
		pattern  string
		name     string
		expected bool
	}{
		{"user:**:done", "user:a\nb:done", true},
		{"**", "line1\nline2", true},
		{"user:*:done", "user:a\nb:done", true},
		{"user:*:done", "user:a\n:b:done", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			m := MustCompile(Wildcard(tt.pattern))
			if got := m.Match(tt.name); got != tt.expected {
				t.Errorf("%q.Match(%q) = %v, want %v", tt.pattern, tt.name, got, tt.expected)
			}
		})
	}
}
