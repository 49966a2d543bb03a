package crawler

import (
	"fmt"
	"regexp"
)

// IgnoreFilter matches strings against a list of regular expressions.
// A string is matched only when a pattern matches it in full, so the pattern
// "http://example.com/a" does not match "http://example.com/about".
//
// The same filter type is used for ignored URLs and for ignored words.
type IgnoreFilter struct {
	patterns []*regexp.Regexp
	sources  []string
}

// NewIgnoreFilter compiles the given patterns.
// It returns ErrInvalidPattern wrapped with the offending pattern if any of
// them fails to compile.
func NewIgnoreFilter(patterns []string) (*IgnoreFilter, error) {
	f := &IgnoreFilter{
		patterns: make([]*regexp.Regexp, 0, len(patterns)),
		sources:  make([]string, 0, len(patterns)),
	}

	for _, p := range patterns {
		re, err := regexp.Compile(`^(?:` + p + `)$`)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err) //nolint:errorlint // regexp error is detail only
		}
		f.patterns = append(f.patterns, re)
		f.sources = append(f.sources, p)
	}

	return f, nil
}

// Match reports whether s fully matches any pattern.
// A nil filter matches nothing.
func (f *IgnoreFilter) Match(s string) bool {
	if f == nil {
		return false
	}
	for _, re := range f.patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Patterns returns the patterns as they were supplied.
func (f *IgnoreFilter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.sources...)
}
