package crawler

import (
	"errors"
	"slices"
	"testing"
)

func TestIgnoreFilter(t *testing.T) {
	t.Parallel()

	filter, err := NewIgnoreFilter([]string{`http://example\.com/a`, `.*\.pdf`, `the|a|an`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		input string
		want  bool
	}{
		{input: "http://example.com/a", want: true},
		{input: "http://example.com/about", want: false},
		{input: "http://example.com/doc.pdf", want: true},
		{input: "the", want: true},
		{input: "there", want: false},
		{input: "an", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := filter.Match(tt.input); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	t.Run("patterns are preserved", func(t *testing.T) {
		t.Parallel()

		if got := filter.Patterns(); len(got) != 3 || got[2] != "the|a|an" {
			t.Errorf("unexpected patterns: %v", got)
		}
	})

	t.Run("nil filter matches nothing", func(t *testing.T) {
		t.Parallel()

		var nilFilter *IgnoreFilter
		if nilFilter.Match("anything") {
			t.Error("expected nil filter not to match")
		}
		if nilFilter.Patterns() != nil {
			t.Error("expected nil patterns")
		}
	})

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()

		_, err := NewIgnoreFilter([]string{"ok", "[unclosed"})
		if !errors.Is(err, ErrInvalidPattern) {
			t.Errorf("expected ErrInvalidPattern, got %v", err)
		}
	})

	t.Run("empty filter", func(t *testing.T) {
		t.Parallel()

		empty, err := NewIgnoreFilter(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if empty.Match("") || !slices.Equal(empty.Patterns(), []string{}) {
			t.Error("expected empty filter to match nothing")
		}
	})
}
