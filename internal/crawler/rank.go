package crawler

import (
	"cmp"
	"slices"

	"github.com/nao1215/wordcrawl/internal/model"
)

// TieBreak orders two distinct words that have the same count.
// It returns a negative number when a should come first.
type TieBreak func(a, b string) int

// LongerThenLexical is the default tie-break: longer words first, then
// lexicographic ascending order.
func LongerThenLexical(a, b string) int {
	if c := cmp.Compare(len(b), len(a)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

// Lexical orders tied words lexicographically.
func Lexical(a, b string) int {
	return cmp.Compare(a, b)
}

// Rank returns at most n words ordered by count descending, with ties broken
// by LongerThenLexical. The input map is not modified.
func Rank(counts map[string]int, n int) model.WordCounts {
	return RankWith(counts, n, LongerThenLexical)
}

// RankWith is Rank with a custom tie-break. A nil tie-break falls back to
// LongerThenLexical.
func RankWith(counts map[string]int, n int, tieBreak TieBreak) model.WordCounts {
	if n <= 0 || len(counts) == 0 {
		return make(model.WordCounts, 0)
	}
	if tieBreak == nil {
		tieBreak = LongerThenLexical
	}

	ranked := make(model.WordCounts, 0, len(counts))
	for word, count := range counts {
		ranked = append(ranked, model.WordCount{Word: word, Count: count})
	}

	slices.SortFunc(ranked, func(a, b model.WordCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return tieBreak(a.Word, b.Word)
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
