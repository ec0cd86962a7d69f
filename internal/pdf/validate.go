package pdf

import (
	"context"
	"sort"
	"strings"

	"github.com/deckgen/deckgen/internal/book"
)

// Thresholds tunes the distribution validator. The defaults are
// empirically chosen; there is no derivation behind them, so they are
// kept configurable for domain-specific tuning rather than hardcoded.
type Thresholds struct {
	// MinSectionWords is the word count under which a section counts as tiny.
	MinSectionWords int
	// TinySectionRatio is the fraction of tiny sections above which the
	// distribution looks suspicious.
	TinySectionRatio float64
	// TopTwoConcentration is the fraction of total words in the two
	// largest sections above which the distribution looks suspicious.
	TopTwoConcentration float64
}

// DefaultThresholds returns the standard validator tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSectionWords:     50,
		TinySectionRatio:    0.6,
		TopTwoConcentration: 0.85,
	}
}

// validateDistribution sanity-checks a candidate's section word counts
// against the whole document. Many near-empty sections combined with one
// or two sections holding nearly all the words means the heuristic locked
// onto incidental large-print matter (title page, afterword) rather than
// real chapter boundaries. Returns true when the distribution looks
// healthy or there is too little data to judge.
func validateDistribution(ctx context.Context, src Source, sections []book.Section, th Thresholds) (bool, error) {
	if len(sections) < 3 {
		return true, nil
	}

	total := src.PageCount()
	wordCounts := make([]int, 0, len(sections))

	for i, s := range sections {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		start := 0
		if s.PageStart != nil {
			start = *s.PageStart
		}
		var end int
		switch {
		case s.PageEnd != nil:
			end = *s.PageEnd
		case i+1 < len(sections) && sections[i+1].PageStart != nil:
			end = *sections[i+1].PageStart - 1
			if end < start {
				end = start
			}
		default:
			end = total - 1
		}

		words := 0
		for page := start; page <= end && page < total; page++ {
			text, err := src.PageText(page)
			if err != nil {
				return false, err
			}
			words += len(strings.Fields(text))
		}
		wordCounts = append(wordCounts, words)
	}

	totalWords := 0
	for _, n := range wordCounts {
		totalWords += n
	}
	if totalWords == 0 {
		return true, nil
	}

	tiny := 0
	for _, n := range wordCounts {
		if n < th.MinSectionWords {
			tiny++
		}
	}
	tinyRatio := float64(tiny) / float64(len(wordCounts))

	sorted := make([]int, len(wordCounts))
	copy(sorted, wordCounts)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	topTwo := float64(sorted[0])
	if len(sorted) > 1 {
		topTwo += float64(sorted[1])
	}
	topTwoRatio := topTwo / float64(totalWords)

	if tinyRatio > th.TinySectionRatio && topTwoRatio > th.TopTwoConcentration {
		return false, nil
	}
	return true, nil
}
