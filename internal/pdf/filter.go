package pdf

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/deckgen/deckgen/internal/book"
)

var (
	romanPageRe = regexp.MustCompile(`^[ivxlc]+$`)
	pageLabelRe = regexp.MustCompile(`^page\s+\d+$`)
)

// falsePositiveTitles are book-apparatus headings that frequently match
// heuristics but rarely mark content sections. They are dropped unless
// detected with solid confidence.
var falsePositiveTitles = map[string]struct{}{
	"contents":         {},
	"index":            {},
	"bibliography":     {},
	"references":       {},
	"acknowledgments":  {},
	"about the author": {},
	"copyright":        {},
}

// dedupeSections removes duplicates keyed by (lowercased title, start page),
// keeping the first occurrence.
func dedupeSections(sections []book.Section) []book.Section {
	seen := make(map[string]struct{}, len(sections))
	out := make([]book.Section, 0, len(sections))

	for _, s := range sections {
		page := -1
		if s.PageStart != nil {
			page = *s.PageStart
		}
		key := fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(s.Title)), page)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// filterNoise drops detections that are almost certainly not headings:
// repeated titles, tiny fragments, bare page numbers, social handles, and
// low-confidence apparatus titles.
func filterNoise(sections []book.Section) []book.Section {
	seen := make(map[string]struct{}, len(sections))
	out := make([]book.Section, 0, len(sections))

	for _, s := range sections {
		title := strings.TrimSpace(s.Title)
		lower := strings.ToLower(title)

		if _, ok := seen[lower]; ok {
			continue
		}
		if utf8.RuneCountInString(lower) < 3 {
			continue
		}
		if isDigits(title) {
			continue
		}
		if strings.HasPrefix(title, "@") {
			continue
		}
		if _, ok := falsePositiveTitles[lower]; ok && s.Confidence < 0.5 {
			continue
		}

		seen[lower] = struct{}{}
		out = append(out, s)
	}
	return out
}

// isPageNumber reports whether text looks like a printed page number:
// bare digits, lowercase roman numerals (front matter), or "page N".
func isPageNumber(text string) bool {
	text = strings.TrimSpace(text)
	if isDigits(text) {
		return true
	}
	lower := strings.ToLower(text)
	if romanPageRe.MatchString(lower) {
		return true
	}
	return pageLabelRe.MatchString(lower)
}
