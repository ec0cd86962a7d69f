package pdf

import (
	"context"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/deckgen/deckgen/internal/book"
)

const (
	// fontSamplePages bounds the first pass that estimates body text size.
	fontSamplePages = 20

	// fontSectionThreshold is the minimum per-line score to become a
	// candidate section.
	fontSectionThreshold = 0.5

	// fontConfidenceCap bounds per-section confidence for this layer.
	fontConfidenceCap = 0.85

	// fontAcceptAvg is the layer's self-rejection bar: the mean section
	// confidence must exceed it, which effectively requires a strong,
	// consistent signal across the document.
	fontAcceptAvg = 0.70
)

// detectByFont detects headings by font size relative to body text.
// Pass 1 samples up to the first 20 pages and takes the mode of rounded
// character sizes as the body size; pass 2 scores every reconstructed
// line against size ratio, boldness, casing, and length.
func detectByFont(ctx context.Context, src Source) (*book.DetectionResult, error) {
	bodySize, ok, err := estimateBodySize(ctx, src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var sections []book.Section
	for page := 0; page < src.PageCount(); page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chars, err := src.PageChars(page)
		if err != nil {
			return nil, err
		}
		for _, line := range buildLines(chars) {
			conf := headingConfidence(line, bodySize)
			if conf >= fontSectionThreshold {
				sections = append(sections, book.Section{
					Title:      strings.TrimSpace(line.Text),
					PageStart:  book.IntPtr(page),
					Level:      levelFromSize(line.Size, bodySize),
					Confidence: math.Min(conf, fontConfidenceCap),
				})
			}
		}
	}

	sections = dedupeSections(sections)
	sections = filterNoise(sections)

	if len(sections) == 0 || book.AvgConfidence(sections) <= fontAcceptAvg {
		return nil, nil
	}

	return &book.DetectionResult{
		Sections:   sections,
		Method:     book.MethodPDFFont,
		Confidence: book.AvgConfidence(sections),
	}, nil
}

// estimateBodySize returns the most frequent character size, rounded to
// one decimal, across the sample pages. Ties break toward the smaller
// size so repeated parses of the same document are deterministic.
// Known limitation: documents where body and heading sizes occur with
// near-equal frequency (heavily captioned texts) may pick the wrong mode.
func estimateBodySize(ctx context.Context, src Source) (float64, bool, error) {
	counts := make(map[float64]int)
	sample := src.PageCount()
	if sample > fontSamplePages {
		sample = fontSamplePages
	}

	for page := 0; page < sample; page++ {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		chars, err := src.PageChars(page)
		if err != nil {
			return 0, false, err
		}
		for _, c := range chars {
			if c.Size > 0 {
				counts[math.Round(c.Size*10)/10]++
			}
		}
	}

	if len(counts) == 0 {
		return 0, false, nil
	}

	var body float64
	best := -1
	for size, n := range counts {
		if n > best || (n == best && size < body) {
			best = n
			body = size
		}
	}
	return body, true, nil
}

// headingConfidence scores how heading-like a line is given the body size.
func headingConfidence(line Line, bodySize float64) float64 {
	var conf float64
	ratio := 1.0
	if bodySize > 0 {
		ratio = line.Size / bodySize
	}

	switch {
	case ratio >= 1.5:
		conf += 0.4
	case ratio >= 1.3:
		conf += 0.25
	case ratio >= 1.15:
		conf += 0.1
	}

	font := strings.ToLower(line.Font)
	if strings.Contains(font, "bold") || strings.Contains(font, "heavy") {
		conf += 0.2
	}

	text := strings.TrimSpace(line.Text)
	if isAllUpper(text) && utf8.RuneCountInString(text) > 3 {
		conf += 0.1
	}

	// Headings rarely wrap.
	if utf8.RuneCountInString(text) < 80 {
		conf += 0.1
	}

	if isLikelyHeaderFooter(text) {
		conf -= 0.5
	}

	return math.Max(0.0, conf)
}

// levelFromSize infers nesting depth from the size ratio.
func levelFromSize(size, bodySize float64) int {
	ratio := 1.0
	if bodySize > 0 {
		ratio = size / bodySize
	}
	switch {
	case ratio >= 1.5:
		return 1
	case ratio >= 1.3:
		return 2
	default:
		return 3
	}
}

// isLikelyHeaderFooter flags running headers/footers and other
// non-content lines: bare page numbers, tiny fragments, social handles,
// and URLs.
func isLikelyHeaderFooter(text string) bool {
	text = strings.TrimSpace(text)
	if isDigits(text) {
		return true
	}
	if utf8.RuneCountInString(text) < 5 {
		return true
	}
	if strings.HasPrefix(text, "@") {
		return true
	}
	lower := strings.ToLower(text)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "www.")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
