package pdf

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/deckgen/deckgen/internal/book"
)

const (
	// layoutSectionThreshold is the minimum per-line score to become a
	// candidate. The layer has no self-rejection bar beyond this; the
	// orchestrator's threshold does the rest.
	layoutSectionThreshold = 0.35

	// layoutConfidenceCap bounds per-section confidence. Visual cues are
	// the weakest signal, so the cap sits well below the other layers.
	layoutConfidenceCap = 0.50
)

// detectByLayout scores lines on purely visual cues: whitespace above,
// left-margin alignment, line length, page position, and a size drop on
// the following line. Used when every content-aware signal has failed.
func detectByLayout(ctx context.Context, src Source) (*book.DetectionResult, error) {
	var sections []book.Section

	for page := 0; page < src.PageCount(); page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chars, err := src.PageChars(page)
		if err != nil {
			return nil, err
		}
		lines := buildLines(chars)
		width, height := src.PageSize(page)

		for i, line := range lines {
			text := strings.TrimSpace(line.Text)
			if utf8.RuneCountInString(text) < 3 {
				continue
			}

			var conf float64

			// Vertical whitespace before the line.
			if i > 0 {
				gap := line.Top - lines[i-1].Bottom
				switch {
				case gap > 40:
					conf += 0.25
				case gap > 25:
					conf += 0.15
				}
			}

			// Near the left margin.
			if line.X0 < width*0.15 {
				conf += 0.1
			}

			// Headings rarely wrap.
			if utf8.RuneCountInString(text) < 60 {
				conf += 0.1
			}

			// Near the top of the page.
			if line.Top < height*0.2 {
				conf += 0.1
			}

			// Followed by noticeably smaller text.
			if i < len(lines)-1 && lines[i+1].Size < line.Size*0.9 {
				conf += 0.15
			}

			// Page numbers and footer-zone lines are never headings.
			if isPageNumber(text) || line.Top > height*0.9 {
				conf = 0.0
			}

			if conf >= layoutSectionThreshold {
				sections = append(sections, book.Section{
					Title:      text,
					PageStart:  book.IntPtr(page),
					Level:      1,
					Confidence: math.Min(conf, layoutConfidenceCap),
				})
			}
		}
	}

	sections = filterNoise(sections)
	if len(sections) == 0 {
		return nil, nil
	}

	return &book.DetectionResult{
		Sections:   sections,
		Method:     book.MethodPDFLayout,
		Confidence: book.AvgConfidence(sections),
	}, nil
}
