package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/deckgen/deckgen/internal/book"
)

func fixedLayer(name string, method book.ExtractionMethod, result *book.DetectionResult, minConf float64, earlyExit bool, calls *int) Layer {
	return Layer{
		Name:          name,
		Method:        method,
		MinConfidence: minConf,
		EarlyExit:     earlyExit,
		Detect: func(ctx context.Context, src Source) (*book.DetectionResult, error) {
			if calls != nil {
				*calls++
			}
			return result, nil
		},
	}
}

func sectionsAt(pages []int, conf float64) []book.Section {
	out := make([]book.Section, 0, len(pages))
	for i, p := range pages {
		out = append(out, book.Section{
			Title:      "Heading " + string(rune('A'+i)),
			PageStart:  book.IntPtr(p),
			Level:      1,
			Confidence: conf,
		})
	}
	return out
}

func TestCascadeEarlyExit(t *testing.T) {
	src := &stubSource{pages: []string{wordsPage(200), wordsPage(200), wordsPage(200), wordsPage(200)}}

	accepted := &book.DetectionResult{
		Sections:   sectionsAt([]int{0, 2}, 0.95),
		Method:     book.MethodPDFOutline,
		Confidence: 0.95,
	}

	var laterCalls int
	c := NewCascade(WithLayers([]Layer{
		fixedLayer("first", book.MethodPDFOutline, accepted, 0.90, true, nil),
		fixedLayer("second", book.MethodPDFFont, nil, 0.70, true, &laterCalls),
	}))

	got := c.DetectSections(context.Background(), src)
	if got.Method != book.MethodPDFOutline {
		t.Fatalf("expected outline result, got %s", got.Method)
	}
	if laterCalls != 0 {
		t.Errorf("later layer ran %d times after early exit", laterCalls)
	}
}

func TestCascadeBelowThresholdSkipped(t *testing.T) {
	src := &stubSource{pages: []string{wordsPage(200), wordsPage(200)}}

	weak := &book.DetectionResult{
		Sections:   sectionsAt([]int{0, 1}, 0.60),
		Method:     book.MethodPDFFont,
		Confidence: 0.60,
	}

	c := NewCascade(
		WithLayers([]Layer{fixedLayer("font", book.MethodPDFFont, weak, 0.70, true, nil)}),
		WithPagesPerChunk(1),
	)

	got := c.DetectSections(context.Background(), src)
	if got.Method != book.MethodPDFPageChunks {
		t.Fatalf("expected fallback chunking, got %s", got.Method)
	}
}

func TestCascadeRecordsNonEarlyExitResult(t *testing.T) {
	src := &stubSource{pages: []string{wordsPage(200), wordsPage(200)}}

	layoutResult := &book.DetectionResult{
		Sections:   sectionsAt([]int{0, 1}, 0.40),
		Method:     book.MethodPDFLayout,
		Confidence: 0.40,
	}

	c := NewCascade(WithLayers([]Layer{
		fixedLayer("layout", book.MethodPDFLayout, layoutResult, 0.35, false, nil),
	}))

	got := c.DetectSections(context.Background(), src)
	if got.Method != book.MethodPDFLayout {
		t.Fatalf("expected recorded layout result, got %s", got.Method)
	}
	if got.Confidence != 0.40 {
		t.Errorf("confidence = %v, want 0.40", got.Confidence)
	}
}

func TestCascadeDistributionRejection(t *testing.T) {
	// One page holds nearly every word; the rest are near-empty. A high
	// per-section confidence must not survive that distribution.
	pages := []string{wordsPage(1000), wordsPage(5), wordsPage(5), wordsPage(5), wordsPage(5)}
	src := &stubSource{pages: pages}

	skewed := &book.DetectionResult{
		Sections:   sectionsAt([]int{0, 1, 2, 3, 4}, 0.95),
		Method:     book.MethodPDFOutline,
		Confidence: 0.95,
	}

	c := NewCascade(WithLayers([]Layer{
		fixedLayer("outline", book.MethodPDFOutline, skewed, 0.90, true, nil),
	}))

	got := c.DetectSections(context.Background(), src)
	if got.Method != book.MethodPDFPageChunks {
		t.Fatalf("expected distribution rejection to fall through to chunking, got %s", got.Method)
	}
}

func TestCascadeFallbackGuarantee(t *testing.T) {
	src := &stubSource{pages: emptyPages(25)}

	got := NewCascade().DetectSections(context.Background(), src)
	if got.Method != book.MethodPDFPageChunks {
		t.Fatalf("method = %s, want %s", got.Method, book.MethodPDFPageChunks)
	}
	if got.Confidence != chunkConfidence {
		t.Errorf("confidence = %v, want %v", got.Confidence, chunkConfidence)
	}
	if len(got.Sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(got.Sections))
	}
	last := got.Sections[2]
	if last.Title != "Section 3 (Pages 21-25)" {
		t.Errorf("last chunk title = %q", last.Title)
	}
	if len(got.Warnings) == 0 {
		t.Error("expected a chunking warning")
	}
}

func TestCascadeRecoversLayerPanic(t *testing.T) {
	src := &stubSource{pages: emptyPages(5)}

	panicking := Layer{
		Name:          "boom",
		Method:        book.MethodPDFFont,
		MinConfidence: 0.5,
		EarlyExit:     true,
		Detect: func(ctx context.Context, src Source) (*book.DetectionResult, error) {
			panic("malformed xref")
		},
	}

	c := NewCascade(WithLayers([]Layer{panicking}))
	got := c.DetectSections(context.Background(), src)
	if got.Method != book.MethodPDFPageChunks {
		t.Fatalf("expected fallback after panic, got %s", got.Method)
	}
}

func TestCascadeLayerErrorSkipped(t *testing.T) {
	src := &stubSource{pages: emptyPages(5)}

	failing := Layer{
		Name:          "broken",
		Method:        book.MethodPDFOutline,
		MinConfidence: 0.9,
		EarlyExit:     true,
		Detect: func(ctx context.Context, src Source) (*book.DetectionResult, error) {
			return nil, errors.New("unresolvable destination")
		},
	}

	c := NewCascade(WithLayers([]Layer{failing}))
	got := c.DetectSections(context.Background(), src)
	if got.Method != book.MethodPDFPageChunks {
		t.Fatalf("expected fallback after layer error, got %s", got.Method)
	}
}
