package pdf

import (
	"context"
	"testing"

	"github.com/deckgen/deckgen/internal/book"
)

// bodyChars lays out n lines of size-10 text so the body size estimate
// has a clear mode.
func bodyChars(startTop float64, n int) []Char {
	var chars []Char
	for i := 0; i < n; i++ {
		top := startTop + float64(i)*14
		chars = append(chars,
			Char{Text: "the quick brown ", Font: "Times-Roman", Size: 10, Top: top, X: 72},
			Char{Text: "fox jumps over", Font: "Times-Roman", Size: 10, Top: top, X: 200},
		)
	}
	return chars
}

func TestDetectByFont(t *testing.T) {
	t.Run("large bold headings accepted", func(t *testing.T) {
		page0 := append([]Char{
			{Text: "INTRODUCTION TO PARSING", Font: "Times-Bold", Size: 16, Top: 60, X: 72},
		}, bodyChars(90, 15)...)
		page1 := append([]Char{
			{Text: "GRAMMARS AND AUTOMATA", Font: "Times-Bold", Size: 16, Top: 60, X: 72},
		}, bodyChars(90, 15)...)

		src := &stubSource{
			pages: []string{wordsPage(100), wordsPage(100)},
			chars: [][]Char{page0, page1},
		}

		got, err := detectByFont(context.Background(), src)
		if err != nil {
			t.Fatal(err)
		}
		if got == nil {
			t.Fatal("expected a result")
		}
		if got.Method != book.MethodPDFFont {
			t.Errorf("method = %s", got.Method)
		}
		if len(got.Sections) != 2 {
			t.Fatalf("sections = %d, want 2", len(got.Sections))
		}
		// ratio 1.6 (0.4) + bold (0.2) + all caps (0.1) + short (0.1)
		if !almostEqual(got.Sections[0].Confidence, 0.8) {
			t.Errorf("confidence = %v, want 0.8", got.Sections[0].Confidence)
		}
		if got.Sections[0].Level != 1 {
			t.Errorf("level = %d, want 1 for ratio >= 1.5", got.Sections[0].Level)
		}
	})

	t.Run("weak signal self-rejects", func(t *testing.T) {
		// Slightly larger regular text scores below the acceptance bar.
		page := append([]Char{
			{Text: "A modest heading here", Font: "Times-Roman", Size: 11.5, Top: 60, X: 72},
		}, bodyChars(90, 15)...)

		src := &stubSource{
			pages: []string{wordsPage(100)},
			chars: [][]Char{page},
		}

		got, err := detectByFont(context.Background(), src)
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Fatalf("expected nil result, got confidence %v", got.Confidence)
		}
	})

	t.Run("no characters yields nothing", func(t *testing.T) {
		src := &stubSource{pages: emptyPages(3)}

		got, err := detectByFont(context.Background(), src)
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Fatal("expected nil result for empty document")
		}
	})
}

func TestEstimateBodySize(t *testing.T) {
	t.Run("mode wins", func(t *testing.T) {
		src := &stubSource{
			pages: []string{""},
			chars: [][]Char{{
				{Text: "a", Size: 10, Top: 10},
				{Text: "b", Size: 10, Top: 10},
				{Text: "c", Size: 10, Top: 10},
				{Text: "H", Size: 18, Top: 30},
			}},
		}
		size, ok, err := estimateBodySize(context.Background(), src)
		if err != nil || !ok {
			t.Fatalf("ok=%v err=%v", ok, err)
		}
		if size != 10 {
			t.Errorf("body size = %v, want 10", size)
		}
	})

	t.Run("ties break toward the smaller size", func(t *testing.T) {
		src := &stubSource{
			pages: []string{""},
			chars: [][]Char{{
				{Text: "a", Size: 10, Top: 10},
				{Text: "b", Size: 10, Top: 10},
				{Text: "c", Size: 12, Top: 30},
				{Text: "d", Size: 12, Top: 30},
			}},
		}
		size, ok, err := estimateBodySize(context.Background(), src)
		if err != nil || !ok {
			t.Fatalf("ok=%v err=%v", ok, err)
		}
		if size != 10 {
			t.Errorf("body size = %v, want the smaller of the tied sizes", size)
		}
	})
}

func TestHeadingConfidence(t *testing.T) {
	cases := []struct {
		name string
		line Line
		want float64
	}{
		{
			name: "body text scores near zero",
			line: Line{Text: "an ordinary paragraph line of prose", Size: 10, Font: "Times-Roman"},
			want: 0.1, // short-line bonus only
		},
		{
			name: "page number is penalized",
			line: Line{Text: "42", Size: 16, Font: "Times-Bold"},
			want: 0.2, // 0.4 ratio + 0.2 bold + 0.1 short - 0.5 header/footer
		},
		{
			name: "url is penalized",
			line: Line{Text: "https://example.com/book", Size: 10, Font: "Times-Roman"},
			want: 0.0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := headingConfidence(tc.line, 10)
			if !almostEqual(got, tc.want) {
				t.Errorf("headingConfidence = %v, want %v", got, tc.want)
			}
		})
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func TestLevelFromSize(t *testing.T) {
	if got := levelFromSize(16, 10); got != 1 {
		t.Errorf("levelFromSize(16, 10) = %d, want 1", got)
	}
	if got := levelFromSize(13.5, 10); got != 2 {
		t.Errorf("levelFromSize(13.5, 10) = %d, want 2", got)
	}
	if got := levelFromSize(11, 10); got != 3 {
		t.Errorf("levelFromSize(11, 10) = %d, want 3", got)
	}
}
