package pdf

import "testing"

func TestBuildLines(t *testing.T) {
	t.Run("groups by vertical position", func(t *testing.T) {
		chars := []Char{
			{Text: "world", Size: 10, Top: 100, X: 120},
			{Text: "Hello ", Size: 10, Top: 100, X: 72},
			{Text: "Next line", Size: 10, Top: 114, X: 72},
		}

		lines := buildLines(chars)
		if len(lines) != 2 {
			t.Fatalf("lines = %d, want 2", len(lines))
		}
		if lines[0].Text != "Hello world" {
			t.Errorf("first line = %q, want x-ordered concatenation", lines[0].Text)
		}
		if lines[1].Text != "Next line" {
			t.Errorf("second line = %q", lines[1].Text)
		}
	})

	t.Run("small vertical jitter stays on one line", func(t *testing.T) {
		chars := []Char{
			{Text: "base", Size: 10, Top: 100, X: 72},
			{Text: "line", Size: 10, Top: 103, X: 110},
		}

		lines := buildLines(chars)
		if len(lines) != 1 {
			t.Fatalf("lines = %d, want 1", len(lines))
		}
	})

	t.Run("line takes size and font of largest char", func(t *testing.T) {
		chars := []Char{
			{Text: "D", Font: "Times-Bold", Size: 24, Top: 100, X: 72},
			{Text: "rop cap", Font: "Times-Roman", Size: 10, Top: 101, X: 90},
		}

		lines := buildLines(chars)
		if len(lines) != 1 {
			t.Fatalf("lines = %d, want 1", len(lines))
		}
		if lines[0].Size != 24 || lines[0].Font != "Times-Bold" {
			t.Errorf("line size/font = %v/%q, want 24/Times-Bold", lines[0].Size, lines[0].Font)
		}
	})

	t.Run("whitespace-only lines dropped", func(t *testing.T) {
		chars := []Char{
			{Text: "   ", Size: 10, Top: 100, X: 72},
			{Text: "real", Size: 10, Top: 120, X: 72},
		}

		lines := buildLines(chars)
		if len(lines) != 1 || lines[0].Text != "real" {
			t.Fatalf("lines = %v", lines)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := buildLines(nil); got != nil {
			t.Fatalf("buildLines(nil) = %v, want nil", got)
		}
	})
}
