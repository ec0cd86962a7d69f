package pdf

import (
	"context"
	"testing"

	"github.com/deckgen/deckgen/internal/book"
)

func TestValidateDistribution(t *testing.T) {
	ctx := context.Background()
	th := DefaultThresholds()

	t.Run("balanced sections are healthy", func(t *testing.T) {
		src := &stubSource{pages: []string{
			wordsPage(300), wordsPage(280), wordsPage(310), wordsPage(290),
		}}
		valid, err := validateDistribution(ctx, src, sectionsAt([]int{0, 1, 2, 3}, 0.9), th)
		if err != nil {
			t.Fatal(err)
		}
		if !valid {
			t.Error("balanced distribution flagged as suspicious")
		}
	})

	t.Run("title-page lock-on is rejected", func(t *testing.T) {
		src := &stubSource{pages: []string{
			wordsPage(2000), wordsPage(3), wordsPage(4), wordsPage(2), wordsPage(5),
		}}
		valid, err := validateDistribution(ctx, src, sectionsAt([]int{0, 1, 2, 3, 4}, 0.9), th)
		if err != nil {
			t.Fatal(err)
		}
		if valid {
			t.Error("skewed distribution passed validation")
		}
	})

	t.Run("fewer than three sections always pass", func(t *testing.T) {
		src := &stubSource{pages: []string{wordsPage(2000), wordsPage(1)}}
		valid, err := validateDistribution(ctx, src, sectionsAt([]int{0, 1}, 0.9), th)
		if err != nil {
			t.Fatal(err)
		}
		if !valid {
			t.Error("two sections should never be rejected")
		}
	})

	t.Run("empty document passes", func(t *testing.T) {
		src := &stubSource{pages: emptyPages(4)}
		valid, err := validateDistribution(ctx, src, sectionsAt([]int{0, 1, 2, 3}, 0.9), th)
		if err != nil {
			t.Fatal(err)
		}
		if !valid {
			t.Error("zero total words should not be judged")
		}
	})

	t.Run("explicit page ends are honored", func(t *testing.T) {
		src := &stubSource{pages: []string{
			wordsPage(200), wordsPage(200), wordsPage(200), wordsPage(200), wordsPage(200), wordsPage(200),
		}}
		sections := []book.Section{
			{Title: "A", PageStart: book.IntPtr(0), PageEnd: book.IntPtr(1), Confidence: 0.9},
			{Title: "B", PageStart: book.IntPtr(2), PageEnd: book.IntPtr(3), Confidence: 0.9},
			{Title: "C", PageStart: book.IntPtr(4), PageEnd: book.IntPtr(5), Confidence: 0.9},
		}
		valid, err := validateDistribution(ctx, src, sections, th)
		if err != nil {
			t.Fatal(err)
		}
		if !valid {
			t.Error("evenly chunked sections flagged as suspicious")
		}
	})
}

func TestChunkByPages(t *testing.T) {
	t.Run("exact multiple", func(t *testing.T) {
		got := chunkByPages(20, 10)
		if len(got.Sections) != 2 {
			t.Fatalf("sections = %d, want 2", len(got.Sections))
		}
		if *got.Sections[1].PageStart != 10 || *got.Sections[1].PageEnd != 19 {
			t.Errorf("second chunk = [%d, %d], want [10, 19]",
				*got.Sections[1].PageStart, *got.Sections[1].PageEnd)
		}
	})

	t.Run("remainder becomes short final chunk", func(t *testing.T) {
		got := chunkByPages(7, 3)
		if len(got.Sections) != 3 {
			t.Fatalf("sections = %d, want 3", len(got.Sections))
		}
		last := got.Sections[2]
		if *last.PageStart != 6 || *last.PageEnd != 6 {
			t.Errorf("final chunk = [%d, %d], want [6, 6]", *last.PageStart, *last.PageEnd)
		}
		if last.Title != "Section 3 (Pages 7-7)" {
			t.Errorf("final chunk title = %q", last.Title)
		}
	})

	t.Run("invalid chunk size falls back to default", func(t *testing.T) {
		got := chunkByPages(10, 0)
		if len(got.Sections) != 1 {
			t.Fatalf("sections = %d, want 1", len(got.Sections))
		}
	})
}
