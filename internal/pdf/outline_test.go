package pdf

import (
	"context"
	"testing"
)

func TestDetectByOutline(t *testing.T) {
	t.Run("nested bookmarks flatten with levels", func(t *testing.T) {
		src := &stubSource{
			pages: emptyPages(20),
			bookmarks: []Bookmark{
				{Title: "Part I", Page: 1, Kids: []Bookmark{
					{Title: "Chapter 1", Page: 2},
					{Title: "Chapter 2", Page: 8},
				}},
				{Title: "Part II", Page: 12},
			},
		}

		got, err := detectByOutline(context.Background(), src)
		if err != nil {
			t.Fatal(err)
		}
		if got == nil {
			t.Fatal("expected a result")
		}
		if len(got.Sections) != 4 {
			t.Fatalf("sections = %d, want 4", len(got.Sections))
		}
		if got.Sections[0].Level != 1 || got.Sections[1].Level != 2 {
			t.Errorf("levels = %d, %d, want 1, 2", got.Sections[0].Level, got.Sections[1].Level)
		}
		// Bookmark pages are 1-based; sections are 0-based.
		if *got.Sections[1].PageStart != 1 {
			t.Errorf("page = %d, want 1", *got.Sections[1].PageStart)
		}
	})

	t.Run("unresolvable destinations skipped", func(t *testing.T) {
		src := &stubSource{
			pages: emptyPages(10),
			bookmarks: []Bookmark{
				{Title: "Valid", Page: 1},
				{Title: "Broken", Page: 0},
				{Title: "", Page: 3},
			},
		}

		got, err := detectByOutline(context.Background(), src)
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Fatalf("one resolvable entry should not count as structure, got %d sections", len(got.Sections))
		}
	})

	t.Run("no outline yields nothing", func(t *testing.T) {
		src := &stubSource{pages: emptyPages(5)}

		got, err := detectByOutline(context.Background(), src)
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Fatal("expected nil result")
		}
	})
}
