package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deckgen/deckgen/internal/book"
)

func testBook() *book.ParsedBook {
	return &book.ParsedBook{
		Metadata: book.Metadata{Title: "Cached Book"},
		Chapters: []book.Chapter{
			{ID: "chapter_001", Title: "One", Index: 0, WordCount: 1200, RawContent: []byte("never cached")},
		},
		SourceFormat:         "pdf",
		ExtractionMethod:     book.MethodPDFOutline,
		ExtractionConfidence: 0.95,
	}
}

func writeSource(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "book.pdf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPutAndGet(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "cache"), nil)
	src := writeSource(t, dir, "pdf bytes")

	if got := m.Get(src); got != nil {
		t.Fatal("unexpected hit on empty cache")
	}

	if err := m.Put(src, testBook()); err != nil {
		t.Fatal(err)
	}

	got := m.Get(src)
	if got == nil {
		t.Fatal("expected a cache hit")
	}
	if got.BookMetadata.Title != "Cached Book" {
		t.Errorf("title = %q", got.BookMetadata.Title)
	}
	if got.ExtractionMethod != book.MethodPDFOutline {
		t.Errorf("method = %s", got.ExtractionMethod)
	}
	if len(got.Chapters) != 1 || got.Chapters[0].WordCount != 1200 {
		t.Errorf("chapters = %+v", got.Chapters)
	}
	if got.Chapters[0].RawContent != nil {
		t.Error("chapter content must not round-trip through the cache")
	}
}

func TestGetRejectsChangedContent(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "cache"), nil)
	src := writeSource(t, dir, "original")

	if err := m.Put(src, testBook()); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(src, []byte("rewritten content"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := m.Get(src); got != nil {
		t.Fatal("stale entry returned after content change")
	}
}

func TestGetSurvivesTouchedFile(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "cache"), nil)
	src := writeSource(t, dir, "stable content")

	if err := m.Put(src, testBook()); err != nil {
		t.Fatal(err)
	}

	// New mtime, identical bytes: the hash check must rescue the entry.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(src, future, future); err != nil {
		t.Fatal(err)
	}

	got := m.Get(src)
	if got == nil {
		t.Fatal("touched but unchanged file invalidated the cache")
	}
	stat, err := os.Stat(src)
	if err != nil {
		t.Fatal(err)
	}
	if got.CacheMetadata.FileMtime != stat.ModTime().UnixNano() {
		t.Error("mtime not refreshed after hash rescue")
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "cache"), nil)
	src := writeSource(t, dir, "content")

	if err := m.Put(src, testBook()); err != nil {
		t.Fatal(err)
	}

	count, err := m.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("cleared = %d, want 1", count)
	}
	if got := m.Get(src); got != nil {
		t.Error("hit after clear")
	}

	// Clearing an empty cache is not an error.
	count, err = m.Clear()
	if err != nil || count != 0 {
		t.Errorf("second clear = (%d, %v), want (0, nil)", count, err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "cache"), nil)

	if entries := m.List(); len(entries) != 0 {
		t.Fatalf("entries = %v, want none", entries)
	}

	src := writeSource(t, dir, "content")
	if err := m.Put(src, testBook()); err != nil {
		t.Fatal(err)
	}

	entries := m.List()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Hash == "" {
		t.Error("hash not populated")
	}
}

func TestCorruptIndexDegradesToEmpty(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, indexFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(root, nil)
	if entries := m.List(); len(entries) != 0 {
		t.Fatalf("entries = %v, want none for corrupt index", entries)
	}
}
