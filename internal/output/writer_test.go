package output

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/deckgen/deckgen/internal/book"
	"github.com/deckgen/deckgen/internal/content"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parsedFixture() *book.ParsedBook {
	return &book.ParsedBook{
		Metadata: book.Metadata{
			Title:   "Testing in Practice",
			Authors: []string{"Jane Example"},
		},
		Chapters: []book.Chapter{
			{
				ID:                   "chapter_001",
				Title:                "Getting Started",
				Index:                0,
				FileName:             "pages_1-5",
				RawContent:           []byte("<html><body><h1>Getting Started</h1><p>First steps.</p></body></html>"),
				ExtractionConfidence: 0.9,
				ExtractionMethod:     book.MethodPDFOutline,
				PageStart:            book.IntPtr(0),
				PageEnd:              book.IntPtr(4),
			},
			{
				ID:                   "chapter_002",
				Title:                "Advanced Topics",
				Index:                1,
				FileName:             "pages_6-10",
				RawContent:           []byte("<html><body><h1>Advanced Topics</h1><p>Going deeper.</p></body></html>"),
				ExtractionConfidence: 0.9,
				ExtractionMethod:     book.MethodPDFOutline,
				PageStart:            book.IntPtr(5),
				PageEnd:              book.IntPtr(9),
			},
		},
		SourceFormat:         "pdf",
		ExtractionMethod:     book.MethodPDFOutline,
		ExtractionConfidence: 0.9,
	}
}

func TestWriteChapterAndLoad(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "/books/test.pdf", testLogger())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	parsed := parsedFixture()
	path, meta, err := w.WriteChapter(parsed.Chapters[0], content.FormatMarkdown)
	if err != nil {
		t.Fatalf("WriteChapter: %v", err)
	}

	if filepath.Base(path) != "chapter_001.json" {
		t.Errorf("path = %q, want chapter_001.json", filepath.Base(path))
	}
	if meta.ChapterID != "chapter_001" || meta.ChapterIndex != 0 {
		t.Errorf("meta = %+v", meta)
	}
	if meta.SourcePath != "/books/test.pdf" {
		t.Errorf("SourcePath = %q", meta.SourcePath)
	}
	if meta.WordCount == 0 {
		t.Error("WordCount should be non-zero")
	}
	if meta.PageStart == nil || *meta.PageStart != 0 {
		t.Errorf("PageStart = %v", meta.PageStart)
	}

	loaded, err := LoadChapter(path)
	if err != nil {
		t.Fatalf("LoadChapter: %v", err)
	}
	if loaded.Format != content.FormatMarkdown {
		t.Errorf("Format = %q", loaded.Format)
	}
	if loaded.Metadata.Title != "Getting Started" {
		t.Errorf("Title = %q", loaded.Metadata.Title)
	}
	if loaded.Content == "" {
		t.Error("Content should not be empty")
	}
}

func TestWriteManifestAndLoad(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "/books/test.pdf", testLogger())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	parsed := parsedFixture()
	var metas []ChapterMetadata
	for _, ch := range parsed.Chapters {
		_, meta, err := w.WriteChapter(ch, content.FormatMarkdown)
		if err != nil {
			t.Fatalf("WriteChapter: %v", err)
		}
		metas = append(metas, meta)
	}

	if _, err := w.WriteManifest(parsed, []int{0, 1}, metas); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	manifest, err := LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if manifest.BookTitle != "Testing in Practice" {
		t.Errorf("BookTitle = %q", manifest.BookTitle)
	}
	if manifest.TotalChapters != 2 || len(manifest.Chapters) != 2 {
		t.Errorf("chapters = %d/%d", manifest.TotalChapters, len(manifest.Chapters))
	}
	if manifest.ExtractionMethod != book.MethodPDFOutline {
		t.Errorf("ExtractionMethod = %q", manifest.ExtractionMethod)
	}
}

func TestFindChapterFilesSkipsCompanions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"chapter_001.json",
		"chapter_002.json",
		"chapter_001_meta.json",
		"manifest.json",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := FindChapterFiles(dir)
	if err != nil {
		t.Fatalf("FindChapterFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want 2 entries", files)
	}
	if ChapterNumber(files[0]) != 1 || ChapterNumber(files[1]) != 2 {
		t.Errorf("chapter numbers = %d, %d", ChapterNumber(files[0]), ChapterNumber(files[1]))
	}
}

func TestChapterNumber(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/out/chapter_011.json", 11},
		{"chapter_001.json", 1},
		{"chapter_001_meta.json", 0},
		{"manifest.json", 0},
	}
	for _, tt := range tests {
		if got := ChapterNumber(tt.path); got != tt.want {
			t.Errorf("ChapterNumber(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}
