// Package output writes parsed chapters and the book manifest to an
// output directory as JSON, ready for flashcard generation.
package output

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/deckgen/deckgen/internal/book"
	"github.com/deckgen/deckgen/internal/content"
)

// ChapterMetadata accompanies extracted chapter content.
type ChapterMetadata struct {
	ChapterID            string                `json:"chapter_id"`
	ChapterIndex         int                   `json:"chapter_index"`
	Title                string                `json:"title"`
	SourceFile           string                `json:"source_file"`
	SourcePath           string                `json:"source_path"`
	ExtractedAt          time.Time             `json:"extracted_at"`
	WordCount            int                   `json:"word_count"`
	CharacterCount       int                   `json:"character_count"`
	ParagraphCount       int                   `json:"paragraph_count"`
	PageStart            *int                  `json:"page_start,omitempty"`
	PageEnd              *int                  `json:"page_end,omitempty"`
	ExtractionConfidence float64               `json:"extraction_confidence"`
	ExtractionMethod     book.ExtractionMethod `json:"extraction_method"`
}

// ChapterOutput is one chapter_NNN.json file.
type ChapterOutput struct {
	Metadata ChapterMetadata `json:"metadata"`
	Content  string          `json:"content"`
	Format   content.Format  `json:"format"`
}

// BookOutput is the manifest.json file describing an extraction run.
type BookOutput struct {
	BookTitle            string                `json:"book_title"`
	Authors              []string              `json:"authors"`
	TotalChapters        int                   `json:"total_chapters"`
	ExtractedChapters    []int                 `json:"extracted_chapters"`
	OutputDirectory      string                `json:"output_directory"`
	CreatedAt            time.Time             `json:"created_at"`
	Chapters             []ChapterMetadata     `json:"chapters"`
	SourceFormat         string                `json:"source_format"`
	ExtractionMethod     book.ExtractionMethod `json:"extraction_method"`
	ExtractionConfidence float64               `json:"extraction_confidence"`
	Warnings             []string              `json:"warnings,omitempty"`
}

// Writer writes chapter and manifest files for one book.
type Writer struct {
	dir        string
	sourcePath string
	processor  *content.Processor
	logger     *slog.Logger
}

// NewWriter creates the output directory and returns a Writer.
func NewWriter(dir, sourcePath string, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{
		dir:        dir,
		sourcePath: sourcePath,
		processor:  content.NewProcessor(),
		logger:     logger,
	}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// WriteChapter processes and writes one chapter as chapter_NNN.json,
// numbered from the 1-based chapter index.
func (w *Writer) WriteChapter(ch book.Chapter, format content.Format) (string, ChapterMetadata, error) {
	processed, err := w.processor.Process(ch.RawContent, format)
	if err != nil {
		return "", ChapterMetadata{}, fmt.Errorf("failed to process chapter %s: %w", ch.ID, err)
	}
	stats := w.processor.GetStats(processed)

	meta := ChapterMetadata{
		ChapterID:            ch.ID,
		ChapterIndex:         ch.Index,
		Title:                ch.Title,
		SourceFile:           ch.FileName,
		SourcePath:           w.sourcePath,
		ExtractedAt:          time.Now().UTC(),
		WordCount:            stats.WordCount,
		CharacterCount:       stats.CharacterCount,
		ParagraphCount:       stats.ParagraphCount,
		PageStart:            ch.PageStart,
		PageEnd:              ch.PageEnd,
		ExtractionConfidence: ch.ExtractionConfidence,
		ExtractionMethod:     ch.ExtractionMethod,
	}

	out := ChapterOutput{Metadata: meta, Content: processed, Format: format}
	path := filepath.Join(w.dir, ChapterFileName(ch.Index))
	if err := writeJSON(path, out); err != nil {
		return "", ChapterMetadata{}, err
	}

	w.logger.Debug("wrote chapter", "path", path, "words", stats.WordCount)
	return path, meta, nil
}

// WriteManifest writes manifest.json for the extraction run.
func (w *Writer) WriteManifest(parsed *book.ParsedBook, extracted []int, metas []ChapterMetadata) (string, error) {
	manifest := BookOutput{
		BookTitle:            parsed.Metadata.Title,
		Authors:              parsed.Metadata.Authors,
		TotalChapters:        len(parsed.Chapters),
		ExtractedChapters:    extracted,
		OutputDirectory:      w.dir,
		CreatedAt:            time.Now().UTC(),
		Chapters:             metas,
		SourceFormat:         parsed.SourceFormat,
		ExtractionMethod:     parsed.ExtractionMethod,
		ExtractionConfidence: parsed.ExtractionConfidence,
		Warnings:             parsed.Warnings,
	}

	path := filepath.Join(w.dir, "manifest.json")
	if err := writeJSON(path, manifest); err != nil {
		return "", err
	}
	return path, nil
}

// ChapterFileName returns the file name for a 0-based chapter index.
func ChapterFileName(index int) string {
	return fmt.Sprintf("chapter_%03d.json", index+1)
}

// LoadChapter reads a chapter_NNN.json file.
func LoadChapter(path string) (*ChapterOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chapter file: %w", err)
	}
	var out ChapterOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse chapter file %s: %w", path, err)
	}
	return &out, nil
}

// LoadManifest reads manifest.json from dir.
func LoadManifest(dir string) (*BookOutput, error) {
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var manifest BookOutput
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &manifest, nil
}

var chapterFileRe = regexp.MustCompile(`^chapter_(\d+)\.json$`)

// FindChapterFiles lists chapter_NNN.json files in dir, sorted by name.
// Companion files such as chapter_001_meta.json are excluded.
func FindChapterFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "chapter_*.json"))
	if err != nil {
		return nil, err
	}
	files := matches[:0]
	for _, m := range matches {
		if chapterFileRe.MatchString(filepath.Base(m)) {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// ChapterNumber extracts the 1-based chapter number from a chapter file
// path. Returns 0 when the name does not match.
func ChapterNumber(path string) int {
	m := chapterFileRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
