package pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ledong "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"github.com/deckgen/deckgen/internal/book"
)

// ErrEmptyDocument indicates a document that loaded but contains no pages.
var ErrEmptyDocument = errors.New("document has no pages")

// Document is the file-backed Source implementation. It wraps a
// ledongthuc/pdf reader for text and character metadata and uses pdfcpu
// for the bookmark tree. Page texts are extracted lazily and memoized so
// the cascade layers and the distribution validator share one extraction
// per page.
type Document struct {
	path      string
	file      *os.File
	reader    *ledong.Reader
	fonts     map[string]*ledong.Font
	pageTexts []*string

	bookmarks       []Bookmark
	bookmarksLoaded bool
}

// OpenDocument opens a PDF file for structure detection. Unreadable,
// encrypted, or corrupted documents fail here; detection layers past this
// point degrade instead of failing.
func OpenDocument(path string) (*Document, error) {
	f, r, err := ledong.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", filepath.Base(path), err)
	}

	return &Document{
		path:      path,
		file:      f,
		reader:    r,
		fonts:     make(map[string]*ledong.Font),
		pageTexts: make([]*string, r.NumPage()),
	}, nil
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	return d.file.Close()
}

// Path returns the document's file path.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of a 0-based page. Extraction is
// memoized. Malformed content streams yield empty text rather than an
// error; the underlying library panics on some malformed objects, which
// is recovered here.
func (d *Document) PageText(page int) (text string, err error) {
	if page < 0 || page >= d.PageCount() {
		return "", fmt.Errorf("page %d out of range [0,%d)", page, d.PageCount())
	}
	if d.pageTexts[page] != nil {
		return *d.pageTexts[page], nil
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = nil
		}
		d.pageTexts[page] = &text
	}()

	p := d.reader.Page(page + 1)
	if p.V.IsNull() {
		return "", nil
	}
	text, err = p.GetPlainText(d.fonts)
	if err != nil {
		// Treat per-page extraction failures as empty pages; only
		// document-level open failures are fatal.
		return "", nil
	}
	return text, nil
}

// PageChars returns positioned characters for a 0-based page. The Y axis
// is converted from PDF user space (origin bottom-left) to top-down
// distance so layout heuristics can reason about "top of page" directly.
func (d *Document) PageChars(page int) (chars []Char, err error) {
	if page < 0 || page >= d.PageCount() {
		return nil, fmt.Errorf("page %d out of range [0,%d)", page, d.PageCount())
	}

	defer func() {
		if r := recover(); r != nil {
			chars = nil
			err = nil
		}
	}()

	p := d.reader.Page(page + 1)
	if p.V.IsNull() {
		return nil, nil
	}
	_, height := d.PageSize(page)

	content := p.Content()
	chars = make([]Char, 0, len(content.Text))
	for _, t := range content.Text {
		chars = append(chars, Char{
			Text: t.S,
			Font: t.Font,
			Size: t.FontSize,
			Top:  height - t.Y,
			X:    t.X,
		})
	}
	return chars, nil
}

// PageSize returns the page dimensions in points, walking the page tree
// for an inherited MediaBox. Falls back to US Letter when absent.
func (d *Document) PageSize(page int) (width, height float64) {
	width, height = 612, 792
	if page < 0 || page >= d.PageCount() {
		return width, height
	}

	defer func() { recover() }()

	v := d.reader.Page(page + 1).V
	for !v.IsNull() {
		if mb := v.Key("MediaBox"); mb.Len() == 4 {
			w := mb.Index(2).Float64() - mb.Index(0).Float64()
			h := mb.Index(3).Float64() - mb.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
			return width, height
		}
		v = v.Key("Parent")
	}
	return width, height
}

// Bookmarks returns the document's outline tree via pdfcpu, memoized.
// A document without an outline returns an empty slice and no error.
func (d *Document) Bookmarks() ([]Bookmark, error) {
	if d.bookmarksLoaded {
		return d.bookmarks, nil
	}

	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen PDF for outline: %w", err)
	}
	defer f.Close()

	bms, err := api.Bookmarks(f, nil)
	if err != nil {
		// pdfcpu reports "no bookmarks" as an error; treat any outline
		// read failure as "no outline" so the cascade can move on.
		d.bookmarksLoaded = true
		return nil, nil
	}

	d.bookmarks = convertBookmarks(bms)
	d.bookmarksLoaded = true
	return d.bookmarks, nil
}

func convertBookmarks(bms []pdfcpu.Bookmark) []Bookmark {
	out := make([]Bookmark, 0, len(bms))
	for _, bm := range bms {
		out = append(out, Bookmark{
			Title: bm.Title,
			Page:  bm.PageFrom,
			Kids:  convertBookmarks(bm.Kids),
		})
	}
	return out
}

// Metadata extracts book-level metadata from the PDF Info dictionary,
// falling back to the file name for the title.
func (d *Document) Metadata() book.Metadata {
	meta := book.Metadata{}

	func() {
		defer func() { recover() }()
		info := d.reader.Trailer().Key("Info")
		if info.IsNull() {
			return
		}
		meta.Title = strings.TrimSpace(info.Key("Title").Text())
		meta.Publisher = strings.TrimSpace(info.Key("Producer").Text())
		meta.PublicationDate = strings.TrimSpace(info.Key("CreationDate").Text())
		if author := strings.TrimSpace(info.Key("Author").Text()); author != "" {
			meta.Authors = splitAuthors(author)
		}
	}()

	if meta.Title == "" {
		base := filepath.Base(d.path)
		meta.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return meta
}

func splitAuthors(s string) []string {
	sep := ""
	switch {
	case strings.Contains(s, ","):
		sep = ","
	case strings.Contains(s, ";"):
		sep = ";"
	default:
		return []string{s}
	}

	parts := strings.Split(s, sep)
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			authors = append(authors, p)
		}
	}
	return authors
}
