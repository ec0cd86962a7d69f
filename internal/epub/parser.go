// Package epub parses EPUB containers into the unified book structure.
// EPUBs declare their structure explicitly, so extraction is exact and
// carries full confidence; the heuristics live in the PDF path.
package epub

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	goepub "github.com/taylorskalyo/goreader/epub"

	"github.com/deckgen/deckgen/internal/book"
)

// nativeConfidence marks container-declared structure.
const nativeConfidence = 1.0

// Parser reads one EPUB container.
type Parser struct {
	path   string
	rc     *goepub.ReadCloser
	rf     *goepub.Rootfile
	logger *slog.Logger
}

// NewParser opens the container at path. A missing or malformed
// container is the only hard failure.
func NewParser(path string, logger *slog.Logger) (*Parser, error) {
	rc, err := goepub.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	if len(rc.Rootfiles) == 0 {
		rc.Close()
		return nil, fmt.Errorf("no rootfiles in epub container")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{path: path, rc: rc, rf: rc.Rootfiles[0], logger: logger}, nil
}

// Close releases the underlying container.
func (p *Parser) Close() error {
	p.rc.Close()
	return nil
}

// Metadata extracts book-level metadata from the package document.
func (p *Parser) Metadata() book.Metadata {
	md := p.rf.Metadata

	title := strings.TrimSpace(md.Title)
	if title == "" {
		title = strings.TrimSuffix(path.Base(p.path), path.Ext(p.path))
	}

	var authors []string
	if creator := strings.TrimSpace(md.Creator); creator != "" {
		authors = append(authors, creator)
	}

	return book.Metadata{
		Title:     title,
		Authors:   authors,
		Language:  strings.TrimSpace(md.Language),
		Publisher: strings.TrimSpace(md.Publisher),
	}
}

// Parse extracts metadata, the navigation TOC, and every spine document
// as a chapter, in reading order.
func (p *Parser) Parse(ctx context.Context) (*book.ParsedBook, error) {
	var warnings []string

	toc := p.parseTOC()
	if toc == nil {
		warnings = append(warnings, "No navigation document found. Table of contents unavailable.")
	}

	chapters, spine, err := p.parseChapters(ctx, tocTitleMap(toc))
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("epub contains no readable documents")
	}

	return &book.ParsedBook{
		Metadata:             p.Metadata(),
		TOC:                  toc,
		Chapters:             chapters,
		SpineOrder:           spine,
		SourceFormat:         "epub",
		ExtractionMethod:     book.MethodEpubNative,
		ExtractionConfidence: nativeConfidence,
		Warnings:             warnings,
	}, nil
}

// parseTOC reads the NCX navigation document. TOC absence is not fatal;
// spine order alone still yields usable chapters.
func (p *Parser) parseTOC() []book.TOCEntry {
	data, err := readNCX(p.path, p.rf)
	if err != nil {
		p.logger.Warn("no navigation document", "path", p.path, "error", err)
		return nil
	}
	toc, err := parseNCX(data)
	if err != nil {
		p.logger.Warn("malformed navigation document", "path", p.path, "error", err)
		return nil
	}
	return toc
}

// parseChapters walks the spine in reading order. Chapter titles come
// from the TOC when the target matches, then from the chapter's own
// heading markup, then from the file name.
func (p *Parser) parseChapters(ctx context.Context, titles map[string]string) ([]book.Chapter, []string, error) {
	var chapters []book.Chapter
	var spine []string

	for _, ref := range p.rf.Spine.Itemrefs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		spine = append(spine, ref.IDREF)
		if ref.Item == nil {
			p.logger.Warn("spine reference without manifest item", "idref", ref.IDREF)
			continue
		}

		r, err := ref.Item.Open()
		if err != nil {
			p.logger.Warn("unreadable spine document", "href", ref.Item.HREF, "error", err)
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			p.logger.Warn("unreadable spine document", "href", ref.Item.HREF, "error", err)
			continue
		}

		index := len(chapters)
		chapters = append(chapters, book.Chapter{
			ID:                   chapterID(ref.Item.ID, index),
			Title:                chapterTitle(titles, ref.Item.HREF, data, index),
			Index:                index,
			FileName:             ref.Item.HREF,
			RawContent:           data,
			WordCount:            len(strings.Fields(extractText(data))),
			HasImages:            hasImages(data),
			ExtractionConfidence: nativeConfidence,
			ExtractionMethod:     book.MethodEpubNative,
			Level:                1,
		})
	}
	return chapters, spine, nil
}

func chapterID(itemID string, index int) string {
	if itemID != "" {
		return itemID
	}
	return fmt.Sprintf("chapter_%03d", index+1)
}

func chapterTitle(titles map[string]string, href string, data []byte, index int) string {
	if t, ok := titles[href]; ok {
		return t
	}
	if t, ok := titles[path.Base(href)]; ok {
		return t
	}
	if t := extractTitle(data); t != "" {
		return t
	}
	if href != "" {
		return href
	}
	return fmt.Sprintf("Section %d", index+1)
}
