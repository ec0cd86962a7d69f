// Package content converts raw chapter markup into model-friendly
// formats. Chapters arrive as XHTML (EPUB) or plain text (PDF); both
// pass through the same processor so downstream consumers never care
// about the source format.
package content

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Format selects the processor's output representation.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatHTML     Format = "html"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatMarkdown:
		return FormatMarkdown, nil
	case FormatText:
		return FormatText, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (markdown, text, html)", s)
	}
}

// strippedTags are removed before any conversion: boilerplate that
// pollutes generated flashcards with navigation noise.
var strippedTags = []string{"script", "style", "nav", "header", "footer", "aside"}

// Stats summarizes processed content.
type Stats struct {
	WordCount      int `json:"word_count"`
	CharacterCount int `json:"character_count"`
	ParagraphCount int `json:"paragraph_count"`
}

// Processor converts chapter markup. Safe for concurrent use.
type Processor struct {
	converter *md.Converter
}

// NewProcessor builds a processor with ATX headings, dash bullets, and
// links reduced to their text. Those choices keep the markdown close to
// what a prompt can use verbatim.
func NewProcessor() *Processor {
	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		BulletListMarker: "-",
	})
	conv.Remove(strippedTags...)
	conv.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, _ *goquery.Selection, _ *md.Options) *string {
			return md.String(content)
		},
	})
	return &Processor{converter: conv}
}

// Process converts chapter bytes into the requested format.
func (p *Processor) Process(raw []byte, format Format) (string, error) {
	switch format {
	case FormatMarkdown:
		return p.toMarkdown(raw)
	case FormatText:
		return p.toText(raw)
	case FormatHTML:
		return p.toHTML(raw)
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

func (p *Processor) toMarkdown(raw []byte) (string, error) {
	out, err := p.converter.ConvertString(string(raw))
	if err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}
	return collapseBlankLines(out), nil
}

// blockTags are the elements plain-text extraction treats as paragraphs.
var blockTags = map[string]struct{}{
	"p": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {}, "li": {},
}

// toText extracts paragraph-preserving plain text: one block element per
// paragraph, joined with blank lines. Input that carries no block markup
// (PDF chapters) passes through with whitespace normalized per line.
func (p *Processor) toText(raw []byte) (string, error) {
	doc, err := html.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}

	var paragraphs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, ok := blockTags[n.Data]; ok {
				if text := strings.Join(strings.Fields(textOf(n)), " "); text != "" {
					paragraphs = append(paragraphs, text)
				}
				return
			}
			if _, ok := strippedTagSet[n.Data]; ok {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(paragraphs) == 0 {
		return plainTextFallback(string(raw)), nil
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

// toHTML re-renders the body with boilerplate elements removed.
func (p *Processor) toHTML(raw []byte) (string, error) {
	doc, err := html.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}

	removeTags(doc)

	body := findBody(doc)
	if body == nil {
		body = doc
	}

	var sb strings.Builder
	if err := html.Render(&sb, body); err != nil {
		return "", fmt.Errorf("failed to render markup: %w", err)
	}
	return sb.String(), nil
}

// GetStats computes word, character, and paragraph counts over
// processed content. Paragraphs are blank-line separated blocks.
func (p *Processor) GetStats(content string) Stats {
	paragraphs := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			paragraphs++
		}
	}
	return Stats{
		WordCount:      len(strings.Fields(content)),
		CharacterCount: len(content),
		ParagraphCount: paragraphs,
	}
}

var strippedTagSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(strippedTags))
	for _, t := range strippedTags {
		m[t] = struct{}{}
	}
	return m
}()

func removeTags(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode {
			if _, ok := strippedTagSet[c.Data]; ok {
				n.RemoveChild(c)
				continue
			}
		}
		removeTags(c)
	}
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// plainTextFallback normalizes markup-free input: trims each line and
// keeps single blank lines as paragraph breaks.
func plainTextFallback(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.Join(strings.Fields(lines[i]), " ")
	}
	return collapseBlankLines(strings.Join(lines, "\n"))
}

// collapseBlankLines trims trailing space per line and squeezes runs of
// blank lines down to one.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	prevBlank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		blank := strings.TrimSpace(line) == ""
		if blank && prevBlank {
			continue
		}
		out = append(out, line)
		prevBlank = blank
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
