package epub

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// extractText returns the whitespace-normalized text content of an
// XHTML document. Unparseable input yields an empty string; EPUB
// chapters are frequently sloppy XHTML and the html package tolerates
// nearly anything.
func extractText(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if words := strings.Fields(n.Data); len(words) > 0 {
				out.WriteString(strings.Join(words, " "))
				out.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(out.String())
}

// extractTitle pulls a chapter title out of its markup, preferring h1,
// then h2, then the document title element.
func extractTitle(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	for _, tag := range []string{"h1", "h2", "title"} {
		if n := findElement(doc, tag); n != nil {
			if t := strings.TrimSpace(nodeText(n)); t != "" {
				return t
			}
		}
	}
	return ""
}

// findElement returns the first element with the given tag in document order.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			out.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out.String()
}

// hasImages reports whether the chapter markup references any image.
func hasImages(data []byte) bool {
	lower := bytes.ToLower(data)
	return bytes.Contains(lower, []byte("<img")) || bytes.Contains(lower, []byte("<image"))
}
