package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	goepub "github.com/taylorskalyo/goreader/epub"

	"github.com/deckgen/deckgen/internal/book"
)

// ncxMediaType identifies the NCX navigation document in the manifest.
const ncxMediaType = "application/x-dtbncx+xml"

// NCX document structure (toc.ncx).
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     navLabel   `xml:"navLabel"`
	Content   navContent `xml:"content"`
	Children  []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// readNCX locates and reads the NCX document inside the EPUB container.
// The manifest's media type is authoritative; a filename scan covers
// containers with incomplete manifests.
func readNCX(epubPath string, rf *goepub.Rootfile) ([]byte, error) {
	zr, err := zip.OpenReader(epubPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub container: %w", err)
	}
	defer zr.Close()

	var ncxPath string
	for _, item := range rf.Manifest.Items {
		if item.MediaType == ncxMediaType {
			ncxPath = item.HREF
			break
		}
	}
	if ncxPath == "" {
		for _, f := range zr.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".ncx") {
				ncxPath = f.Name
				break
			}
		}
	}
	if ncxPath == "" {
		return nil, fmt.Errorf("no NCX document in container")
	}

	for _, f := range zr.File {
		if f.Name == ncxPath || strings.HasSuffix(f.Name, "/"+ncxPath) || path.Base(f.Name) == path.Base(ncxPath) {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("NCX document %s not found in container", ncxPath)
}

// parseNCX converts NCX bytes into the hierarchical TOC. Levels are
// 1-based from the navMap roots.
func parseNCX(data []byte) ([]book.TOCEntry, error) {
	var doc ncx
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse NCX: %w", err)
	}
	return navPointsToTOC(doc.NavMap.NavPoints, 1), nil
}

func navPointsToTOC(points []navPoint, level int) []book.TOCEntry {
	entries := make([]book.TOCEntry, 0, len(points))
	for _, np := range points {
		entries = append(entries, book.TOCEntry{
			ID:       stripFragment(np.Content.Src),
			Title:    titleOrDefault(np.Label.Text),
			Href:     np.Content.Src,
			Level:    level,
			Children: navPointsToTOC(np.Children, level+1),
		})
	}
	if len(entries) == 0 {
		return nil
	}
	return entries
}

// tocTitleMap flattens a TOC into href (fragment stripped) to title,
// keeping the first title for each target so nested anchors do not
// override the chapter heading.
func tocTitleMap(entries []book.TOCEntry) map[string]string {
	m := make(map[string]string)
	var walk func([]book.TOCEntry)
	walk = func(es []book.TOCEntry) {
		for _, e := range es {
			for _, key := range hrefKeys(e.Href) {
				if _, ok := m[key]; !ok {
					m[key] = e.Title
				}
			}
			walk(e.Children)
		}
	}
	walk(entries)
	return m
}

// hrefKeys returns the lookup keys a TOC href can be matched under:
// the full reference and its path basename, both with fragments removed.
func hrefKeys(href string) []string {
	base := stripFragment(href)
	if base == "" {
		return nil
	}
	keys := []string{base}
	if b := path.Base(base); b != base {
		keys = append(keys, b)
	}
	return keys
}

func stripFragment(href string) string {
	if i := strings.Index(href, "#"); i != -1 {
		return href[:i]
	}
	return href
}

func titleOrDefault(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled"
	}
	return title
}
