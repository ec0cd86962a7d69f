package pdf

import (
	"fmt"
	"strings"
)

// stubSource is a synthetic document for exercising detection layers
// without real PDF files.
type stubSource struct {
	pages     []string
	chars     [][]Char
	bookmarks []Bookmark
	bmErr     error
	width     float64
	height    float64
}

func (s *stubSource) PageCount() int { return len(s.pages) }

func (s *stubSource) PageText(page int) (string, error) {
	if page < 0 || page >= len(s.pages) {
		return "", fmt.Errorf("page %d out of range", page)
	}
	return s.pages[page], nil
}

func (s *stubSource) PageChars(page int) ([]Char, error) {
	if page < 0 || page >= len(s.pages) {
		return nil, fmt.Errorf("page %d out of range", page)
	}
	if page >= len(s.chars) {
		return nil, nil
	}
	return s.chars[page], nil
}

func (s *stubSource) PageSize(int) (float64, float64) {
	w, h := s.width, s.height
	if w == 0 {
		w = 612
	}
	if h == 0 {
		h = 792
	}
	return w, h
}

func (s *stubSource) Bookmarks() ([]Bookmark, error) {
	return s.bookmarks, s.bmErr
}

// emptyPages returns n pages with no text at all.
func emptyPages(n int) []string {
	return make([]string, n)
}

// wordsPage builds a page holding n copies of "word".
func wordsPage(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}
