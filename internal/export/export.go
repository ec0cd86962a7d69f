// Package export merges per-chapter card files into a single
// pipe-separated file that Anki imports directly.
//
// Chapter card files carry a "#deck:" header and one card per line in
// note-type format:
//
//	Basic|front|back|tags|guid
//	Cloze|text|back_extra|tags|guid
//
// The combined file adds Anki import headers and a per-card deck column.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/deckgen/deckgen/internal/flashcard"
)

// CardFileSuffix is appended to a chapter stem to name its card file.
const CardFileSuffix = "_cards.txt"

// ChapterCards holds the cards parsed from one chapter card file.
type ChapterCards struct {
	ChapterNum int
	DeckName   string
	BasicCount int
	ClozeCount int
	CardLines  []string
}

// ChapterStat is one row of the export breakdown.
type ChapterStat struct {
	Num   int
	Title string
	Basic int
	Cloze int
}

// Stats summarizes an export run.
type Stats struct {
	TotalChapters int
	TotalCards    int
	TotalBasic    int
	TotalCloze    int
	Chapters      []ChapterStat
}

var cardFileRe = regexp.MustCompile(`^chapter_(\d+)_cards\.txt$`)

// FindCardFiles lists chapter card files in dir, sorted by name.
func FindCardFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "chapter_*"+CardFileSuffix))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// ChapterNumber extracts the 1-based chapter number from a card file
// path. Returns 0 when the name does not match.
func ChapterNumber(path string) int {
	m := cardFileRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0
	}
	var n int
	_, _ = fmt.Sscanf(m[1], "%d", &n)
	return n
}

// BuildChapterFile renders a chapter card file from a generation result.
// Tags apply to every card in the chapter.
func BuildChapterFile(deckName string, result *flashcard.GenerationResult, tags []string) string {
	tagField := strings.Join(tags, " ")

	lines := []string{fmt.Sprintf("#deck:%s", deckName)}
	for _, c := range result.BasicCards {
		lines = append(lines, fmt.Sprintf("Basic|%s|%s|%s|%s", c.Front, c.Back, tagField, uuid.New().String()))
	}
	for _, c := range result.ClozeCards {
		lines = append(lines, fmt.Sprintf("Cloze|%s|%s|%s|%s", c.Text, c.BackExtra, tagField, uuid.New().String()))
	}
	return strings.Join(lines, "\n")
}

// ParseCardFile reads a chapter card file. Returns nil when the file
// has no deck header or no card lines.
func ParseCardFile(path string) (*ChapterCards, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card file: %w", err)
	}

	var (
		deckName   string
		cardLines  []string
		basicCount int
		clozeCount int
	)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#deck:") {
			deckName = strings.TrimSpace(line[len("#deck:"):])
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		cardLines = append(cardLines, line)
		switch {
		case strings.HasPrefix(line, "Basic|"):
			basicCount++
		case strings.HasPrefix(line, "Cloze|"):
			clozeCount++
		}
	}

	if deckName == "" || len(cardLines) == 0 {
		return nil, nil
	}
	return &ChapterCards{
		ChapterNum: ChapterNumber(path),
		DeckName:   deckName,
		BasicCount: basicCount,
		ClozeCount: clozeCount,
		CardLines:  cardLines,
	}, nil
}

// BuildCombined renders the merged import file with a per-card deck
// column. bookSlug is added to the global tags.
func BuildCombined(chapters []ChapterCards, bookSlug string, globalTags []string) string {
	tags := "deckgen " + bookSlug
	if len(globalTags) > 0 {
		tags += " " + strings.Join(globalTags, " ")
	}

	lines := []string{
		"#separator:Pipe",
		"#html:true",
		fmt.Sprintf("#tags:%s", tags),
		"#notetype column:1",
		"#tags column:4",
		"#guid column:5",
		"#deck column:6",
		"#columns:Note Type|Field 1|Field 2|Tags|GUID|Deck",
	}
	for _, ch := range chapters {
		for _, card := range ch.CardLines {
			lines = append(lines, fmt.Sprintf("%s|%s", card, ch.DeckName))
		}
	}
	return strings.Join(lines, "\n")
}

// CalculateStats summarizes parsed chapters for display.
func CalculateStats(chapters []ChapterCards) Stats {
	stats := Stats{TotalChapters: len(chapters)}
	for _, ch := range chapters {
		stats.TotalBasic += ch.BasicCount
		stats.TotalCloze += ch.ClozeCount

		title := ch.DeckName
		if i := strings.LastIndex(title, "::"); i >= 0 {
			title = strings.TrimSpace(title[i+2:])
		}
		stats.Chapters = append(stats.Chapters, ChapterStat{
			Num:   ch.ChapterNum,
			Title: title,
			Basic: ch.BasicCount,
			Cloze: ch.ClozeCount,
		})
	}
	stats.TotalCards = stats.TotalBasic + stats.TotalCloze
	return stats
}

var (
	slugInvalidRe = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashRe    = regexp.MustCompile(`-+`)
)

// Slugify converts a book title to a tag-safe slug.
func Slugify(title string) string {
	slug := strings.ReplaceAll(strings.ToLower(title), " ", "-")
	slug = slugInvalidRe.ReplaceAllString(slug, "")
	slug = slugDashRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
