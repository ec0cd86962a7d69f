package pdf

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/deckgen/deckgen/internal/book"
)

// sectionPattern is one regex rule for textual heading conventions. The
// first capture group holds the numbering token used for sequence
// detection.
type sectionPattern struct {
	re         *regexp.Regexp
	confidence float64
	kind       string
}

// sectionPatterns is ordered by specificity: the first matching rule wins
// for a given line. Base confidences reflect how rarely the convention
// appears outside genuine headings.
var sectionPatterns = []sectionPattern{
	{regexp.MustCompile(`^Chapter\s+(\d+)[:\s]`), 0.65, "chapter_num"},
	{regexp.MustCompile(`^CHAPTER\s+(\d+)[:\s]`), 0.65, "chapter_num"},
	{regexp.MustCompile(`^Chapter\s+([IVXLC]+)[:\s]`), 0.60, "chapter_roman"},
	{regexp.MustCompile(`^CHAPTER\s+([IVXLC]+)[:\s]`), 0.60, "chapter_roman"},
	{regexp.MustCompile(`^Chapter\s+(\w+)[:\s]`), 0.55, "chapter_word"}, // "Chapter One"
	{regexp.MustCompile(`^Part\s+(\d+)[:\s]`), 0.60, "part_num"},
	{regexp.MustCompile(`^PART\s+(\d+)[:\s]`), 0.60, "part_num"},
	{regexp.MustCompile(`^Part\s+([IVXLC]+)[:\s]`), 0.55, "part_roman"},
	{regexp.MustCompile(`^Article\s+(\d+)[:.\s]`), 0.60, "article"},
	{regexp.MustCompile(`^ARTICLE\s+(\d+)[:.\s]`), 0.60, "article"},
	{regexp.MustCompile(`^Article\s+([IVXLC]+)[:.\s]`), 0.55, "article_roman"},
	{regexp.MustCompile(`^Section\s+(\d+)[:.\s]`), 0.55, "section"},
	{regexp.MustCompile(`^SECTION\s+(\d+)[:.\s]`), 0.55, "section"},
	{regexp.MustCompile(`^(\d+)\.\s+[A-Z][a-z]`), 0.50, "numbered"},         // "1. Introduction"
	{regexp.MustCompile(`^(\d+)\s+[A-Z]{2,}`), 0.55, "numbered_allcaps"},    // "1 DEFINITIONS"
	{regexp.MustCompile(`^(\d+\.\d+)\s+[A-Z]`), 0.50, "decimal"},            // "1.1 Overview"
	{regexp.MustCompile(`^([IVXLC]+)\.\s+[A-Z]`), 0.50, "roman"},            // "IV. Methods"
	{regexp.MustCompile(`^Unit\s+(\d+)[:\s]`), 0.55, "unit"},
	{regexp.MustCompile(`^Lesson\s+(\d+)[:\s]`), 0.55, "lesson"},
}

const (
	// patternMinSections is the minimum number of matches for the layer
	// to claim a result; fewer is coincidence, not structure.
	patternMinSections = 3

	// patternMaxLineLen skips lines too long to be headings.
	patternMaxLineLen = 100

	// patternSeqBoost and patternSeqCap reward categories whose captured
	// tokens form a consecutive sequence of length >= 3.
	patternSeqBoost = 0.10
	patternSeqCap   = 0.75
)

// detectByPattern matches textual heading conventions across the flattened
// document line stream, then boosts the confidence of rule categories
// whose numbering forms a strictly consecutive sequence — systematic
// numbering is much stronger evidence than isolated matches.
func detectByPattern(ctx context.Context, src Source) (*book.DetectionResult, error) {
	var allLines []string
	lineToPage := make(map[int]int)

	for page := 0; page < src.PageCount(); page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := src.PageText(page)
		if err != nil {
			return nil, err
		}
		for _, line := range strings.Split(text, "\n") {
			lineToPage[len(allLines)] = page
			allLines = append(allLines, line)
		}
	}

	sections, seen := matchPatternLines(allLines, lineToPage)
	boostSequential(sections, seen)

	if len(sections) < patternMinSections {
		return nil, nil
	}

	return &book.DetectionResult{
		Sections:   sections,
		Method:     book.MethodPDFPattern,
		Confidence: book.AvgConfidence(sections),
	}, nil
}

// matchPatternLines applies the rule table to each line, first match wins.
// It returns candidate sections and the captured tokens per rule category.
func matchPatternLines(lines []string, lineToPage map[int]int) ([]book.Section, map[string][]string) {
	var sections []book.Section
	seen := make(map[string][]string)

	for lineNum, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || utf8.RuneCountInString(line) > patternMaxLineLen {
			continue
		}

		for _, p := range sectionPatterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			seen[p.kind] = append(seen[p.kind], m[1])

			level := 2
			if strings.Contains(p.kind, "part") {
				level = 1
			}
			n := lineNum
			sections = append(sections, book.Section{
				Title:       line,
				PageStart:   book.IntPtr(lineToPage[lineNum]),
				LineNumber:  &n,
				Level:       level,
				Confidence:  p.confidence,
				PatternType: p.kind,
			})
			break
		}
	}
	return sections, seen
}

// boostSequential raises confidence for every section of a rule category
// whose captured tokens form a consecutive run of at least 3.
func boostSequential(sections []book.Section, seen map[string][]string) {
	for kind, values := range seen {
		if len(values) < 3 || !isConsecutive(values, kind) {
			continue
		}
		for i := range sections {
			if sections[i].PatternType == kind {
				sections[i].Confidence = math.Min(sections[i].Confidence+patternSeqBoost, patternSeqCap)
			}
		}
	}
}

// isConsecutive reports whether captured tokens form a strictly
// consecutive integer (or roman numeral) sequence.
func isConsecutive(values []string, kind string) bool {
	var nums []int

	if strings.Contains(kind, "roman") {
		for _, v := range values {
			n, ok := romanToInt(v)
			if !ok {
				return false
			}
			nums = append(nums, n)
		}
	} else {
		switch kind {
		case "chapter_num", "part_num", "section", "numbered", "numbered_allcaps", "article", "unit", "lesson":
		default:
			return false
		}
		for _, v := range values {
			n, err := strconv.Atoi(v)
			if err != nil {
				return false
			}
			nums = append(nums, n)
		}
	}

	for i := 1; i < len(nums); i++ {
		if nums[i] != nums[0]+i {
			return false
		}
	}
	return true
}

var romanValues = map[rune]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100}

// romanToInt converts a roman numeral; ok is false for non-roman input.
func romanToInt(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	result, prev := 0, 0
	runes := []rune(s)
	for i := len(runes) - 1; i >= 0; i-- {
		cur, ok := romanValues[runes[i]]
		if !ok {
			return 0, false
		}
		if cur < prev {
			result -= cur
		} else {
			result += cur
		}
		prev = cur
	}
	return result, true
}
