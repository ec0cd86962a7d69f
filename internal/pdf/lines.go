package pdf

import (
	"sort"
	"strings"
)

// lineBreakGap is the vertical distance in points beyond which two
// characters are considered to sit on different lines.
const lineBreakGap = 5.0

// buildLines reconstructs visual lines from positioned characters.
// Characters are ordered by (top, x); a new line starts whenever the
// vertical offset from the current line exceeds lineBreakGap. Each line
// carries the size and font of its largest character.
func buildLines(chars []Char) []Line {
	if len(chars) == 0 {
		return nil
	}

	sorted := make([]Char, len(chars))
	copy(sorted, chars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []Line
	var cur Line
	var buf strings.Builder

	flush := func() {
		cur.Text = buf.String()
		if strings.TrimSpace(cur.Text) != "" {
			// Bottom is approximated as baseline top plus font size; the
			// extraction library does not expose glyph bounding boxes.
			cur.Bottom = cur.Top + cur.Size
			lines = append(lines, cur)
		}
		buf.Reset()
	}

	for i, c := range sorted {
		if i == 0 || c.Top-cur.Top > lineBreakGap {
			if i > 0 {
				flush()
			}
			cur = Line{Size: c.Size, Font: c.Font, Top: c.Top, X0: c.X}
			buf.WriteString(c.Text)
			continue
		}
		buf.WriteString(c.Text)
		if c.Size > cur.Size {
			cur.Size = c.Size
			cur.Font = c.Font
		}
	}
	flush()

	return lines
}
