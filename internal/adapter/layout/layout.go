// Package layout lays text out on the 40-column page grid. Widths are counted in runes, matching
// the normalisation the dispatcher applies.
package layout

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"teletext/internal/domain"
)

// Width is the number of columns in a row.
const Width = domain.PageCols

// BodyRows is the number of rows between the header block and the footer.
const BodyRows = domain.PageRows - 3

var strictPolicy = bluemonday.StrictPolicy()

// Justify places left and right on one row, truncating left when both do not fit.
func Justify(left, right string, width int) string {
	rw := utf8.RuneCountInString(right)
	if rw >= width {
		return Truncate(right, width)
	}
	left = Truncate(left, width-rw-1)
	gap := width - utf8.RuneCountInString(left) - rw
	return left + strings.Repeat(" ", gap) + right
}

// Center centres s within Width columns.
func Center(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= Width {
		return Truncate(s, Width)
	}
	return strings.Repeat(" ", (Width-n)/2) + s
}

// Rule is a full-width horizontal line.
func Rule(ch rune) string {
	return strings.Repeat(string(ch), Width)
}

// Truncate cuts s to at most width runes.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	count := 0
	for i := range s {
		if count == width {
			return s[:i]
		}
		count++
	}
	return s
}

// Wrap breaks text into lines of at most width runes on word boundaries. Words longer than a
// line are split.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = cur[:0]
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(w) == 0:
		case len(cur) == 0:
			cur = append(cur, w...)
		case len(cur)+1+len(w) <= width:
			cur = append(cur, ' ')
			cur = append(cur, w...)
		default:
			lines = append(lines, string(cur))
			cur = append(cur[:0], w...)
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

// PlainText strips markup from feed or upstream HTML and collapses whitespace.
func PlainText(raw string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strictPolicy.Sanitize(raw))), " ")
}

// Footer renders the coloured links as "200 News  300 Sport", truncated to Width. Uncoloured
// links stay in the page's link list but are not shown.
func Footer(links []domain.Link) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		if l.Color == "" {
			continue
		}
		parts = append(parts, l.TargetPage+" "+l.Label)
	}
	return Truncate(strings.Join(parts, "  "), Width)
}
