package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeRows forces rows into the 24x40 grid: missing rows become blank, extra rows are
// dropped, short rows are space-padded and long rows truncated. Width is counted in code points
// after NFC composition so combining sequences occupy one cell.
func NormalizeRows(rows []string) []string {
	out := make([]string, PageRows)
	for i := 0; i < PageRows; i++ {
		if i < len(rows) {
			out[i] = NormalizeRow(rows[i])
		} else {
			out[i] = strings.Repeat(" ", PageCols)
		}
	}
	return out
}

// NormalizeRow fits a single row to exactly PageCols characters.
func NormalizeRow(row string) string {
	row = norm.NFC.String(row)
	row = strings.Map(func(r rune) rune {
		if r == utf8.RuneError || unicode.IsControl(r) {
			return ' '
		}
		return r
	}, row)

	n := utf8.RuneCountInString(row)
	switch {
	case n == PageCols:
		return row
	case n < PageCols:
		return row + strings.Repeat(" ", PageCols-n)
	}

	count := 0
	for i := range row {
		if count == PageCols {
			return row[:i]
		}
		count++
	}
	return row
}

// NormalizePage returns a copy of p that satisfies the grid invariant. Unknown link colors are
// cleared and links without a target are dropped. A nil page yields nil.
func NormalizePage(p *Page) *Page {
	if p == nil {
		return nil
	}
	out := p.Clone()
	out.Title = strings.TrimSpace(out.Title)
	out.Rows = NormalizeRows(p.Rows)

	links := make([]Link, 0, len(p.Links))
	for _, l := range p.Links {
		if strings.TrimSpace(l.TargetPage) == "" {
			continue
		}
		if l.Color != "" && !l.Color.Valid() {
			l.Color = ""
		}
		links = append(links, l)
	}
	out.Links = links
	return out
}

// IsNormalized reports whether p already satisfies the 24x40 invariant.
func IsNormalized(p *Page) bool {
	if p == nil || len(p.Rows) != PageRows {
		return false
	}
	for _, r := range p.Rows {
		if utf8.RuneCountInString(r) != PageCols {
			return false
		}
	}
	return true
}
