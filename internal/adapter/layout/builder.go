package layout

import (
	"teletext/internal/domain"
)

// Builder assembles a page: a header row, a blank row, up to BodyRows body rows and a footer
// listing the page's links. Rows past the body capacity are dropped.
type Builder struct {
	id      string
	section string
	title   string
	body    []string
	links   []domain.Link
	meta    map[string]any
}

func NewBuilder(id domain.PageID, section, title string) *Builder {
	return &Builder{id: id.String(), section: section, title: title}
}

// Line adds a single row, truncated to Width.
func (b *Builder) Line(s string) *Builder {
	b.body = append(b.body, Truncate(s, Width))
	return b
}

// Lines adds each string as a row.
func (b *Builder) Lines(lines ...string) *Builder {
	for _, l := range lines {
		b.Line(l)
	}
	return b
}

// Text word-wraps a paragraph into rows.
func (b *Builder) Text(text string) *Builder {
	return b.Lines(Wrap(text, Width)...)
}

func (b *Builder) Blank() *Builder {
	b.body = append(b.body, "")
	return b
}

// Pair adds a left/right justified row.
func (b *Builder) Pair(left, right string) *Builder {
	return b.Line(Justify(left, right, Width))
}

// Remaining is how many body rows are still free.
func (b *Builder) Remaining() int {
	return max(BodyRows-len(b.body), 0)
}

func (b *Builder) Link(label, target string, color domain.LinkColor) *Builder {
	b.links = append(b.links, domain.Link{Label: label, TargetPage: target, Color: color})
	return b
}

func (b *Builder) Meta(key string, value any) *Builder {
	if b.meta == nil {
		b.meta = make(map[string]any)
	}
	b.meta[key] = value
	return b
}

func (b *Builder) Build() *domain.Page {
	rows := make([]string, 0, domain.PageRows)
	rows = append(rows, Justify("P"+b.id+" "+b.section, b.title, Width), "")
	body := b.body
	if len(body) > BodyRows {
		body = body[:BodyRows]
	}
	rows = append(rows, body...)
	for len(rows) < domain.PageRows-1 {
		rows = append(rows, "")
	}
	rows = append(rows, Footer(b.links))

	links := make([]domain.Link, len(b.links))
	copy(links, b.links)
	return &domain.Page{
		ID:    b.id,
		Title: b.title,
		Rows:  rows,
		Links: links,
		Meta:  b.meta,
	}
}
