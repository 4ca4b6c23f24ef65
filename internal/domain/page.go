package domain

// Grid dimensions of every page leaving the service.
const (
	PageRows = 24
	PageCols = 40
)

// LinkColor binds a navigation link to one of the quick-navigation keys.
type LinkColor string

const (
	LinkColorRed     LinkColor = "red"
	LinkColorGreen   LinkColor = "green"
	LinkColorYellow  LinkColor = "yellow"
	LinkColorBlue    LinkColor = "blue"
	LinkColorMagenta LinkColor = "magenta"
	LinkColorCyan    LinkColor = "cyan"
)

// Valid reports whether c is one of the fixed quick-navigation colors.
func (c LinkColor) Valid() bool {
	switch c {
	case LinkColorRed, LinkColorGreen, LinkColorYellow, LinkColorBlue, LinkColorMagenta, LinkColorCyan:
		return true
	}
	return false
}

// Link is a navigation entry pointing at another page.
type Link struct {
	Label      string    `json:"label"`
	TargetPage string    `json:"targetPage"`
	Color      LinkColor `json:"color,omitempty"`
}

// Page is the unit of content served to clients: a 24x40 character grid plus navigation metadata.
// Meta is opaque to the pipeline and passed through unchanged, apart from the cache/source hints
// added by the dispatcher when the adapter left them unset.
type Page struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Rows  []string       `json:"rows"`
	Links []Link         `json:"links"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// Well-known meta keys.
const (
	MetaCache       = "cache"
	MetaSource      = "source"
	MetaInputMode   = "inputMode"
	MetaAIGenerated = "aiGenerated"
	MetaFallback    = "fallback"
)

// Clone returns a deep copy so cached entries stay immutable.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	c := &Page{
		ID:    p.ID,
		Title: p.Title,
	}
	if p.Rows != nil {
		c.Rows = make([]string, len(p.Rows))
		copy(c.Rows, p.Rows)
	}
	if p.Links != nil {
		c.Links = make([]Link, len(p.Links))
		copy(c.Links, p.Links)
	}
	if p.Meta != nil {
		c.Meta = make(map[string]any, len(p.Meta))
		for k, v := range p.Meta {
			c.Meta[k] = v
		}
	}
	return c
}

// SetMetaDefault sets key only when the adapter did not provide it.
func (p *Page) SetMetaDefault(key string, value any) {
	if p.Meta == nil {
		p.Meta = make(map[string]any)
	}
	if _, ok := p.Meta[key]; !ok {
		p.Meta[key] = value
	}
}
