// Package static serves the system magazine (index, help, about) and the "coming soon"
// placeholder used for every section nothing else produces.
package static

import (
	"context"
	"time"

	"teletext/internal/adapter/layout"
	"teletext/internal/domain"
)

const (
	SystemName  = "system"
	DefaultName = "static"

	pageTTL = time.Hour
)

// Section is an entry on the index page.
type Section struct {
	Page  string
	Label string
	Color domain.LinkColor
}

// DefaultSections is the index shown on page 100.
var DefaultSections = []Section{
	{Page: "200", Label: "News", Color: domain.LinkColorRed},
	{Page: "300", Label: "Sport", Color: domain.LinkColorGreen},
	{Page: "400", Label: "Markets", Color: domain.LinkColorYellow},
	{Page: "420", Label: "Weather", Color: domain.LinkColorBlue},
	{Page: "500", Label: "Ask AI", Color: domain.LinkColorMagenta},
	{Page: "600", Label: "Games", Color: domain.LinkColorCyan},
	{Page: "700", Label: "Settings"},
	{Page: "800", Label: "Dev tools"},
}

// Adapter renders fixed pages. Ids without a fixed page get the coming-soon placeholder.
type Adapter struct {
	name     string
	sections []Section
	pages    map[int]func(domain.PageID) *domain.Page
}

// NewSystem serves 100 (index), 101 (help) and 102 (about).
func NewSystem(sections []Section) *Adapter {
	if sections == nil {
		sections = DefaultSections
	}
	a := &Adapter{name: SystemName, sections: sections}
	a.pages = map[int]func(domain.PageID) *domain.Page{
		100: a.index,
		101: a.help,
		102: a.about,
	}
	return a
}

// NewDefault only ever answers with the coming-soon page.
func NewDefault() *Adapter {
	return &Adapter{name: DefaultName}
}

func (a *Adapter) Name() string {
	return a.name
}

func (a *Adapter) GetPage(_ context.Context, id domain.PageID, _ map[string]string) (*domain.Page, error) {
	render, ok := a.pages[id.Number]
	if !ok || id.HasSub() {
		page := domain.ComingSoonPage(id)
		page.Meta[domain.MetaSource] = a.name
		return page, nil
	}
	return render(id), nil
}

func (a *Adapter) CacheTTL(domain.PageID) time.Duration {
	return pageTTL
}

// CacheParams ignores query parameters: static pages never depend on them.
func (a *Adapter) CacheParams(map[string]string) map[string]string {
	return nil
}

func (a *Adapter) index(id domain.PageID) *domain.Page {
	b := layout.NewBuilder(id, "INDEX", "Teletext")
	b.Line(layout.Center("T E L E T E X T")).Blank()
	for _, s := range a.sections {
		b.Pair(s.Label, s.Page)
		b.Link(s.Label, s.Page, s.Color)
	}
	b.Blank().Line("Key a page number to go there.")
	return b.Build()
}

func (a *Adapter) help(id domain.PageID) *domain.Page {
	return layout.NewBuilder(id, "HELP", "Help").
		Text("Every page has a three digit number from 100 to 899. Key the digits to jump to a page.").
		Blank().
		Text("Pages with more than one screen use sub-pages such as 203-2. The coloured keys follow the links at the bottom of the page.").
		Blank().
		Text("If a page cannot be loaded you will see an error page. Try again in a moment.").
		Link("Index", "100", domain.LinkColorRed).
		Link("About", "102", domain.LinkColorGreen).
		Build()
}

func (a *Adapter) about(id domain.PageID) *domain.Page {
	return layout.NewBuilder(id, "ABOUT", "About").
		Text("A page service in the style of broadcast teletext. Every page is 24 rows of 40 characters.").
		Blank().
		Pair("News", "RSS and Atom feeds").
		Pair("Sport", "Live fixtures").
		Pair("Markets", "Quotes").
		Pair("Weather", "Forecasts").
		Pair("Ask AI", "Generated answers").
		Link("Index", "100", domain.LinkColorRed).
		Link("Help", "101", domain.LinkColorGreen).
		Build()
}
