// Package news renders RSS and Atom feeds. Each configured page lists a feed's headlines; the
// sub-page N shows the Nth story.
package news

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"teletext/internal/adapter/layout"
	"teletext/internal/adapter/upstream"
	"teletext/internal/domain"
)

const (
	Name = "news"

	DefaultTTL       = 5 * time.Minute
	DefaultListItems = 18
)

// Feed binds a page number to a feed URL.
type Feed struct {
	Page  int
	Title string
	URL   string
}

type Config struct {
	Feeds     []Feed
	TTL       time.Duration
	ListItems int
}

// Adapter serves the news magazine.
type Adapter struct {
	client    *upstream.Client
	feeds     map[int]Feed
	order     []int
	ttl       time.Duration
	listItems int
}

func New(cfg Config, client *upstream.Client) *Adapter {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.ListItems <= 0 || cfg.ListItems > layout.BodyRows {
		cfg.ListItems = DefaultListItems
	}
	a := &Adapter{
		client:    client,
		feeds:     make(map[int]Feed, len(cfg.Feeds)),
		ttl:       cfg.TTL,
		listItems: cfg.ListItems,
	}
	for _, f := range cfg.Feeds {
		a.feeds[f.Page] = f
		a.order = append(a.order, f.Page)
	}
	sort.Ints(a.order)
	return a
}

func (a *Adapter) Name() string {
	return Name
}

func (a *Adapter) CacheTTL(domain.PageID) time.Duration {
	return a.ttl
}

func (a *Adapter) CacheParams(map[string]string) map[string]string {
	return nil
}

func (a *Adapter) GetPage(ctx context.Context, id domain.PageID, _ map[string]string) (*domain.Page, error) {
	feedCfg, ok := a.feeds[id.Number]
	if !ok {
		page := domain.ComingSoonPage(id)
		page.Meta[domain.MetaSource] = Name
		return page, nil
	}

	feed, err := a.fetch(ctx, id, feedCfg)
	if err != nil {
		return nil, err
	}

	if !id.HasSub() {
		return a.list(id, feedCfg, feed), nil
	}

	n, err := strconv.Atoi(id.Sub)
	if err != nil || n < 1 || n > len(feed.Items) {
		return nil, domain.NewAdapterError(domain.CodeNotFound, Name, id,
			fmt.Sprintf("no story %q in feed of %d", id.Sub, len(feed.Items)), nil)
	}
	return a.story(id, feedCfg, feed, n), nil
}

func (a *Adapter) fetch(ctx context.Context, id domain.PageID, f Feed) (*gofeed.Feed, error) {
	body, err := a.client.Get(ctx, id, f.URL, "application/rss+xml, application/atom+xml, application/xml;q=0.9")
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewAdapterError(domain.CodeValidation, Name, id, "error parsing feed", err)
	}
	if len(feed.Items) == 0 {
		return nil, domain.NewAdapterError(domain.CodeContentUnavailable, Name, id, "feed has no items", nil)
	}
	return feed, nil
}

func (a *Adapter) list(id domain.PageID, f Feed, feed *gofeed.Feed) *domain.Page {
	b := layout.NewBuilder(id, "NEWS", f.Title)
	for i, item := range feed.Items {
		if i >= a.listItems {
			break
		}
		num := strconv.Itoa(i + 1)
		b.Line(fmt.Sprintf("%2s %s", num, layout.PlainText(item.Title)))
		b.Link(layout.Truncate(layout.PlainText(item.Title), 20), id.Base().String()+"-"+num, "")
	}
	b.Link("Index", "100", domain.LinkColorRed)
	if next, ok := a.nextFeed(id.Number); ok {
		b.Link(a.feeds[next].Title, strconv.Itoa(next), domain.LinkColorGreen)
	}
	if feed.Title != "" {
		b.Meta("feedTitle", feed.Title)
	}
	return b.Build()
}

func (a *Adapter) story(id domain.PageID, f Feed, feed *gofeed.Feed, n int) *domain.Page {
	item := feed.Items[n-1]
	base := id.Base().String()

	b := layout.NewBuilder(id, "NEWS", fmt.Sprintf("%s %d/%d", f.Title, n, len(feed.Items)))
	b.Text(layout.PlainText(item.Title))
	if item.PublishedParsed != nil {
		b.Line(item.PublishedParsed.UTC().Format("Mon 02 Jan 15:04 MST"))
	}
	b.Blank()

	body := item.Description
	if body == "" {
		body = item.Content
	}
	b.Text(layout.PlainText(body))

	b.Link("Headlines", base, domain.LinkColorRed)
	if n < len(feed.Items) {
		b.Link("Next", fmt.Sprintf("%s-%d", base, n+1), domain.LinkColorGreen)
	}
	if n > 1 {
		b.Link("Previous", fmt.Sprintf("%s-%d", base, n-1), domain.LinkColorYellow)
	}
	if item.Link != "" {
		b.Meta("url", item.Link)
	}
	return b.Build()
}

func (a *Adapter) nextFeed(page int) (int, bool) {
	for _, p := range a.order {
		if p > page {
			return p, true
		}
	}
	return 0, false
}
