// Package sports renders fixtures and results fetched as JSON from a scores API.
package sports

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"teletext/internal/adapter/layout"
	"teletext/internal/adapter/upstream"
	"teletext/internal/domain"
)

const (
	Name = "sports"

	DefaultTTL = time.Minute
)

// League binds a page to a competition code understood by the upstream API.
type League struct {
	Page  int
	Code  string
	Title string
}

type Config struct {
	BaseURL string
	Leagues []League
	TTL     time.Duration
}

type fixturesResponse struct {
	League  string  `json:"league"`
	Updated string  `json:"updated"`
	Matches []match `json:"matches"`
}

type match struct {
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeScore *int   `json:"homeScore"`
	AwayScore *int   `json:"awayScore"`
	Status    string `json:"status"`
	Kickoff   string `json:"kickoff"`
}

// Adapter serves the sports magazine. Page 300 indexes the configured leagues.
type Adapter struct {
	client  *upstream.Client
	baseURL string
	leagues map[int]League
	order   []int
	ttl     time.Duration
}

func New(cfg Config, client *upstream.Client) *Adapter {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	a := &Adapter{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		leagues: make(map[int]League, len(cfg.Leagues)),
		ttl:     cfg.TTL,
	}
	for _, l := range cfg.Leagues {
		a.leagues[l.Page] = l
		a.order = append(a.order, l.Page)
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

// CacheParams keeps the date filter, the only parameter that changes the content.
func (a *Adapter) CacheParams(params map[string]string) map[string]string {
	if d, ok := params["date"]; ok {
		return map[string]string{"date": d}
	}
	return nil
}

func (a *Adapter) GetPage(ctx context.Context, id domain.PageID, params map[string]string) (*domain.Page, error) {
	if id.HasSub() {
		return nil, domain.NewAdapterError(domain.CodeNotFound, Name, id, "sports pages have no sub-pages", nil)
	}
	if id.Number == 300 {
		return a.index(id), nil
	}
	league, ok := a.leagues[id.Number]
	if !ok {
		page := domain.ComingSoonPage(id)
		page.Meta[domain.MetaSource] = Name
		return page, nil
	}

	q := url.Values{"league": {league.Code}}
	if d := params["date"]; d != "" {
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return nil, domain.NewAdapterError(domain.CodeValidation, Name, id, "date must be YYYY-MM-DD", err)
		}
		q.Set("date", d)
	}

	var resp fixturesResponse
	if err := a.client.GetJSON(ctx, id, a.baseURL+"/fixtures?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return a.fixtures(id, league, resp), nil
}

func (a *Adapter) index(id domain.PageID) *domain.Page {
	b := layout.NewBuilder(id, "SPORT", "Sport")
	for _, p := range a.order {
		l := a.leagues[p]
		b.Pair(l.Title, strconv.Itoa(p))
		b.Link(l.Title, strconv.Itoa(p), "")
	}
	if len(a.order) == 0 {
		b.Line("No competitions configured.")
	}
	return b.Link("Index", "100", domain.LinkColorRed).Build()
}

func (a *Adapter) fixtures(id domain.PageID, league League, resp fixturesResponse) *domain.Page {
	title := league.Title
	if resp.League != "" {
		title = resp.League
	}
	b := layout.NewBuilder(id, "SPORT", title)
	if len(resp.Matches) == 0 {
		b.Line("No matches scheduled.")
	}
	for _, m := range resp.Matches {
		if b.Remaining() == 0 {
			break
		}
		b.Line(formatMatch(m))
	}
	if resp.Updated != "" {
		b.Meta("updated", resp.Updated)
	}
	b.Link("Sport", "300", domain.LinkColorRed)
	if next, ok := a.next(id.Number); ok {
		b.Link(a.leagues[next].Title, strconv.Itoa(next), domain.LinkColorGreen)
	}
	return b.Build()
}

// formatMatch renders "Home        2-1 Away         FT". Unplayed matches show the kickoff.
func formatMatch(m match) string {
	score := " v "
	if m.HomeScore != nil && m.AwayScore != nil {
		score = fmt.Sprintf("%d-%d", *m.HomeScore, *m.AwayScore)
	}
	status := m.Status
	if status == "" {
		status = m.Kickoff
	}
	left := fmt.Sprintf("%-14s %3s %-14s", layout.Truncate(m.Home, 14), score, layout.Truncate(m.Away, 14))
	return layout.Justify(left, layout.Truncate(status, 6), layout.Width)
}

func (a *Adapter) next(page int) (int, bool) {
	for _, p := range a.order {
		if p > page {
			return p, true
		}
	}
	return 0, false
}
