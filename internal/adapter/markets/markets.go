// Package markets renders quote boards fetched as JSON from a quotes API.
package markets

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
	Name = "markets"

	DefaultTTL = time.Minute
)

// Board is a page of related symbols.
type Board struct {
	Page    int
	Title   string
	Symbols []string
}

type Config struct {
	BaseURL string
	Boards  []Board
	TTL     time.Duration
}

type quotesResponse struct {
	Currency string  `json:"currency"`
	AsOf     string  `json:"asOf"`
	Quotes   []quote `json:"quotes"`
}

type quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// Adapter serves the markets magazine outside the weather range. Page 400 indexes the boards.
type Adapter struct {
	client  *upstream.Client
	baseURL string
	boards  map[int]Board
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
		boards:  make(map[int]Board, len(cfg.Boards)),
		ttl:     cfg.TTL,
	}
	for _, b := range cfg.Boards {
		a.boards[b.Page] = b
		a.order = append(a.order, b.Page)
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

// CacheParams keeps the quote currency.
func (a *Adapter) CacheParams(params map[string]string) map[string]string {
	if c, ok := params["currency"]; ok {
		return map[string]string{"currency": strings.ToUpper(c)}
	}
	return nil
}

func (a *Adapter) GetPage(ctx context.Context, id domain.PageID, params map[string]string) (*domain.Page, error) {
	if id.HasSub() {
		return nil, domain.NewAdapterError(domain.CodeNotFound, Name, id, "market pages have no sub-pages", nil)
	}
	if id.Number == 400 {
		return a.index(id), nil
	}
	board, ok := a.boards[id.Number]
	if !ok {
		page := domain.ComingSoonPage(id)
		page.Meta[domain.MetaSource] = Name
		return page, nil
	}

	q := url.Values{"symbols": {strings.Join(board.Symbols, ",")}}
	if c := params["currency"]; c != "" {
		if len(c) != 3 {
			return nil, domain.NewAdapterError(domain.CodeValidation, Name, id, "currency must be a 3-letter code", nil)
		}
		q.Set("currency", strings.ToUpper(c))
	}

	var resp quotesResponse
	if err := a.client.GetJSON(ctx, id, a.baseURL+"/quotes?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Quotes) == 0 {
		return nil, domain.NewAdapterError(domain.CodeContentUnavailable, Name, id, "no quotes returned", nil)
	}
	return a.board(id, board, resp), nil
}

func (a *Adapter) index(id domain.PageID) *domain.Page {
	b := layout.NewBuilder(id, "MARKETS", "Markets")
	for _, p := range a.order {
		board := a.boards[p]
		b.Pair(board.Title, strconv.Itoa(p))
		b.Link(board.Title, strconv.Itoa(p), "")
	}
	b.Pair("Weather", "420")
	return b.Link("Index", "100", domain.LinkColorRed).
		Link("Weather", "420", domain.LinkColorBlue).
		Build()
}

func (a *Adapter) board(id domain.PageID, board Board, resp quotesResponse) *domain.Page {
	b := layout.NewBuilder(id, "MARKETS", board.Title)
	header := "SYMBOL"
	if resp.Currency != "" {
		header += " (" + resp.Currency + ")"
	}
	b.Line(fmt.Sprintf("%-14s %10s %14s", header, "PRICE", "CHANGE"))
	for _, q := range resp.Quotes {
		if b.Remaining() == 0 {
			break
		}
		b.Line(formatQuote(q))
	}
	if resp.AsOf != "" {
		b.Blank().Line("As of " + resp.AsOf)
	}
	return b.Link("Markets", "400", domain.LinkColorRed).Build()
}

// formatQuote renders "AAPL               189.30  +1.20  +0.6%".
func formatQuote(q quote) string {
	label := q.Symbol
	if label == "" {
		label = q.Name
	}
	return fmt.Sprintf("%-14s %10.2f %+6.2f %+5.1f%%",
		layout.Truncate(label, 14), q.Price, q.Change, q.ChangePercent)
}
