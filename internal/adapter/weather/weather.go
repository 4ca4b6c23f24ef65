// Package weather renders current conditions and forecasts for pages 420-449.
package weather

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
	Name = "weather"

	DefaultTTL = 10 * time.Minute

	indexPage = 420
)

// Location binds a page to a place name understood by the forecast API.
type Location struct {
	Page  int
	Name  string
	Query string
}

type Config struct {
	BaseURL   string
	Locations []Location
	TTL       time.Duration
}

type forecastResponse struct {
	Location string     `json:"location"`
	Current  conditions `json:"current"`
	Forecast []day      `json:"forecast"`
}

type conditions struct {
	TempC     float64 `json:"tempC"`
	Condition string  `json:"condition"`
	WindKph   float64 `json:"windKph"`
	Humidity  int     `json:"humidity"`
}

type day struct {
	Day       string  `json:"day"`
	HighC     float64 `json:"highC"`
	LowC      float64 `json:"lowC"`
	Condition string  `json:"condition"`
}

type Adapter struct {
	client    *upstream.Client
	baseURL   string
	locations map[int]Location
	order     []int
	ttl       time.Duration
}

func New(cfg Config, client *upstream.Client) *Adapter {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	a := &Adapter{
		client:    client,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		locations: make(map[int]Location, len(cfg.Locations)),
		ttl:       cfg.TTL,
	}
	for _, l := range cfg.Locations {
		a.locations[l.Page] = l
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

// CacheParams keeps the station override.
func (a *Adapter) CacheParams(params map[string]string) map[string]string {
	if s, ok := params["station"]; ok {
		return map[string]string{"station": s}
	}
	return nil
}

func (a *Adapter) GetPage(ctx context.Context, id domain.PageID, params map[string]string) (*domain.Page, error) {
	if id.HasSub() {
		return nil, domain.NewAdapterError(domain.CodeNotFound, Name, id, "weather pages have no sub-pages", nil)
	}

	station := params["station"]
	if id.Number == indexPage && station == "" {
		return a.index(id), nil
	}

	q := url.Values{}
	title := "Forecast"
	if station != "" {
		if _, err := strconv.Atoi(station); err != nil {
			return nil, domain.NewAdapterError(domain.CodeValidation, Name, id, "station must be numeric", err)
		}
		q.Set("station", station)
		title = "Station " + station
	} else {
		loc, ok := a.locations[id.Number]
		if !ok {
			page := domain.ComingSoonPage(id)
			page.Meta[domain.MetaSource] = Name
			return page, nil
		}
		q.Set("location", loc.Query)
		title = loc.Name
	}

	var resp forecastResponse
	if err := a.client.GetJSON(ctx, id, a.baseURL+"/forecast?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Location != "" {
		title = resp.Location
	}
	return a.forecast(id, title, resp), nil
}

func (a *Adapter) index(id domain.PageID) *domain.Page {
	b := layout.NewBuilder(id, "WEATHER", "Weather")
	for _, p := range a.order {
		if p == indexPage {
			continue
		}
		l := a.locations[p]
		b.Pair(l.Name, strconv.Itoa(p))
		b.Link(l.Name, strconv.Itoa(p), "")
	}
	return b.Link("Index", "100", domain.LinkColorRed).
		Link("Markets", "400", domain.LinkColorYellow).
		Build()
}

func (a *Adapter) forecast(id domain.PageID, title string, resp forecastResponse) *domain.Page {
	b := layout.NewBuilder(id, "WEATHER", title)
	c := resp.Current
	b.Pair("Now", fmt.Sprintf("%.0fC %s", c.TempC, c.Condition))
	b.Pair("Wind", fmt.Sprintf("%.0f km/h", c.WindKph))
	b.Pair("Humidity", fmt.Sprintf("%d%%", c.Humidity))
	if len(resp.Forecast) > 0 {
		b.Blank().Line(fmt.Sprintf("%-5s %5s %5s  %s", "DAY", "HIGH", "LOW", "OUTLOOK"))
	}
	for _, d := range resp.Forecast {
		if b.Remaining() == 0 {
			break
		}
		b.Line(fmt.Sprintf("%-5s %4.0fC %4.0fC  %s", layout.Truncate(d.Day, 5), d.HighC, d.LowC, d.Condition))
	}
	return b.Link("Weather", "420", domain.LinkColorBlue).Build()
}
