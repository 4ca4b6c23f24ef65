// ABOUTME: Maps a page id's magazine (hundreds digit) to the content adapter serving it
// ABOUTME: The table is built once at start-up; routing is pure and cannot fail
package router

import (
	"fmt"

	"teletext/internal/domain"
)

// Weather occupies a sub-range of the markets magazine.
const (
	weatherFirst = 420
	weatherLast  = 449
)

// Handle is the routing decision for one page id.
type Handle struct {
	Name     string
	Magazine int
	Adapter  domain.ContentAdapter
}

// Adapters groups the adapters bound into the routing table. Nil entries fall through to Default.
type Adapters struct {
	System   domain.ContentAdapter
	News     domain.ContentAdapter
	Sports   domain.ContentAdapter
	Markets  domain.ContentAdapter
	Weather  domain.ContentAdapter
	AI       domain.ContentAdapter
	Games    domain.ContentAdapter
	Settings domain.ContentAdapter
	DevTools domain.ContentAdapter
	Default  domain.ContentAdapter
}

// Router holds the static magazine table.
type Router struct {
	table    [10]domain.ContentAdapter
	weather  domain.ContentAdapter
	fallback domain.ContentAdapter
}

// New builds the routing table. Default must be non-nil.
func New(a Adapters) *Router {
	if a.Default == nil {
		panic("router: default adapter is required")
	}
	r := &Router{fallback: a.Default, weather: a.Weather}
	r.table[1] = a.System
	r.table[2] = a.News
	r.table[3] = a.Sports
	r.table[4] = a.Markets
	r.table[5] = a.AI
	r.table[6] = a.Games
	r.table[7] = a.Settings
	r.table[8] = a.DevTools
	return r
}

// Route picks the adapter for id. Magazine 4 is the only one split by a secondary range.
func (r *Router) Route(id domain.PageID) Handle {
	mag := id.Magazine()

	var adapter domain.ContentAdapter
	if mag >= 0 && mag < len(r.table) {
		adapter = r.table[mag]
	}
	if mag == 4 && id.Number >= weatherFirst && id.Number <= weatherLast && r.weather != nil {
		adapter = r.weather
	}
	if adapter == nil {
		adapter = r.fallback
	}

	return Handle{Name: adapter.Name(), Magazine: mag, Adapter: adapter}
}

// Binding describes one row of the routing table.
type Binding struct {
	Range   string
	Adapter string
}

// Table lists the effective bindings, used by the dev-tools pages and pagectl.
func (r *Router) Table() []Binding {
	var out []Binding
	for mag := 1; mag <= 9; mag++ {
		first := mag * 100
		if mag == 4 && r.weather != nil {
			out = append(out,
				Binding{Range: "400-419", Adapter: r.nameAt(mag)},
				Binding{Range: "420-449", Adapter: r.weather.Name()},
				Binding{Range: "450-499", Adapter: r.nameAt(mag)},
			)
			continue
		}
		out = append(out, Binding{Range: rangeLabel(first, first+99), Adapter: r.nameAt(mag)})
	}
	return out
}

func (r *Router) nameAt(mag int) string {
	if a := r.table[mag]; a != nil {
		return a.Name()
	}
	return r.fallback.Name()
}

func rangeLabel(first, last int) string {
	return fmt.Sprintf("%d-%d", first, last)
}
