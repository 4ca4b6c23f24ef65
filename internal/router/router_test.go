package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teletext/internal/domain"
)

type namedAdapter string

func (n namedAdapter) Name() string { return string(n) }

func (n namedAdapter) GetPage(_ context.Context, id domain.PageID, _ map[string]string) (*domain.Page, error) {
	return &domain.Page{ID: id.String(), Title: string(n)}, nil
}

func newTestRouter() *Router {
	return New(Adapters{
		System:   namedAdapter("system"),
		News:     namedAdapter("news"),
		Sports:   namedAdapter("sports"),
		Markets:  namedAdapter("markets"),
		Weather:  namedAdapter("weather"),
		AI:       namedAdapter("ai"),
		Games:    namedAdapter("games"),
		Settings: namedAdapter("settings"),
		DevTools: namedAdapter("devtools"),
		Default:  namedAdapter("static"),
	})
}

func TestRouter_Route(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		page string
		want string
	}{
		{"100", "system"},
		{"199", "system"},
		{"203-3", "news"},
		{"300", "sports"},
		{"400", "markets"},
		{"419", "markets"},
		{"420", "weather"},
		{"435", "weather"},
		{"449", "weather"},
		{"450", "markets"},
		{"430", "weather"},
		{"471", "markets"},
		{"500", "ai"},
		{"600", "games"},
		{"700", "settings"},
		{"800", "devtools"},
		{"900", "static"},
		{"999", "static"},
	}

	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			h := r.Route(domain.MustParsePageID(tt.page))
			assert.Equal(t, tt.want, h.Name)
			assert.Equal(t, tt.want, h.Adapter.Name())
		})
	}
}

func TestRouter_MagazineFourSplit(t *testing.T) {
	r := newTestRouter()
	for n := 400; n <= 499; n++ {
		h := r.Route(domain.PageID{Number: n})
		if n >= 420 && n < 450 {
			assert.Equal(t, "weather", h.Name, "page %d", n)
		} else {
			assert.Equal(t, "markets", h.Name, "page %d", n)
		}
		assert.Equal(t, 4, h.Magazine)
	}
}

func TestRouter_IsPure(t *testing.T) {
	r := newTestRouter()
	id := domain.MustParsePageID("245-2")
	first := r.Route(id)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, r.Route(id))
	}
}

func TestRouter_UnmappedFallsThroughToDefault(t *testing.T) {
	r := New(Adapters{System: namedAdapter("system"), Default: namedAdapter("static")})

	assert.Equal(t, "static", r.Route(domain.MustParsePageID("250")).Name)
	assert.Equal(t, "static", r.Route(domain.MustParsePageID("430")).Name, "no weather adapter bound")
	assert.Equal(t, "system", r.Route(domain.MustParsePageID("100")).Name)
}

func TestRouter_NewRequiresDefault(t *testing.T) {
	assert.Panics(t, func() { New(Adapters{}) })
}

func TestRouter_Table(t *testing.T) {
	table := newTestRouter().Table()
	require.Len(t, table, 11)
	assert.Equal(t, Binding{Range: "100-199", Adapter: "system"}, table[0])
	assert.Equal(t, Binding{Range: "420-449", Adapter: "weather"}, table[4])
	assert.Equal(t, Binding{Range: "900-999", Adapter: "static"}, table[10])
}
