package static

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teletext/internal/domain"
)

func TestSystem_FixedPages(t *testing.T) {
	a := NewSystem(nil)
	ctx := context.Background()

	tests := map[string]struct {
		id        string
		wantTitle string
		wantLinks int
	}{
		"index": {id: "100", wantTitle: "Teletext", wantLinks: len(DefaultSections)},
		"help":  {id: "101", wantTitle: "Help", wantLinks: 2},
		"about": {id: "102", wantTitle: "About", wantLinks: 2},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			page, err := a.GetPage(ctx, domain.MustParsePageID(tc.id), nil)
			require.NoError(t, err)
			assert.Equal(t, tc.id, page.ID)
			assert.Equal(t, tc.wantTitle, page.Title)
			assert.Len(t, page.Links, tc.wantLinks)
			assert.Len(t, page.Rows, domain.PageRows)
		})
	}
}

func TestSystem_IndexListsSections(t *testing.T) {
	page, err := NewSystem(nil).GetPage(context.Background(), domain.MustParsePageID("100"), nil)
	require.NoError(t, err)

	joined := strings.Join(page.Rows, "\n")
	for _, s := range DefaultSections {
		assert.Contains(t, joined, s.Label)
	}
	assert.Equal(t, "200", page.Links[0].TargetPage)
	assert.Equal(t, domain.LinkColorRed, page.Links[0].Color)
}

func TestComingSoon(t *testing.T) {
	ctx := context.Background()
	tests := map[string]struct {
		adapter *Adapter
		id      string
	}{
		"unknown system page": {adapter: NewSystem(nil), id: "150"},
		"system sub-page":     {adapter: NewSystem(nil), id: "100-2"},
		"default adapter":     {adapter: NewDefault(), id: "900"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			page, err := tc.adapter.GetPage(ctx, domain.MustParsePageID(tc.id), nil)
			require.NoError(t, err)
			assert.Equal(t, tc.id, page.ID)
			assert.Equal(t, "coming_soon", page.Meta[domain.MetaFallback])
			assert.Equal(t, tc.adapter.Name(), page.Meta[domain.MetaSource])
		})
	}
}

func TestCachePolicy(t *testing.T) {
	a := NewSystem(nil)
	assert.Positive(t, a.CacheTTL(domain.MustParsePageID("100")))
	assert.Nil(t, a.CacheParams(map[string]string{"x": "1"}))
}
