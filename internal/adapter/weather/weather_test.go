package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teletext/internal/adapter/upstream"
	"teletext/internal/domain"
)

const forecastJSON = `{
	"location": "London",
	"current": {"tempC": 12.4, "condition": "Cloudy", "windKph": 18, "humidity": 81},
	"forecast": [
		{"day": "Tue", "highC": 14, "lowC": 7, "condition": "Rain"},
		{"day": "Wed", "highC": 11, "lowC": 4, "condition": "Sunny"}
	]
}`

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL: srv.URL,
		Locations: []Location{
			{Page: 421, Name: "London", Query: "london,uk"},
			{Page: 430, Name: "Paris", Query: "paris,fr"},
		},
	}, upstream.New(Name, upstream.Config{}, nil))
}

func TestAdapter_Forecast(t *testing.T) {
	var gotLocation string
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotLocation = r.URL.Query().Get("location")
		_, _ = w.Write([]byte(forecastJSON))
	})

	page, err := a.GetPage(context.Background(), domain.MustParsePageID("421"), nil)
	require.NoError(t, err)

	assert.Equal(t, "london,uk", gotLocation)
	assert.Equal(t, "London", page.Title)
	joined := strings.Join(page.Rows, "\n")
	assert.Contains(t, joined, "12C Cloudy")
	assert.Contains(t, joined, "18 km/h")
	assert.Contains(t, joined, "81%")
	assert.Contains(t, joined, "Tue     14C    7C  Rain")
}

func TestAdapter_StationOverride(t *testing.T) {
	var gotStation string
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotStation = r.URL.Query().Get("station")
		_, _ = w.Write([]byte(`{"current":{"tempC":3,"condition":"Snow"}}`))
	})

	page, err := a.GetPage(context.Background(), domain.MustParsePageID("420"), map[string]string{"station": "3"})
	require.NoError(t, err)
	assert.Equal(t, "3", gotStation)
	assert.Equal(t, "Station 3", page.Title)

	_, err = a.GetPage(context.Background(), domain.MustParsePageID("420"), map[string]string{"station": "north"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAdapter_Index(t *testing.T) {
	a := newTestAdapter(t, func(http.ResponseWriter, *http.Request) {
		t.Error("index must not call upstream")
	})
	page, err := a.GetPage(context.Background(), domain.MustParsePageID("420"), nil)
	require.NoError(t, err)
	joined := strings.Join(page.Rows, "\n")
	assert.Contains(t, joined, "London")
	assert.Contains(t, joined, "Paris")
}

func TestAdapter_Errors(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	})
	_, err := a.GetPage(context.Background(), domain.MustParsePageID("430"), nil)
	assert.ErrorIs(t, err, domain.ErrUpstream)

	_, err = a.GetPage(context.Background(), domain.MustParsePageID("421-2"), nil)
	assert.ErrorIs(t, err, domain.ErrPageNotFound)

	page, err := a.GetPage(context.Background(), domain.MustParsePageID("445"), nil)
	require.NoError(t, err)
	assert.Equal(t, "coming_soon", page.Meta[domain.MetaFallback])
}

func TestAdapter_CacheParams(t *testing.T) {
	a := New(Config{}, nil)
	assert.Equal(t, map[string]string{"station": "3"}, a.CacheParams(map[string]string{"station": "3", "theme": "dark"}))
	assert.Nil(t, a.CacheParams(nil))
}
