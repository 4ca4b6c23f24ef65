package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teletext/internal/infra/logger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	var seen string
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		seen = logger.RequestID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
	})
}

func TestNoCache(t *testing.T) {
	e := echo.New()
	e.Use(NoCache())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "no-store, no-cache, must-revalidate, max-age=0", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.Equal(t, "0", rec.Header().Get("Expires"))
}

func TestCustomHTTPErrorHandler(t *testing.T) {
	tests := map[string]struct {
		err        error
		wantStatus int
		want       ErrorResponse
	}{
		"page error exposes details": {
			err:        &PageError{PageNumber: "203", Err: errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
			want:       ErrorResponse{Error: "Failed to retrieve page", Details: "boom", PageNumber: "203"},
		},
		"echo client error keeps message": {
			err:        echo.NewHTTPError(http.StatusConflict, "request superseded"),
			wantStatus: http.StatusConflict,
			want:       ErrorResponse{Error: "request superseded"},
		},
		"echo server error hides message": {
			err:        echo.NewHTTPError(http.StatusBadGateway, "dial tcp 10.0.0.1"),
			wantStatus: http.StatusBadGateway,
			want:       ErrorResponse{Error: "An unexpected error occurred"},
		},
		"unknown error": {
			err:        errors.New("nil map"),
			wantStatus: http.StatusInternalServerError,
			want:       ErrorResponse{Error: "An unexpected error occurred"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			e.HTTPErrorHandler = CustomHTTPErrorHandler(discardLogger())
			e.GET("/", func(echo.Context) error { return tc.err })

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			require.Equal(t, tc.wantStatus, rec.Code)
			var got ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(AccessLog(slog.New(slog.NewJSONHandler(&buf, nil))))
	e.GET("/page/:id", func(c echo.Context) error {
		c.Response().Header().Set("X-Cache", "HIT")
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page/100", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "access", entry["log_type"])
	assert.Equal(t, "/page/100", entry["path"])
	assert.EqualValues(t, 200, entry["status_code"])
	assert.Equal(t, "HIT", entry["x_cache"])
}
