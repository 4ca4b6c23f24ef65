package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"teletext/internal/dispatch"
	"teletext/internal/domain"
	"teletext/internal/infra/logger"
	"teletext/internal/middleware"
)

const (
	HeaderNavigationStream = "X-Navigation-Stream"
	HeaderCache            = "X-Cache"
)

// PageResponse is the body of a successful page request.
type PageResponse struct {
	Success bool         `json:"success"`
	Page    *domain.Page `json:"page"`
}

// ReadyFunc reports whether the cache backend is reachable.
type ReadyFunc func(ctx context.Context) error

type Handler struct {
	dispatcher *dispatch.Dispatcher
	streams    *dispatch.NavigatorRegistry
	ready      ReadyFunc
	logger     *slog.Logger
}

// NewHandler wires the HTTP boundary. streams and ready may be nil: navigation streams are then
// ignored and readiness always succeeds.
func NewHandler(d *dispatch.Dispatcher, streams *dispatch.NavigatorRegistry, ready ReadyFunc, logger *slog.Logger) *Handler {
	return &Handler{dispatcher: d, streams: streams, ready: ready, logger: logger}
}

// Register mounts every route on e.
func (h *Handler) Register(e *echo.Echo, withMetrics bool) {
	pages := e.Group("/page", middleware.NoCache())
	pages.GET("/:id", h.GetPage)
	pages.POST("/:id", h.PostPage)
	pages.OPTIONS("/:id", h.Preflight)

	e.GET("/healthz", h.Healthz)
	e.GET("/readyz", h.Readyz)
	if withMetrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	internal := e.Group("/internal/cache")
	internal.DELETE("", h.ClearCache)
	internal.DELETE("/:id", h.InvalidatePage)
}

// GetPage serves GET /page/:id. Every malformed or failed request still answers 200 with a
// fallback page; only unexpected failures reach the error handler.
func (h *Handler) GetPage(c echo.Context) error {
	rawID := c.Param("id")
	ctx := logger.WithPageID(c.Request().Context(), rawID)
	params := queryParams(c)

	var (
		res *dispatch.Result
		err error
	)
	if stream := c.Request().Header.Get(HeaderNavigationStream); stream != "" && h.streams != nil {
		res, err = h.streams.Get(stream).Navigate(ctx, rawID, params)
	} else {
		res, err = h.dispatcher.Resolve(ctx, rawID, params)
	}

	if errors.Is(err, dispatch.ErrRequestSuperseded) {
		return c.JSON(http.StatusConflict, middleware.ErrorResponse{Error: "request superseded"})
	}
	if err != nil {
		return &middleware.PageError{PageNumber: rawID, Err: err}
	}

	if res.Err != nil {
		h.logger.InfoContext(ctx, "serving fallback page", "teletext.adapter", res.Adapter, "error", res.Err)
	}
	cacheHeader := "MISS"
	if res.CacheHit {
		cacheHeader = "HIT"
	}
	c.Response().Header().Set(HeaderCache, cacheHeader)
	return c.JSON(http.StatusOK, PageResponse{Success: true, Page: res.Page})
}

// PostPage answers POST /page/:id; pages are read-only.
func (h *Handler) PostPage(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, middleware.ErrorResponse{Error: "not implemented"})
}

// Preflight answers CORS preflight requests for /page/:id.
func (h *Handler) Preflight(c echo.Context) error {
	hdr := c.Response().Header()
	hdr.Set("Access-Control-Allow-Origin", "*")
	hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	hdr.Set("Access-Control-Allow-Headers", "Content-Type, "+HeaderNavigationStream+", "+middleware.HeaderRequestID)
	hdr.Set("Access-Control-Max-Age", "86400")
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(c echo.Context) error {
	if h.ready != nil {
		if err := h.ready(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "cache down", "error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

// InvalidatePage drops the cached copy of one page. Query parameters select the variant.
func (h *Handler) InvalidatePage(c echo.Context) error {
	id, err := domain.ParsePageID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid page id", Details: err.Error()})
	}
	if err := h.dispatcher.Invalidate(c.Request().Context(), id, queryParams(c)); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cache unavailable").SetInternal(err)
	}
	h.logger.InfoContext(c.Request().Context(), "page invalidated", "teletext.page.id", id.String())
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ClearCache(c echo.Context) error {
	if err := h.dispatcher.Clear(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cache unavailable").SetInternal(err)
	}
	h.logger.InfoContext(c.Request().Context(), "page cache cleared")
	return c.NoContent(http.StatusNoContent)
}

// queryParams flattens the query string, keeping the first value of repeated keys.
func queryParams(c echo.Context) map[string]string {
	values := c.QueryParams()
	if len(values) == 0 {
		return nil
	}
	params := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}
