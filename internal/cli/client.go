package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"teletext/internal/adapter/upstream"
	"teletext/internal/domain"
	"teletext/internal/handler"
	"teletext/internal/retry"
)

const clientName = "pagectl"

// pageClient fetches rendered pages from a teletext server, retrying transient failures.
type pageClient struct {
	baseURL string
	http    *upstream.Client
	retrier *retry.Retrier
}

func newPageClient(base string, timeout time.Duration, attempts int, log *slog.Logger) *pageClient {
	if log == nil {
		log = slog.Default()
	}
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialDelay = 500 * time.Millisecond
	cfg.MaxDelay = 4 * time.Second
	return &pageClient{
		baseURL: strings.TrimRight(base, "/"),
		http:    upstream.New(clientName, upstream.Config{Timeout: timeout}, nil),
		retrier: retry.New(cfg, log),
	}
}

// Fetch requests GET /page/{id}. The server answers fallback pages with 200, so only transport
// failures and 5xx responses are retried.
func (c *pageClient) Fetch(ctx context.Context, id domain.PageID, params map[string]string) (*domain.Page, error) {
	target := c.pageURL(id, params)
	resp, err := retry.Execute(ctx, c.retrier, "pagectl.fetch", func(ctx context.Context) (*handler.PageResponse, error) {
		var out handler.PageResponse
		if err := c.http.GetJSON(ctx, id, target, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Page == nil {
		return nil, fmt.Errorf("server returned no page for %s", id)
	}
	return resp.Page, nil
}

func (c *pageClient) pageURL(id domain.PageID, params map[string]string) string {
	u := c.baseURL + "/page/" + url.PathEscape(id.String())
	if len(params) == 0 {
		return u
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return u + "?" + q.Encode()
}

// parseParams turns repeated key=value flags into a map.
func parseParams(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid param %q: expected key=value", kv)
		}
		out[k] = v
	}
	return out, nil
}
