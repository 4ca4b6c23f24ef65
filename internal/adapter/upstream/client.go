// Package upstream is the HTTP plumbing shared by the network-backed content adapters: per-host
// rate limiting, timeouts and mapping of transport and status failures onto adapter errors.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"teletext/internal/domain"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultUserAgent    = "teletext/1.0 (+https://github.com/teletext)"
	DefaultMaxBodyBytes = 4 << 20
)

type Config struct {
	Timeout      time.Duration
	UserAgent    string
	HostInterval time.Duration
	HostBurst    int
	MaxBodyBytes int64
}

// Client performs upstream calls on behalf of one adapter. Every failure it returns is a
// *domain.AdapterError.
type Client struct {
	adapter      string
	http         *http.Client
	limiter      *HostRateLimiter
	userAgent    string
	maxBodyBytes int64
}

// sharedTransport is reused by every adapter client for connection reuse.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     120 * time.Second,
}

// New returns a client for the named adapter. limiter may be shared between adapters so hosts
// are throttled across all of them; nil disables throttling.
func New(adapter string, cfg Config, limiter *HostRateLimiter) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Client{
		adapter:      adapter,
		http:         &http.Client{Timeout: cfg.Timeout, Transport: sharedTransport},
		limiter:      limiter,
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// WithHTTPClient swaps the underlying client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Get fetches url and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, id domain.PageID, url string, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewAdapterError(domain.CodeValidation, c.adapter, id, "invalid upstream url", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return c.do(ctx, id, req)
}

// GetJSON fetches url and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, id domain.PageID, url string, out any) error {
	body, err := c.Get(ctx, id, url, "application/json")
	if err != nil {
		return err
	}
	return c.decode(id, body, out)
}

// PostJSON sends in as JSON and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, id domain.PageID, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return domain.NewAdapterError(domain.CodeValidation, c.adapter, id, "failed to encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.NewAdapterError(domain.CodeValidation, c.adapter, id, "invalid upstream url", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(ctx, id, req)
	if err != nil {
		return err
	}
	return c.decode(id, body, out)
}

func (c *Client) do(ctx context.Context, id domain.PageID, req *http.Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.WaitForHost(ctx, req.URL.String()); err != nil {
			return nil, domain.NewAdapterError(domain.CodeUpstream, c.adapter, id, "rate limit wait failed", err)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewAdapterError(domain.CodeUpstream, c.adapter, id, "fetch failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, domain.NewAdapterError(domain.CodeUpstream, c.adapter, id, "fetch failed reading body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ae := Classify(c.adapter, id, resp.StatusCode)
		ae.Message = fmt.Sprintf("%s: %s", ae.Message, snippet(body))
		return nil, ae
	}
	return body, nil
}

func (c *Client) decode(id domain.PageID, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		var syntaxErr *json.SyntaxError
		msg := "invalid upstream payload"
		if errors.As(err, &syntaxErr) {
			msg = fmt.Sprintf("malformed upstream json at offset %d", syntaxErr.Offset)
		}
		return domain.NewAdapterError(domain.CodeValidation, c.adapter, id, msg, err)
	}
	return nil
}

// Classify maps a non-2xx status onto the adapter error taxonomy: 5xx, 408 and 429 are upstream
// failures, 404 means no content, and any other 4xx is a validation failure.
func Classify(adapter string, id domain.PageID, status int) *domain.AdapterError {
	var ae *domain.AdapterError
	switch {
	case status >= 500, status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		ae = domain.NewAdapterError(domain.CodeUpstream, adapter, id, "upstream request failed", nil)
	case status == http.StatusNotFound:
		ae = domain.NewAdapterError(domain.CodeContentUnavailable, adapter, id, "upstream has no content", nil)
	default:
		ae = domain.NewAdapterError(domain.CodeValidation, adapter, id, "upstream rejected request", nil)
	}
	ae.Status = status
	return ae
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}
