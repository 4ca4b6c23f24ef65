package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/idna"
	"golang.org/x/time/rate"
)

// HostRateLimiter spaces requests to the same host at least interval apart.
type HostRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	interval time.Duration
	burst    int
}

func NewHostRateLimiter(interval time.Duration, burst int) *HostRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
		burst:    burst,
	}
}

// WaitForHost blocks until the host of urlStr may be called again.
func (h *HostRateLimiter) WaitForHost(ctx context.Context, urlStr string) error {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return err
	}

	host, err := hostKey(parsedURL)
	if err != nil {
		return &url.Error{Op: "parse", URL: urlStr, Err: err}
	}

	if h.interval <= 0 {
		return ctx.Err()
	}
	return h.getLimiterForHost(host).Wait(ctx)
}

func (h *HostRateLimiter) getLimiterForHost(host string) *rate.Limiter {
	h.mu.RLock()
	limiter, exists := h.limiters[host]
	h.mu.RUnlock()

	if exists {
		return limiter
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if limiter, exists := h.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Every(h.interval), h.burst)
	h.limiters[host] = limiter
	return limiter
}

// hostKey is the limiter key for u: the punycode, lower-cased host plus any explicit port, so
// spellings of the same internationalised name share one limiter.
func hostKey(u *url.URL) (string, error) {
	hostname := u.Hostname()
	if hostname == "" {
		return "", errors.New("missing host in URL")
	}
	ascii, err := idna.Lookup.ToASCII(hostname)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", hostname, err)
	}
	ascii = strings.ToLower(ascii)
	if port := u.Port(); port != "" {
		return net.JoinHostPort(ascii, port), nil
	}
	return ascii, nil
}
