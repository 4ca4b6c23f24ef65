// ABOUTME: Default retry classification for adapter errors
// ABOUTME: Only network, timeout and fetch conditions are retried; validation never is
package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"teletext/internal/domain"
)

var retryableMarkers = []string{"network", "timeout", "timed out", "fetch"}

// DefaultShouldRetry ignores the attempt number and delegates to IsRetryable.
func DefaultShouldRetry(err error, _ int) bool {
	return IsRetryable(err)
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Caller went away or the request was superseded.
	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrPageNotFound) ||
		errors.Is(err, domain.ErrInvalidIdentifier) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, domain.ErrUpstream) ||
		errors.Is(err, domain.ErrContentUnavailable) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		var errno syscall.Errno
		if errors.As(opErr.Err, &errno) {
			switch errno {
			case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT:
				return true
			}
		}
		if opErr.Timeout() {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range retryableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
