// ABOUTME: Request-scoped log fields carried on the context
// ABOUTME: TraceContextHandler copies them onto every record; keys use a teletext. prefix
package logger

import (
	"context"
	"log/slog"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	PageIDKey    ContextKey = "teletext.page.id"
	AdapterKey   ContextKey = "teletext.adapter"
)

var contextKeys = []ContextKey{RequestIDKey, PageIDKey, AdapterKey}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func WithPageID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, PageIDKey, id)
}

func WithAdapter(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, AdapterKey, name)
}

// RequestID returns the request id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	for _, k := range contextKeys {
		if v, ok := ctx.Value(k).(string); ok && v != "" {
			attrs = append(attrs, slog.String(string(k), v))
		}
	}
	return attrs
}
