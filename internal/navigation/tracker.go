// Package navigation guards the page request entry point: only the most recent request of a
// navigation stream is honoured, and rapid digit entry is debounced before it commits.
package navigation

import (
	"context"
	"sync"
)

// Token identifies one outstanding request. Its context is cancelled once the request is
// superseded or cleared.
type Token struct {
	PageID string
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// Context returns the context the request should run under.
func (t *Token) Context() context.Context {
	return t.ctx
}

// Cancelled reports whether the token has been superseded or cleared.
func (t *Token) Cancelled() bool {
	return t.ctx.Err() != nil
}

// RequestTracker keeps at most one live request per navigation stream. Cancellation is
// cooperative: callers check IsRequestActive before applying a late result.
type RequestTracker struct {
	mu      sync.Mutex
	seq     uint64
	current *Token
}

func NewRequestTracker() *RequestTracker {
	return &RequestTracker{}
}

// CreateCancellableRequest cancels any outstanding request and registers a new one for pageID.
func (r *RequestTracker) CreateCancellableRequest(ctx context.Context, pageID string) *Token {
	reqCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		r.current.cancel()
	}
	r.seq++
	tok := &Token{PageID: pageID, seq: r.seq, ctx: reqCtx, cancel: cancel}
	r.current = tok
	return tok
}

// IsRequestActive reports whether tok is still the stream's current, uncancelled request.
func (r *RequestTracker) IsRequestActive(tok *Token) bool {
	if tok == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil && r.current.seq == tok.seq && !tok.Cancelled()
}

// IsActive reports whether a live request exists for pageID.
func (r *RequestTracker) IsActive(pageID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil && r.current.PageID == pageID && !r.current.Cancelled()
}

// Current returns the outstanding request, if any.
func (r *RequestTracker) Current() *Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Complete releases tok after its result has been handled. A superseded token is ignored.
func (r *RequestTracker) Complete(tok *Token) {
	if tok == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil && r.current.seq == tok.seq {
		r.current = nil
	}
	tok.cancel()
}

// ClearRequest cancels the outstanding request and resets the tracker.
func (r *RequestTracker) ClearRequest() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.current.cancel()
		r.current = nil
	}
}
