package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"teletext/internal/domain"
	"teletext/internal/metrics"
	"teletext/internal/navigation"
)

// ErrRequestSuperseded is returned to a navigation request whose result arrived after a newer
// request on the same stream took over.
var ErrRequestSuperseded = errors.New("request superseded")

// NavState is the lifecycle of the latest request on a navigation stream.
type NavState int

const (
	NavIdle NavState = iota
	NavRequesting
	NavSucceeded
	NavCancelled
	NavFailed
)

func (s NavState) String() string {
	switch s {
	case NavIdle:
		return "idle"
	case NavRequesting:
		return "requesting"
	case NavSucceeded:
		return "succeeded"
	case NavCancelled:
		return "cancelled"
	case NavFailed:
		return "failed"
	default:
		return fmt.Sprintf("NavState(%d)", int(s))
	}
}

// TransitionFunc observes lifecycle changes.
type TransitionFunc func(pageID string, from, to NavState)

// Navigator serialises one navigation stream: a new request cancels the one in flight and the
// superseded result is discarded.
type Navigator struct {
	dispatcher   *Dispatcher
	tracker      *navigation.RequestTracker
	logger       *slog.Logger
	onTransition TransitionFunc

	mu     sync.Mutex
	state  NavState
	pageID string
}

func NewNavigator(d *Dispatcher, logger *slog.Logger, onTransition TransitionFunc) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{
		dispatcher:   d,
		tracker:      navigation.NewRequestTracker(),
		logger:       logger,
		onTransition: onTransition,
	}
}

// State returns the current lifecycle state and the page it refers to.
func (n *Navigator) State() (NavState, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state, n.pageID
}

// Navigate resolves rawID as the stream's newest request. Cache hits go straight to Succeeded.
func (n *Navigator) Navigate(ctx context.Context, rawID string, params map[string]string) (*Result, error) {
	tok := n.tracker.CreateCancellableRequest(ctx, rawID)
	defer n.tracker.Complete(tok)

	n.mu.Lock()
	if n.state == NavRequesting {
		n.transitionLocked(NavCancelled, n.pageID)
	}
	n.mu.Unlock()

	id, err := domain.ParsePageID(rawID)
	if err != nil {
		// Invalid ids never enter the lifecycle.
		if !n.settle(tok, NavIdle, rawID) {
			return nil, n.superseded(ctx, rawID)
		}
		return n.dispatcher.Recover(rawID, err)
	}

	if res, ok := n.dispatcher.Lookup(tok.Context(), id, params); ok {
		if !n.settle(tok, NavSucceeded, rawID) {
			return nil, n.superseded(ctx, rawID)
		}
		return res, nil
	}

	if !n.settle(tok, NavRequesting, rawID) {
		return nil, n.superseded(ctx, rawID)
	}

	res, err := n.dispatcher.Fetch(tok.Context(), id, params)

	// The result is applied only if no newer request took over meanwhile.
	if !n.tracker.IsRequestActive(tok) {
		return nil, n.superseded(ctx, rawID)
	}
	if err != nil {
		n.settle(tok, NavFailed, rawID)
		return n.dispatcher.Recover(rawID, err)
	}
	n.settle(tok, NavSucceeded, rawID)
	return res, nil
}

// Cancel abandons the in-flight request, if any.
func (n *Navigator) Cancel() {
	n.tracker.ClearRequest()
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == NavRequesting {
		n.transitionLocked(NavCancelled, n.pageID)
	}
}

// settle moves to state on behalf of tok, unless tok has been superseded.
func (n *Navigator) settle(tok *navigation.Token, state NavState, pageID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.tracker.IsRequestActive(tok) {
		return false
	}
	n.transitionLocked(state, pageID)
	return true
}

func (n *Navigator) transitionLocked(to NavState, pageID string) {
	from := n.state
	n.state = to
	n.pageID = pageID
	if n.onTransition != nil && from != to {
		n.onTransition(pageID, from, to)
	}
}

func (n *Navigator) superseded(ctx context.Context, rawID string) error {
	// A caller whose own context ended is told so rather than superseded.
	if err := ctx.Err(); err != nil {
		return err
	}
	metrics.RecordSuperseded()
	n.logger.DebugContext(ctx, "navigation request superseded", "teletext.page.id", rawID)
	return ErrRequestSuperseded
}

// DefaultMaxStreams bounds the number of remembered navigation streams.
const DefaultMaxStreams = 1024

// NavigatorRegistry hands out one Navigator per stream id. Idle streams age out LRU-first.
type NavigatorRegistry struct {
	dispatcher   *Dispatcher
	logger       *slog.Logger
	onTransition TransitionFunc

	mu      sync.Mutex
	streams *lru.Cache[string, *Navigator]
}

func NewNavigatorRegistry(d *Dispatcher, maxStreams int, logger *slog.Logger, onTransition TransitionFunc) (*NavigatorRegistry, error) {
	if maxStreams <= 0 {
		maxStreams = DefaultMaxStreams
	}
	streams, err := lru.NewWithEvict[string, *Navigator](maxStreams, func(_ string, n *Navigator) {
		n.Cancel()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create navigator registry: %w", err)
	}
	return &NavigatorRegistry{
		dispatcher:   d,
		logger:       logger,
		onTransition: onTransition,
		streams:      streams,
	}, nil
}

// Get returns the stream's navigator, creating it on first use.
func (r *NavigatorRegistry) Get(streamID string) *Navigator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.streams.Get(streamID); ok {
		return n
	}
	n := NewNavigator(r.dispatcher, r.logger, r.onTransition)
	r.streams.Add(streamID, n)
	return n
}

// Len returns the number of tracked streams.
func (r *NavigatorRegistry) Len() int {
	return r.streams.Len()
}
