package navigation

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is the quiet period before input is committed.
const DefaultDebounceWindow = 100 * time.Millisecond

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so the debouncer can be driven deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock is the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// DebounceState is the debouncer's position in Idle -> Pending -> Committed.
type DebounceState int

const (
	StateIdle DebounceState = iota
	StatePending
	StateCommitted
)

func (s DebounceState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

// Debouncer coalesces rapid input. The raw value is visible immediately; it is promoted to the
// committed value only after a quiet window with no further updates.
type Debouncer struct {
	mu        sync.Mutex
	clock     Clock
	window    time.Duration
	onCommit  func(string)
	value     string
	committed string
	state     DebounceState
	updatedAt time.Time
	timer     Timer
	gen       uint64
}

type DebounceOption func(*Debouncer)

func WithClock(c Clock) DebounceOption {
	return func(d *Debouncer) { d.clock = c }
}

func WithWindow(w time.Duration) DebounceOption {
	return func(d *Debouncer) {
		if w > 0 {
			d.window = w
		}
	}
}

// WithOnCommit registers a callback run with each committed value. It runs outside the lock.
func WithOnCommit(fn func(string)) DebounceOption {
	return func(d *Debouncer) { d.onCommit = fn }
}

func NewDebouncer(opts ...DebounceOption) *Debouncer {
	d := &Debouncer{clock: RealClock{}, window: DefaultDebounceWindow}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// UpdateInput stores v and restarts the quiet window.
func (d *Debouncer) UpdateInput(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.value = v
	d.state = StatePending
	d.updatedAt = d.clock.Now()
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.window, func() { d.fire(gen) })
}

// ForceUpdate commits the current raw value without waiting.
func (d *Debouncer) ForceUpdate() {
	d.mu.Lock()
	if d.state != StatePending {
		d.mu.Unlock()
		return
	}
	d.stopLocked()
	v, cb := d.commitLocked()
	d.mu.Unlock()

	if cb != nil {
		cb(v)
	}
}

// ClearInput resets both raw and committed values and cancels a pending commit.
func (d *Debouncer) ClearInput() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.value = ""
	d.committed = ""
	d.state = StateIdle
}

// Value returns the latest raw input.
func (d *Debouncer) Value() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Committed returns the last committed input.
func (d *Debouncer) Committed() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.committed
}

// Remaining is the time left before a pending value commits, or zero.
func (d *Debouncer) Remaining() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StatePending {
		return 0
	}
	left := d.window - d.clock.Now().Sub(d.updatedAt)
	if left < 0 {
		return 0
	}
	return left
}

func (d *Debouncer) State() DebounceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Stop cancels a pending commit without changing the stored values.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	if d.state == StatePending {
		d.state = StateIdle
	}
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A newer update or a clear happened after this timer was armed.
	if gen != d.gen || d.state != StatePending {
		d.mu.Unlock()
		return
	}
	d.gen++
	d.timer = nil
	v, cb := d.commitLocked()
	d.mu.Unlock()

	if cb != nil {
		cb(v)
	}
}

func (d *Debouncer) commitLocked() (string, func(string)) {
	d.committed = d.value
	d.state = StateCommitted
	return d.committed, d.onCommit
}

func (d *Debouncer) stopLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
