package navigation

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock fires due timers from Advance, outside its own lock.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}

func TestDebouncer_CoalescesRapidInput(t *testing.T) {
	clock := newFakeClock()
	var commits []string
	d := NewDebouncer(WithClock(clock), WithOnCommit(func(v string) { commits = append(commits, v) }))

	d.UpdateInput("2")
	clock.Advance(30 * time.Millisecond)
	d.UpdateInput("20")
	clock.Advance(30 * time.Millisecond)
	d.UpdateInput("200")

	assert.Equal(t, "200", d.Value())
	assert.Equal(t, "", d.Committed())
	assert.Equal(t, StatePending, d.State())

	clock.Advance(99 * time.Millisecond)
	assert.Empty(t, commits)

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"200"}, commits)
	assert.Equal(t, "200", d.Committed())
	assert.Equal(t, StateCommitted, d.State())

	clock.Advance(time.Second)
	assert.Len(t, commits, 1)
}

func TestDebouncer_ForceUpdate(t *testing.T) {
	clock := newFakeClock()
	var commits []string
	d := NewDebouncer(WithClock(clock), WithOnCommit(func(v string) { commits = append(commits, v) }))

	d.ForceUpdate()
	assert.Empty(t, commits, "nothing pending")

	d.UpdateInput("30")
	d.ForceUpdate()
	assert.Equal(t, "30", d.Committed())
	assert.Equal(t, StateCommitted, d.State())

	// The armed timer must not commit a second time.
	clock.Advance(time.Second)
	assert.Equal(t, []string{"30"}, commits)
}

func TestDebouncer_ClearInput(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer(WithClock(clock))

	d.UpdateInput("1")
	clock.Advance(DefaultDebounceWindow)
	require.Equal(t, "1", d.Committed())

	d.UpdateInput("10")
	d.ClearInput()
	assert.Equal(t, "", d.Value())
	assert.Equal(t, "", d.Committed())
	assert.Equal(t, StateIdle, d.State())

	clock.Advance(time.Second)
	assert.Equal(t, "", d.Committed())
}

func TestDebouncer_WindowAndRemaining(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer(WithClock(clock), WithWindow(250*time.Millisecond))

	assert.Zero(t, d.Remaining())
	d.UpdateInput("4")
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 150*time.Millisecond, d.Remaining())

	clock.Advance(150 * time.Millisecond)
	assert.Equal(t, "4", d.Committed())
	assert.Zero(t, d.Remaining())
}

func TestDebouncer_Stop(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer(WithClock(clock))

	d.UpdateInput("5")
	d.Stop()
	clock.Advance(time.Second)
	assert.Equal(t, StateIdle, d.State())
	assert.Equal(t, "5", d.Value())
	assert.Equal(t, "", d.Committed())
}

func TestDebounceState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "committed", StateCommitted.String())
	assert.Equal(t, "unknown", DebounceState(9).String())
}

func TestRequestTracker_Supersedes(t *testing.T) {
	tracker := NewRequestTracker()
	ctx := context.Background()

	first := tracker.CreateCancellableRequest(ctx, "200")
	assert.True(t, tracker.IsRequestActive(first))
	assert.True(t, tracker.IsActive("200"))

	second := tracker.CreateCancellableRequest(ctx, "300")
	assert.True(t, first.Cancelled())
	assert.ErrorIs(t, first.Context().Err(), context.Canceled)
	assert.False(t, tracker.IsRequestActive(first))
	assert.False(t, tracker.IsActive("200"))
	assert.True(t, tracker.IsRequestActive(second))
	assert.Same(t, second, tracker.Current())
}

func TestRequestTracker_SameIDStillSupersedes(t *testing.T) {
	tracker := NewRequestTracker()
	first := tracker.CreateCancellableRequest(context.Background(), "200")
	second := tracker.CreateCancellableRequest(context.Background(), "200")

	assert.False(t, tracker.IsRequestActive(first))
	assert.True(t, tracker.IsRequestActive(second))
}

func TestRequestTracker_CompleteAndClear(t *testing.T) {
	tracker := NewRequestTracker()
	ctx := context.Background()

	first := tracker.CreateCancellableRequest(ctx, "200")
	second := tracker.CreateCancellableRequest(ctx, "201")

	// Completing a stale token leaves the current one alone.
	tracker.Complete(first)
	assert.True(t, tracker.IsRequestActive(second))

	tracker.Complete(second)
	assert.Nil(t, tracker.Current())
	assert.False(t, tracker.IsActive("201"))

	third := tracker.CreateCancellableRequest(ctx, "202")
	tracker.ClearRequest()
	assert.True(t, third.Cancelled())
	assert.Nil(t, tracker.Current())
	assert.False(t, tracker.IsRequestActive(nil))
}

func TestRequestTracker_ParentCancellation(t *testing.T) {
	tracker := NewRequestTracker()
	ctx, cancel := context.WithCancel(context.Background())
	tok := tracker.CreateCancellableRequest(ctx, "200")

	cancel()
	assert.False(t, tracker.IsRequestActive(tok))
}
