package retry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusReporter_NotifiesAfterEveryAttempt(t *testing.T) {
	reporter := NewStatusReporter()
	var mu sync.Mutex
	var states []State
	reporter.Subscribe(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	sleeper := &recordingSleep{}
	r := New(testConfig(), testLogger(), WithSleep(sleeper.sleep), WithReporter(reporter))

	calls := 0
	err := r.Do(context.Background(), "news", func(context.Context) error {
		calls++
		if calls < 3 {
			return errNetwork
		}
		return nil
	})
	require.NoError(t, err)

	require.Len(t, states, 3)
	assert.Equal(t, 1, states[0].Attempt)
	assert.True(t, states[0].IsRetrying)
	assert.Equal(t, testConfig().InitialDelay, states[0].NextDelay)
	assert.ErrorIs(t, states[0].LastError, errNetwork)

	assert.Equal(t, 3, states[2].Attempt)
	assert.Equal(t, 3, states[2].TotalAttempts)
	assert.False(t, states[2].IsRetrying)
	assert.NoError(t, states[2].LastError)

	latest := reporter.Latest()
	require.Len(t, latest, 1)
	assert.Equal(t, "news", latest[0].Operation)
	assert.Equal(t, 3, latest[0].Attempt)
}

func TestStatusReporter_ListenerPanicIsContained(t *testing.T) {
	reporter := NewStatusReporter()
	reporter.Subscribe(func(State) { panic("listener bug") })

	seen := 0
	reporter.Subscribe(func(State) { seen++ })

	r := New(testConfig(), testLogger(), WithReporter(reporter))

	assert.NotPanics(t, func() {
		err := r.Do(context.Background(), "op", func(context.Context) error { return nil })
		require.NoError(t, err)
	})
	assert.Equal(t, 1, seen)
}

func TestStatusReporter_Unsubscribe(t *testing.T) {
	reporter := NewStatusReporter()
	seen := 0
	unsubscribe := reporter.Subscribe(func(State) { seen++ })

	r := New(testConfig(), testLogger(), WithReporter(reporter))
	_ = r.Do(context.Background(), "op", func(context.Context) error { return nil })
	unsubscribe()
	_ = r.Do(context.Background(), "op", func(context.Context) error { return nil })

	assert.Equal(t, 1, seen)
}
