package finitestate

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m, err := New(slog.Default().Handler())
	require.NoError(t, err)
	assert.Equal(t, StatusNew, m.GetState())
}

func TestListenerLifecycle(t *testing.T) {
	t.Run("normal run", func(t *testing.T) {
		m, err := New(slog.Default().Handler())
		require.NoError(t, err)

		for _, state := range []string{StatusBooting, StatusRunning, StatusStopping, StatusStopped} {
			require.NoError(t, m.Transition(state), "transition to %s", state)
			assert.Equal(t, state, m.GetState())
		}
	})

	t.Run("bind failure", func(t *testing.T) {
		m, err := New(slog.Default().Handler())
		require.NoError(t, err)

		require.NoError(t, m.Transition(StatusBooting))
		require.NoError(t, m.Transition(StatusError))
		assert.Equal(t, StatusError, m.GetState())
	})

	t.Run("cannot skip booting", func(t *testing.T) {
		m, err := New(slog.Default().Handler())
		require.NoError(t, err)
		assert.Error(t, m.Transition(StatusRunning))
		assert.Equal(t, StatusNew, m.GetState())
	})
}

func TestStateChanDeliversEveryTransition(t *testing.T) {
	m, err := New(slog.Default().Handler())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	states := m.GetStateChan(ctx)

	seen := make(chan []string, 1)
	go func() {
		var got []string
		for s := range states {
			got = append(got, s)
			if s == StatusStopped {
				break
			}
		}
		seen <- got
	}()

	for _, state := range []string{StatusBooting, StatusRunning, StatusStopping, StatusStopped} {
		require.NoError(t, m.Transition(state))
	}

	select {
	case got := <-seen:
		assert.Equal(t,
			[]string{StatusNew, StatusBooting, StatusRunning, StatusStopping, StatusStopped}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not see the Stopped state")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		state string
		want  string
	}{
		{StatusNew, "Created"},
		{StatusBooting, "Starting"},
		{StatusRunning, "Running"},
		{StatusStopping, "Stopping"},
		{StatusStopped, "Stopped"},
		{StatusError, "Failed"},
		{"bogus", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.state))
		})
	}
}
