package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/atlanticdynamic/lynxlet/internal/server/finitestate"
	httplistener "github.com/atlanticdynamic/lynxlet/internal/server/listeners/http"
	"github.com/atlanticdynamic/lynxlet/internal/server/routing"
	"github.com/atlanticdynamic/lynxlet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(body string) routing.HandlerFunc {
	return func(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
		_, err := io.WriteString(w, body)
		return err
	}
}

func fetch(t *testing.T, s *Server, listenerID, path string) (*http.Response, string) {
	t.Helper()
	l, ok := s.Listener(listenerID)
	require.True(t, ok)
	require.NotNil(t, l.Addr(), "listener %s is not bound", listenerID)

	resp, err := http.Get(fmt.Sprintf("http://%s%s", l.Addr(), path))
	require.NoError(t, err)
	defer func() { assert.NoError(t, resp.Body.Close()) }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func waitDone(t *testing.T, s *Server, within time.Duration) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(within):
		t.Fatalf("server did not stop within %s", within)
	}
}

func TestServerLifecycle(t *testing.T) {
	out := &testutil.SyncBuffer{}
	s := New(WithMessages(out, "started", "stopped"))

	_, err := s.AddListener(ListenerSpec{ID: "main", Address: "127.0.0.1"})
	require.NoError(t, err)
	require.NoError(t, s.Handle("main", http.MethodGet, "/", text("Yo!")))

	require.NoError(t, s.Start(t.Context()))
	assert.Equal(t, []string{"started"}, out.Lines())

	resp, body := fetch(t, s, "main", "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Yo!", body)

	t.Run("register while serving", func(t *testing.T) {
		require.NoError(t, s.Handle("main", http.MethodGet, "/late", text("late")))
		_, body := fetch(t, s, "main", "/late")
		assert.Equal(t, "late", body)
	})

	s.Shutdown()
	waitDone(t, s, 5*time.Second)

	l, _ := s.Listener("main")
	assert.Equal(t, finitestate.StatusStopped, l.GetState())
	assert.Equal(t, []string{"started", "stopped"}, out.Lines())
}

func TestServerAddListenerErrors(t *testing.T) {
	s := New()
	_, err := s.AddListener(ListenerSpec{ID: "main", Address: "127.0.0.1"})
	require.NoError(t, err)

	_, err = s.AddListener(ListenerSpec{ID: "main", Address: "127.0.0.1"})
	assert.ErrorIs(t, err, ErrDuplicateListener)

	_, err = s.AddListener(ListenerSpec{ID: "", Address: "127.0.0.1"})
	assert.ErrorIs(t, err, httplistener.ErrInvalidListener)

	assert.ErrorIs(t, s.Handle("other", http.MethodGet, "/", text("x")), ErrUnknownListener)

	require.NoError(t, s.Handle("main", http.MethodGet, "/", text("x")))
	err = s.Handle("main", http.MethodGet, "/", text("y"))
	var dup *routing.DuplicateRouteError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "/", dup.Path)

	require.NoError(t, s.Start(t.Context()))
	t.Cleanup(func() {
		s.Shutdown()
		waitDone(t, s, 5*time.Second)
	})

	_, err = s.AddListener(ListenerSpec{ID: "late", Address: "127.0.0.1"})
	assert.ErrorIs(t, err, ErrAlreadyStarted)
	assert.ErrorIs(t, s.Start(t.Context()), ErrAlreadyStarted)
}

func TestShutdownIdempotent(t *testing.T) {
	out := &testutil.SyncBuffer{}
	s := New(WithMessages(out, "", "stopped"))
	_, err := s.AddListener(ListenerSpec{ID: "main", Address: "127.0.0.1"})
	require.NoError(t, err)
	require.NoError(t, s.Start(t.Context()))

	var wg sync.WaitGroup
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Shutdown()
		}()
	}
	wg.Wait()
	waitDone(t, s, 5*time.Second)

	s.Shutdown()
	s.Stop()
	assert.Equal(t, []string{"stopped"}, out.Lines(), "shutdown work must run once")
}

func TestPartialBindFailure(t *testing.T) {
	busy := testutil.OccupyPort(t)

	s := New()
	_, err := s.AddListener(ListenerSpec{ID: "busy", Address: "127.0.0.1", Port: busy})
	require.NoError(t, err)
	_, err = s.AddListener(ListenerSpec{ID: "free", Address: "127.0.0.1"})
	require.NoError(t, err)
	require.NoError(t, s.Handle("free", http.MethodGet, "/", text("still here")))

	require.NoError(t, s.Start(t.Context()), "one bound listener is enough")
	t.Cleanup(func() {
		s.Shutdown()
		waitDone(t, s, 5*time.Second)
	})

	failed, _ := s.Listener("busy")
	assert.Equal(t, finitestate.StatusError, failed.GetState())

	_, body := fetch(t, s, "free", "/")
	assert.Equal(t, "still here", body)
}

func TestAllBindsFail(t *testing.T) {
	busy := testutil.OccupyPort(t)

	s := New()
	_, err := s.AddListener(ListenerSpec{ID: "a", Address: "127.0.0.1", Port: busy})
	require.NoError(t, err)

	err = s.Start(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoListeners)
	assert.ErrorIs(t, err, httplistener.ErrBind)

	var bindErr *httplistener.BindError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, "a", bindErr.ListenerID)

	waitDone(t, s, time.Second)
}

func TestNoListeners(t *testing.T) {
	out := &testutil.SyncBuffer{}
	s := New(WithMessages(out, "Started with custom launcher.", "App stopped."))

	require.NoError(t, s.Run(t.Context()))
	assert.Equal(t, []string{"Started with custom launcher.", "App stopped."}, out.Lines())
}

func TestRunCanceled(t *testing.T) {
	s := New()
	_, err := s.AddListener(ListenerSpec{ID: "main", Address: "127.0.0.1"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	l, _ := s.Listener("main")
	assert.Eventually(t, l.IsRunning, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, finitestate.StatusStopped, l.GetState())
	assert.True(t, s.Signal().Triggered())
}

func TestShutdownGraceBoundsDrain(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	s := New(WithShutdownGrace(100 * time.Millisecond))
	_, err := s.AddListener(ListenerSpec{ID: "main", Address: "127.0.0.1"})
	require.NoError(t, err)
	require.NoError(t, s.Handle("main", http.MethodGet, "/hang",
		routing.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			close(entered)
			<-release
			return nil
		})))
	require.NoError(t, s.Start(t.Context()))

	l, _ := s.Listener("main")
	go func() {
		resp, err := http.Get(fmt.Sprintf("http://%s/hang", l.Addr()))
		if err == nil {
			_ = resp.Body.Close()
		}
	}()
	<-entered

	start := time.Now()
	s.Shutdown()
	waitDone(t, s, 5*time.Second)
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.Equal(t, finitestate.StatusStopped, l.GetState())
}

func TestStartAfterShutdown(t *testing.T) {
	s := New()
	s.Shutdown()
	waitDone(t, s, time.Second)
	assert.ErrorIs(t, s.Start(t.Context()), ErrShuttingDown)
}

func TestVersion(t *testing.T) {
	assert.Contains(t, Version(), "version dev")
}
