package routing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// textHandler writes a fixed body and counts its invocations
type textHandler struct {
	body  string
	calls atomic.Int32
}

func (h *textHandler) HandleHTTP(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	h.calls.Add(1)
	w.Header().Set("Content-Type", "text/plain")
	_, err := io.WriteString(w, h.body)
	return err
}

func serve(rt *Router, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRouter_ExactDispatch(t *testing.T) {
	rt := NewRouter()
	root := &textHandler{body: "Yo!"}
	plop := &textHandler{body: "plop"}
	require.NoError(t, rt.Get("/", root))
	require.NoError(t, rt.Get("/plop", plop))

	rec := serve(rt, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Yo!", rec.Body.String())
	assert.Equal(t, int32(1), root.calls.Load())
	assert.Equal(t, int32(0), plop.calls.Load())

	rec = serve(rt, http.MethodGet, "/plop")
	assert.Equal(t, "plop", rec.Body.String())
	assert.Equal(t, int32(1), root.calls.Load())
	assert.Equal(t, int32(1), plop.calls.Load())
}

func TestRouter_NotFound(t *testing.T) {
	rt := NewRouter()
	h := &textHandler{body: "ok"}
	require.NoError(t, rt.Get("/only", h))

	tests := []struct {
		name   string
		method string
		target string
	}{
		{name: "unknown path", method: http.MethodGet, target: "/missing"},
		{name: "wrong method", method: http.MethodPost, target: "/only"},
		{name: "exact route is not a prefix", method: http.MethodGet, target: "/only/child"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := rt.Routes()
			rec := serve(rt, tt.method, tt.target)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Empty(t, rec.Body.String())
			assert.Equal(t, before, rt.Routes(), "routes should not change")
		})
	}
	assert.Equal(t, int32(0), h.calls.Load())
}

func TestRouter_Wildcard(t *testing.T) {
	rt := NewRouter()
	static := &textHandler{body: "static"}
	images := &textHandler{body: "images"}
	index := &textHandler{body: "index"}

	require.NoError(t, rt.Get("/static/*", static))
	require.NoError(t, rt.Get("/static/img/*", images))
	require.NoError(t, rt.Get("/static/index.html", index))

	tests := []struct {
		target string
		want   string
		code   int
	}{
		{target: "/static/app.js", want: "static", code: http.StatusOK},
		{target: "/static/", want: "static", code: http.StatusOK},
		{target: "/static/img/logo.png", want: "images", code: http.StatusOK},
		{target: "/static/index.html", want: "index", code: http.StatusOK},
		{target: "/static", want: "static", code: http.StatusOK},
		{target: "/static/img", want: "images", code: http.StatusOK},
		{target: "/staticfoo", want: "", code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(rt, http.MethodGet, tt.target)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRouter_WildcardTieGoesToFirstRegistered(t *testing.T) {
	rt := NewRouter()
	first := &textHandler{body: "first"}
	second := &textHandler{body: "second"}
	require.NoError(t, rt.Handle("*", "/files/*", first))
	require.NoError(t, rt.Get("/files/*", second))

	rec := serve(rt, http.MethodGet, "/files/a")
	assert.Equal(t, "first", rec.Body.String())
}

func TestRouter_AnyMethod(t *testing.T) {
	rt := NewRouter()
	h := &textHandler{body: "Bye!"}
	require.NoError(t, rt.Handle("ANY", "/shutdown", h))

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		rec := serve(rt, method, "/shutdown")
		assert.Equal(t, "Bye!", rec.Body.String(), method)
	}
}

func TestRouter_Register(t *testing.T) {
	h := &textHandler{}

	t.Run("duplicate exact route", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.Get("/", h))
		err := rt.Handle("get", "/", h)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateRoute)

		var dupErr *DuplicateRouteError
		require.ErrorAs(t, err, &dupErr)
		assert.Equal(t, http.MethodGet, dupErr.Method)
		assert.Equal(t, "/", dupErr.Path)
		assert.Len(t, rt.Routes(), 1)
	})

	t.Run("same path with different methods", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.Get("/", h))
		require.NoError(t, rt.Handle(http.MethodPost, "/", h))
		assert.Len(t, rt.Routes(), 2)
	})

	t.Run("overlapping wildcards", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.Get("/*", h))
		require.NoError(t, rt.Get("/a/*", h))
		require.NoError(t, rt.Get("/a/*", h))
		assert.Len(t, rt.Routes(), 3)
	})

	t.Run("invalid patterns", func(t *testing.T) {
		rt := NewRouter()
		assert.ErrorIs(t, rt.Get("static/*", h), ErrInvalidPattern)
		assert.ErrorIs(t, rt.Get("/a/*/b", h), ErrInvalidPattern)
		assert.ErrorIs(t, rt.Handle("GE T", "/", h), ErrInvalidMethod)
		assert.ErrorIs(t, rt.Handle("GET/", "/", h), ErrInvalidMethod)
		assert.ErrorIs(t, rt.Get("/", nil), ErrNilHandler)
		assert.ErrorIs(t, rt.HandleFunc(http.MethodGet, "/", nil), ErrNilHandler)
		assert.Empty(t, rt.Routes())
	})

	t.Run("extension methods", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.Handle("M-SEARCH", "/", h))
		require.NoError(t, rt.Handle("purge", "/cache", h))
	})

	t.Run("routes keep registration order", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.Get("/static/*", h))
		require.NoError(t, rt.Get("/", h))
		require.NoError(t, rt.Get("/time", h))

		routes := rt.Routes()
		require.Len(t, routes, 3)
		assert.Equal(t, "/static/*", routes[0].Pattern)
		assert.True(t, routes[0].IsWildcard())
		assert.Equal(t, "/static/", routes[0].Prefix())
		assert.Equal(t, "/", routes[1].Pattern)
		assert.Equal(t, "GET /time", routes[2].String())
	})
}

func TestRouter_HandlerErrors(t *testing.T) {
	t.Run("returned error becomes 500", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.HandleFunc(http.MethodGet, "/fail",
			func(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
				w.Header().Set("Content-Type", "application/json")
				return errors.New("database password is hunter2")
			}))

		rec := serve(rt, http.MethodGet, "/fail")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error", rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "hunter2")
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	})

	t.Run("500 drops headers the handler set", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.HandleFunc(http.MethodGet, "/fail",
			func(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
				w.Header().Set("Cache-Control", "secret")
				w.Header().Set("X-Debug-User", "admin")
				w.Header().Set("X-Request-Id", "overwritten")
				return errors.New("failed")
			}))

		// stands in for middleware that sets headers before dispatch
		withRequestID := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Request-Id", "abc123")
			rt.ServeHTTP(w, r)
		})
		rec := httptest.NewRecorder()
		withRequestID.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Header().Values("Cache-Control"))
		assert.Empty(t, rec.Header().Values("X-Debug-User"))
		assert.Equal(t, []string{"abc123"}, rec.Header().Values("X-Request-Id"))
	})

	t.Run("panic becomes 500", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.HandleFunc(http.MethodGet, "/panic",
			func(context.Context, http.ResponseWriter, *http.Request) error {
				panic("boom")
			}))

		rec := serve(rt, http.MethodGet, "/panic")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		// the router keeps serving after a panic
		rec = serve(rt, http.MethodGet, "/panic")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("error after writing keeps the original response", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.HandleFunc(http.MethodGet, "/partial",
			func(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
				w.WriteHeader(http.StatusAccepted)
				_, _ = io.WriteString(w, "partial")
				return errors.New("late failure")
			}))

		rec := serve(rt, http.MethodGet, "/partial")
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "partial", rec.Body.String())
	})

	t.Run("ErrNotFound becomes an empty 404", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.HandleFunc(http.MethodGet, "/gone",
			func(context.Context, http.ResponseWriter, *http.Request) error {
				return fmt.Errorf("lookup: %w", ErrNotFound)
			}))

		rec := serve(rt, http.MethodGet, "/gone")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("handler that writes nothing gets an empty 200", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.HandleFunc(http.MethodGet, "/noop",
			func(context.Context, http.ResponseWriter, *http.Request) error { return nil }))

		rec := serve(rt, http.MethodGet, "/noop")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestRouter_Reroute(t *testing.T) {
	t.Run("reroute reuses the response", func(t *testing.T) {
		rt := NewRouter()
		index := &textHandler{body: "<h1>index</h1>"}
		require.NoError(t, rt.Get("/static/*", index))
		require.NoError(t, rt.HandleFunc(http.MethodGet, "/",
			func(_ context.Context, w http.ResponseWriter, r *http.Request) error {
				return Reroute(w, r, "/static/index.html")
			}))

		rec := serve(rt, http.MethodGet, "/")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<h1>index</h1>", rec.Body.String())
		assert.Equal(t, int32(1), index.calls.Load())
	})

	t.Run("writes after reroute are rejected", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.Get("/target", &textHandler{body: "target"}))

		var lateErr error
		require.NoError(t, rt.HandleFunc(http.MethodGet, "/",
			func(_ context.Context, w http.ResponseWriter, r *http.Request) error {
				if err := rt.Reroute(w, r, "/target"); err != nil {
					return err
				}
				_, lateErr = io.WriteString(w, "extra")
				return nil
			}))

		rec := serve(rt, http.MethodGet, "/")
		assert.Equal(t, "target", rec.Body.String())
		assert.ErrorIs(t, lateErr, ErrResponseWritten)
	})

	t.Run("reroute after writing is refused", func(t *testing.T) {
		rt := NewRouter()
		target := &textHandler{body: "A"}
		require.NoError(t, rt.Get("/target", target))

		var rerouteErr error
		require.NoError(t, rt.HandleFunc(http.MethodGet, "/pre",
			func(_ context.Context, w http.ResponseWriter, r *http.Request) error {
				if _, err := io.WriteString(w, "pre-"); err != nil {
					return err
				}
				rerouteErr = rt.Reroute(w, r, "/target")
				return rerouteErr
			}))

		rec := serve(rt, http.MethodGet, "/pre")
		assert.ErrorIs(t, rerouteErr, ErrResponseWritten)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pre-", rec.Body.String())
		assert.Zero(t, target.calls.Load())
	})

	t.Run("reroute to a missing route is a 404", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.HandleFunc(http.MethodGet, "/",
			func(_ context.Context, w http.ResponseWriter, r *http.Request) error {
				return Reroute(w, r, "/nowhere")
			}))

		rec := serve(rt, http.MethodGet, "/")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("reroute carries the query string", func(t *testing.T) {
		rt := NewRouter()
		require.NoError(t, rt.HandleFunc(http.MethodGet, "/echo",
			func(_ context.Context, w http.ResponseWriter, r *http.Request) error {
				_, err := io.WriteString(w, r.URL.Query().Get("q"))
				return err
			}))
		require.NoError(t, rt.HandleFunc(http.MethodGet, "/",
			func(_ context.Context, w http.ResponseWriter, r *http.Request) error {
				return Reroute(w, r, "/echo?q=hello")
			}))

		rec := serve(rt, http.MethodGet, "/")
		assert.Equal(t, "hello", rec.Body.String())
	})

	t.Run("loops hit the reroute limit", func(t *testing.T) {
		rt := NewRouter(WithRerouteLimit(3))
		var calls atomic.Int32
		require.NoError(t, rt.HandleFunc(http.MethodGet, "/loop",
			func(_ context.Context, w http.ResponseWriter, r *http.Request) error {
				calls.Add(1)
				return Reroute(w, r, "/loop")
			}))

		rec := serve(rt, http.MethodGet, "/loop")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, int32(4), calls.Load())
	})

	t.Run("reroute outside a dispatch fails", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.ErrorIs(t, Reroute(rec, req, "/x"), ErrNoRouter)
		assert.ErrorIs(t, NewRouter().Reroute(rec, req, "/x"), ErrNoRouter)
	})
}

func TestRouter_ConcurrentRegisterAndDispatch(t *testing.T) {
	rt := NewRouter()
	require.NoError(t, rt.Get("/", &textHandler{body: "root"}))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, rt.Get(fmt.Sprintf("/r%d", i), &textHandler{body: "r"}))
		}()
		go func() {
			defer wg.Done()
			rec := serve(rt, http.MethodGet, "/")
			assert.Equal(t, "root", rec.Body.String())
		}()
	}
	wg.Wait()

	assert.Len(t, rt.Routes(), 21)
}
