// Package logger provides the per-request log middleware. Every request gets an ID, echoed in
// the X-Request-Id response header, and one log entry once the handler returns.
package logger

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-supervisor/runnables/httpserver"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-Id"

const maxRequestIDLen = 128

// RequestLogger logs one entry per request.
type RequestLogger struct {
	logger       *slog.Logger
	excludePaths []string
}

// Option configures a RequestLogger.
type Option func(*RequestLogger)

// WithExcludePaths skips logging for paths starting with any of the prefixes. The request ID
// header is still set.
func WithExcludePaths(prefixes ...string) Option {
	return func(rl *RequestLogger) {
		rl.excludePaths = append(rl.excludePaths, prefixes...)
	}
}

// New creates a RequestLogger writing to logger.
func New(logger *slog.Logger, opts ...Option) *RequestLogger {
	if logger == nil {
		logger = slog.Default()
	}
	rl := &RequestLogger{logger: logger.WithGroup("http")}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Middleware returns the middleware function.
func (rl *RequestLogger) Middleware() httpserver.HandlerFunc {
	return func(rp *httpserver.RequestProcessor) {
		r := rp.Request()
		id := requestID(r)
		rp.Writer().Header().Set(RequestIDHeader, id)

		start := time.Now()
		rp.Next()

		if rl.skip(r.URL.Path) {
			return
		}
		rl.log(r, rp.Writer(), id, time.Since(start))
	}
}

func (rl *RequestLogger) skip(path string) bool {
	for _, prefix := range rl.excludePaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (rl *RequestLogger) log(
	r *http.Request,
	rw httpserver.ResponseWriter,
	id string,
	d time.Duration,
) {
	status := rw.Status()
	if status == 0 {
		status = http.StatusOK
	}

	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	rl.logger.LogAttrs(r.Context(), level, "HTTP request",
		slog.String("request_id", id),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Int("size", rw.Size()),
		slog.Duration("duration", d),
		slog.String("client_ip", clientIP(r)),
	)
}

// requestID reuses a caller-supplied ID when it is short and printable, otherwise mints a
// time-ordered UUID.
func requestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" && len(id) <= maxRequestIDLen && printable(id) {
		return id
	}
	return uuid.Must(uuid.NewV6()).String()
}

func printable(s string) bool {
	for i := range len(s) {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
