package routing

import (
	"net/http"
	"sync"
)

// response wraps the writer handed to a dispatched handler. It records whether the response
// started, and it refuses writes after the dispatch that owns it has completed. One response is
// shared by a request and all of its reroutes.
type response struct {
	http.ResponseWriter

	// baseline holds the headers set before dispatch, by middleware
	baseline http.Header

	mu          sync.Mutex
	status      int
	size        int
	wroteHeader bool
	completed   bool
}

func wrapResponse(w http.ResponseWriter) *response {
	if rw, ok := w.(*response); ok {
		return rw
	}
	return &response{ResponseWriter: w, baseline: w.Header().Clone()}
}

// WriteHeader implements http.ResponseWriter. Only the first call reaches the client.
func (rw *response) WriteHeader(code int) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	rw.writeHeaderLocked(code)
}

func (rw *response) writeHeaderLocked(code int) {
	if rw.wroteHeader || rw.completed {
		return
	}
	rw.wroteHeader = true
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write implements http.ResponseWriter.
func (rw *response) Write(b []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.completed {
		return 0, ErrResponseWritten
	}
	rw.writeHeaderLocked(http.StatusOK)

	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Flush sends buffered data to the client when the underlying writer supports it.
func (rw *response) Flush() {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.completed {
		return
	}
	rw.writeHeaderLocked(http.StatusOK)
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *response) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Status returns the status code that was sent, or 0 if nothing was sent.
func (rw *response) Status() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.status
}

// Size returns the number of body bytes written.
func (rw *response) Size() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.size
}

// Written reports whether the status line has been sent.
func (rw *response) Written() bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.wroteHeader
}

// complete finalizes the response. A handler that wrote nothing still produces a 200 with an
// empty body, so every request ends with exactly one terminal write.
func (rw *response) complete() {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.completed {
		return
	}
	rw.writeHeaderLocked(http.StatusOK)
	rw.completed = true
}

// fail sends a bare status with the given body if nothing has been sent yet, with the headers
// reset to what they were before dispatch. It reports whether the status reached the client.
func (rw *response) fail(code int, body string) bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.wroteHeader || rw.completed {
		return false
	}

	// drop whatever the handler set, keeping the middleware headers
	h := rw.ResponseWriter.Header()
	for k := range h {
		if _, ok := rw.baseline[k]; !ok {
			delete(h, k)
		}
	}
	for k, v := range rw.baseline {
		h[k] = append([]string(nil), v...)
	}
	if body != "" {
		h.Set("Content-Type", "text/plain; charset=utf-8")
		h.Set("X-Content-Type-Options", "nosniff")
	}
	rw.writeHeaderLocked(code)
	if body != "" {
		n, _ := rw.ResponseWriter.Write([]byte(body))
		rw.size += n
	}
	rw.completed = true
	return true
}
