package apps

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/atlanticdynamic/lynxlet/internal/server/routing"
)

const (
	indexFile = "index.html"

	cachedControl   = "public, max-age=86400"
	uncachedControl = "no-cache, no-store, must-revalidate"
)

// Static serves files from a directory, mapping the part of the request path after prefix onto
// the directory. Paths that leave the directory and missing files are reported as not found.
type Static struct {
	id      string
	prefix  string
	root    *os.Root
	caching bool
	logger  *slog.Logger
}

// NewStatic opens dir and returns an app serving it under prefix. A trailing "*" on prefix is
// ignored, so the route pattern can be passed as is. Close releases the directory.
func NewStatic(id, prefix, dir string, caching bool, logger *slog.Logger) (*Static, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: %s: static root is empty", ErrInvalidConfig, id)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, id, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Static{
		id:      id,
		prefix:  strings.TrimSuffix(prefix, "*"),
		root:    root,
		caching: caching,
		logger:  logger,
	}, nil
}

func (a *Static) String() string { return a.id }

// Close releases the root directory.
func (a *Static) Close() error {
	return a.root.Close()
}

// HandleHTTP serves the file named by the request path.
func (a *Static) HandleHTTP(_ context.Context, w http.ResponseWriter, r *http.Request) error {
	name, ok := a.resolve(r.URL.Path)
	if !ok {
		a.logger.Debug("Rejected static path", "path", r.URL.Path)
		return routing.ErrNotFound
	}

	f, info, err := a.open(name)
	if err != nil {
		// os.Root reports symlinks out of the directory as errors too
		a.logger.Debug("Static file not found", "path", r.URL.Path, "error", err)
		return routing.ErrNotFound
	}
	defer func() {
		if err := f.Close(); err != nil {
			a.logger.Warn("Failed to close static file", "name", name, "error", err)
		}
	}()

	modTime := info.ModTime()
	if a.caching {
		w.Header().Set("Cache-Control", cachedControl)
	} else {
		w.Header().Set("Cache-Control", uncachedControl)
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		modTime = time.Time{}
	}

	http.ServeContent(w, r, info.Name(), modTime, f)
	return nil
}

// resolve maps a request path to a name relative to the root. Any ".." segment is refused
// outright rather than cleaned away.
func (a *Static) resolve(requestPath string) (string, bool) {
	rel, ok := strings.CutPrefix(requestPath, a.prefix)
	if !ok {
		// "/static" for a "/static/" prefix is the root itself
		if requestPath != strings.TrimSuffix(a.prefix, "/") {
			return "", false
		}
		rel = ""
	}
	for segment := range strings.SplitSeq(rel, "/") {
		if segment == ".." || strings.ContainsRune(segment, '\\') {
			return "", false
		}
	}

	name := strings.TrimPrefix(path.Clean("/"+rel), "/")
	if name == "" {
		name = "."
	}
	return name, true
}

// open returns the file for name, or its index.html when name is a directory.
func (a *Static) open(name string) (*os.File, fs.FileInfo, error) {
	f, err := a.root.Open(name)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if !info.IsDir() {
		return f, info, nil
	}

	_ = f.Close()
	return a.open(path.Join(name, indexFile))
}
