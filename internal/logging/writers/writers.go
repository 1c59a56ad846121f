// Package writers opens the destination for log output named in configuration.
package writers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedOutput = errors.New("unsupported log output")

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Open returns a writer for output:
//   - "" or "stdout"
//   - "stderr"
//   - "file:///path/to/file" or any path containing a separator, opened for append
//
// Closing a standard stream is a no-op.
func Open(output string) (io.WriteCloser, error) {
	switch {
	case output == "" || output == "stdout":
		return nopCloser{os.Stdout}, nil
	case output == "stderr":
		return nopCloser{os.Stderr}, nil
	case strings.HasPrefix(output, "file://"):
		return openFile(strings.TrimPrefix(output, "file://"))
	case !strings.Contains(output, "://") && strings.ContainsAny(output, `/\`):
		return openFile(output)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOutput, output)
	}
}

func openFile(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}
