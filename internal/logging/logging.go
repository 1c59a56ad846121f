// Package logging builds the slog handlers used across the server: a charmbracelet text handler
// for terminals and the standard JSON handler for log shippers.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownFormat = errors.New("unknown log format")
)

// levels maps configured names to slog levels. trace is debug with caller information.
var levels = map[string]slog.Level{
	"trace":   slog.LevelDebug,
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel returns the slog level for name. The empty string means info.
func ParseLevel(name string) (slog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return slog.LevelInfo, nil
	}
	lvl, ok := levels[name]
	if !ok {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
	return lvl, nil
}

// NewHandler returns a handler for format writing to w. An empty format means text.
func NewHandler(format, level string, w io.Writer) (slog.Handler, error) {
	if _, err := ParseLevel(level); err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "", FormatText:
		return TextHandler(level, w), nil
	case FormatJSON:
		return JSONHandler(level, w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// TextHandler returns a charmbracelet handler. Unknown levels fall back to info.
func TextHandler(level string, w io.Writer) slog.Handler {
	if w == nil {
		w = os.Stderr
	}
	name := strings.ToLower(level)
	lvl, _ := ParseLevel(name)

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: name == "trace" || name == "debug",
		ReportCaller:    name == "trace",
		Level:           log.Level(lvl),
	})
}

// JSONHandler returns a slog JSON handler. Unknown levels fall back to info.
func JSONHandler(level string, w io.Writer) slog.Handler {
	if w == nil {
		w = os.Stdout
	}
	lvl, _ := ParseLevel(level)
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: strings.EqualFold(level, "trace"),
	})
}

// SetDefault installs a text handler at level as the process-wide default logger.
func SetDefault(level string) {
	slog.SetDefault(slog.New(TextHandler(level, nil)))
}
