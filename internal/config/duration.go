package config

import (
	"fmt"
	"time"
)

// Duration is a time.Duration written as a string in TOML, such as "5s" or "1m30s".
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

// AsDuration converts to a time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
