package config

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/atlanticdynamic/lynxlet/internal/config/errz"
)

//go:embed samples/*.toml
var samples embed.FS

// SampleNames lists the built-in sample configs, sorted.
func SampleNames() []string {
	entries, err := fs.ReadDir(samples, "samples")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	slices.Sort(names)
	return names
}

// SampleSource returns the TOML text of a built-in sample.
func SampleSource(name string) ([]byte, error) {
	data, err := samples.ReadFile(path.Join("samples", name+".toml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q, available: %s",
			errz.ErrUnknownSample, name, strings.Join(SampleNames(), ", "))
	}
	return data, nil
}

// Sample loads a built-in sample config.
func Sample(name string) (*Config, error) {
	data, err := SampleSource(name)
	if err != nil {
		return nil, err
	}
	return NewConfigFromBytes(data)
}
