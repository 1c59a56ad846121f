package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atlanticdynamic/lynxlet/internal/config/errz"
	"github.com/atlanticdynamic/lynxlet/internal/interpolation"
	"github.com/pelletier/go-toml/v2"
)

// NewConfig loads, expands and validates the TOML file at path.
func NewConfig(path string) (*Config, error) {
	if ext := filepath.Ext(path); ext != ".toml" {
		return nil, fmt.Errorf("%w: %q, only .toml is supported", errz.ErrUnsupportedFormat, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errz.ErrFailedToLoadConfig, err)
	}
	return NewConfigFromBytes(data)
}

// NewConfigFromBytes parses TOML data. Unknown keys are rejected. Environment references in
// tagged fields are expanded before defaults are applied and the result is validated.
func NewConfigFromBytes(data []byte) (*Config, error) {
	cfg := &Config{}

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", errz.ErrFailedToLoadConfig, strict.String())
		}
		return nil, fmt.Errorf("%w: %w", errz.ErrFailedToLoadConfig, err)
	}

	if err := interpolation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", errz.ErrFailedToLoadConfig, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errz.ErrFailedToValidateConfig, err)
	}
	return cfg, nil
}
