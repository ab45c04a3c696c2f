package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// Loader reads, decodes and finalizes a config file.
type Loader struct {
	fs   afero.Fs
	path string

	// lookupEnv is os.LookupEnv unless a test swaps it.
	lookupEnv func(string) (string, bool)
}

func NewLoader(fs afero.Fs, path string) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs, path: path, lookupEnv: os.LookupEnv}
}

func (l *Loader) Path() string { return l.path }

// Parse decodes the file strictly. It applies no defaults or overrides.
func (l *Loader) Parse() (*Config, error) {
	b, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		return nil, err
	}
	jb, format, err := coerceToJSONBytes(l.path, b)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", format, err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}
	return &cfg, nil
}

// Load parses the file, applies env overrides and defaults, then validates.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.Parse()
	if err != nil {
		return nil, err
	}
	env, err := l.env()
	if err != nil {
		return nil, err
	}
	applyEnv(cfg, env)
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
