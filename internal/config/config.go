// Package config loads optional project-level settings from a depscope.yml
// file in the project root.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from depscope.yml.
// The zero value is a valid configuration.
type ProjectConfig struct {
	Languages    []string `yaml:"languages,omitempty"`
	ExcludeDirs  []string `yaml:"excludeDirs,omitempty"`
	SnapshotPath string   `yaml:"snapshotPath,omitempty"`
	DebounceMs   int      `yaml:"debounceMs,omitempty"`
	ServeAddr    string   `yaml:"serveAddr,omitempty"`
	KuzuPath     string   `yaml:"kuzuPath,omitempty"`
	Verbose      bool     `yaml:"verbose,omitempty"`
}

// Load attempts to read depscope.yml or depscope.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists; a present but malformed file is an error.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"depscope.yml", "depscope.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// Debounce converts the configured debounce window to a duration. Zero
// means unset and lets the caller apply its default.
func (c *ProjectConfig) Debounce() time.Duration {
	if c.DebounceMs <= 0 {
		return 0
	}
	return time.Duration(c.DebounceMs) * time.Millisecond
}
