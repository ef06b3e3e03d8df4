// Package config provides optional tool configuration for the isospec
// resolver.
//
// Config file locations (priority order):
//  1. $ISOSPEC_CONFIG
//  2. ./isospec.yaml
//  3. ~/.config/isospec/config.yaml
//
// Everything in the file has a flag equivalent; flags win. The classifier
// extension tables are the one thing only the file can provide: ordered
// pattern lists appended after the built-ins, so built-in priority is
// preserved.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/madhavamd/lopper/internal/isospec"
)

// Config is the tool configuration
type Config struct {
	Version   int            `yaml:"version"`
	Output    string         `yaml:"output,omitempty"`
	Verbosity int            `yaml:"verbosity,omitempty"`
	Database  DatabaseConfig `yaml:"database,omitempty"`
	CPUMap    []CPUMapEntry  `yaml:"cpu_map,omitempty"`
	MemoryMap []MemMapEntry  `yaml:"memory_map,omitempty"`
}

// DatabaseConfig locates the optional run-history database
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"`
}

// CPUMapEntry extends the CPU-name classifier table
type CPUMapEntry struct {
	Pattern    string `yaml:"pattern"`
	Compatible string `yaml:"compatible"`
}

// MemMapEntry extends the memory-name classifier table
type MemMapEntry struct {
	Pattern string `yaml:"pattern"`
	Kind    string `yaml:"kind"`
	Lookup  string `yaml:"lookup,omitempty"`
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, path, nil
}

// FindConfigPath returns the first config path that exists, or ""
func FindConfigPath() string {
	if env := os.Getenv("ISOSPEC_CONFIG"); env != "" {
		return env
	}

	candidates := []string{"./isospec.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "isospec", "config.yaml"))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// DefaultConfig returns the defaults used when no config file exists
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Output:  "domains.yaml",
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Output == "" {
		c.Output = "domains.yaml"
	}
}

// CPUMappings returns the built-in CPU classifier table followed by the
// configured extensions
func (c *Config) CPUMappings() ([]isospec.CPUMapping, error) {
	table := isospec.DefaultCPUMap()
	for _, e := range c.CPUMap {
		m, err := isospec.NewCPUMapping(e.Pattern, e.Compatible)
		if err != nil {
			return nil, fmt.Errorf("cpu_map: %w", err)
		}
		table = append(table, m)
	}
	return table, nil
}

// MemoryMappings returns the built-in memory classifier table followed by
// the configured extensions
func (c *Config) MemoryMappings() ([]isospec.MemoryMapping, error) {
	table := isospec.DefaultMemoryMap()
	for _, e := range c.MemoryMap {
		kind := isospec.MemoryKind(e.Kind)
		if kind != isospec.KindMemory && kind != isospec.KindSRAM {
			return nil, fmt.Errorf("memory_map: unknown kind %q for pattern %q", e.Kind, e.Pattern)
		}
		m, err := isospec.NewMemoryMapping(e.Pattern, kind, e.Lookup)
		if err != nil {
			return nil, fmt.Errorf("memory_map: %w", err)
		}
		table = append(table, m)
	}
	return table, nil
}
