// Package config loads the tool's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk configuration. Every field has a usable default;
// command-line flags override file values.
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	Import  ImportConfig  `toml:"import"`
	Cache   CacheConfig   `toml:"cache"`
	Match   MatchConfig   `toml:"match"`
}

// CatalogConfig locates the catalog database.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// ImportConfig tunes the import pipeline.
type ImportConfig struct {
	Workers int `toml:"workers"`
}

// CacheConfig bounds the decoded-texture cache.
type CacheConfig struct {
	Capacity int `toml:"capacity"` // maximum entry count
}

// MatchConfig tunes perceptual similarity grouping.
type MatchConfig struct {
	Threshold int `toml:"threshold"` // Hamming distance, lower is stricter
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Catalog: CatalogConfig{
			Path: filepath.Join(homeDir, ".decimator", "catalog.db"),
		},
		Import: ImportConfig{Workers: 8},
		Cache:  CacheConfig{Capacity: 512},
		Match:  MatchConfig{Threshold: 10},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is
// not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Import.Workers < 1 {
		cfg.Import.Workers = 1
	}
	if cfg.Cache.Capacity < 1 {
		cfg.Cache.Capacity = 1
	}

	return cfg, nil
}
