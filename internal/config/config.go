// Package config loads the optimizer's pipeline configuration from a
// TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Config is the pipeline configuration as encoded in TOML.
type Config struct {
	// Passes lists pass names to run in order. Empty selects the
	// default pipeline.
	Passes []string `toml:"passes"`

	// Verify re-checks MIR well-formedness around passes.
	Verify bool `toml:"verify"`

	// Debug names passes that should log every rewrite; "all" covers
	// all of them.
	Debug []string `toml:"debug"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Verify: true}
}

// Load reads and parses a TOML config file. Missing keys keep their
// defaults.
func Load(path string) (*Config, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open config file at `%s`: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(buff, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file at `%s`: %w", path, err)
	}
	return cfg, nil
}

// DebugSet returns the debug list as a lookup set.
func (c *Config) DebugSet() map[string]bool {
	set := make(map[string]bool, len(c.Debug))
	for _, name := range c.Debug {
		set[name] = true
	}
	return set
}
