// Package dexconfig loads apkreader settings from a TOML file.
package dexconfig

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config mirrors the apkreader command line flags; flags given on the
// command line win over the file.
type Config struct {
	// Dump is one of summary, methods, strings, classes.
	Dump string `toml:"dump"`

	// Verbose is the trace level for the DEX walk (0 = quiet).
	Verbose int `toml:"verbose"`

	// Strict validates every offset and index before decoding.
	Strict bool `toml:"strict"`

	// CacheStrings memoizes decoded strings.
	CacheStrings bool `toml:"cache_strings"`

	// Workers bounds concurrent DEX decodes (0 = GOMAXPROCS).
	Workers int `toml:"workers"`
}

func Default() *Config {
	return &Config{
		Dump:         "summary",
		CacheStrings: true,
	}
}

// LoadConfig reads path over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Workers < 0 {
		return nil, fmt.Errorf("invalid workers %d", config.Workers)
	}
	return config, nil
}

// Marshal renders c as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
