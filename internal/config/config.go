// Package config reads covenant.yaml. Every field has a default, so an
// empty or missing file yields a usable configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"covenant/internal/runtime"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "covenant.yaml"

type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Runtime RuntimeConfig `yaml:"runtime"`
	Chain   ChainConfig   `yaml:"chain"`
	Log     LogConfig     `yaml:"log"`
}

type StoreConfig struct {
	// Driver is memory, sqlite or postgres.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RuntimeConfig struct {
	MaxCallDepth int `yaml:"max_call_depth"`
}

type ChainConfig struct {
	GenesisTime   int64 `yaml:"genesis_time"`
	BlockInterval int64 `yaml:"block_interval"`
	Height        int64 `yaml:"height"`
}

type LogConfig struct {
	Verbose bool `yaml:"verbose"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Store:   StoreConfig{Driver: "memory"},
		Runtime: RuntimeConfig{MaxCallDepth: runtime.DefaultMaxCallDepth},
		Chain: ChainConfig{
			GenesisTime:   runtime.DefaultGenesisTime,
			BlockInterval: runtime.DefaultBlockInterval,
		},
	}
}

// Load reads path. A missing file is not an error when optional is set.
func Load(path string, optional bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes YAML over the defaults. path is only used in messages.
func Parse(data []byte, path string) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for driver %s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
	if c.Runtime.MaxCallDepth <= 0 {
		return fmt.Errorf("runtime.max_call_depth must be positive, got %d", c.Runtime.MaxCallDepth)
	}
	if c.Chain.BlockInterval <= 0 {
		return fmt.Errorf("chain.block_interval must be positive, got %d", c.Chain.BlockInterval)
	}
	if c.Chain.Height < 0 {
		return fmt.Errorf("chain.height must not be negative, got %d", c.Chain.Height)
	}
	return nil
}

// Limits returns the evaluator limits described by c.
func (c *Config) Limits() runtime.Limits {
	return runtime.Limits{MaxCallDepth: c.Runtime.MaxCallDepth}
}

// SimulatedChain returns the block info provider described by c.
func (c *Config) SimulatedChain() *runtime.SimulatedChain {
	return &runtime.SimulatedChain{
		GenesisTime:   c.Chain.GenesisTime,
		BlockInterval: c.Chain.BlockInterval,
		Height:        c.Chain.Height,
	}
}
