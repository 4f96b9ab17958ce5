package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reoky/chainsaw/internal/progress"
)

// Config defines configuration for the chainsaw CLI.
type Config struct {
	// ShardSize is the maximum size of each shard file in bytes, header
	// included. Zero means no limit was configured: split derives a size
	// that yields eight shards.
	ShardSize int64 `yaml:"shard_size"`

	// Prefix overrides the base used to name shard files (and the shard
	// directory when MakeDir is set). When set it must be at least three
	// characters. Empty means name shards after the source file.
	Prefix string `yaml:"prefix"`

	// MakeDir places shards under a newly created directory.
	MakeDir bool `yaml:"make_dir"`

	// Bucket is the object-storage URL used by push and pull,
	// e.g. "s3://my-bucket" or "file:///var/shards".
	Bucket string `yaml:"bucket"`

	// Progress enables progress output.
	Progress bool `yaml:"progress"`
}

// Default returns a Config with the built-in defaults.
func Default() Config {
	return Config{}
}

// yamlConfig is used for YAML unmarshaling with a string shard size.
type yamlConfig struct {
	ShardSize string `yaml:"shard_size"`
	Prefix    string `yaml:"prefix"`
	MakeDir   bool   `yaml:"make_dir"`
	Bucket    string `yaml:"bucket"`
	Progress  bool   `yaml:"progress"`
}

// LoadFromFile loads configuration from a YAML file. Shard sizes may be
// human-readable byte strings such as "8MB".
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()
	if yc.ShardSize != "" {
		size, err := progress.ParseBytes(yc.ShardSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse shard_size: %w", err)
		}
		cfg.ShardSize = size
	}
	if yc.Prefix != "" {
		cfg.Prefix = yc.Prefix
	}
	cfg.MakeDir = yc.MakeDir
	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	cfg.Progress = yc.Progress

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables. Environment
// variables use the CHAINSAW_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("CHAINSAW_SHARD_SIZE"); v != "" {
		size, err := progress.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse CHAINSAW_SHARD_SIZE: %w", err)
		}
		c.ShardSize = size
	}
	if v := os.Getenv("CHAINSAW_PREFIX"); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv("CHAINSAW_MAKE_DIR"); v != "" {
		c.MakeDir = v == "true" || v == "1"
	}
	if v := os.Getenv("CHAINSAW_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("CHAINSAW_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.ShardSize < 0 {
		return errors.New("config: shard_size must not be negative")
	}
	if c.Prefix != "" && len(c.Prefix) < 3 {
		return errors.New("config: prefix must be at least 3 characters")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.ShardSize != 0 {
		c.ShardSize = override.ShardSize
	}
	if override.Prefix != "" {
		c.Prefix = override.Prefix
	}
	if override.MakeDir {
		c.MakeDir = override.MakeDir
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	return c
}
