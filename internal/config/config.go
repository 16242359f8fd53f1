// Package config handles tool configuration loading and management.
package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Config holds all settings.
type Config struct {
	Assets  AssetsConfig  `yaml:"assets"`
	Render  RenderConfig  `yaml:"render"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// AssetsConfig holds asset root settings.
type AssetsConfig struct {
	Roots  []string `yaml:"roots"`            // Asset directories or zip packs, later roots override earlier ones
	Blocks []string `yaml:"blocks,omitempty"` // Block types to load; empty loads all
}

// RenderConfig holds bake settings.
type RenderConfig struct {
	AtlasMaxSize int `yaml:"atlas_max_size"`
}

// MetricsConfig holds the metrics endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"` // console or json
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Assets: AssetsConfig{
			Roots: []string{"assets"},
		},
		Render: RenderConfig{
			AtlasMaxSize: 4096,
		},
		Metrics: MetricsConfig{
			Addr: ":9464",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "console",
			LogFile: "",
		},
	}
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	if len(c.Assets.Roots) == 0 {
		return fmt.Errorf("assets.roots is empty")
	}
	size := c.Render.AtlasMaxSize
	if size < 16 || size&(size-1) != 0 {
		return fmt.Errorf("render.atlas_max_size %d is not a power of two >= 16", size)
	}
	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not console or json", c.Logging.Format)
	}
	return nil
}
