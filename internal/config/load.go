package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// envPrefix prefixes every environment override, e.g. BLOCKCTM_LOG_LEVEL.
const envPrefix = "BLOCKCTM_"

// Load loads configuration with priority: defaults < file < environment <
// flags. The result is validated.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = os.Getenv(envPrefix + "CONFIG")
	}
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing candidate: blockctm.yaml or
// config.yaml in the working directory, then the user config directory.
func findConfigFile() string {
	candidates := []string{
		"blockctm.yaml",
		"config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "BlockCTM")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "BlockCTM")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "blockctm")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "blockctm")
	}
}

// loadFromFile merges a YAML file over cfg. Unknown keys are rejected so
// typos do not silently fall back to defaults.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv applies BLOCKCTM_* overrides.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(envPrefix + "ASSETS"); ok {
		if roots := splitList(v); len(roots) > 0 {
			cfg.Assets.Roots = roots
		}
	}
	if v, ok := lookup(envPrefix + "BLOCKS"); ok {
		cfg.Assets.Blocks = splitList(v)
	}
	if v, ok := lookup(envPrefix + "ATLAS_MAX_SIZE"); ok {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sATLAS_MAX_SIZE: %w", envPrefix, err)
		}
		cfg.Render.AtlasMaxSize = size
	}
	if v, ok := lookup(envPrefix + "METRICS_ADDR"); ok {
		cfg.Metrics.Addr = v
	}
	if v, ok := lookup(envPrefix + "LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := lookup(envPrefix + "LOG_FORMAT"); ok {
		cfg.Logging.Format = v
	}
	if v, ok := lookup(envPrefix + "LOG_FILE"); ok {
		cfg.Logging.LogFile = v
	}
	return nil
}
