package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test asset defaults
	if !reflect.DeepEqual(cfg.Assets.Roots, []string{"assets"}) {
		t.Errorf("expected roots [assets], got %v", cfg.Assets.Roots)
	}
	if len(cfg.Assets.Blocks) != 0 {
		t.Errorf("expected no block filter, got %v", cfg.Assets.Blocks)
	}

	// Test render defaults
	if cfg.Render.AtlasMaxSize != 4096 {
		t.Errorf("expected atlas max size 4096, got %d", cfg.Render.AtlasMaxSize)
	}

	// Test metrics defaults
	if cfg.Metrics.Addr != ":9464" {
		t.Errorf("expected metrics addr :9464, got %s", cfg.Metrics.Addr)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("expected log format 'console', got %s", cfg.Logging.Format)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"no roots", func(c *Config) { c.Assets.Roots = nil }, true},
		{"atlas too small", func(c *Config) { c.Render.AtlasMaxSize = 8 }, true},
		{"atlas not power of two", func(c *Config) { c.Render.AtlasMaxSize = 1000 }, true},
		{"atlas 16", func(c *Config) { c.Render.AtlasMaxSize = 16 }, false},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"empty level", func(c *Config) { c.Logging.Level = "" }, false},
		{"json format", func(c *Config) { c.Logging.Format = "json" }, false},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
assets:
  roots:
    - base
    - pack
  blocks: [marble, glass]

render:
  atlas_max_size: 1024

metrics:
  addr: "127.0.0.1:9000"

logging:
  level: "debug"
  format: json
  log_file: "ctm.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if !reflect.DeepEqual(cfg.Assets.Roots, []string{"base", "pack"}) {
		t.Errorf("expected roots [base pack], got %v", cfg.Assets.Roots)
	}
	if !reflect.DeepEqual(cfg.Assets.Blocks, []string{"marble", "glass"}) {
		t.Errorf("expected blocks [marble glass], got %v", cfg.Assets.Blocks)
	}
	if cfg.Render.AtlasMaxSize != 1024 {
		t.Errorf("expected atlas max size 1024, got %d", cfg.Render.AtlasMaxSize)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9000" {
		t.Errorf("expected metrics addr 127.0.0.1:9000, got %s", cfg.Metrics.Addr)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json', got %s", cfg.Logging.Format)
	}
	if cfg.Logging.LogFile != "ctm.log" {
		t.Errorf("expected log file 'ctm.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("render:\n  atlas_size: 512\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error for unknown key, got nil")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("empty file changed config: %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BLOCKCTM_ASSETS":         "base, pack",
		"BLOCKCTM_BLOCKS":         "marble",
		"BLOCKCTM_ATLAS_MAX_SIZE": "2048",
		"BLOCKCTM_METRICS_ADDR":   ":9100",
		"BLOCKCTM_LOG_LEVEL":      "warn",
		"BLOCKCTM_LOG_FORMAT":     "json",
		"BLOCKCTM_LOG_FILE":       "env.log",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := Default()
	if err := applyEnv(cfg, lookup); err != nil {
		t.Fatalf("applyEnv failed: %v", err)
	}

	want := &Config{
		Assets:  AssetsConfig{Roots: []string{"base", "pack"}, Blocks: []string{"marble"}},
		Render:  RenderConfig{AtlasMaxSize: 2048},
		Metrics: MetricsConfig{Addr: ":9100"},
		Logging: LoggingConfig{Level: "warn", Format: "json", LogFile: "env.log"},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("applyEnv = %+v, want %+v", cfg, want)
	}

	env = map[string]string{"BLOCKCTM_ATLAS_MAX_SIZE": "big"}
	if err := applyEnv(Default(), lookup); err == nil {
		t.Error("expected error for non-numeric atlas size")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
render:
  atlas_max_size: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Point the user config dir somewhere empty
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("render:\n  atlas_max_size: 512\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "assets flag",
			setup: func() {
				*flagAssets = "base, pack,,"
			},
			verify: func(t *testing.T, cfg *Config) {
				if !reflect.DeepEqual(cfg.Assets.Roots, []string{"base", "pack"}) {
					t.Errorf("expected roots [base pack], got %v", cfg.Assets.Roots)
				}
			},
			teardown: func() {
				*flagAssets = ""
			},
		},
		{
			name: "metrics addr flag",
			setup: func() {
				*flagMetricsAddr = ":2112"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Metrics.Addr != ":2112" {
					t.Errorf("expected metrics addr :2112, got %s", cfg.Metrics.Addr)
				}
			},
			teardown: func() {
				*flagMetricsAddr = ""
			},
		},
		{
			name: "log format flag",
			setup: func() {
				*flagLogFormat = "json"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Format != "json" {
					t.Errorf("expected log format json, got %s", cfg.Logging.Format)
				}
			},
			teardown: func() {
				*flagLogFormat = ""
			},
		},
		{
			name: "log file flag",
			setup: func() {
				*flagLogFile = "out.log"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.LogFile != "out.log" {
					t.Errorf("expected log file out.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() {
				*flagLogFile = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
render:
  atlas_max_size: 512
metrics:
  addr: ":9000"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Environment overrides the file, flags override both
	t.Setenv("BLOCKCTM_METRICS_ADDR", ":9050")
	t.Setenv("BLOCKCTM_LOG_LEVEL", "warn")

	// Set flag to override config file
	*flagConfig = configPath
	*flagMetricsAddr = ":9100"
	defer func() {
		*flagConfig = ""
		*flagMetricsAddr = ""
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Addr should be from flag, not file
	if cfg.Metrics.Addr != ":9100" {
		t.Errorf("expected metrics addr :9100 from flag, got %s", cfg.Metrics.Addr)
	}

	// Level should be from the environment
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn from env, got %s", cfg.Logging.Level)
	}

	// Atlas size should be from file since no flag override
	if cfg.Render.AtlasMaxSize != 512 {
		t.Errorf("expected atlas max size 512 from file, got %d", cfg.Render.AtlasMaxSize)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("render:\n  atlas_max_size: 100\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid atlas size, got nil")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Assets.Roots = []string{"a", "b"}
	cfg.Render.AtlasMaxSize = 2048
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("round trip mismatch: saved %+v, loaded %+v", cfg, loaded)
	}
}
