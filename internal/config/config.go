// Package config handles all configuration logic for outputd.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"outputd/internal/profile"
)

const (
	cfgDirName  = "outputd"
	cfgFileName = "config.yaml"
)

type (
	Config struct {
		path string

		// HookDir is where the per-machine hook executables live.
		// Defaults to the directory of the config file.
		HookDir string `yaml:"hook_dir,omitempty"`

		Battery  Battery           `yaml:"battery,omitempty"`
		Profiles []profile.Profile `yaml:"profiles"`
	}

	// Battery holds defaults for the battery monitor; all of them can be
	// overridden by CLI flags.
	Battery struct {
		LowThreshold      int           `yaml:"low_threshold,omitempty"`
		CriticalThreshold int           `yaml:"critical_threshold,omitempty"`
		Hysteresis        int           `yaml:"hysteresis,omitempty"`
		Interval          time.Duration `yaml:"interval,omitempty"`
	}
)

// ValidationError reports every config violation found during load.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config (%d violations):\n  %s",
		len(e.Violations), strings.Join(e.Violations, "\n  "))
}

// InitConfig loads the config from path, falling back to the default
// location under the user config directory. A missing file is replaced
// with an empty default so the user has something to edit.
func InitConfig(path string) (*Config, error) {
	if path == "" {
		uc, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("getting user config directory path: %w", err)
		}
		path = filepath.Join(uc, cfgDirName, cfgFileName)
	}

	return readConfig(path)
}

func defaultCfg(path string) *Config {
	return &Config{
		path:     path,
		Profiles: []profile.Profile{},
	}
}

func readConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		slog.Info("no config file found; creating default", "path", path)
		cfg := defaultCfg(path)
		if err := cfg.write(); err != nil {
			return nil, fmt.Errorf("creating default config file: %w", err)
		}
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling yaml: %w", err)
	}

	cfg.path = path
	cfg.applyDefaults()

	if violations := profile.Validate(cfg.Profiles); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	return cfg, nil
}

// Reload re-reads the config from disk. On failure the caller should
// keep using the previous config.
func (c *Config) Reload() (*Config, error) {
	return readConfig(c.path)
}

func (c *Config) Path() string {
	return c.path
}

func (c *Config) applyDefaults() {
	if c.HookDir == "" {
		c.HookDir = filepath.Dir(c.path)
	}

	if c.Battery.LowThreshold == 0 {
		c.Battery.LowThreshold = 20
	}
	if c.Battery.CriticalThreshold == 0 {
		c.Battery.CriticalThreshold = 10
	}
	if c.Battery.Hysteresis == 0 {
		c.Battery.Hysteresis = 5
	}
	if c.Battery.Interval == 0 {
		c.Battery.Interval = 30 * time.Second
	}
}

func (c *Config) write() error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("checking and/or creating config directory: %w", err)
	}

	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling yaml: %w", err)
	}

	if err := os.WriteFile(c.path, out, 0o644); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}
