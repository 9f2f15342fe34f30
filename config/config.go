// Package config loads the TOML settings file that bounds a run's
// resource limits and tunes the debugger and display.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable PhoneBasic setting.
type Config struct {
	// Execution bounds a single run's resource usage.
	Execution struct {
		MaxSteps   int `toml:"max_steps"`
		StackLimit int `toml:"stack_limit"`
		ScopeLimit int `toml:"scope_limit"`
	} `toml:"execution"`

	// Debugger tunes the interactive front ends.
	Debugger struct {
		HistorySize int  `toml:"history_size"`
		ShowSource  bool `toml:"show_source"`
	} `toml:"debugger"`

	// Display controls how numbers are rendered.
	Display struct {
		NumberFormat string `toml:"number_format"` // "dec" or "hex"
	} `toml:"display"`
}

// Default returns a Config populated with PhoneBasic's built-in
// defaults.
func Default() *Config {
	cfg := &Config{}

	cfg.Execution.MaxSteps = 1_000_000
	cfg.Execution.StackLimit = 4096
	cfg.Execution.ScopeLimit = 256

	cfg.Debugger.HistorySize = 500
	cfg.Debugger.ShowSource = true

	cfg.Display.NumberFormat = "dec"

	return cfg
}

// GetConfigPath returns the platform-specific config file path,
// creating its containing directory if necessary.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "phonebasic")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "phonebasic")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load reads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads configuration from the given file, falling back to
// Default when the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes configuration to the given file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// Limits returns the execution settings as the three values a
// vm.Limits is built from.
func (c *Config) Limits() (maxSteps, stackLimit, scopeLimit int) {
	return c.Execution.MaxSteps, c.Execution.StackLimit, c.Execution.ScopeLimit
}
