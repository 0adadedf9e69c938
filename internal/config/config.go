// Package config provides configuration management for the hook CLI.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"uihook/internal/hook"
)

// Config represents the persisted application configuration.
type Config struct {
	// ClickIntervalMs is the double-click time window in milliseconds.
	ClickIntervalMs int `json:"click_interval_ms"`

	// ClickDistance is the double-click distance window in pixels.
	ClickDistance int `json:"click_distance"`

	// LogLevel is the zerolog level name (trace, debug, info, warn, error).
	LogLevel string `json:"log_level"`

	// Devices pins the Linux backend to explicit evdev paths (optional).
	Devices []string `json:"devices,omitempty"`
}

// DefaultConfig returns a new Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ClickIntervalMs: 500,
		ClickDistance:   4,
		LogLevel:        "info",
	}
}

// HookOptions translates the configuration into hook options.
func (c *Config) HookOptions() hook.Options {
	return hook.Options{
		ClickInterval: time.Duration(c.ClickIntervalMs) * time.Millisecond,
		ClickDistance: c.ClickDistance,
		Devices:       c.Devices,
	}
}

// Manager handles loading and saving configuration.
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
}

// NewManager creates a configuration manager rooted at the platform config
// directory, or at path when non-empty.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		var err error
		path, err = defaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	return &Manager{
		configPath: path,
		config:     DefaultConfig(),
	}, nil
}

func defaultConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "uihook")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "uihook")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "uihook")
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// Load reads the configuration from disk. A missing file leaves the
// defaults in place.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, m.config)
}

// Save writes the configuration to disk.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.configPath, data, 0644)
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Set replaces the configuration.
func (m *Manager) Set(config *Config) {
	m.mu.Lock()
	m.config = config
	m.mu.Unlock()
}
