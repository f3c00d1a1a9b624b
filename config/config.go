package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// PlaybackConfig defines the MIDI output used by the play command
type PlaybackConfig struct {
	PortName string `json:"portName,omitempty"`
}

// UIConfig stores viewer preferences
type UIConfig struct {
	Color     bool   `json:"color"`
	Verbosity string `json:"verbosity,omitempty"` // status, error, warn, debug
	Palette   string `json:"palette,omitempty"`   // optional GPL palette file
	LastFile  string `json:"lastFile,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Playback PlaybackConfig `json:"playback,omitempty"`
	UI       UIConfig       `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			Color:     true,
			Verbosity: "warn",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tinymid"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
