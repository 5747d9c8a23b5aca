// Package config loads clipseal settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	appDir          = "clipseal"
	configFileName  = "config.toml"
	historyFileName = "history.db"

	EnvConfig   = "CLIPSEAL_CONFIG"
	EnvLogLevel = "CLIPSEAL_LOG_LEVEL"

	DefaultHistoryLimit   = 100
	DefaultMaxConcurrency = 4
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// ErrExists is returned by Create when the settings file is already there
var ErrExists = errors.New("config file already exists")

// Settings holds user configuration
type Settings struct {
	DeviceName     string `toml:"device_name"`
	SaveSecret     bool   `toml:"save_secret"`
	HistoryPath    string `toml:"history_path"`
	HistoryLimit   int    `toml:"history_limit"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
	MaxConcurrency int    `toml:"max_concurrency"`
}

// Defaults returns settings used when no file is present
func Defaults() *Settings {
	s := &Settings{
		HistoryLimit:   DefaultHistoryLimit,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		MaxConcurrency: DefaultMaxConcurrency,
	}
	if host, err := os.Hostname(); err == nil {
		s.DeviceName = host
	} else {
		s.DeviceName = "Unknown"
	}
	if dir, err := os.UserConfigDir(); err == nil {
		s.HistoryPath = filepath.Join(dir, appDir, historyFileName)
	}
	return s
}

// DefaultPath returns the settings file location, honoring CLIPSEAL_CONFIG
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, appDir, configFileName), nil
}

// Load reads settings from path. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	s := Defaults()

	if _, err := toml.DecodeFile(path, s); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		s.LogLevel = lvl
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks settings for values that cannot work
func (s *Settings) Validate() error {
	if s.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative, got %d", s.HistoryLimit)
	}
	if s.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", s.MaxConcurrency)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", s.LogFormat)
	}
	return nil
}

// Save writes settings to path with owner-only permissions
func Save(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Create writes s to path unless a file is already there
func Create(path string, s *Settings) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check config: %w", err)
	}
	return Save(path, s)
}
