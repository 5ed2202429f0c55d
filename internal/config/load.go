package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Environment variables that take precedence over the file.
const (
	EnvSessionURL    = "COMPANION_SESSION_URL"
	EnvLogLevel      = "COMPANION_LOG_LEVEL"
	EnvSpeechBackend = "COMPANION_SPEECH_BACKEND"
)

// Load reads the YAML file at path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvSessionURL); v != "" {
		cfg.Session.URL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvSpeechBackend); v != "" {
		cfg.Speech.Backend = v
	}
}

// DefaultSocketPath returns where the local recognition daemon listens by default.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "speechd", "speechd.sock")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "speechd", "speechd.sock")
}

func defaultOpenCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}
