package config

import (
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	Session SessionConfig `yaml:"session"`
	Room    RoomConfig    `yaml:"room"`
	Speech  SpeechConfig  `yaml:"speech"`
	Insight InsightConfig `yaml:"insight"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type SessionConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type RoomConfig struct {
	AutoOpen    bool   `yaml:"auto_open"`
	OpenCommand string `yaml:"open_command"`
}

type SpeechConfig struct {
	Backend     string        `yaml:"backend"`
	SocketPath  string        `yaml:"socket_path"`
	URL         string        `yaml:"url"`
	Language    string        `yaml:"language"`
	Speaker     string        `yaml:"speaker"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

type InsightConfig struct {
	Model          string        `yaml:"model"`
	QuietInterval  time.Duration `yaml:"quiet_interval"`
	MockDelay      time.Duration `yaml:"mock_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	APIKeyEnv      string        `yaml:"api_key_env"`
	KeyringService string        `yaml:"keyring_service"`
	KeyringUser    string        `yaml:"keyring_user"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// Speech backends understood by the speech package.
const (
	BackendNone      = "none"
	BackendDaemon    = "daemon"
	BackendWebsocket = "websocket"
)

func (c *Config) Validate() error {
	if c.Session.URL == "" {
		return fmt.Errorf("session.url is required")
	}
	if u, err := url.Parse(c.Session.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("session.url must be an absolute URL")
	}

	switch c.Speech.Backend {
	case "":
		c.Speech.Backend = BackendNone
	case BackendNone, BackendDaemon, BackendWebsocket:
	default:
		return fmt.Errorf("speech.backend %q is not one of none, daemon, websocket", c.Speech.Backend)
	}
	if c.Speech.Backend == BackendWebsocket && c.Speech.URL == "" {
		return fmt.Errorf("speech.url is required for the websocket backend")
	}

	if c.Insight.QuietInterval < 0 || c.Insight.MockDelay < 0 || c.Insight.RequestTimeout < 0 {
		return fmt.Errorf("insight durations must not be negative")
	}

	switch c.Logging.Format {
	case "":
		c.Logging.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	if c.Session.Timeout == 0 {
		c.Session.Timeout = 15 * time.Second
	}
	if c.Room.OpenCommand == "" {
		c.Room.OpenCommand = defaultOpenCommand()
	}
	if c.Speech.SocketPath == "" {
		c.Speech.SocketPath = DefaultSocketPath()
	}
	if c.Speech.Language == "" {
		c.Speech.Language = "en-US"
	}
	if c.Speech.Speaker == "" {
		c.Speech.Speaker = "Me"
	}
	if c.Speech.DialTimeout == 0 {
		c.Speech.DialTimeout = 5 * time.Second
	}
	c.Insight.SetDefaults()
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

// SetDefaults fills unset insight fields. Validate calls it; it is also usable
// on its own when no complete config is available.
func (c *InsightConfig) SetDefaults() {
	if c.Model == "" {
		c.Model = "gemini-2.5-flash"
	}
	if c.QuietInterval == 0 {
		c.QuietInterval = 2500 * time.Millisecond
	}
	if c.MockDelay == 0 {
		c.MockDelay = 500 * time.Millisecond
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "API_KEY"
	}
	if c.KeyringService == "" {
		c.KeyringService = "call-companion"
	}
	if c.KeyringUser == "" {
		c.KeyringUser = "gemini-api-key"
	}
}
