package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port int `toml:"port"`
}

type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	CookieName     string `toml:"cookie_name"` // session cookie forwarded on every call
}

type SessionConfig struct {
	Secret        string `toml:"secret"` // JWT signing secret for console sessions
	ExpiryHours   int    `toml:"expiry_hours"`
	StoragePath   string `toml:"storage_path"`
	CookieSecure  bool   `toml:"cookie_secure"`
}

type ComposeConfig struct {
	MaxAttachments    int   `toml:"max_attachments"`     // combined template + manual cap
	MaxAttachmentSize int64 `toml:"max_attachment_size"` // per-file cap in bytes
	DraftTTLHours     int   `toml:"draft_ttl_hours"`
}

type LogsConfig struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Backend BackendConfig `toml:"backend"`
	Session SessionConfig `toml:"session"`
	Compose ComposeConfig `toml:"compose"`
	Logs    LogsConfig    `toml:"logs"`
}

// LoadConfig reads the TOML config file, then applies environment overrides.
// A .env file, if present, is loaded first so local development does not need
// real environment variables.
func LoadConfig(filepath string) (*Config, error) {
	// Missing .env is fine; only a parse failure matters
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var config Config

	// Set default values
	config.Server.Port = 3000
	config.Backend.TimeoutSeconds = 30
	config.Backend.CookieName = "session"
	config.Session.ExpiryHours = 24
	config.Session.StoragePath = "./data"
	config.Compose.MaxAttachments = 5
	config.Compose.MaxAttachmentSize = 10 << 20 // 10 MiB
	config.Compose.DraftTTLHours = 12
	config.Logs.DefaultPageSize = 20
	config.Logs.MaxPageSize = 100

	if _, err := toml.DecodeFile(filepath, &config); err != nil {
		return nil, err
	}

	applyEnvOverrides(&config)

	if config.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend base_url is required")
	}
	if config.Session.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	return &config, nil
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("PLACEMAIL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("PLACEMAIL_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("PLACEMAIL_SESSION_SECRET"); v != "" {
		c.Session.Secret = v
	}
	if v := os.Getenv("PLACEMAIL_SESSION_STORAGE"); v != "" {
		c.Session.StoragePath = v
	}
}

// BackendTimeout returns the configured backend call timeout.
func (c *Config) BackendTimeout() time.Duration {
	if c.Backend.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// SessionExpiry returns the configured console session lifetime.
func (c *Config) SessionExpiry() time.Duration {
	if c.Session.ExpiryHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Session.ExpiryHours) * time.Hour
}

// DraftTTL returns how long an untouched compose draft is retained.
func (c *Config) DraftTTL() time.Duration {
	if c.Compose.DraftTTLHours <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.Compose.DraftTTLHours) * time.Hour
}
