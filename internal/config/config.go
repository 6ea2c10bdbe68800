package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config represents the global ~/.wppclone/config.toml.
type Config struct {
	DefaultInstance string         `toml:"default_instance"`
	ListenAddr      string         `toml:"listen_addr"`
	LogLevel        string         `toml:"log_level"`
	Storage         StorageConfig  `toml:"storage"`
	Presence        PresenceConfig `toml:"presence"`
}

// StorageConfig selects and configures the snapshot backend.
type StorageConfig struct {
	Backend  string `toml:"backend"`
	RedisURL string `toml:"redis_url"`
	RedisKey string `toml:"redis_key"`
}

// PresenceConfig controls heartbeat expiry.
type PresenceConfig struct {
	TTL           Duration `toml:"ttl"`
	SweepInterval Duration `toml:"sweep_interval"`
}

// Duration is a time.Duration that reads and writes TOML strings like "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr: "127.0.0.1:3000",
		LogLevel:   "info",
		Storage:    StorageConfig{Backend: BackendFile},
		Presence: PresenceConfig{
			TTL:           Duration{90 * time.Second},
			SweepInterval: Duration{15 * time.Second},
		},
	}
}

// Load reads config from the given path over the defaults. Returns error if file missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Resolve loads the file if present, then a .env file, then environment overrides.
// A missing config file is not an error.
func Resolve(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		loaded, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		cfg = loaded
	}

	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("WPP_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("WPP_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("WPP_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("WPP_REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}
	if v := os.Getenv("WPP_PRESENCE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WPP_PRESENCE_TTL: %w", err)
		}
		c.Presence.TTL = Duration{d}
	}
	return nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Presence.TTL.Duration <= 0 {
		return fmt.Errorf("presence.ttl must be positive")
	}
	if c.Presence.SweepInterval.Duration <= 0 {
		return fmt.Errorf("presence.sweep_interval must be positive")
	}
	return nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
