package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Matching    MatchingConfig    `toml:"matching"`
	Transfer    TransferConfig    `toml:"transfer"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains provider OAuth client credentials.
type CredentialsConfig struct {
	Spotify OAuthClientConfig `toml:"spotify"`
	Google  GoogleConfig      `toml:"google"`
}

// OAuthClientConfig contains the client registration for an OAuth provider.
type OAuthClientConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// GoogleConfig contains the YouTube Data API client registration and the
// daily quota budget used for advisory usage reports.
type GoogleConfig struct {
	OAuthClientConfig
	DailyQuota int `toml:"daily_quota"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// MatchingConfig tunes normalization and candidate acceptance.
type MatchingConfig struct {
	Locale     string `toml:"locale"`
	AutoAccept int    `toml:"auto_accept"`
	Review     int    `toml:"review"`
	CacheSize  int    `toml:"cache_size"`
}

// TransferConfig controls how destination playlists are created.
type TransferConfig struct {
	AppName    string `toml:"app_name"`
	Visibility string `toml:"visibility"`
	LockPath   string `toml:"lock_path"`
}

// LogConfig sets the log level and an optional log file used while the TUI owns the terminal.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads a TOML configuration file on top of the embedded defaults.
//
// Keys missing from the file keep their default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %w", ErrMissingConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks threshold ordering and ranges.
func (c *Config) Validate() error {
	m := c.Matching
	switch {
	case m.AutoAccept < 0 || m.AutoAccept > 100:
		return fmt.Errorf("%w: matching.auto_accept must be within 0..100, got %d", ErrInvalidConfig, m.AutoAccept)
	case m.Review < 0 || m.Review > m.AutoAccept:
		return fmt.Errorf("%w: matching.review must be within 0..auto_accept, got %d", ErrInvalidConfig, m.Review)
	case m.CacheSize < 1:
		return fmt.Errorf("%w: matching.cache_size must be positive, got %d", ErrInvalidConfig, m.CacheSize)
	}

	switch c.Transfer.Visibility {
	case "public", "private":
	default:
		return fmt.Errorf("%w: transfer.visibility must be public or private, got %q", ErrInvalidConfig, c.Transfer.Visibility)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
