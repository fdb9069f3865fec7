// Package config handles the configuration directory, the optional settings
// file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"taskman/internal/logger"
)

const (
	// AppName is the application directory name.
	AppName = "taskman"

	// EnvPrefix prefixes every environment override (TASKMAN_API_URL, ...).
	EnvPrefix = "TASKMAN"

	// SettingsName is the settings file base name; any viper-supported
	// extension is accepted (settings.json, settings.yaml, ...).
	SettingsName = "settings"

	// ProfilesFile holds profile metadata and the current profile pointer.
	ProfilesFile = "profiles.json"

	// CredentialsFile holds tokens when the file token store is selected.
	CredentialsFile = "credentials.json"

	// DefaultAPIURL is used when neither flags, settings nor a saved
	// profile name an API endpoint.
	DefaultAPIURL = "http://localhost:5000"

	// DefaultTimeout bounds every request to the remote API.
	DefaultTimeout = 30 * time.Second

	// TokenStoreKeyring keeps tokens in the OS keychain.
	TokenStoreKeyring = "keyring"

	// TokenStoreFile keeps tokens in CredentialsFile. Must be selected explicitly.
	TokenStoreFile = "file"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Profile names the profile to use; empty means the current one.
	Profile string

	// APIURL is an explicit API endpoint from --api-url, the environment
	// or the settings file. Empty when none was given.
	APIURL string

	// Timeout bounds each HTTP round trip.
	Timeout time.Duration

	// TokenStore selects where tokens are kept: "keyring" or "file".
	TokenStore string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Logger receives debug logs. Never nil after New.
	Logger *slog.Logger
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskman or $HOME/.config/taskman.
// A .env file in the working directory is loaded first, then the settings
// file in the config directory, then TASKMAN_* environment variables.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	// Missing .env is the common case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName(SettingsName)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("token_store", TokenStoreKeyring)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("invalid settings file: %w", err)
		}
	}

	timeout := DefaultTimeout
	if raw := strings.TrimSpace(v.GetString("timeout")); raw != "" {
		d, err := ParseTimeout(raw)
		if err != nil {
			return nil, err
		}
		timeout = d
	}

	store := strings.ToLower(strings.TrimSpace(v.GetString("token_store")))
	if store != TokenStoreKeyring && store != TokenStoreFile {
		return nil, fmt.Errorf("invalid token_store: %q (want %q or %q)", store, TokenStoreKeyring, TokenStoreFile)
	}

	return &Config{
		Dir:        dir,
		Profile:    strings.TrimSpace(v.GetString("profile")),
		APIURL:     strings.TrimRight(strings.TrimSpace(v.GetString("api_url")), "/"),
		Timeout:    timeout,
		TokenStore: store,
		Logger:     logger.Discard(),
	}, nil
}

// ParseTimeout accepts a Go duration ("10s", "1m30s") or a bare number of seconds.
func ParseTimeout(raw string) (time.Duration, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("invalid timeout: %s", raw)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid timeout: %s", raw)
	}
	return d, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ResolveAPIURL picks the endpoint for a request: an explicit APIURL wins,
// then the URL saved with the profile, then DefaultAPIURL.
func (c *Config) ResolveAPIURL(saved string) string {
	if c.APIURL != "" {
		return c.APIURL
	}
	if saved = strings.TrimRight(strings.TrimSpace(saved), "/"); saved != "" {
		return saved
	}
	return DefaultAPIURL
}

// ProfilesPath returns the path to the profiles file.
func (c *Config) ProfilesPath() string {
	return filepath.Join(c.Dir, ProfilesFile)
}

// CredentialsPath returns the path to the file token store.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Dir, CredentialsFile)
}

// HasProfiles checks if the profiles file exists.
func (c *Config) HasProfiles() bool {
	_, err := os.Stat(c.ProfilesPath())
	return err == nil
}
