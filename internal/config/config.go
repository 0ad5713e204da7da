package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/fintrack/internal/common"
)

// Remote drivers.
const (
	DriverSQLite = "sqlite"
	DriverHTTP   = "http"
)

// Config holds the resolved application settings.
type Config struct {
	Logging  LoggingConfig
	Cache    CacheConfig
	Remote   RemoteConfig
	Display  DisplayConfig
	Debounce time.Duration
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// CacheConfig locates the local JSON cache.
type CacheConfig struct {
	Path string
}

// RemoteConfig selects and configures the remote store.
type RemoteConfig struct {
	Driver  string
	Path    string
	URL     string
	APIKey  string
	Timeout time.Duration
}

// DisplayConfig controls money formatting.
type DisplayConfig struct {
	Locale   string
	Currency string
}

// DataDir returns the default directory for local files.
func DataDir() string {
	return ExpandPath(filepath.Join("~", ".local", "share", "fintrack"))
}

// Dir returns the default directory searched for config.yaml.
func Dir() string {
	return ExpandPath(filepath.Join("~", ".config", "fintrack"))
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("cache.path", filepath.Join(DataDir(), "cache.json"))
	v.SetDefault("remote.driver", DriverSQLite)
	v.SetDefault("remote.path", filepath.Join(DataDir(), "remote.db"))
	v.SetDefault("remote.timeout", 30*time.Second)
	v.SetDefault("sync.debounce", time.Second)
	v.SetDefault("display.locale", "pt-BR")
	v.SetDefault("display.currency", "BRL")
}

// Load resolves the configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Cache: CacheConfig{
			Path: ExpandPath(v.GetString("cache.path")),
		},
		Remote: RemoteConfig{
			Driver:  v.GetString("remote.driver"),
			Path:    ExpandPath(v.GetString("remote.path")),
			URL:     v.GetString("remote.url"),
			APIKey:  v.GetString("remote.api_key"),
			Timeout: v.GetDuration("remote.timeout"),
		},
		Display: DisplayConfig{
			Locale:   v.GetString("display.locale"),
			Currency: v.GetString("display.currency"),
		},
		Debounce: v.GetDuration("sync.debounce"),
	}

	// Fall back to the conventional variables when the prefixed ones are unset.
	if cfg.Remote.URL == "" {
		cfg.Remote.URL = os.Getenv("SUPABASE_URL")
	}
	if cfg.Remote.APIKey == "" {
		cfg.Remote.APIKey = os.Getenv("SUPABASE_ANON_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, c.Logging.Format)
	}
	if c.Cache.Path == "" {
		return fmt.Errorf("%w: cache.path is empty", common.ErrInvalidConfig)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("%w: sync.debounce must not be negative", common.ErrInvalidConfig)
	}

	switch c.Remote.Driver {
	case DriverSQLite:
		if c.Remote.Path == "" {
			return fmt.Errorf("%w: remote.path is required for the sqlite driver", common.ErrInvalidConfig)
		}
	case DriverHTTP:
		if c.Remote.URL == "" || c.Remote.APIKey == "" {
			return fmt.Errorf("%w: remote.url and remote.api_key are required for the http driver", common.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown remote driver %q", common.ErrInvalidConfig, c.Remote.Driver)
	}
	return nil
}
