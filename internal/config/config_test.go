package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fintrack/internal/common"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, DriverSQLite, cfg.Remote.Driver)
	assert.Equal(t, filepath.Join(DataDir(), "remote.db"), cfg.Remote.Path)
	assert.Equal(t, filepath.Join(DataDir(), "cache.json"), cfg.Cache.Path)
	assert.Equal(t, time.Second, cfg.Debounce)
	assert.Equal(t, 30*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, "pt-BR", cfg.Display.Locale)
	assert.Equal(t, "BRL", cfg.Display.Currency)
}

func TestLoad_ExpandsPaths(t *testing.T) {
	t.Setenv("FINTRACK_TEST_DIR", "/tmp/fintrack")
	v := newViper()
	v.Set("cache.path", "$FINTRACK_TEST_DIR/cache.json")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/fintrack/cache.json", cfg.Cache.Path)
}

func TestLoad_HTTPDriver(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")

	v := newViper()
	v.Set("remote.driver", DriverHTTP)

	_, err := Load(v)
	require.ErrorIs(t, err, common.ErrInvalidConfig)

	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://example.supabase.co", cfg.Remote.URL)
	assert.Equal(t, "anon", cfg.Remote.APIKey)

	v.Set("remote.url", "https://other.example.com")
	cfg, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com", cfg.Remote.URL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "bad level", key: "logging.level", val: "verbose"},
		{name: "bad format", key: "logging.format", val: "xml"},
		{name: "unknown driver", key: "remote.driver", val: "mongo"},
		{name: "empty sqlite path", key: "remote.path", val: ""},
		{name: "empty cache path", key: "cache.path", val: ""},
		{name: "negative debounce", key: "sync.debounce", val: "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.val)

			_, err := Load(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("FINTRACK_HOME", "/data")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "tilde", input: "~", expected: home},
		{name: "tilde prefix", input: "~/fintrack/cache.json", expected: filepath.Join(home, "fintrack/cache.json")},
		{name: "env var", input: "$FINTRACK_HOME/remote.db", expected: "/data/remote.db"},
		{name: "absolute", input: "/var/lib/fintrack", expected: "/var/lib/fintrack"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}
}
