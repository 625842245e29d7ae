package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv() {
	viper.Reset()
	viper.SetEnvPrefix("CAREXPLORER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, SourceEmbedded, cfg.Catalog.Source)
	assert.False(t, cfg.Catalog.Watch)
	assert.Equal(t, BackendMemory, cfg.Prefs.Backend)
	assert.Equal(t, 3, cfg.Prefs.Capacity)
	assert.Zero(t, cfg.Prefs.TTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, "neo4j://localhost:7687", cfg.Neo4j.URL)
	assert.Zero(t, cfg.Rate.Limit)
	assert.Equal(t, 20, cfg.Rate.Burst)
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{"CAREXPLORER_PORT", "9090", func(c Config) any { return c.Port }, "9090"},
		{"CAREXPLORER_LOG_LEVEL", "debug", func(c Config) any { return c.LogLevel }, "debug"},
		{"CAREXPLORER_PREFS_CAPACITY", "5", func(c Config) any { return c.Prefs.Capacity }, 5},
		{"CAREXPLORER_PREFS_BACKEND", "redis", func(c Config) any { return c.Prefs.Backend }, BackendRedis},
		{"CAREXPLORER_REDIS_DB", "2", func(c Config) any { return c.Redis.DB }, 2},
		{"CAREXPLORER_NATS_URL", "nats://broker:4222", func(c Config) any { return c.NATS.URL }, "nats://broker:4222"},
		{"CAREXPLORER_RATE_LIMIT", "12.5", func(c Config) any { return c.Rate.Limit }, 12.5},
		{"CAREXPLORER_PREFS_TTL", "720h", func(c Config) any { return c.Prefs.TTL }, 720 * time.Hour},
		{"CAREXPLORER_CATALOG_SOURCE", "neo4j", func(c Config) any { return c.Catalog.Source }, SourceNeo4j},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			setupEnv()
			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.field(cfg))
		})
	}
}

func TestLoad_FileSourceWithPath(t *testing.T) {
	setupEnv()
	t.Setenv("CAREXPLORER_CATALOG_SOURCE", "file")
	t.Setenv("CAREXPLORER_CATALOG_PATH", "/srv/cars.json")
	t.Setenv("CAREXPLORER_CATALOG_WATCH", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/cars.json", cfg.Catalog.Path)
	assert.True(t, cfg.Catalog.Watch)
}

func TestValidate(t *testing.T) {
	viper.Reset()
	base, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"file without path", func(c *Config) { c.Catalog.Source = SourceFile }, "needs catalog.path"},
		{"http without url", func(c *Config) { c.Catalog.Source = SourceHTTP }, "needs catalog.url"},
		{"unknown source", func(c *Config) { c.Catalog.Source = "ftp" }, "unknown catalog.source"},
		{"watch without file", func(c *Config) { c.Catalog.Watch = true }, "catalog.watch"},
		{"unknown backend", func(c *Config) { c.Prefs.Backend = "sqlite" }, "unknown prefs.backend"},
		{"zero capacity", func(c *Config) { c.Prefs.Capacity = 0 }, "prefs.capacity"},
		{"negative rate", func(c *Config) { c.Rate.Limit = -1 }, "rate.limit"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	setupEnv()
	t.Setenv("CAREXPLORER_PREFS_BACKEND", "etcd")
	_, err := Load()
	assert.ErrorContains(t, err, "etcd")
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	l, err = ParseLevel("ERROR")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, l)
}
