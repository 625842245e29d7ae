// Package config loads the carexplorer runtime configuration from viper.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Catalog source kinds.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourceNeo4j    = "neo4j"
)

// Preference backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type CatalogConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
	URL    string `mapstructure:"url"`
	// Watch reloads a file catalog when it changes on disk.
	Watch bool `mapstructure:"watch"`
}

type PrefsConfig struct {
	Backend  string `mapstructure:"backend"`
	Capacity int    `mapstructure:"capacity"`
	// TTL is how long Redis keeps a session's preferences after the last
	// write, e.g. "720h". Zero keeps them forever.
	TTL time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	// URL is empty when NATS is not used.
	URL string `mapstructure:"url"`
}

type Neo4jConfig struct {
	URL  string `mapstructure:"url"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
}

type RateConfig struct {
	// Limit is requests per second per client; zero disables limiting.
	Limit float64 `mapstructure:"limit"`
	Burst int     `mapstructure:"burst"`
}

// Config holds all runtime configuration. Values come from .carexplorer.yaml,
// CAREXPLORER_* env vars and CLI flags.
type Config struct {
	Port       string        `mapstructure:"port"`
	CORSOrigin string        `mapstructure:"cors_origin"`
	LogLevel   string        `mapstructure:"log_level"`
	Catalog    CatalogConfig `mapstructure:"catalog"`
	Prefs      PrefsConfig   `mapstructure:"prefs"`
	Redis      RedisConfig   `mapstructure:"redis"`
	NATS       NATSConfig    `mapstructure:"nats"`
	Neo4j      Neo4jConfig   `mapstructure:"neo4j"`
	Rate       RateConfig    `mapstructure:"rate"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment or flags.
func Load() (Config, error) {
	viper.SetDefault("port", "8080")
	viper.SetDefault("cors_origin", "*")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("catalog.source", SourceEmbedded)
	viper.SetDefault("catalog.path", "")
	viper.SetDefault("catalog.url", "")
	viper.SetDefault("catalog.watch", false)
	viper.SetDefault("prefs.backend", BackendMemory)
	viper.SetDefault("prefs.capacity", 3)
	viper.SetDefault("prefs.ttl", time.Duration(0))
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("nats.url", "")
	viper.SetDefault("neo4j.url", "neo4j://localhost:7687")
	viper.SetDefault("neo4j.user", "neo4j")
	viper.SetDefault("neo4j.pass", "password")
	viper.SetDefault("rate.limit", 0.0)
	viper.SetDefault("rate.burst", 20)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings and the settings each choice
// depends on.
func (c Config) Validate() error {
	switch c.Catalog.Source {
	case SourceEmbedded, SourceNeo4j:
	case SourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("config: catalog.source %q needs catalog.path", c.Catalog.Source)
		}
	case SourceHTTP:
		if c.Catalog.URL == "" {
			return fmt.Errorf("config: catalog.source %q needs catalog.url", c.Catalog.Source)
		}
	default:
		return fmt.Errorf("config: unknown catalog.source %q", c.Catalog.Source)
	}
	if c.Catalog.Watch && c.Catalog.Source != SourceFile {
		return fmt.Errorf("config: catalog.watch needs a file source, got %q", c.Catalog.Source)
	}
	switch c.Prefs.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("config: unknown prefs.backend %q", c.Prefs.Backend)
	}
	if c.Prefs.Capacity < 1 {
		return fmt.Errorf("config: prefs.capacity must be at least 1, got %d", c.Prefs.Capacity)
	}
	if c.Prefs.TTL < 0 {
		return fmt.Errorf("config: prefs.ttl must not be negative, got %s", c.Prefs.TTL)
	}
	if c.Rate.Limit < 0 {
		return fmt.Errorf("config: rate.limit must not be negative, got %v", c.Rate.Limit)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: log_level %q: %w", s, err)
	}
	return l, nil
}
