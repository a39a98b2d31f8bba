package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Config holds the complete playground configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Web     WebConfig     `yaml:"web" json:"web"`
	Store   StoreConfig   `yaml:"store" json:"store"`
	Upload  UploadConfig  `yaml:"upload" json:"upload"`
	Batch   BatchConfig   `yaml:"batch" json:"batch"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Sentry  SentryConfig  `yaml:"sentry" json:"sentry"`
}

// ServerConfig describes the inference endpoint
type ServerConfig struct {
	Origin  string        `yaml:"origin" json:"origin"`   // scheme://host[:port], no trailing slash
	Timeout time.Duration `yaml:"timeout" json:"timeout"` // 0 waits forever
}

type WebConfig struct {
	Address        string `yaml:"address" json:"address"`
	Release        bool   `yaml:"release" json:"release"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" json:"max_upload_bytes"`
}

// StoreConfig selects where web sessions live
type StoreConfig struct {
	Backend             string        `yaml:"backend" json:"backend"` // memory|redis
	RedisAddress        string        `yaml:"redis_address" json:"redis_address"`
	RedisMaxConnections int           `yaml:"redis_max_connections" json:"redis_max_connections"`
	SessionTTL          time.Duration `yaml:"session_ttl" json:"session_ttl"`
}

type UploadConfig struct {
	DropFolder  string        `yaml:"drop_folder" json:"drop_folder"`
	SettleDelay time.Duration `yaml:"settle_delay" json:"settle_delay"`
}

type BatchConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // text|json
}

type SentryConfig struct {
	DSN string `yaml:"dsn" json:"dsn"`
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Origin: "http://localhost:8000",
		},
		Web: WebConfig{
			Address:        ":8081",
			MaxUploadBytes: 10 << 20,
		},
		Store: StoreConfig{
			Backend:             BackendMemory,
			RedisAddress:        ":6379",
			RedisMaxConnections: 50,
			SessionTTL:          time.Hour,
		},
		Upload: UploadConfig{
			SettleDelay: 250 * time.Millisecond,
		},
		Batch: BatchConfig{
			Workers: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration and normalizes the origin
func (c *Config) Validate() error {
	c.Server.Origin = strings.TrimRight(c.Server.Origin, "/")
	u, err := url.Parse(c.Server.Origin)
	if err != nil {
		return errors.Wrap(err, "invalid server origin")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("server origin must be an absolute http(s) URL, got %q", c.Server.Origin)
	}
	if c.Server.Timeout < 0 {
		return errors.New("server timeout must not be negative")
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Store.RedisAddress == "" {
			return errors.New("redis store needs an address")
		}
		if c.Store.RedisMaxConnections <= 0 {
			return errors.New("redis max connections must be positive")
		}
		if c.Store.SessionTTL > 0 && c.Store.SessionTTL < time.Second {
			return errors.New("session ttl must be at least one second")
		}
	default:
		return errors.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Web.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}
	if c.Batch.Workers <= 0 {
		return errors.New("batch workers must be positive")
	}
	return nil
}
