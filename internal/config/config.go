// Package config loads pipecheck server configuration from TOML files.
//
// Server and CLI both run fine with zero configuration; a config file only
// overrides the pieces it names. Missing values fall back to defaults, so
// a minimal deployment file can be a single [server] line.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Backend names accepted in the cache and history sections.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	HistorySQLite = "sqlite"
	HistoryMongo  = "mongo"
	HistoryNone   = "none"
)

type Config struct {
	Server  Server  `toml:"server"`
	Cache   Cache   `toml:"cache"`
	History History `toml:"history"`
}

type Server struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
	RateLimit       float64       `toml:"rate_limit"` // requests per second, 0 disables
	RateBurst       int           `toml:"rate_burst"`
	CORSOrigins     []string      `toml:"cors_origins"`
}

type Cache struct {
	Backend string        `toml:"backend"` // file, redis, none
	Dir     string        `toml:"dir"`     // file backend; empty picks the user cache dir
	TTL     time.Duration `toml:"ttl"`
	Scope   string        `toml:"scope"` // optional key namespace for shared backends
	Redis   Redis         `toml:"redis"`
}

type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type History struct {
	Backend string `toml:"backend"` // sqlite, mongo, none
	Path    string `toml:"path"`    // sqlite backend; empty picks the user data dir
	Mongo   Mongo  `toml:"mongo"`
}

type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20 // 1 MiB
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = 50
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = 100
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	if strings.TrimSpace(cfg.Cache.Backend) == "" {
		cfg.Cache.Backend = CacheFile
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 24 * time.Hour
	}
	if strings.TrimSpace(cfg.Cache.Redis.Addr) == "" {
		cfg.Cache.Redis.Addr = "127.0.0.1:6379"
	}

	if strings.TrimSpace(cfg.History.Backend) == "" {
		cfg.History.Backend = HistorySQLite
	}
	if strings.TrimSpace(cfg.History.Mongo.URI) == "" {
		cfg.History.Mongo.URI = "mongodb://127.0.0.1:27017"
	}
	if strings.TrimSpace(cfg.History.Mongo.Database) == "" {
		cfg.History.Mongo.Database = "pipecheck"
	}
	if strings.TrimSpace(cfg.History.Mongo.Collection) == "" {
		cfg.History.Mongo.Collection = "runs"
	}
}

func validate(cfg *Config) error {
	switch cfg.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("cache backend %q (must be one of: file, redis, none)", cfg.Cache.Backend)
	}

	switch cfg.History.Backend {
	case HistorySQLite, HistoryMongo, HistoryNone:
	default:
		return fmt.Errorf("history backend %q (must be one of: sqlite, mongo, none)", cfg.History.Backend)
	}

	if cfg.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must not be negative")
	}
	if cfg.Server.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if cfg.Server.RateBurst < 0 {
		return fmt.Errorf("rate_burst must not be negative")
	}

	return nil
}
