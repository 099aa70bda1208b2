// Package config loads server settings from the environment
package config

import (
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

// LogStore selects the battle-log repository backend
type LogStore string

// Supported battle-log stores
const (
	LogStoreMemory LogStore = "memory"
	LogStoreRedis  LogStore = "redis"
	LogStoreSQLite LogStore = "sqlite"
)

// Config is the server configuration. Every field can be set through a
// BATTLE_* environment variable; cobra flags override what is parsed here.
type Config struct {
	GRPCPort int `env:"BATTLE_GRPC_PORT" envDefault:"50051"`
	HTTPPort int `env:"BATTLE_HTTP_PORT" envDefault:"8080"`

	LogStore   LogStore `env:"BATTLE_LOG_STORE"   envDefault:"memory"`
	RedisAddr  string   `env:"BATTLE_REDIS_ADDR"  envDefault:"localhost:6379"`
	SQLitePath string   `env:"BATTLE_SQLITE_PATH" envDefault:"battles.db"`

	TelemetryEnabled bool   `env:"BATTLE_TELEMETRY_ENABLED" envDefault:"false"`
	OTLPEndpoint     string `env:"BATTLE_OTLP_ENDPOINT"`

	// DisableCrits forces critical hits off for every served battle
	DisableCrits bool   `env:"BATTLE_DISABLE_CRITS" envDefault:"false"`
	LogLevel     string `env:"BATTLE_LOG_LEVEL"     envDefault:"info"`
}

// Load parses the environment into a validated Config
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ports, the store choice, and the store's settings
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		vb.InvalidField("GRPCPort", "must be between 1 and 65535")
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		vb.InvalidField("HTTPPort", "must be between 0 and 65535")
	}

	switch c.LogStore {
	case LogStoreMemory:
	case LogStoreRedis:
		if c.RedisAddr == "" {
			vb.RequiredField("RedisAddr")
		}
	case LogStoreSQLite:
		if c.SQLitePath == "" {
			vb.RequiredField("SQLitePath")
		}
	default:
		vb.Fieldf("LogStore", "must be one of memory, redis, sqlite, got %q", c.LogStore)
	}

	if _, ok := parseLevel(c.LogLevel); !ok {
		vb.InvalidField("LogLevel", "must be debug, info, warn, or error")
	}

	return vb.Build()
}

// SlogLevel returns the configured log level, info when unset
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
