package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-battle/internal/config"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := config.Load()
	s.Require().NoError(err)

	s.Equal(50051, cfg.GRPCPort)
	s.Equal(8080, cfg.HTTPPort)
	s.Equal(config.LogStoreMemory, cfg.LogStore)
	s.False(cfg.TelemetryEnabled)
	s.False(cfg.DisableCrits)
	s.Equal(slog.LevelInfo, cfg.SlogLevel())
}

func (s *ConfigTestSuite) TestEnvironmentOverrides() {
	s.T().Setenv("BATTLE_GRPC_PORT", "6000")
	s.T().Setenv("BATTLE_LOG_STORE", "sqlite")
	s.T().Setenv("BATTLE_SQLITE_PATH", "/tmp/battles.db")
	s.T().Setenv("BATTLE_DISABLE_CRITS", "true")
	s.T().Setenv("BATTLE_LOG_LEVEL", "DEBUG")

	cfg, err := config.Load()
	s.Require().NoError(err)

	s.Equal(6000, cfg.GRPCPort)
	s.Equal(config.LogStoreSQLite, cfg.LogStore)
	s.Equal("/tmp/battles.db", cfg.SQLitePath)
	s.True(cfg.DisableCrits)
	s.Equal(slog.LevelDebug, cfg.SlogLevel())
}

func (s *ConfigTestSuite) TestMalformedValue() {
	s.T().Setenv("BATTLE_GRPC_PORT", "not-a-port")

	_, err := config.Load()
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *ConfigTestSuite) TestValidate() {
	valid := func() *config.Config {
		return &config.Config{GRPCPort: 50051, HTTPPort: 8080, LogStore: config.LogStoreMemory, LogLevel: "info"}
	}

	testCases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "port out of range", mutate: func(c *config.Config) { c.GRPCPort = 70000 }, wantErr: "GRPCPort"},
		{name: "unknown store", mutate: func(c *config.Config) { c.LogStore = "postgres" }, wantErr: "LogStore"},
		{name: "redis without address", mutate: func(c *config.Config) { c.LogStore = config.LogStoreRedis }, wantErr: "RedisAddr"},
		{name: "sqlite without path", mutate: func(c *config.Config) { c.LogStore = config.LogStoreSQLite }, wantErr: "SQLitePath"},
		{name: "unknown level", mutate: func(c *config.Config) { c.LogLevel = "loud" }, wantErr: "LogLevel"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				s.NoError(err)
				return
			}
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
			s.Contains(err.Error(), tc.wantErr)
		})
	}
}
