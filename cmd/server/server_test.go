package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/suite"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"

	"github.com/KirkDiggler/rpg-battle/internal/config"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/battlelog"
	"github.com/KirkDiggler/rpg-battle/internal/testutils"
)

type ServerTestSuite struct {
	suite.Suite
	ctx context.Context
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func defaults() *config.Config {
	return &config.Config{
		GRPCPort:   50051,
		HTTPPort:   8080,
		LogStore:   config.LogStoreMemory,
		RedisAddr:  "localhost:6379",
		SQLitePath: "battles.db",
		LogLevel:   "info",
	}
}

// newServerCmd builds a command carrying the server flags so tests do not
// share flag state
func newServerCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "server"}
	cmd.Flags().IntVar(&grpcPort, "port", 50051, "")
	cmd.Flags().IntVar(&httpPort, "http-port", 8080, "")
	cmd.Flags().StringVar(&logStore, "store", "memory", "")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "localhost:6379", "")
	cmd.Flags().StringVar(&sqlitePath, "sqlite-path", "battles.db", "")
	cmd.Flags().BoolVar(&disableCrits, "disable-crits", false, "")
	return cmd
}

func (s *ServerTestSuite) TestFlagsOverrideOnlyWhenSet() {
	cmd := newServerCmd()
	s.Require().NoError(cmd.Flags().Set("port", "6000"))
	s.Require().NoError(cmd.Flags().Set("disable-crits", "true"))

	cfg := defaults()
	cfg.HTTPPort = 9090
	s.Require().NoError(applyFlags(cmd, cfg))

	s.Equal(6000, cfg.GRPCPort)
	s.True(cfg.DisableCrits)
	s.Equal(9090, cfg.HTTPPort)
	s.Equal(config.LogStoreMemory, cfg.LogStore)
}

func (s *ServerTestSuite) TestFlagsAreValidated() {
	cmd := newServerCmd()
	s.Require().NoError(cmd.Flags().Set("store", "postgres"))

	err := applyFlags(cmd, defaults())
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "LogStore")
}

func (s *ServerTestSuite) TestOpenMemoryStore() {
	repo, closeRepo, err := openBattleLog(s.ctx, defaults())
	s.Require().NoError(err)
	defer closeRepo()
	s.IsType(&battlelog.InMemoryRepository{}, repo)
}

func (s *ServerTestSuite) TestOpenSQLiteStore() {
	cfg := defaults()
	cfg.LogStore = config.LogStoreSQLite
	cfg.SQLitePath = filepath.Join(s.T().TempDir(), "battles.db")

	repo, closeRepo, err := openBattleLog(s.ctx, cfg)
	s.Require().NoError(err)
	defer closeRepo()

	_, err = repo.Create(s.ctx, battlelog.CreateInput{Record: &battlelog.Record{
		BattleID: "battle_1",
		Log:      testutils.SinglesLog(1),
	}})
	s.Require().NoError(err)

	out, err := repo.Get(s.ctx, battlelog.GetInput{BattleID: "battle_1"})
	s.Require().NoError(err)
	s.Equal(int64(1), out.Record.Log.Seed)
}

func (s *ServerTestSuite) TestUnreachableRedisIsUnavailable() {
	cfg := defaults()
	cfg.LogStore = config.LogStoreRedis
	cfg.RedisAddr = "127.0.0.1:1"

	_, _, err := openBattleLog(s.ctx, cfg)
	s.Require().Error(err)
	s.Equal(errors.CodeUnavailable, errors.GetCode(err))
}

func (s *ServerTestSuite) TestInterceptorLoggerKeepsLevels() {
	var buf bytes.Buffer
	logger := interceptorLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	logger.Log(s.ctx, grpc_logging.LevelDebug, "hidden")
	logger.Log(s.ctx, grpc_logging.LevelWarn, "finished call", "grpc.code", "NotFound")

	out := buf.String()
	s.NotContains(out, "hidden")
	s.Contains(out, "level=WARN")
	s.Contains(out, "grpc.code=NotFound")
}
