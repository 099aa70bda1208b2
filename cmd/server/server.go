package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/rpg-battle/internal/config"
	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/engine/rng"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/handlers/battle/v1alpha1"
	"github.com/KirkDiggler/rpg-battle/internal/handlers/stream"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/battle"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/encounter"
	"github.com/KirkDiggler/rpg-battle/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/rpg-battle/internal/redis"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/battlelog"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/encounters"
	"github.com/KirkDiggler/rpg-battle/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

var (
	grpcPort     int
	httpPort     int
	logStore     string
	redisAddr    string
	sqlitePath   string
	disableCrits bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the battle server",
	Long: `Start the gRPC battle service and the WebSocket effect stream.
Flags override the BATTLE_* environment.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().IntVar(&grpcPort, "port", 50051, "gRPC server port")
	serverCmd.Flags().IntVar(&httpPort, "http-port", 8080, "WebSocket stream port, 0 disables it")
	serverCmd.Flags().StringVar(&logStore, "store", "memory", "battle-log store: memory, redis, or sqlite")
	serverCmd.Flags().StringVar(&redisAddr, "redis-addr", "localhost:6379", "Redis address for the redis store")
	serverCmd.Flags().StringVar(&sqlitePath, "sqlite-path", "battles.db", "database file for the sqlite store")
	serverCmd.Flags().BoolVar(&disableCrits, "disable-crits", false, "turn critical hits off in every battle")
}

// applyFlags copies explicitly set flags over the environment config
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.GRPCPort = grpcPort
	}
	if flags.Changed("http-port") {
		cfg.HTTPPort = httpPort
	}
	if flags.Changed("store") {
		cfg.LogStore = config.LogStore(logStore)
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr = redisAddr
	}
	if flags.Changed("sqlite-path") {
		cfg.SQLitePath = sqlitePath
	}
	if flags.Changed("disable-crits") {
		cfg.DisableCrits = disableCrits
	}
	return cfg.Validate()
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:  cfg.TelemetryEnabled,
		Endpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("Failed to flush traces", "error", err)
		}
	}()

	repo, closeRepo, err := openBattleLog(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	catalog, err := content.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	eng, err := engine.New(&engine.Config{
		Catalog: catalog,
		Tracer:  telemetry.Tracer("engine"),
	})
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	battleService, err := battle.NewOrchestrator(&battle.Config{
		Engine:        eng,
		BattleLogRepo: repo,
		IDGenerator:   idgen.NewUUID("battle"),
		DisableCrits:  cfg.DisableCrits,
	})
	if err != nil {
		return fmt.Errorf("failed to create battle service: %w", err)
	}

	rollSeed, err := rng.NewSeed()
	if err != nil {
		return fmt.Errorf("failed to seed encounter rolls: %w", err)
	}
	encounterService, err := encounter.NewOrchestrator(&encounter.Config{
		Catalog:       catalog,
		BattleService: battleService,
		EncounterRepo: encounters.NewInMemory(),
		IDGenerator:   idgen.NewUUID("enc"),
		Roller:        rng.New(rollSeed),
	})
	if err != nil {
		return fmt.Errorf("failed to create encounter service: %w", err)
	}

	battleHandler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{
		BattleService:    battleService,
		EncounterService: encounterService,
	})
	if err != nil {
		return fmt.Errorf("failed to create battle handler: %w", err)
	}

	logger := interceptorLogger(slog.Default())
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(logger),
			grpc_recovery.UnaryServerInterceptor(grpc_recovery.WithRecoveryHandler(recoverPanic)),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(logger),
			grpc_recovery.StreamServerInterceptor(grpc_recovery.WithRecoveryHandler(recoverPanic)),
		),
	)

	v1alpha1.RegisterBattleServiceServer(srv, battleHandler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(v1alpha1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	errChan := make(chan error, 2)
	go func() {
		slog.Info("gRPC server starting", "port", cfg.GRPCPort, "store", cfg.LogStore)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	var httpServer *http.Server
	if cfg.HTTPPort > 0 {
		streamHandler, err := stream.NewHandler(&stream.Config{BattleService: battleService})
		if err != nil {
			return fmt.Errorf("failed to create stream handler: %w", err)
		}
		mux := http.NewServeMux()
		streamHandler.Register(mux)
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("Stream server starting", "port", cfg.HTTPPort)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- fmt.Errorf("failed to serve streams: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal, gracefully stopping")
	case err := <-errChan:
		srv.Stop()
		return err
	}

	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Stream server shutdown failed", "error", err)
		}
	}

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-shutdownCtx.Done():
		slog.Warn("Graceful shutdown timeout exceeded, forcing stop")
		srv.Stop()
	case <-stopped:
		slog.Info("Server stopped gracefully")
	}

	return nil
}

// openBattleLog builds the configured battle-log store. The returned func
// releases its connections.
func openBattleLog(ctx context.Context, cfg *config.Config) (battlelog.Repository, func(), error) {
	switch cfg.LogStore {
	case config.LogStoreRedis:
		client, err := redisclient.NewClient(cfg.RedisAddr, &redisclient.Options{
			PoolSize:   10,
			MaxRetries: 3,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, errors.WrapWithCode(err, errors.CodeUnavailable, "redis is unreachable")
		}
		repo, err := battlelog.NewRedis(&battlelog.RedisConfig{Client: client})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return repo, func() { _ = client.Close() }, nil
	case config.LogStoreSQLite:
		repo, err := battlelog.OpenSQLite(&battlelog.SQLiteConfig{Path: cfg.SQLitePath})
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				slog.Warn("Failed to close sqlite store", "error", err)
			}
		}, nil
	default:
		return battlelog.NewInMemory(nil), func() {}, nil
	}
}

// interceptorLogger bridges the middleware logger onto slog. The middleware
// levels share slog's numeric values.
func interceptorLogger(l *slog.Logger) grpc_logging.Logger {
	return grpc_logging.LoggerFunc(func(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(level), msg, fields...)
	})
}

func recoverPanic(p any) error {
	slog.Error("Recovered from panic in handler", "panic", p)
	return errors.ToGRPCError(errors.Internal("internal error"))
}
