package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/warehouse-ledger/internal/adapter/handler"
	"github.com/rl1809/warehouse-ledger/internal/adapter/messaging"
	"github.com/rl1809/warehouse-ledger/internal/adapter/scheduler"
	"github.com/rl1809/warehouse-ledger/internal/adapter/storage"
	"github.com/rl1809/warehouse-ledger/internal/config"
	"github.com/rl1809/warehouse-ledger/internal/core/service"
	"github.com/rl1809/warehouse-ledger/internal/port"
)

const shutdownTimeout = 5 * time.Second

var rootCmd = &cobra.Command{
	Use:          "warehouse-ledger",
	Short:        "Warehouse inventory ledger and placement engine",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers, journal workers and sweep scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Validate the configured network layout and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		layout, err := config.LoadLayout(cfg.NetworkFile)
		if err != nil {
			return err
		}
		if _, err := layout.BuildNetwork(); err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(layout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, layoutCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	layout, err := config.LoadLayout(cfg.NetworkFile)
	if err != nil {
		return err
	}
	network, err := layout.BuildNetwork()
	if err != nil {
		return err
	}
	logger.Info("network loaded", zap.Int("locations", len(network.Locations())))

	var (
		journals []port.JournalRepository
		cache    port.CacheRepository
		closers  []func() error
	)

	// Initialize MySQL
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping mysql: %w", err)
		}
		if err := storage.ApplySchema(ctx, db); err != nil {
			return err
		}
		logger.Info("connected to mysql")
		journals = append(journals, storage.NewMySQLAdapter(db))
		closers = append(closers, db.Close)
	}

	// Initialize Redis
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 50,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		redisAdapter := storage.NewRedisAdapter(rdb)
		cache = redisAdapter
		journals = append(journals, redisAdapter)
		closers = append(closers, rdb.Close)
	}

	// Initialize Kafka
	if cfg.KafkaBroker != "" {
		writer := messaging.NewKafkaWriter(cfg.KafkaBroker, cfg.KafkaAuditTopic)
		publisher := messaging.NewKafkaPublisher(writer)
		journals = append(journals, publisher)
		closers = append(closers, publisher.Close)
		logger.Info("kafka audit publisher ready",
			zap.String("broker", cfg.KafkaBroker), zap.String("topic", cfg.KafkaAuditTopic))
	}

	// Initialize core
	audit := service.NewAuditLog()
	var pool *service.JournalPool
	if len(journals) > 0 {
		queue := audit.Forward(cfg.JournalQueueSize)
		pool = service.StartJournalPool(cfg.JournalWorkers, queue, journals, logger)
	}
	engine := service.NewEngine(network, audit, logger)
	inventory := service.NewInventoryService(engine, cache, logger)

	// Initialize scheduler
	sweeps, err := scheduler.NewSweeps(inventory, scheduler.Schedules{
		Redistribute: cfg.RedistributeSchedule,
		Disposal:     cfg.DisposalSchedule,
	}, logger)
	if err != nil {
		return err
	}
	sweeps.Start()

	// Start gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterLedgerServer(grpcServer, handler.NewGRPCHandler(inventory, logger))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewHTTPHandler(inventory, logger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	select {
	case <-sweeps.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("sweep still running at shutdown")
	}
	logger.Info("scheduler stopped")

	// Close audit queue and wait for journal workers
	audit.Close()
	if pool != nil {
		pool.Wait()
	}
	logger.Info("journal workers stopped")

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Warn("close connection", zap.Error(err))
		}
	}
	logger.Info("connections closed")
	return nil
}
