package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"

	"github.com/rl1809/car-purchase/internal/adapter/handler"
	"github.com/rl1809/car-purchase/internal/adapter/inventory"
	"github.com/rl1809/car-purchase/internal/adapter/storage"
	"github.com/rl1809/car-purchase/internal/config"
	"github.com/rl1809/car-purchase/internal/core/service"
	"github.com/rl1809/car-purchase/internal/port"
	"github.com/rl1809/car-purchase/pkg/logging"
	"github.com/rl1809/car-purchase/pkg/tracing"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.ServiceName, cfg.TracingExporter, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("failed to init tracing", "err", err)
		os.Exit(1)
	}

	// Initialize record store
	var (
		repo port.PurchaseRepository
		db   *sql.DB
	)
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		db, err = storage.OpenMySQL(cfg.MySQLDSN)
		if err != nil {
			log.Error("failed to open mysql", "err", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to ping mysql", "err", err)
			os.Exit(1)
		}
		log.Info("connected to mysql")

		mysqlAdapter := storage.NewMySQLAdapter(db)
		if cfg.AutoMigrate {
			if err := mysqlAdapter.Migrate(ctx); err != nil {
				log.Error("failed to migrate", "err", err)
				os.Exit(1)
			}
		}
		repo = mysqlAdapter
	default:
		log.Warn("using in-memory store, purchases will not survive a restart")
		repo = storage.NewMemoryAdapter()
	}

	// Initialize Redis
	var (
		rdb         *redis.Client
		idempotency port.IdempotencyStore
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("failed to connect redis", "err", err)
			os.Exit(1)
		}
		log.Info("connected to redis")

		redisAdapter := storage.NewRedisAdapter(rdb, cfg.CacheTTL, cfg.IdempotencyTTL)
		repo = storage.NewCachedRepository(log, repo, redisAdapter)
		idempotency = redisAdapter
	}

	// Initialize service
	inventoryClient := inventory.NewHTTPClient(cfg.InventoryURL, cfg.InventoryTimeout)
	purchaseService := service.NewPurchaseService(log, repo, inventoryClient, idempotency)

	// Initialize gRPC server
	grpcHandler := handler.NewGRPCHandler(log, purchaseService)
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		grpcHandler.UnaryLogger,
		handler.UnaryTimeout(cfg.RequestTimeout),
	))
	handler.RegisterPurchaseServiceServer(grpcServer, grpcHandler)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error("failed to listen", "addr", cfg.GRPCAddr, "err", err)
		os.Exit(1)
	}

	go func() {
		log.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", "err", err)
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(log, purchaseService, cfg.RequestTimeout)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(httpHandler.Routes(), "purchase-http"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("HTTP server error", "err", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	httpServer.Shutdown(shutdownCtx)
	log.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	tp.Shutdown(shutdownCtx)
	log.Info("connections closed")
}
