package main

// @title IoT Telemetry Service API
// @version 1.0.0
// @description Service for synthesizing, ingesting and querying IoT device telemetry. Generates device records with population-weighted locations constrained to administrative boundaries, bulk-loads them into PostGIS and serves attribute and radius queries.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/iot-telemetry-service/docs"
	"github.com/iot-telemetry-service/internal/config"
	httpDelivery "github.com/iot-telemetry-service/internal/delivery/http"
	"github.com/iot-telemetry-service/internal/delivery/http/handler"
	"github.com/iot-telemetry-service/internal/generator"
	"github.com/iot-telemetry-service/internal/pkg/logger"
	"github.com/iot-telemetry-service/internal/repository/cache"
	"github.com/iot-telemetry-service/internal/repository/postgres"
	redisRepo "github.com/iot-telemetry-service/internal/repository/redis"
	"github.com/iot-telemetry-service/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting IoT Telemetry Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()
	log.Info("PostgreSQL connected")

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize repositories
	deviceRepo := postgres.NewDeviceRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	if err := deviceRepo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure database schema", zap.Error(err))
	}
	log.Info("Database schema ready")

	// 7. Load the region catalog
	weights, err := generator.LoadWeights(cfg.Generator.WeightsPath)
	if err != nil {
		log.Fatal("Failed to load region weights", zap.Error(err))
	}

	catalog, err := generator.LoadCatalog(cfg.Generator.BoundaryPath, weights, log)
	if err != nil {
		log.Fatal("Failed to load region catalog", zap.Error(err))
	}
	log.Info("Region catalog loaded",
		zap.Int("regions", catalog.Len()),
		zap.Float64("total_weight", catalog.TotalWeight()))

	// 8. Initialize use cases
	generationUC := usecase.NewGenerationUseCase(
		catalog,
		log,
		cfg.Generator.PointAttempts,
		cfg.Generator.MaxRegionDraws,
		cfg.Generator.ChunkSize,
	)

	ingestionUC := usecase.NewIngestionUseCase(
		deviceRepo,
		streamRepo,
		cacheRepo,
		log,
		cfg.Ingest.BatchSize,
	)

	queryUC := usecase.NewDeviceQueryUseCase(
		deviceRepo,
		cacheRepo,
		log,
		cfg.Cache.QueryCacheTTL,
	)

	log.Info("Use cases initialized")

	// 9. Initialize HTTP handlers
	generateHandler := handler.NewGenerateHandler(generationUC, ingestionUC, log)
	queryHandler := handler.NewQueryHandler(queryUC, log)
	adminHandler := handler.NewAdminHandler(queryUC, log)

	// 10. Initialize HTTP server
	server := httpDelivery.NewServer(
		cfg,
		log,
		generateHandler,
		queryHandler,
		adminHandler,
	)

	// 11. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 12. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
