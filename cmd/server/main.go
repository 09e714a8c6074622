package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/docbear71/food-inventory-backend/internal/adapter/estimator"
	grpcadapter "github.com/docbear71/food-inventory-backend/internal/adapter/grpc"
	"github.com/docbear71/food-inventory-backend/internal/adapter/repository/memory"
	"github.com/docbear71/food-inventory-backend/internal/adapter/repository/postgres"
	"github.com/docbear71/food-inventory-backend/internal/adapter/repository/postgres/migrations"
	"github.com/docbear71/food-inventory-backend/internal/config"
	"github.com/docbear71/food-inventory-backend/internal/domain"
	"github.com/docbear71/food-inventory-backend/internal/logger"
	"github.com/docbear71/food-inventory-backend/internal/usecase/aggregator"
	"github.com/docbear71/food-inventory-backend/internal/usecase/ledger"
	"github.com/docbear71/food-inventory-backend/internal/usecase/optimizer"
	"github.com/docbear71/food-inventory-backend/internal/usecase/savedlist"
	"github.com/docbear71/food-inventory-backend/internal/usecase/seeder"
)

// demoUserID owns the demo data seeded in development
const demoUserID = "demo-user"

type repositories struct {
	inventory   domain.InventoryRepository
	savedLists  domain.SavedListRepository
	recipes     domain.RecipeRepository
	mealPlans   domain.MealPlanRepository
	preferences domain.PreferenceRepository
	catalog     domain.CatalogWriter
	close       func() error
}

func main() {
	// 1. Load configuration and logger
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Logging.Development,
	})
	defer func() { _ = zapLogger.Sync() }()

	// 2. Initialize Repositories
	repos, err := openRepositories(cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer func() {
		if err := repos.close(); err != nil {
			zapLogger.Warn("failed to close storage", zap.Error(err))
		}
	}()

	if cfg.Database.SeedDemo {
		demoSeeder := seeder.NewDemoSeeder(repos.inventory, repos.catalog, zapLogger)
		if err := demoSeeder.Seed(context.Background(), demoUserID); err != nil {
			zapLogger.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	// 3. Initialize Services (Use Cases)
	optimizerConfig, err := optimizerConfigFrom(cfg.Optimizer)
	if err != nil {
		zapLogger.Fatal("invalid optimizer configuration", zap.Error(err))
	}

	var priceEstimator optimizer.PriceEstimator
	if cfg.Estimator.Enabled {
		priceEstimator = estimator.NewClient(estimator.Config{
			BaseURL:           cfg.Estimator.BaseURL,
			APIKey:            cfg.Estimator.APIKey,
			RequestsPerSecond: cfg.Estimator.RequestsPerSecond,
			Burst:             cfg.Estimator.Burst,
			Timeout:           cfg.Estimator.Timeout,
			MaxAttempts:       cfg.Estimator.MaxAttempts,
		}, zapLogger)
	}

	ledgerService := ledger.NewLedgerService(repos.inventory, repos.preferences, zapLogger)
	ledgerService.RangeDays = cfg.Analytics.DefaultRangeDays
	aggregatorService := aggregator.NewAggregatorService(repos.recipes, repos.mealPlans, repos.inventory, zapLogger)
	optimizerService := optimizer.NewOptimizerService(repos.inventory, priceEstimator, optimizerConfig, zapLogger)
	savedListService := savedlist.NewSavedListService(repos.savedLists, repos.inventory, zapLogger)

	// 4. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := grpcadapter.NewMetrics(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              cfg.Server.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLogger.Info("metrics server listening", zap.String("address", cfg.Server.MetricsAddress))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("metrics server failed", zap.Error(err))
		}
	}()

	// 5. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			metrics.UnaryInterceptor(),
			grpcadapter.LoggingInterceptor(zapLogger),
			grpcadapter.AuthInterceptor(cfg.Server.APIToken),
		),
	)

	grpcAdapter := grpcadapter.NewServer(ledgerService, aggregatorService, optimizerService, savedListService)
	grpcadapter.RegisterPriceEngineServer(grpcServer, grpcAdapter)

	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddress)
	if err != nil {
		zapLogger.Fatal("failed to listen", zap.String("address", cfg.Server.GRPCAddress), zap.Error(err))
	}

	go func() {
		zapLogger.Info("gRPC server listening",
			zap.String("address", cfg.Server.GRPCAddress),
			zap.String("storage", cfg.Database.Driver),
			zap.Bool("estimator", cfg.Estimator.Enabled),
		)
		if err := grpcServer.Serve(lis); err != nil {
			zapLogger.Fatal("failed to serve gRPC server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	waitForShutdown(grpcServer, metricsServer, cfg.Server.ShutdownTimeout, zapLogger)
}

// openRepositories builds the repositories of the configured storage driver
func openRepositories(cfg config.DatabaseConfig, zapLogger *zap.Logger) (*repositories, error) {
	if cfg.Driver == "memory" {
		catalog := memory.NewCatalogRepository()
		return &repositories{
			inventory:   memory.NewInventoryRepository(),
			savedLists:  memory.NewSavedListRepository(),
			recipes:     catalog,
			mealPlans:   catalog.MealPlans(),
			preferences: catalog,
			catalog:     catalog,
			close:       func() error { return nil },
		}, nil
	}

	pool := postgres.PoolConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
	db, err := connectWithRetry(cfg.ConnectionString(), pool, 5, 2*time.Second, zapLogger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		migrator, err := migrations.New(db.DB, cfg.Name, zapLogger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if err := migrator.Up(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &repositories{
		inventory:   postgres.NewInventoryRepository(db),
		savedLists:  postgres.NewSavedListRepository(db),
		recipes:     postgres.NewRecipeRepository(db),
		mealPlans:   postgres.NewMealPlanRepository(db),
		preferences: postgres.NewPreferenceRepository(db),
		catalog:     postgres.NewCatalogWriter(db),
		close:       db.Close,
	}, nil
}

// connectWithRetry waits for Postgres to accept connections
func connectWithRetry(dsn string, pool postgres.PoolConfig, attempts int, delay time.Duration, zapLogger *zap.Logger) (*postgres.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		db, err := postgres.NewDB(ctx, dsn, pool)
		cancel()
		if err == nil {
			return db, nil
		}
		lastErr = err
		zapLogger.Warn("database not ready", zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(delay)
	}
	return nil, lastErr
}

func optimizerConfigFrom(cfg config.OptimizerConfig) (optimizer.Config, error) {
	estimate, err := decimal.NewFromString(cfg.DefaultEstimate)
	if err != nil {
		return optimizer.Config{}, err
	}
	return optimizer.Config{
		DefaultEstimate:  estimate,
		MinutesPerStore:  cfg.MinutesPerStore,
		MaxAlternatives:  cfg.MaxAlternatives,
		MaxBudgetCuts:    cfg.MaxBudgetCuts,
		DefaultMaxStores: cfg.DefaultMaxStores,
		FallbackCategory: cfg.FallbackCategory,
	}, nil
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(grpcServer *grpclib.Server, metricsServer *http.Server, timeout time.Duration, zapLogger *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	zapLogger.Info("shutting down gracefully", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		grpcServer.Stop()
	}

	if err := metricsServer.Shutdown(ctx); err != nil {
		zapLogger.Warn("metrics server shutdown failed", zap.Error(err))
	}
	zapLogger.Info("servers stopped")
}
