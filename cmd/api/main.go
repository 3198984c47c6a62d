package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	messagingport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/messaging"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/usecase/account"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/usecase/callqueue"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/usecase/loan"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/cache"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/ledger"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/messaging"
	timeProvider "github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/config"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
		warnProductionSettings(cfg)
	} else if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	appLogger := logger.NewZapLogger(cfg.Environment == config.Production || cfg.Logger.Format == "json")
	appLogger.SetLevel(logger.ParseLevel(cfg.Logger.Level))
	defer func() { _ = appLogger.Flush() }()

	tp, err := newTimeProvider(cfg.Clock)
	if err != nil {
		appLogger.Error("Invalid clock configuration", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	// Connect to the database and bring the schema up to date
	dbManager := database.NewManager(database.NewConfigFromAppConfig(cfg), appLogger, tp)
	if _, err := dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(context.Background()); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = cache.OpenRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Error("Failed to connect to redis", map[string]any{
				"addr":  cfg.Redis.Addr,
				"error": err.Error(),
			})
			os.Exit(1)
		}
		defer rdb.Close()
	}

	publisher := newPublisher(cfg, rdb, appLogger)

	// Registry and ledger share one call queue so every mutation is serialized
	queue := callqueue.NewCallQueue(appLogger, cfg.Registry.QueueSize)
	uow := dbManager.CreateUnitOfWork()
	transfer := ledger.NewCustodyTransfer(uow, tp, appLogger)

	registry := loan.NewRegistry(uow, transfer, publisher, queue, tp, appLogger)
	accounts := account.NewAccountUseCase(uow, queue, tp, appLogger, account.Options{
		UnitDecimals:  cfg.Ledger.UnitDecimals,
		AllowDeposits: cfg.Ledger.AllowDeposits,
	})

	if len(cfg.Ledger.SeedAccounts) > 0 {
		if err := accounts.SeedAccounts(context.Background(), cfg.Ledger.SeedAccounts); err != nil {
			appLogger.Error("Failed to seed accounts", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger)

	var idempotency gin.HandlerFunc
	if rdb != nil {
		idempotency = middleware.Idempotency(rdb, cfg.Redis.IdempotencyTTL, appLogger)
	}
	routes.SetupRoutes(router, routes.Handlers{
		Loan:    handler.NewLoanHandler(registry, appLogger),
		Account: handler.NewAccountHandler(accounts, appLogger),
		System:  handler.NewSystemHandler(tp, dbManager, appLogger),
	}, idempotency)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr":       server.Addr,
			"env":        cfg.Environment,
			"clock":      cfg.Clock.Mode,
			"db_driver":  cfg.Database.Driver,
			"redis":      cfg.Redis.Enabled,
			"queue_size": cfg.Registry.QueueSize,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop taking requests first so no new call reaches a closed queue
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	queue.Shutdown()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			appLogger.Warn("Failed to close event publisher", map[string]any{
				"error": err.Error(),
			})
		}
	}

	appLogger.Info("Server exited gracefully", nil)
}

// newTimeProvider builds the configured clock
func newTimeProvider(cfg config.ClockConfig) (coreport.TimeProvider, error) {
	if cfg.Mode != config.ClockModeManual {
		return timeProvider.NewRealTimeProvider(), nil
	}

	start := time.Now().UTC()
	if cfg.Start != "" {
		parsed, err := time.Parse(time.RFC3339, cfg.Start)
		if err != nil {
			return nil, err
		}
		start = parsed.UTC()
	}
	return timeProvider.NewManualTimeProvider(start), nil
}

// newPublisher combines the configured event sinks; nil when none is enabled
func newPublisher(cfg *config.Config, rdb *redis.Client, appLogger coreport.Logger) messagingport.EventPublisher {
	var sinks []messagingport.EventPublisher
	if rdb != nil {
		sinks = append(sinks, messaging.NewRedisPublisher(rdb, cfg.Redis.EventChannel, appLogger))
	}
	if cfg.Registry.LogEvents {
		sinks = append(sinks, messaging.NewLogPublisher(appLogger))
	}

	if len(sinks) == 0 {
		return nil
	}
	return messaging.NewMultiPublisher(sinks...)
}

// warnProductionSettings reports risky production settings without refusing to start
func warnProductionSettings(cfg *config.Config) {
	var warnings []string

	if cfg.Database.Driver == database.DriverPostgres {
		sslMode := strings.ToLower(cfg.Database.SSLMode)
		if sslMode != "require" && sslMode != "verify-ca" && sslMode != "verify-full" {
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}
	} else {
		warnings = append(warnings, "database.driver sqlite is meant for local use")
	}

	if cfg.Clock.Mode == config.ClockModeManual {
		warnings = append(warnings, "clock.mode manual lets any caller move time")
	}

	if cfg.Server.ReadTimeout < 5*time.Second {
		warnings = append(warnings, "server.readTimeout is too low for production")
	}

	if cfg.Server.WriteTimeout < 5*time.Second {
		warnings = append(warnings, "server.writeTimeout is too low for production")
	}

	if len(warnings) > 0 {
		log.Printf("Warning: potential issues in production configuration: %v", warnings)
	}
}
