package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
	"github.com/SscSPs/blood_bank_app/internal/core/services"
	"github.com/SscSPs/blood_bank_app/internal/handlers"
	"github.com/SscSPs/blood_bank_app/internal/middleware"
	"github.com/SscSPs/blood_bank_app/internal/platform/config"
	"github.com/SscSPs/blood_bank_app/internal/platform/validation"
	"github.com/SscSPs/blood_bank_app/internal/repositories/cache/rediscache"
	"github.com/SscSPs/blood_bank_app/internal/repositories/database/memory"
	"github.com/SscSPs/blood_bank_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/blood_bank_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// @title Blood Bank Inventory API
// @version 1.0
// @description Inventory ledger, availability and allocation for blood banks.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := validation.RegisterGinValidators(); err != nil {
		logger.Error("Failed to register validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	repos, cleanup, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	container := services.NewServiceContainer(cfg, repos)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, container); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	scheduler := services.NewExpiryScheduler(container.Expiry, cfg.ExpirySweepInterval, logger)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
}

// buildRepositories wires the configured ledger store and the optional summary cache.
func buildRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	var (
		repos   portsrepo.RepositoryProvider
		closers []func()
		cleanup = func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	)

	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		repos = memory.NewRepositoryProvider()
	default:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL,
			database.WithConnectionCheck(cfg.EnableDBCheck),
			database.WithMaxConns(cfg.DBMaxConns),
		)
		if err != nil {
			return repos, cleanup, err
		}
		closers = append(closers, func() {
			dbPool.Close()
			logger.Info("PostgreSQL connection pool closed.")
		})
		logger.Info("Database connection pool established.", slog.Int("max_conns", int(dbPool.Config().MaxConns)))

		logger.Info("Running database migrations...")
		applied, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
		if err != nil {
			cleanup()
			return repos, func() {}, err
		}
		if applied {
			logger.Info("Database migrations applied successfully.")
		} else {
			logger.Info("No new migrations to apply.")
		}
		repos = pgsql.NewRepositoryProvider(dbPool)
	}

	if cfg.RedisAddr != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("Summary cache unavailable; serving summaries from the ledger", slog.String("error", err.Error()))
		} else {
			closers = append(closers, func() { _ = client.Close() })
			repos.SummaryCache = rediscache.NewSummaryCache(client, cfg.SummaryCacheTTL)
			logger.Info("Summary cache connected", slog.String("addr", cfg.RedisAddr))
		}
	}

	return repos, cleanup, nil
}
