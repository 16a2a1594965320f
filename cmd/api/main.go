// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/invoice-manager/internal/auth"
	"github.com/carterperez-dev/invoice-manager/internal/config"
	"github.com/carterperez-dev/invoice-manager/internal/core"
	"github.com/carterperez-dev/invoice-manager/internal/customer"
	"github.com/carterperez-dev/invoice-manager/internal/dashboard"
	"github.com/carterperez-dev/invoice-manager/internal/database"
	"github.com/carterperez-dev/invoice-manager/internal/health"
	"github.com/carterperez-dev/invoice-manager/internal/invoice"
	"github.com/carterperez-dev/invoice-manager/internal/middleware"
	"github.com/carterperez-dev/invoice-manager/internal/server"
	"github.com/carterperez-dev/invoice-manager/internal/user"
)

const (
	drainDelay = 5 * time.Second

	tokenCleanupInterval = time.Hour
	tokenRetention       = 24 * time.Hour

	loginAttemptsPerMinute = 5
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	genKeys := flag.Bool("genkeys", false, "write a new ES256 key pair to the configured paths and exit")
	flag.Parse()

	if *genKeys {
		if err := generateKeys(*configPath); err != nil {
			slog.Error("key generation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func generateKeys(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
		return err
	}

	fmt.Printf("wrote %s and %s\n", cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath)
	return nil
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	authRepo := auth.NewRepository(db.DB)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, authRepo)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(
		authRepo,
		jwtManager,
		userSvc,
		core.NewTokenDenyList(redis.Client),
	)
	authHandler := auth.NewHandler(authSvc, auth.NewCookieWriter(cfg.Cookie, cfg.JWT))

	customerSvc := customer.NewService(customer.NewRepository(db.DB))
	customerHandler := customer.NewHandler(customerSvc)

	invoiceSvc := invoice.NewService(invoice.NewRepository(db.DB), customerSvc)
	invoiceHandler := invoice.NewHandler(invoiceSvc)

	initializer := database.NewInitializer(db.DB.DB, userSvc)
	if cfg.Database.AutoMigrate {
		result, initErr := initializer.Run(ctx, cfg.Database.SeedDefaults)
		if initErr != nil {
			return fmt.Errorf("initialize database: %w", initErr)
		}
		logger.Info("database initialized",
			"seeded_users", result.SeededUsers,
		)
	}
	databaseHandler := database.NewHandler(db, initializer, cfg.IsProduction())

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	dashboardHandler := dashboard.NewHandler(dashboard.HandlerConfig{
		Invoices:   invoiceSvc,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing(cfg.Otel.ServiceName))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Name:     "api",
			Limit:    middleware.LimitFromConfig(cfg.RateLimit),
			KeyFunc:  middleware.KeyByClient,
			FailOpen: true,
			Skip:     middleware.SkipProbes,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	optionalAuth := middleware.OptionalAuth(authSvc)
	loginLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Name:     "login",
		Limit:    middleware.PerMinute(loginAttemptsPerMinute, loginAttemptsPerMinute),
		KeyFunc:  middleware.KeyByUserAndEndpoint,
		FailOpen: true,
	}).Handler

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, loginLimiter)
		userHandler.RegisterRoutes(r, authenticator)
		customerHandler.RegisterRoutes(r, authenticator)
		invoiceHandler.RegisterRoutes(r, authenticator)
		dashboardHandler.RegisterRoutes(r, authenticator)
		databaseHandler.RegisterRoutes(r, optionalAuth)
	})

	go cleanupExpiredTokens(ctx, authRepo, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

type expiredTokenDeleter interface {
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

func cleanupExpiredTokens(ctx context.Context, repo expiredTokenDeleter, logger *slog.Logger) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx, tokenRetention)
			if err != nil {
				logger.Warn("refresh token cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired refresh tokens deleted", "count", n)
			}
		}
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
