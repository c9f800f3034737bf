// Package main is the entrypoint for the userdesk API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/userdesk/userdesk/api"
	"github.com/userdesk/userdesk/internal/cache"
	"github.com/userdesk/userdesk/internal/config"
	"github.com/userdesk/userdesk/internal/handler"
	"github.com/userdesk/userdesk/internal/metrics"
	"github.com/userdesk/userdesk/internal/middleware"
	"github.com/userdesk/userdesk/internal/repository"
	"github.com/userdesk/userdesk/internal/server"
	"github.com/userdesk/userdesk/internal/service"
	"github.com/userdesk/userdesk/internal/web"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.IsProduction() && cfg.AuthMinDuration == 0 {
		logger.Warn("AUTH_MIN_DURATION is 0; authentication latency is not padded")
	}

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
			logger.Error(
				"failed to apply migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.WithPoolSize(cfg.DBMaxConns, cfg.DBMinConns))
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.WithPoolSize(cfg.RedisPoolSize), cache.WithTTL(cfg.AuthCacheTTL))
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	recorder := metrics.NewInMemory()
	userService := service.NewUserService(repo, cacheClient, recorder, logger)

	webHandler, err := web.New(cfg.DeleteUserEndpoint(), logger)
	if err != nil {
		logger.Error("failed to initialize web form", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := setupRouter(routerDeps{
		Handler: handler.New(),
		Health:  handler.NewHealthHandler(repo, cacheClient, logger),
		Users:   handler.NewUserHandler(userService, recorder, logger),
		Metrics: handler.NewMetricsHandler(recorder),
		Web:     webHandler,
		Auth: middleware.AuthConfig{
			Logger:      logger,
			Keys:        repo,
			Cache:       cacheClient,
			Metrics:     recorder,
			MinDuration: cfg.AuthMinDuration,
		},
		Config: cfg,
		Logger: logger,
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: Redis closes before the pool.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"public_url", cfg.PublicURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps collects what setupRouter wires together.
type routerDeps struct {
	Handler *handler.Handler
	Health  *handler.HealthHandler
	Users   *handler.UserHandler
	Metrics *handler.MetricsHandler
	Web     *web.Handler
	Auth    middleware.AuthConfig
	Config  *config.Config
	Logger  *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.Config.GetCORSAllowedOrigins()

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = d.Config.IsDevelopment()
	securityCfg.MaxRequestBodySize = d.Config.MaxRequestBodySize

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recoverer(d.Logger))
	r.Use(middleware.Security(securityCfg))
	r.Use(middleware.CORS(corsCfg))

	// Health and metrics (no auth required)
	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	r.Get("/metrics", d.Metrics.Metrics)
	r.Get("/openapi.yaml", handler.OpenAPIDocument(api.OpenAPI))

	// Browser form
	r.Get("/", d.Web.Index)
	r.Get("/static/delete-user.js", d.Web.Script)

	// User management: authentication, then the non-admin authorization gate
	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.MaxBodySize(securityCfg.MaxRequestBodySize))
		r.Use(middleware.Auth(d.Auth))

		r.With(middleware.Authorize(false)).Post("/delete/user", d.Users.Delete)
	})

	r.NotFound(d.Handler.NotFound)
	r.MethodNotAllowed(d.Handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
