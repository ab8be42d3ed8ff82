// Package main is the entrypoint for the Foodgram API server.
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/foodgram/foodgram/internal/cache"
	"github.com/foodgram/foodgram/internal/config"
	"github.com/foodgram/foodgram/internal/handler"
	"github.com/foodgram/foodgram/internal/metrics"
	"github.com/foodgram/foodgram/internal/middleware"
	"github.com/foodgram/foodgram/internal/repository"
	"github.com/foodgram/foodgram/internal/server"
	"github.com/foodgram/foodgram/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.MigrateOnStart {
		if err := repository.Migrate(cfg.DatabaseURL, logger); err != nil {
			logger.Error("failed to migrate database", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			os.Exit(1)
		}
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL, cfg.TagCacheTTL)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	counters := metrics.NewInMemory()
	recorder := metrics.Multi{metrics.NewPrometheus(registry), counters}

	recipeService := service.NewRecipeService(repo, logger, recorder)
	relationService := service.NewRelationService(repo, logger, recorder)
	shoppingService := service.NewShoppingService(repo, logger, recorder)
	referenceService := service.NewReferenceService(repo, cacheClient, logger, recorder)
	userService := service.NewUserService(repo, nil, logger)
	apiKeyService := service.NewAPIKeyService(repo, nil, logger).WithAuthInvalidator(cacheClient)

	handlers := routeHandlers{
		health:     handler.NewHealthHandler(repo, cacheClient),
		metrics:    handler.NewMetricsHandler(registry),
		recipes:    handler.NewRecipeHandler(recipeService, relationService, shoppingService, logger),
		references: handler.NewReferenceHandler(referenceService, logger),
		users:      handler.NewUserHandler(userService, relationService, logger),
		apiKeys:    handler.NewAPIKeyHandler(apiKeyService, logger),
	}

	r := setupRouter(handlers, repo, cacheClient, cfg, logger)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return cacheClient.Close()
	})
	srv.OnShutdown("metrics", func(ctx context.Context) error {
		snap := counters.Snapshot()
		logger.Info("final counters",
			slog.Uint64("recipes_created", snap.RecipesCreated),
			slog.Uint64("shopping_list_builds", snap.ShoppingListBuilds),
			slog.Uint64("tag_cache_hits", snap.TagCacheHits),
			slog.Uint64("tag_cache_misses", snap.TagCacheMisses),
		)
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
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

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
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

type routeHandlers struct {
	health     *handler.HealthHandler
	metrics    *handler.MetricsHandler
	recipes    *handler.RecipeHandler
	references *handler.ReferenceHandler
	users      *handler.UserHandler
	apiKeys    *handler.APIKeyHandler
}

// setupRouter configures the chi router with all routes and middleware.
// Reads are open to anonymous callers; writes need a key with write scope.
func setupRouter(
	h routeHandlers,
	repo *repository.Repository,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = cfg.IsDevelopment()
	securityCfg.MaxRequestBodySize = cfg.MaxRequestBodySize

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment()))
	r.Use(middleware.Security(securityCfg))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(securityCfg.MaxRequestBodySize))

	// Ops endpoints (no auth required)
	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)

	authCfg := middleware.AuthConfig{
		Logger:      logger,
		Keys:        repo,
		Cache:       cacheClient,
		MinDuration: cfg.AuthMinDuration,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:     logger,
		Limiter:    cacheClient,
		APIEnabled: cfg.RateLimitAPIEnabled,
		IPEnabled:  cfg.RateLimitIPEnabled,
		IPRPS:      cfg.RateLimitIPRPS,
		IPBurst:    cfg.RateLimitIPBurst,
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(authCfg))
		r.Use(middleware.RateLimit(rateLimitCfg))

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.references.ListTags)
			r.Get("/{id}", h.references.GetTag)
			r.With(middleware.RequireAdmin()).Post("/", h.references.CreateTag)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", h.references.ListIngredients)
			r.Get("/{id}", h.references.GetIngredient)
			r.With(middleware.RequireAdmin()).Post("/", h.references.CreateIngredient)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.recipes.List)
			r.With(middleware.RequireRead()).Get("/download_shopping_cart", h.recipes.DownloadShoppingCart)
			r.Get("/{id}", h.recipes.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireWrite())
				r.Post("/", h.recipes.Create)
				r.Patch("/{id}", h.recipes.Update)
				r.Delete("/{id}", h.recipes.Delete)
				r.Post("/{id}/favorite", h.recipes.AddFavorite)
				r.Delete("/{id}/favorite", h.recipes.RemoveFavorite)
				r.Post("/{id}/shopping_cart", h.recipes.AddToCart)
				r.Delete("/{id}/shopping_cart", h.recipes.RemoveFromCart)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.users.Signup)
			r.Get("/", h.users.List)
			r.With(middleware.RequireRead()).Get("/me", h.users.Me)
			r.With(middleware.RequireRead()).Get("/subscriptions", h.users.Subscriptions)
			r.Get("/{id}", h.users.Get)
			r.With(middleware.RequireWrite()).Post("/{id}/subscribe", h.users.Subscribe)
			r.With(middleware.RequireWrite()).Delete("/{id}/subscribe", h.users.Unsubscribe)
			r.With(middleware.RequireAdmin()).Delete("/{id}", h.users.Delete)
		})

		// Admin scope can only be granted by an admin; the service enforces it.
		r.Route("/api-keys", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", h.apiKeys.ListAPIKeys)
			r.With(middleware.RequireWrite()).Post("/", h.apiKeys.CreateAPIKey)
			r.With(middleware.RequireWrite()).Delete("/{key_id}", h.apiKeys.RevokeAPIKey)
			r.With(middleware.RequireWrite()).Post("/{key_id}/rotate", h.apiKeys.RotateAPIKey)
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

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
