package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"factory_inventory/api/routes"
	"factory_inventory/internal/auth"
	"factory_inventory/internal/cache"
	"factory_inventory/internal/config"
	"factory_inventory/internal/handlers"
	"factory_inventory/internal/jobs"
	"factory_inventory/internal/middlewares"
	"factory_inventory/internal/observability"
	"factory_inventory/internal/router"
	"factory_inventory/internal/server"
	"factory_inventory/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	pool, err := config.NewPool(config.DBConfigFrom(cfg.Database, logger))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Redis backs the cache, the refresh-token store and the rate limiter.
	// Without an address the in-memory backend stands in, which only suits
	// a single instance.
	var redisClient *redis.Client
	var cacheBackend cache.Cache
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cacheBackend = cache.NewRedisCache(redisClient, cache.DefaultConfig())
	} else {
		logger.Warn("REDIS_ADDR not set, using in-memory cache")
		cacheBackend = cache.NewMemoryCache(cache.DefaultConfig())
	}

	st := store.New(pool, logger)
	metrics := observability.NewMetrics(nil)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	h := handlers.NewHandler(st, cacheBackend, logger)
	h.Metrics = metrics
	h.Auth = issuer
	h.Refresh = auth.NewRefreshStore(cacheBackend)
	h.BcryptCost = cfg.Auth.BcryptCost
	h.Pagination = &cfg.Pagination

	r := router.New(&router.RouterConfig{
		BasePath: "/api",
		Version:  "v1",
		Logger:   logger,
	})

	securityConfig := middlewares.DefaultSecurityConfig()
	if cfg.IsProduction() {
		securityConfig = middlewares.ProductionSecurityConfig()
	}

	r.Use(
		observability.RequestID,
		metrics.Middleware,
		middlewares.Logger(&middlewares.LoggerConfig{
			Logger: logger,
			Skipper: func(req *http.Request) bool {
				return strings.HasPrefix(req.URL.Path, "/health") ||
					req.URL.Path == "/metrics"
			},
		}),
		middlewares.Recovery(&middlewares.RecoveryConfig{Logger: logger, StackTrace: true}),
		middlewares.Security(securityConfig),
		middlewares.CORS(&cfg.CORS),
		middlewares.Timeout(&middlewares.TimeoutConfig{
			Timeout: 30 * time.Second,
			Skipper: func(req *http.Request) bool {
				return strings.HasSuffix(req.URL.Path, "/export")
			},
		}),
	)

	routes.Setup(r, &routes.Deps{
		Handler: h,
		Issuer:  issuer,
		RateLimit: &middlewares.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
			Store:    &middlewares.CacheRateLimitStore{Cache: cacheBackend},
			Logger:   logger,
		},
	})

	r.RegisterRaw(http.MethodGet, "/health/live", observability.LivenessHandler())
	r.RegisterRaw(http.MethodGet, "/health/ready", observability.ReadinessHandler(&observability.HealthConfig{
		DatabasePool: pool,
		CustomChecks: map[string]observability.HealthCheck{
			"cache": observability.CacheHealthCheck(cacheBackend),
		},
		Logger: logger,
	}))
	r.RegisterRaw(http.MethodGet, "/metrics", observability.Handler())

	scheduler := jobs.NewScheduler(logger)
	scheduler.Register(&jobs.Job{
		Name:     "low-stock-sweep",
		Schedule: jobs.Every(cfg.Jobs.LowStockSweepInterval),
		Run: jobs.NewLowStockSweep(&jobs.LowStockSweepConfig{
			Store:    st,
			Cache:    cacheBackend,
			Metrics:  metrics,
			Logger:   logger,
			CacheTTL: cfg.Jobs.LowStockCacheTTL,
		}),
	})
	scheduler.Start(context.Background())

	serverConfig := server.DefaultConfig(":" + cfg.Server.Port)
	if cfg.IsProduction() {
		serverConfig = server.ProductionConfig(":" + cfg.Server.Port)
	}
	serverConfig.Logger = logger
	if cfg.TLS.Enabled {
		serverConfig.TLSCertFile = cfg.TLS.CertFile
		serverConfig.TLSKeyFile = cfg.TLS.KeyFile
	}

	resources := []server.Resource{
		server.NewCustomResource("scheduler", func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		}),
		server.NewDatabaseResource("postgres", pool),
	}
	if redisClient != nil {
		resources = append(resources, server.NewRedisResource("redis", redisClient))
	}

	logger.Info("starting server", "port", cfg.Server.Port)
	if err := server.Start(r.Handler(), serverConfig, resources); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
