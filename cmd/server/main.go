package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	config "github.com/flinkapp/flink/configs"
	"github.com/flinkapp/flink/internal/application/services"
	"github.com/flinkapp/flink/internal/core/domain/visibility"
	"github.com/flinkapp/flink/internal/core/ports"
	"github.com/flinkapp/flink/internal/infrastructure/cache"
	"github.com/flinkapp/flink/internal/infrastructure/db"
	"github.com/flinkapp/flink/internal/infrastructure/health"
	"github.com/flinkapp/flink/internal/infrastructure/httpserver"
	"github.com/flinkapp/flink/internal/infrastructure/redis"
	"github.com/flinkapp/flink/internal/infrastructure/repositories"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting flink connections service...")

	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()
	logger.Info("Connected to database successfully")

	if err := database.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	healthCheckers := []ports.HealthChecker{health.NewDBHealthChecker(database)}

	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()
		healthCheckers = append(healthCheckers, health.NewRedisHealthChecker(redisClient))
		logger.Info("Connected to Redis successfully")
	}

	var readCache ports.Cache
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		readCache = redis.NewRedisCache(redisClient, cfg.Cache.KeyPrefix)
	default:
		readCache = cache.NewMemoryCache(logger)
	}
	logger.WithField("backend", cfg.Cache.Backend).Info("Read cache initialized")

	connectionRepo := repositories.NewConnectionRepository(database, logger)
	profileRepo := repositories.NewCachingProfileRepository(
		repositories.NewProfileRepository(database, logger),
		readCache,
		cfg.Cache.ProfileTTL,
	)

	connectionService := services.NewConnectionService(connectionRepo, readCache, services.ConnectionCacheTTLs{
		Connections: cfg.Cache.ConnectionsTTL,
		Pending:     cfg.Cache.PendingTTL,
		Sent:        cfg.Cache.SentTTL,
	}, logger)

	mode, err := visibility.ParseMode(cfg.Privacy.Mode)
	if err != nil {
		logger.Fatal("Invalid privacy mode:", err)
	}
	if mode == visibility.ModePermissive {
		logger.Warn("Privacy mode is permissive: private profiles are viewable by anyone, only extended fields are hidden")
	}
	visibilityService := services.NewVisibilityService(mode, connectionService, profileRepo, logger)

	// write limiting needs a shared counter, so it only runs with Redis
	var rateLimiter ports.RateLimiterService
	if cfg.RateLimit.Enabled && redisClient != nil {
		rateLimiter = services.NewRateLimiterService(
			repositories.NewRateLimitRedisRepository(redisClient),
			&services.RateLimiterConfig{
				RequestsPerMinute: cfg.RateLimit.DefaultRequestsPerMinute,
				BurstMultiplier:   cfg.RateLimit.BurstMultiplier,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         cfg.RateLimit.KeyPrefix,
			},
			logger,
		)
	} else if cfg.RateLimit.Enabled {
		logger.Warn("Rate limiting requested but Redis is disabled; writes are not limited")
	}

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Environment:    cfg.Server.Environment,
	}

	server := httpserver.NewServer(serverConfig, logger, httpserver.ServerDeps{
		ConnectionService:  connectionService,
		VisibilityService:  visibilityService,
		Profiles:           profileRepo,
		TokenVerifier:      services.NewTokenVerifier(&cfg.JWT),
		RateLimiterService: rateLimiter,
		HealthCheckers:     healthCheckers,
	})
	server.LogMetricsInitialization()

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
