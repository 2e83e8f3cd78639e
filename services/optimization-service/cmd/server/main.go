package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/bestball/services/optimization-service/internal/api/handlers"
	"github.com/stitts-dev/bestball/services/optimization-service/internal/lineup"
	"github.com/stitts-dev/bestball/services/optimization-service/internal/middleware"
	"github.com/stitts-dev/bestball/services/optimization-service/pkg/cache"
	"github.com/stitts-dev/bestball/shared/pkg/config"
	"github.com/stitts-dev/bestball/shared/pkg/database"
	"github.com/stitts-dev/bestball/shared/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log := logger.WithService(cfg.ServiceName)
	log.WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
		"concurrency": cfg.LeagueOptimizeConcurrency,
	}).Info("Starting Optimization Service")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewOptimizationServiceConnection(cfg.DatabaseURL, cfg.IsDevelopment(), cfg.LeagueOptimizeConcurrency)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := lineup.NewRepository(db.DB)
	if cfg.IsDevelopment() {
		if err := repo.Migrate(context.Background()); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Redis is optional; without it every request is solved fresh
	var lineupCache *cache.LineupCache
	var cachePinger handlers.CachePinger
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		opt.DB = cfg.RedisDB
		redisClient := redis.NewClient(opt)
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).Warn("Redis unavailable at startup, lineup cache will retry through circuit breaker")
		}

		lineupCache = cache.NewLineupCache(
			redisClient,
			cfg.LineupCacheTTL,
			cfg.CircuitBreakerThreshold,
			cfg.CircuitBreakerTimeout,
			structuredLogger,
		)
		cachePinger = lineupCache
	}

	var assignmentCache lineup.AssignmentCache
	if lineupCache != nil {
		assignmentCache = lineupCache
	}
	service := lineup.NewService(repo, assignmentCache, cache.LineupKey, cfg.LeagueOptimizeConcurrency, structuredLogger)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(structuredLogger))

	bestBallHandler := handlers.NewBestBallHandler(service, cfg.RequestTimeout, structuredLogger)
	healthHandler := handlers.NewHealthHandler(db, cachePinger, structuredLogger)

	bestBallHandler.RegisterRoutes(router.Group("/api/v1"))

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Optimization service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down optimization service...")

	// In-flight league runs get the request timeout to finish
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Optimization service forced to shutdown: %v", err)
	}

	log.Info("Optimization service exited")
}
