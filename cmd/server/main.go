package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutorhub/internal/config"
	"tutorhub/internal/events"
	handlers "tutorhub/internal/handlers/shared"
	"tutorhub/internal/middleware"
	"tutorhub/internal/repositories/interfaces"
	"tutorhub/internal/repositories/memory"
	"tutorhub/internal/repositories/mongodb"
	"tutorhub/internal/services"
	"tutorhub/pkg/cache"
	"tutorhub/pkg/database"
	"tutorhub/pkg/logger"
	"tutorhub/routes"

	"github.com/gin-gonic/gin"
)

type repositories struct {
	ratings       interfaces.RatingRepository
	matches       interfaces.MatchRepository
	tutorProfiles interfaces.TutorProfileRepository
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  cfg.App.LogOutput,
		Colors:  cfg.App.Debug,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	deps := make(map[string]handlers.Pinger)

	// Storage
	var repos repositories
	switch cfg.Database.Driver {
	case "memory":
		appLogger.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		repos = repositories{
			ratings:       memory.NewRatingRepository(store),
			matches:       memory.NewMatchRepository(store),
			tutorProfiles: memory.NewTutorProfileRepository(store),
		}
	default:
		mongoDB, err := database.NewMongoDB(&database.DatabaseConfig{
			URI:            cfg.Database.URI,
			Database:       cfg.Database.Database,
			MaxPoolSize:    cfg.Database.MaxPoolSize,
			MinPoolSize:    cfg.Database.MinPoolSize,
			ConnectTimeout: cfg.Database.ConnectTimeout,
			SocketTimeout:  cfg.Database.SocketTimeout,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
		}
		defer mongoDB.Close()
		deps["mongodb"] = mongoDB

		if cfg.Database.RunMigrations {
			if err := database.NewMigrator(mongoDB.Database, appLogger.Entry()).Up(ctx); err != nil {
				appLogger.WithError(err).Fatal("Failed to run migrations")
			}
		}

		repos = repositories{
			ratings:       mongodb.NewRatingRepository(mongoDB.Database),
			matches:       mongodb.NewMatchRepository(mongoDB.Database),
			tutorProfiles: mongodb.NewTutorProfileRepository(mongoDB.Database),
		}
	}

	// Stats cache
	var statsCache interfaces.CacheService
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			appLogger.WithError(err).Warn("Redis unavailable, rating stats will not be cached")
		} else {
			defer redisCache.Close()
			statsCache = redisCache
			deps["redis"] = redisCache
		}
	}

	// Rating change feed
	var publisher services.RatingEventPublisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka))
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		appLogger.WithField("topic", cfg.Kafka.RatingTopic).Info("Publishing rating events to Kafka")
	}

	ratingService := services.NewRatingService(
		cfg.Rating,
		repos.ratings,
		repos.matches,
		repos.tutorProfiles,
		statsCache,
		publisher,
		appLogger,
	)

	// Initialize handlers
	ratingHandler := handlers.NewRatingHandler(ratingService, appLogger)
	healthHandler := handlers.NewHealthHandler(cfg.App.Version, deps)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		appLogger.WithError(err).Warn("Invalid trusted proxies")
	}

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))

	// API routes
	v1 := router.Group("/api/v1")
	{
		routes.SetupRatingRoutes(v1, ratingHandler, cfg.Security.JWTSecret)
	}

	// Health check
	router.GET("/health", healthHandler.Health)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.Infof("Starting server on port %d", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}
}
