package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/campus-ops/exam-session-service/internal/cache"
	"github.com/campus-ops/exam-session-service/internal/config"
	"github.com/campus-ops/exam-session-service/internal/events"
	"github.com/campus-ops/exam-session-service/internal/handlers"
	"github.com/campus-ops/exam-session-service/internal/loader"
	"github.com/campus-ops/exam-session-service/internal/metrics"
	"github.com/campus-ops/exam-session-service/internal/session"
	"github.com/campus-ops/exam-session-service/internal/utils"
	"github.com/campus-ops/exam-session-service/internal/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize the event bus and its audit subscriber
	bus := events.NewBus(slogLogger)
	busCtx, stopBus := context.WithCancel(context.Background())
	defer stopBus()
	go func() {
		if err := bus.RunAuditLogger(busCtx); err != nil {
			slogLogger.Error("Event audit logger stopped", "error", err)
		}
	}()

	// Initialize validator and loader
	v := validator.New()
	ldr := loader.New(slogLogger, v, bus)

	// Session store, optionally pre-loaded from the configured data file
	store := session.NewStore()
	if cfg.ExamDataPath != "" {
		sess, err := ldr.LoadFile(cfg.ExamDataPath)
		if err != nil {
			log.Fatalf("Failed to load exam data from %s: %v", cfg.ExamDataPath, err)
		}
		store.Set(sess)
	}

	// Initialize Redis status mirror (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	}
	mirror := cache.NewStatusMirror(redisClient, "exam-session", slogLogger)
	go mirror.Run(busCtx, cfg.StatusMirrorInterval, func() session.Snapshot {
		sess, err := store.Current()
		if err != nil {
			return session.Snapshot{}
		}
		return sess.Snapshot()
	})

	// Initialize metrics and handlers
	m := metrics.New()
	handlerManager := handlers.NewHandlerManager(store, ldr, v, m, cfg, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	stopBus()
	if err := bus.Close(); err != nil {
		log.Printf("Failed to close event bus: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}
