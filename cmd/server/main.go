package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-service/internal/adapters/database"
	"social-service/internal/adapters/kafka"
	"social-service/internal/api/routes"
	"social-service/internal/config"
	"social-service/internal/service"
	"social-service/internal/websocket"
)

// @title Social Service API
// @version 1.0
// @description Friendships, presence, direct messages, posts and stories over REST and WebSocket.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	db, err := database.NewPostgresConnection(cfg.Database.DSN())
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	media, err := database.NewMediaStore(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket)
	if err != nil {
		slog.Error("failed to initialize media store", "error", err)
		os.Exit(1)
	}

	var sink service.EventSink
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewEventProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			slog.Error("failed to start kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		sink = producer
		slog.Info("kafka event mirror enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		sink = service.NopEventSink{}
		slog.Info("kafka event mirror disabled")
	}

	presence := service.NewPresenceService(redisClient)
	hub := websocket.NewHub(presence)

	router := routes.NewRouter(cfg, db, redisClient, hub, presence, media, sink)
	router.SetupRoutes()

	// Expired stories stay queryable-but-invisible until this sweep
	// removes them.
	evictCtx, stopEvict := context.WithCancel(context.Background())
	defer stopEvict()
	go runStoryEviction(evictCtx, router.Stories())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	stopEvict()
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func runStoryEviction(ctx context.Context, stories *service.StoryService) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := stories.EvictExpired()
			if err != nil {
				slog.Warn("story eviction failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("evicted expired stories", "count", n)
			}
		}
	}
}
