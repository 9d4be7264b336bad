package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"family-calendar/internal/calendar"
	"family-calendar/internal/calendar/calendar_api"
	"family-calendar/internal/calendar/db"
	"family-calendar/internal/config"
	"family-calendar/internal/identity"
	"family-calendar/internal/identity/identity_api"
	"family-calendar/internal/kafka"
	"family-calendar/internal/logger"
	"family-calendar/internal/session"
)

func openDatabase(path string, logger *logger.Logger) *bun.DB {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to open SQLite at %s: %v", path, err))
	}
	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent requests.
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.Ping(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to SQLite: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("✅ SQLite connection successful (%s)", path))

	return bun.NewDB(sqldb, sqlitedialect.New())
}

func newSessionStore(ctx context.Context, cfg *config.Config, logger *logger.Logger) session.Store {
	if cfg.Redis.Addr == "" {
		logger.Info("SESSION", "Using in-memory session store")
		return session.NewMemoryStore(cfg.Session.TTL)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("SESSION", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("SESSION", fmt.Sprintf("✅ Redis session store connected to %s", cfg.Redis.Addr))
	return session.NewRedisStore(redisClient, cfg.Session.TTL)
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Family Calendar service")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}
	cfg := config.Load()

	ctx := context.Background()

	bunDB := openDatabase(cfg.Database.Path, logger)
	defer bunDB.Close()

	if err := db.Migrate(ctx, bunDB); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
	}
	logger.Info("DATABASE", "Schema ready, family members seeded")

	sessions := session.NewManager(newSessionStore(ctx, cfg, logger), cfg.Session)

	var feed calendar.FeedPublisher = kafka.Noop{}
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, kafka.Topics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		feed = producer
		logger.Info("KAFKA", fmt.Sprintf("Change feed enabled, brokers: %v", cfg.Kafka.Brokers))
	}

	storage := &db.DB{Bun: bunDB}
	eventService := calendar.NewEventService(storage, feed, logger)
	identityService := identity.NewService(storage, sessions)

	logger.Info("HTTP", "Setting up router")
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		identity_api.NewHandler(identityService, logger).RegisterRoutes(r)
		calendar_api.NewHandler(eventService, sessions, logger).RegisterRoutes(r)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Family Calendar running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Family Calendar shutdown complete")
	}
}
