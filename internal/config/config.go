package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	// Path to the SQLite file. ":memory:" is accepted for local runs.
	Path string
}

type SessionConfig struct {
	// Secret signs the session cookie. The default mirrors the original
	// deployment and is only suitable for a trusted home network.
	Secret     string
	CookieName string
	TTL        time.Duration
}

type RedisConfig struct {
	// Addr is optional; when empty, sessions live in process memory.
	Addr string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":5000"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Path: getEnv("SQLITE_PATH", "family_calendar.db"),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", "family-calendar-secret-key-2024"),
			CookieName: getEnv("SESSION_COOKIE", "calendar_session"),
			TTL:        time.Duration(getEnvInt("SESSION_TTL_HOURS", 24*7)) * time.Hour,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", ""),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: []string{getEnv("KAFKA_ADDR", "localhost:9092")},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
