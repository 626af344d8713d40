package config

import (
	"os"
	"time"
)

// Config holds all configuration for the report moderation service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port string

	// Attachment storage
	UploadsDir string

	// Broadcast configuration
	BroadcastInterval time.Duration

	// Operator auth
	JWTSecret       string
	DefaultOperator string

	// RabbitMQ (empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret_app"),
		DBName:     getEnv("DB_NAME", "inferra"),

		Port: getEnv("PORT", "8080"),

		UploadsDir: getEnv("UPLOADS_DIR", "uploads"),

		BroadcastInterval: getDurationEnv("BROADCAST_INTERVAL", time.Second),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		DefaultOperator: getEnv("DEFAULT_OPERATOR", "admin"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "inferra.reports"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
