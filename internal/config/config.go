// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

const defaultJWTSecret = "dev-secret-change-me"

type Config struct {
	// HTTP Server
	Port       string
	StaticPath string

	// AllowOrigin is sent as Access-Control-Allow-Origin.
	AllowOrigin string

	// Logging
	LogLevel  string
	LogFormat string

	// Database
	DataBackend  string
	SQLiteDBPath string
	DatabaseURL  string

	// Auth
	JWTSecret     string
	TokenDuration time.Duration

	// AMQP (realtime events). Empty URL disables publishing to a broker.
	AMQPURL      string
	AMQPExchange string
}

// Load reads a .env file if present, then the environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		StaticPath:  getEnv("STATIC_PATH", ""),
		AllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DataBackend:  getEnv("DATA_BACKEND", BackendSQLite),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/settleup.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		TokenDuration: getEnvDuration("TOKEN_DURATION", 24*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "settleup.events"),
	}
}

// UsingDefaultSecret reports whether JWT_SECRET was left at its development value.
func (c *Config) UsingDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	// Validate data backend
	switch c.DataBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using postgres backend")
		} else if u, err := url.Parse(c.DatabaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendSQLite, BackendPostgres))
	}

	// Validate auth
	if len(c.JWTSecret) < 16 {
		errors = append(errors, "JWT secret must be at least 16 characters")
	}
	if c.TokenDuration < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token duration %v: must be at least 1 minute", c.TokenDuration))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
