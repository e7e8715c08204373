// Package config loads application settings from a .env file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application settings.
type Config struct {
	// DatabaseDriver selects the store backend: "mongo" (default) or "sqlite".
	DatabaseDriver string
	// MongoURI is the MongoDB connection string.
	MongoURI string
	// DatabaseName is the MongoDB database holding the users and tasks collections.
	DatabaseName string
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string

	// HTTPAddr is the listen address of the web server.
	HTTPAddr string

	// SessionRedisAddr enables Redis-backed sessions when non-empty ("host:port").
	SessionRedisAddr string
	// SessionTTL is how long an idle browser session stays valid.
	SessionTTL time.Duration
	// CookieSecure marks the session cookie Secure (HTTPS only).
	CookieSecure bool

	JWTSecretKey string
	JWTIssuer    string
}

// Load reads .env (if present) and then the process environment.
// A missing connection string is not an error here; the database package
// reports it at startup so it surfaces the same way as any connection failure.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseDriver:   getEnv("DATABASE_DRIVER", "mongo"),
		MongoURI:         os.Getenv("MONGO_CONNECTION_STRING"),
		DatabaseName:     getEnv("DATABASE_NAME", "todo_app"),
		SQLitePath:       getEnv("SQLITE_PATH", "todo.db"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":3000"),
		SessionRedisAddr: os.Getenv("SESSION_REDIS_ADDR"),
		SessionTTL:       24 * time.Hour,
		JWTSecretKey:     os.Getenv("JWT_SECRET_KEY"),
		JWTIssuer:        getEnv("JWT_ISSUER", "todo-app"),
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", v, err)
		}
		cfg.SessionTTL = ttl
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid COOKIE_SECURE %q: %w", v, err)
		}
		cfg.CookieSecure = secure
	}

	switch cfg.DatabaseDriver {
	case "mongo", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
