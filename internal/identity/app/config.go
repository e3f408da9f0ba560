package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer        string // issuer claim for session tokens
	SigningKeyPEM string // path to an Ed25519 PKCS8 private key; empty means ephemeral

	DatabaseFile        string        // path to the SQLite database file
	DefaultPackID       string        // pack every self-service signup lands on
	Env                 string        // dev, staging, prod
	LogLevel            string        // debug, info, warn, error
	LogFormat           string        // json, text
	Port                int           // HTTP server port
	ShutdownGracePeriod time.Duration // graceful shutdown timeout
	SessionTTL          time.Duration // session token validity
	OutboxInterval      time.Duration // outbox drain interval
	OutboxMaxAttempts   int           // delivery attempts before a row is Failed
}

// LoadConfig reads configuration from the environment, after loading a
// local .env file when one exists.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Issuer:              getEnvOrDefault("IDENTITY_ISSUER", "syndly-identity"),
		SigningKeyPEM:       os.Getenv("IDENTITY_SIGNING_KEY_FILE"),
		DatabaseFile:        getEnvOrDefault("IDENTITY_DATABASE_FILE", "identity.db"),
		DefaultPackID:       getEnvOrDefault("IDENTITY_DEFAULT_PACK", "pack-standard"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		SessionTTL:          getEnvDurationOrDefault("IDENTITY_SESSION_TTL", 24*time.Hour),
		OutboxInterval:      getEnvDurationOrDefault("IDENTITY_OUTBOX_INTERVAL", 15*time.Second),
		OutboxMaxAttempts:   getEnvIntOrDefault("IDENTITY_OUTBOX_MAX_ATTEMPTS", 5),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
