package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Tesseract-Nexus/go-shared/secrets"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for the Shopify integration service
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURL string

	// GCP
	GCPProjectID string

	// Credentials encryption used when Secret Manager is not configured
	CredentialsEncryptionKey string

	// Admin API
	AdminToken         string
	CORSAllowedOrigins []string

	// Optional infrastructure
	RedisURL string
	NATSURL  string

	// Shopify
	ShopifyAPIVersion string
	ShopifyRateBurst  int
	ShopifyTimeout    time.Duration

	// Sync Settings
	WebhookWorkersPerShop int
	WebhookQueueTimeout   time.Duration
	PayoutSyncInterval    time.Duration
	PayoutSyncEnabled     bool
}

// Load loads configuration from environment variables
func Load() *Config {
	// Build DATABASE_URL from components using GCP Secret Manager for password
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL == "" {
		dbHost := getEnv("DB_HOST", "localhost")
		dbPort := getEnv("DB_PORT", "5432")
		dbUser := getEnv("DB_USER", "postgres")
		dbPassword := secrets.GetDBPassword()
		dbName := getEnv("DB_NAME", "shopify_integration")
		dbSSLMode := getEnv("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbUser, dbPassword, dbHost, dbPort, dbName, dbSSLMode)
	}

	config := &Config{
		Port:        getEnv("PORT", "8099"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: databaseURL,

		// GCP
		GCPProjectID: getEnv("GCP_PROJECT_ID", ""),

		CredentialsEncryptionKey: getEnv("CREDENTIALS_ENCRYPTION_KEY", ""),

		// Admin API
		AdminToken:         getEnv("ADMIN_TOKEN", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		RedisURL: getEnv("REDIS_URL", ""),
		NATSURL:  getEnv("NATS_URL", ""),

		// Shopify
		ShopifyAPIVersion: getEnv("SHOPIFY_API_VERSION", "2024-01"),
		ShopifyRateBurst:  getEnvAsInt("SHOPIFY_RATE_BURST", 4),
		ShopifyTimeout:    getEnvAsDuration("SHOPIFY_TIMEOUT", 30*time.Second),

		// Sync Settings
		WebhookWorkersPerShop: getEnvAsInt("WEBHOOK_WORKERS_PER_SHOP", 2),
		WebhookQueueTimeout:   getEnvAsDuration("WEBHOOK_QUEUE_TIMEOUT", 5*time.Minute),
		PayoutSyncInterval:    getEnvAsDuration("PAYOUT_SYNC_INTERVAL", 24*time.Hour),
		PayoutSyncEnabled:     getEnvAsBool("PAYOUT_SYNC_ENABLED", true),
	}

	if config.GCPProjectID == "" && config.CredentialsEncryptionKey == "" {
		log.Println("Warning: neither GCP_PROJECT_ID nor CREDENTIALS_ENCRYPTION_KEY is set, shop credentials cannot be stored")
	}
	if config.AdminToken == "" {
		log.Println("Warning: ADMIN_TOKEN not set, admin API is unauthenticated")
	}

	return config
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NewLogger builds the service logger: JSON in production, text elsewhere
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if c.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// getEnvAsBool gets an environment variable as a boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

// getEnvAsList splits a comma separated variable
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
