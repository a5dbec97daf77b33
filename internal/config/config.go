package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// CORS configuration
	CORS CORSConfig

	// Payment gateway configuration
	Gateway GatewayConfig

	// Notification gateway configuration
	Notification NotificationConfig

	// Booking behaviour configuration
	Booking BookingConfig

	// New Relic configuration
	NewRelic NewRelicConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// GatewayConfig holds payment gateway configuration.
// WebhookSecret is the shared secret used to verify the HMAC-SHA256
// signature on inbound capture webhooks (SECRET - never expose to client).
type GatewayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

// NotificationConfig holds the outbound notification gateway configuration.
// Dispatch is best effort: failures are logged, never propagated.
type NotificationConfig struct {
	URL     string
	Timeout time.Duration
	Enabled bool
}

// BookingConfig holds tunables for the booking payment lifecycle
type BookingConfig struct {
	// Days before trip start by which a seat-locked booking should have
	// paid its remaining balance. Advisory only, used for reminders/UI.
	SeatLockDeadlineDays int
}

// NewRelicConfig holds APM configuration
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Gateway: GatewayConfig{
			KeyID:         getEnv("GATEWAY_KEY_ID", ""),
			KeySecret:     getEnv("GATEWAY_KEY_SECRET", ""),
			WebhookSecret: getEnv("GATEWAY_WEBHOOK_SECRET", ""),
		},
		Notification: NotificationConfig{
			URL:     getEnv("NOTIFICATION_GATEWAY_URL", ""),
			Timeout: time.Duration(getEnvAsInt("NOTIFICATION_TIMEOUT_SECONDS", 10)) * time.Second,
			Enabled: getEnvAsBool("NOTIFICATION_ENABLED", true),
		},
		Booking: BookingConfig{
			SeatLockDeadlineDays: getEnvAsInt("BOOKING_SEAT_LOCK_DEADLINE_DAYS", 5),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "tripsetu-booking-backend"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getEnvAsBool("NEW_RELIC_ENABLED", false),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Gateway.WebhookSecret == "" {
		return fmt.Errorf("GATEWAY_WEBHOOK_SECRET is required")
	}

	if c.Booking.SeatLockDeadlineDays < 0 {
		return fmt.Errorf("BOOKING_SEAT_LOCK_DEADLINE_DAYS must not be negative")
	}

	if c.NewRelic.Enabled && c.NewRelic.LicenseKey == "" {
		return fmt.Errorf("NEW_RELIC_LICENSE_KEY is required when NEW_RELIC_ENABLED is true")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
