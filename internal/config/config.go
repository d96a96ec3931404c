// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig
	Cache  CacheConfig
	DocDB  DocDBConfig
	Log    LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host    string
	Port    int
	GinMode string
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds the read-through document cache configuration.
type CacheConfig struct {
	Enabled   bool
	Type      string
	Host      string
	Port      string
	Password  string
	DB        int
	TTL       time.Duration
	KeyPrefix string

	// EncryptionKey seals cached documents when set (base64, 32 bytes).
	EncryptionKey string
}

// DocDBConfig holds document database configuration.
type DocDBConfig struct {
	Type           string
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvAsInt("SERVER_PORT", 8080),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Cache: CacheConfig{
			Enabled:   getEnvAsBool("CACHE_ENABLED", false),
			Type:      getEnv("CACHE_TYPE", "redis"),
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			TTL:       time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 180)) * time.Second,
			KeyPrefix: getEnv("CACHE_KEY_PREFIX", "docrepo"),

			EncryptionKey: getEnv("CACHE_ENCRYPTION_KEY", ""),
		},
		DocDB: DocDBConfig{
			Type:           getEnv("DOCDB_TYPE", "mongodb"),
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "docrepo"),
			ConnectTimeout: time.Duration(getEnvAsInt("MONGODB_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can be used to start the service.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}
	if c.DocDB.Type != "mongodb" && c.DocDB.Type != "cosmosdb" {
		return fmt.Errorf("unsupported DOCDB_TYPE %q", c.DocDB.Type)
	}
	if c.DocDB.URI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.DocDB.Database == "" {
		return fmt.Errorf("MONGODB_DATABASE is required")
	}
	if c.Cache.Enabled && c.Cache.Type != "redis" {
		return fmt.Errorf("unsupported CACHE_TYPE %q", c.Cache.Type)
	}
	return nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean with a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
