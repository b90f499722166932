package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Environment ("production" enables JSON logging)
	Env string

	// Path to the SQLite ledger file
	DBPath string `validate:"required"`

	// Directory with SQL migrations
	MigrationsDir string `validate:"required"`

	// User id the console adapter acts as
	ConsoleUserID int64 `validate:"gt=0"`
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:           getEnv("ENV", "development"),
		DBPath:        getEnv("DB_PATH", "kopilka.db"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
	}

	userStr := getEnv("CONSOLE_USER_ID", "1")
	userID, err := strconv.ParseInt(userStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CONSOLE_USER_ID value %q: %w", userStr, err)
	}
	config.ConsoleUserID = userID

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
