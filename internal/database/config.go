package database

import (
	"fmt"

	"kopilka/internal/config"
)

// Config holds database configuration
type Config struct {
	// Path to the SQLite database file
	Path string

	// Directory containing SQL migrations
	MigrationsDir string
}

// NewConfig creates a new database configuration from the application config
func NewConfig(appConfig *config.Config) *Config {
	return &Config{
		Path:          appConfig.DBPath,
		MigrationsDir: appConfig.MigrationsDir,
	}
}

// DSN returns the SQLite connection string for the migration tool
func (c *Config) DSN() string {
	return fmt.Sprintf("sqlite3://%s", c.Path)
}
