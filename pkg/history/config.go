// Package history keeps a ledger of export runs in PostgreSQL. It is enabled
// only when DB_HOST is set.
package history

import (
	"fmt"
	"net/url"
	"os"
)

// Config holds the database connection settings.
// Environment variables: DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME,
// DB_SSLMODE (default: disable), HISTORY_MIGRATIONS_DIR (default: the migrations built into the binary).
type Config struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	MigrationsDir string
}

// NewConfigFromEnv reads the connection settings from the environment.
func NewConfigFromEnv() Config {
	return Config{
		Host:          os.Getenv("DB_HOST"),
		Port:          getEnvOrDefault("DB_PORT", "5432"),
		User:          os.Getenv("DB_USER"),
		Password:      os.Getenv("DB_PASSWORD"),
		Name:          os.Getenv("DB_NAME"),
		SSLMode:       getEnvOrDefault("DB_SSLMODE", "disable"),
		MigrationsDir: os.Getenv("HISTORY_MIGRATIONS_DIR"),
	}
}

// Enabled reports whether a database is configured.
func (c Config) Enabled() bool {
	return c.Host != ""
}

// DSN returns the key/value connection string used by gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

// URL returns the postgres:// URL used by the migrator.
func (c Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
