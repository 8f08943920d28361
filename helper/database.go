package helper

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the postgres connection parameters.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the database configuration from the
// environment. A .env file in the working directory is loaded first if
// present; missing variables fall back to local development defaults.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	// A missing .env file is fine, the environment may be set directly.
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     envDefault("DB_HOST", "localhost"),
		Port:     envDefault("DB_PORT", "5432"),
		Database: envDefault("DB_DATABASE", "database"),
		Username: envDefault("DB_USERNAME", "user"),
		Password: envDefault("DB_PASSWORD", "password"),
		Schema:   envDefault("DB_SCHEMA", "public"),
		SSLMode:  envDefault("DB_SSLMODE", "disable"),
	}

	if config.Host == "" || config.Port == "" {
		return nil, NewError("database configuration", fmt.Errorf("host and port must be set"))
	}

	return config, nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ConnectionString returns the lib/pq connection string.
func (c *DatabaseConfiguration) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s search_path=%s sslmode=%s",
		c.Host, c.Port, c.Database, c.Username, c.Password, c.Schema, c.SSLMode,
	)
}

// Database bundles an open connection with its logger.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens a postgres connection and verifies it with a ping.
// Connection failure at startup is unrecoverable, so it panics.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	instance, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		log.Panicf("error opening database connection: %v", err)
	}

	if err := instance.Ping(); err != nil {
		log.Panicf("error pinging database: %v", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host), slog.String("port", config.Port))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}
}

// Close closes the underlying connection pool.
func (d *Database) Close() error {
	return d.Instance.Close()
}
