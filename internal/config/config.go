package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
	_ "modernc.org/sqlite"

	"github.com/jbweber/homelab/animes/internal/migrations"
	"github.com/jbweber/homelab/animes/internal/repository"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for the animes service
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port            string        `toml:"port" env:"ANIMES_PORT"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"ANIMES_SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig selects and locates the store. Path is used by the sqlite
// driver, URL by the postgres driver.
type DatabaseConfig struct {
	Driver string `toml:"driver" env:"ANIMES_DB_DRIVER"`
	Path   string `toml:"path" env:"ANIMES_DB_PATH"`
	URL    string `toml:"url" env:"ANIMES_DB_URL"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `toml:"level" env:"ANIMES_LOG_LEVEL"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "~/animes/data/animes.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and ANIMES_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can be used to start the service
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("%w: server port is required", ErrInvalidConfig)
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: database path is required for sqlite", ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("%w: database url is required for postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// InitializeDatabase opens the SQLite database and applies pending migrations
func (c *Config) InitializeDatabase() (*sql.DB, error) {
	db, err := c.OpenDatabase()
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// OpenDatabase creates and configures the SQLite database connection
// without touching the schema.
func (c *Config) OpenDatabase() (*sql.DB, error) {
	dbPath := c.expandPath(c.Database.Path)

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	OptimizeDatabaseConnection(db)

	if err := ApplyPragmaOptimizations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply performance optimizations: %w", err)
	}

	return db, nil
}

// OpenRepository opens the configured store and returns the anime
// repository with a function that releases it.
func (c *Config) OpenRepository(ctx context.Context) (repository.AnimeRepository, func() error, error) {
	switch c.Database.Driver {
	case DriverPostgres:
		pool, err := repository.OpenPostgresPool(ctx, c.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewPostgresAnimeRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, func() error { pool.Close(); return nil }, nil

	case DriverSQLite:
		db, err := c.InitializeDatabase()
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewAnimeRepository(db)
		closer := func() error {
			return errors.Join(repo.Close(), db.Close())
		}
		return repo, closer, nil
	}

	return nil, nil, fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
}

// expandPath expands ~ to home directory
func (c *Config) expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(homeDir, path[2:])
}

// runMigrations applies every pending migration
func runMigrations(db *sql.DB) error {
	migrator := migrations.NewMigrator(db)
	for _, migration := range migrations.All() {
		migrator.AddMigration(migration)
	}
	return migrator.RunMigrations()
}
