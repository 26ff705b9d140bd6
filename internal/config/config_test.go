package config

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	config := NewConfig()

	require.NotNil(t, config)
	assert.Equal(t, "~/animes/data/animes.db", config.Database.Path)
	assert.Equal(t, DriverSQLite, config.Database.Driver)
	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, 10*time.Second, config.Server.ShutdownTimeout)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, ":8080", config.Addr())
	assert.NoError(t, config.Validate())
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, NewConfig().Server, config.Server)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = "9090"
shutdown_timeout = "3s"

[database]
driver = "sqlite"
path = "/tmp/animes-test.db"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", config.Server.Port)
	assert.Equal(t, 3*time.Second, config.Server.ShutdownTimeout)
	assert.Equal(t, "/tmp/animes-test.db", config.Database.Path)
	assert.Equal(t, "debug", config.Log.Level)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0644))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, DriverSQLite, config.Database.Driver)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = \"9090\"\n"), 0644))

	t.Setenv("ANIMES_PORT", "7070")
	t.Setenv("ANIMES_DB_PATH", "/tmp/from-env.db")

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", config.Server.Port)
	assert.Equal(t, "/tmp/from-env.db", config.Database.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }, "server port is required"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "unknown database driver"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "database path is required"},
		{"postgres without url", func(c *Config) { c.Database.Driver = DriverPostgres }, "database url is required"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "unknown log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewConfig()
			tt.mutate(config)
			err := config.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	config := NewConfig()
	config.Database.Driver = DriverPostgres
	config.Database.URL = "postgres://localhost/animes"
	assert.NoError(t, config.Validate())
}

func TestConfig_expandPath(t *testing.T) {
	config := NewConfig()

	expanded := config.expandPath("~/test/path")
	assert.False(t, strings.HasPrefix(expanded, "~/"))
	assert.True(t, strings.HasSuffix(expanded, filepath.Join("test", "path")))

	assert.Equal(t, "/absolute/path", config.expandPath("/absolute/path"))
	assert.Equal(t, "relative/path", config.expandPath("relative/path"))
}

func TestConfig_InitializeDatabase_Success(t *testing.T) {
	config := NewConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "test.db")

	db, err := config.InitializeDatabase()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping())

	var fkEnabled bool
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled))
	assert.True(t, fkEnabled)

	var tableName string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='animes'").Scan(&tableName)
	assert.NoError(t, err)
}

func TestConfig_OpenDatabase_LeavesSchemaAlone(t *testing.T) {
	config := NewConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "test.db")

	db, err := config.OpenDatabase()
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count))
	assert.Zero(t, count)
}

func TestConfig_InitializeDatabase_DirectoryCreation(t *testing.T) {
	config := NewConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "nested", "path", "test.db")

	db, err := config.InitializeDatabase()
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(filepath.Dir(config.Database.Path))
	assert.NoError(t, err)
}

func TestConfig_InitializeDatabase_InvalidPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	config := NewConfig()
	// A regular file where a directory is expected
	config.Database.Path = filepath.Join(blocker, "sub", "animes.db")

	db, err := config.InitializeDatabase()
	if err == nil {
		db.Close()
		t.Fatal("Expected error for invalid path")
	}
	assert.Contains(t, err.Error(), "failed to create database directory")
}

func TestConfig_OpenRepository_SQLite(t *testing.T) {
	config := NewConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "repo.db")

	repo, closer, err := config.OpenRepository(context.Background())
	require.NoError(t, err)
	defer func() { assert.NoError(t, closer()) }()

	animes, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, animes)
}

func TestConfig_OpenRepository_UnknownDriver(t *testing.T) {
	config := NewConfig()
	config.Database.Driver = "mysql"

	_, _, err := config.OpenRepository(context.Background())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunMigrations_ClosedDatabase(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.Close()

	assert.Error(t, runMigrations(db))
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=value")
}
