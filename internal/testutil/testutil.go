package testutil

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jbweber/homelab/animes/internal/migrations"
	_ "modernc.org/sqlite"
)

// CleanupTestDB removes the file behind a file: DSN. In-memory DSNs name no
// file and are left alone; a missing file is not an error.
func CleanupTestDB(dsn string) error {
	if !strings.HasPrefix(dsn, "file:") {
		return fmt.Errorf("invalid DSN format")
	}

	path, query, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if strings.Contains(query, "mode=memory") {
		return nil
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// SetupTestDB creates and returns a test database connection
func SetupTestDB(t *testing.T, testName string) (*sql.DB, func()) {
	t.Helper()
	dsn := NewTestDSN(testName)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
		if err := CleanupTestDB(dsn); err != nil {
			t.Logf("failed to clean up test database: %v", err)
		}
	}

	return db, cleanup
}

// SetupTestDBWithMigrations is SetupTestDB with every migration applied.
func SetupTestDBWithMigrations(t *testing.T, testName string) (*sql.DB, func()) {
	t.Helper()
	db, cleanup := SetupTestDB(t, testName)

	migrator := migrations.NewMigrator(db)
	for _, migration := range migrations.All() {
		migrator.AddMigration(migration)
	}
	if err := migrator.RunMigrations(); err != nil {
		cleanup()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db, cleanup
}
