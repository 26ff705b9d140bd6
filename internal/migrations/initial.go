package migrations

import (
	"database/sql"
)

// All returns every migration the service ships, in no particular order.
func All() []Migration {
	return append(GetInitialMigrations(), GetPerformanceMigrations()...)
}

// GetInitialMigrations returns the migrations that create the base schema
func GetInitialMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_animes_table",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE animes (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						name TEXT NOT NULL,
						created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
						updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
					)
				`)
				return err
			},
			Down: func(tx *sql.Tx) error {
				_, err := tx.Exec(`DROP TABLE IF EXISTS animes`)
				return err
			},
		},
	}
}
