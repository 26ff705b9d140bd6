package migrations

import (
	"database/sql"
)

// GetPerformanceMigrations returns index migrations for common lookups
func GetPerformanceMigrations() []Migration {
	return []Migration{
		{
			Version: 10,
			Name:    "add_anime_name_index",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_animes_name ON animes(name)")
				return err
			},
			Down: func(tx *sql.Tx) error {
				_, err := tx.Exec("DROP INDEX IF EXISTS idx_animes_name")
				return err
			},
		},
	}
}
