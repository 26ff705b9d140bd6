package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jbweber/homelab/animes/internal/domain"
)

// PostgresAnimeRepository stores animes in PostgreSQL through a pgx pool.
type PostgresAnimeRepository struct {
	pool *pgxpool.Pool
}

var _ AnimeRepository = (*PostgresAnimeRepository)(nil)

// OpenPostgresPool parses url, applies pool limits and verifies the
// connection with a ping before returning the pool.
func OpenPostgresPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection URL: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// NewPostgresAnimeRepository creates a repository over an open pool.
func NewPostgresAnimeRepository(pool *pgxpool.Pool) *PostgresAnimeRepository {
	return &PostgresAnimeRepository{pool: pool}
}

// EnsureSchema creates the animes table if it is missing.
func (r *PostgresAnimeRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS animes (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create animes table: %w", err)
	}

	_, err = r.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_animes_name ON animes(name)`)
	if err != nil {
		return fmt.Errorf("failed to create animes name index: %w", err)
	}
	return nil
}

// DropSchema removes the animes table and everything stored in it.
func (r *PostgresAnimeRepository) DropSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DROP TABLE IF EXISTS animes`); err != nil {
		return fmt.Errorf("failed to drop animes table: %w", err)
	}
	return nil
}

// Save inserts a new anime when ID is zero, otherwise replaces the stored name.
func (r *PostgresAnimeRepository) Save(ctx context.Context, anime domain.Anime) (domain.Anime, error) {
	if err := validateAnime(anime); err != nil {
		return domain.Anime{}, fmt.Errorf("anime name is required: %w", err)
	}

	if anime.ID == 0 {
		err := r.pool.QueryRow(ctx,
			"INSERT INTO animes (name) VALUES ($1) RETURNING id", anime.Name,
		).Scan(&anime.ID)
		if err != nil {
			return domain.Anime{}, fmt.Errorf("failed to create anime: %w", err)
		}
		return anime, nil
	}

	tag, err := r.pool.Exec(ctx,
		"UPDATE animes SET name = $1, updated_at = now() WHERE id = $2", anime.Name, anime.ID)
	if err != nil {
		return domain.Anime{}, fmt.Errorf("failed to update anime %d: %w", anime.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Anime{}, fmt.Errorf("anime with ID %d: %w", anime.ID, ErrNotFound)
	}
	return anime, nil
}

// FindByID retrieves an anime by its ID
func (r *PostgresAnimeRepository) FindByID(ctx context.Context, id int64) (domain.Anime, error) {
	var a domain.Anime
	err := r.pool.QueryRow(ctx, "SELECT id, name FROM animes WHERE id = $1", id).Scan(&a.ID, &a.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Anime{}, fmt.Errorf("anime with ID %d: %w", id, ErrNotFound)
		}
		return domain.Anime{}, fmt.Errorf("failed to find anime: %w", err)
	}
	return a, nil
}

// FindAll retrieves all animes ordered by ID
func (r *PostgresAnimeRepository) FindAll(ctx context.Context) ([]domain.Anime, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name FROM animes ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list animes: %w", err)
	}

	animes, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Anime])
	if err != nil {
		return nil, fmt.Errorf("failed to scan animes: %w", err)
	}
	if animes == nil {
		animes = []domain.Anime{}
	}
	return animes, nil
}

// DeleteByID deletes an anime by its ID
func (r *PostgresAnimeRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM animes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete anime: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("anime with ID %d: %w", id, ErrNotFound)
	}
	return nil
}
