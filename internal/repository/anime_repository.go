package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jbweber/homelab/animes/internal/domain"
)

const (
	selectAnimeByID = "SELECT id, name FROM animes WHERE id = ?"
	selectAllAnimes = "SELECT id, name FROM animes ORDER BY id ASC"
	insertAnime     = "INSERT INTO animes (name) VALUES (?)"
	updateAnime     = "UPDATE animes SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	deleteAnime     = "DELETE FROM animes WHERE id = ?"
)

// SQLiteAnimeRepository stores animes in the animes table of a SQLite database.
type SQLiteAnimeRepository struct {
	db    *sql.DB
	stmts *StatementCache
}

var _ AnimeRepository = (*SQLiteAnimeRepository)(nil)

// NewAnimeRepository creates a new SQLite-backed anime repository.
// The animes table must already exist; see the migrations package.
func NewAnimeRepository(db *sql.DB) *SQLiteAnimeRepository {
	return &SQLiteAnimeRepository{
		db:    db,
		stmts: NewStatementCache(db),
	}
}

// Close releases the prepared statements. The database itself is owned by the caller.
func (r *SQLiteAnimeRepository) Close() error {
	return r.stmts.Close()
}

// Save inserts a new anime when ID is zero, otherwise replaces the stored name.
func (r *SQLiteAnimeRepository) Save(ctx context.Context, anime domain.Anime) (domain.Anime, error) {
	if err := validateAnime(anime); err != nil {
		return domain.Anime{}, fmt.Errorf("anime name is required: %w", err)
	}

	if anime.ID == 0 {
		return r.insert(ctx, anime)
	}
	return r.update(ctx, anime)
}

func (r *SQLiteAnimeRepository) insert(ctx context.Context, anime domain.Anime) (domain.Anime, error) {
	stmt, err := r.stmts.Get(ctx, insertAnime)
	if err != nil {
		return domain.Anime{}, fmt.Errorf("failed to prepare anime insert: %w", err)
	}

	res, err := stmt.ExecContext(ctx, anime.Name)
	if err != nil {
		return domain.Anime{}, fmt.Errorf("failed to create anime: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Anime{}, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	anime.ID = id
	return anime, nil
}

func (r *SQLiteAnimeRepository) update(ctx context.Context, anime domain.Anime) (domain.Anime, error) {
	stmt, err := r.stmts.Get(ctx, updateAnime)
	if err != nil {
		return domain.Anime{}, fmt.Errorf("failed to prepare anime update: %w", err)
	}

	res, err := stmt.ExecContext(ctx, anime.Name, anime.ID)
	if err != nil {
		return domain.Anime{}, fmt.Errorf("failed to update anime %d: %w", anime.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return domain.Anime{}, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.Anime{}, fmt.Errorf("anime with ID %d: %w", anime.ID, ErrNotFound)
	}
	return anime, nil
}

// FindByID retrieves an anime by its ID
func (r *SQLiteAnimeRepository) FindByID(ctx context.Context, id int64) (domain.Anime, error) {
	stmt, err := r.stmts.Get(ctx, selectAnimeByID)
	if err != nil {
		return domain.Anime{}, fmt.Errorf("failed to prepare anime lookup: %w", err)
	}

	var a domain.Anime
	err = stmt.QueryRowContext(ctx, id).Scan(&a.ID, &a.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Anime{}, fmt.Errorf("anime with ID %d: %w", id, ErrNotFound)
		}
		return domain.Anime{}, fmt.Errorf("failed to find anime: %w", err)
	}
	return a, nil
}

// FindAll retrieves all animes ordered by ID
func (r *SQLiteAnimeRepository) FindAll(ctx context.Context) ([]domain.Anime, error) {
	stmt, err := r.stmts.Get(ctx, selectAllAnimes)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare anime query: %w", err)
	}

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list animes: %w", err)
	}
	defer rows.Close()

	animes := []domain.Anime{}
	for rows.Next() {
		var a domain.Anime
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan anime: %w", err)
		}
		animes = append(animes, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate animes: %w", err)
	}
	return animes, nil
}

// DeleteByID deletes an anime by its ID
func (r *SQLiteAnimeRepository) DeleteByID(ctx context.Context, id int64) error {
	stmt, err := r.stmts.Get(ctx, deleteAnime)
	if err != nil {
		return fmt.Errorf("failed to prepare anime delete: %w", err)
	}

	res, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete anime: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("anime with ID %d: %w", id, ErrNotFound)
	}
	return nil
}
