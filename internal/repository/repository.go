package repository

import (
	"context"

	"github.com/jbweber/homelab/animes/internal/domain"
)

// Repository is the persistence contract shared by every entity store.
//
// Implementations report a missing entity with ErrNotFound so callers can
// check it with errors.Is regardless of the backing driver.
type Repository[T any, ID comparable] interface {
	// Save inserts the entity when its ID is the zero value and replaces the
	// stored row otherwise. The returned entity carries the stored ID.
	Save(ctx context.Context, entity T) (T, error)

	// FindByID returns ErrNotFound if the entity doesn't exist
	FindByID(ctx context.Context, id ID) (T, error)

	// FindAll returns every entity ordered by ID
	FindAll(ctx context.Context) ([]T, error)

	// DeleteByID returns ErrNotFound if the entity doesn't exist
	DeleteByID(ctx context.Context, id ID) error
}

// AnimeRepository is the store the anime service is built on
type AnimeRepository interface {
	Repository[domain.Anime, int64]
}

// validateAnime checks the fields every store requires before writing.
func validateAnime(a domain.Anime) error {
	if a.Name == "" {
		return ErrInvalidEntity
	}
	return nil
}
