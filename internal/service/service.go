// Package service holds the anime business rules: every single-item read,
// update or delete first checks that the anime exists.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/jbweber/homelab/animes/internal/domain"
	"github.com/jbweber/homelab/animes/internal/repository"
)

// ErrNotFound is returned when no anime exists for the requested ID. Its
// message is sent verbatim to HTTP clients.
var ErrNotFound = errors.New("Anime not found") //nolint:staticcheck

// AnimeService mediates between callers and an AnimeRepository.
type AnimeService struct {
	repo   repository.AnimeRepository
	logger *log.Logger
}

// NewAnimeService creates a service over repo. A nil logger discards output.
func NewAnimeService(repo repository.AnimeRepository, logger *log.Logger) *AnimeService {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &AnimeService{
		repo:   repo,
		logger: logger.With("component", "anime-service"),
	}
}

// List returns every stored anime in store order.
func (s *AnimeService) List(ctx context.Context) ([]domain.Anime, error) {
	animes, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Debug("list failed", "err", err)
		return nil, fmt.Errorf("failed to list animes: %w", err)
	}
	s.logger.Debug("list", "count", len(animes))
	return animes, nil
}

// FindByID returns the anime with the given ID or ErrNotFound.
func (s *AnimeService) FindByID(ctx context.Context, id int64) (domain.Anime, error) {
	anime, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("find", "id", id, "found", false)
			return domain.Anime{}, ErrNotFound
		}
		s.logger.Debug("find failed", "id", id, "err", err)
		return domain.Anime{}, fmt.Errorf("failed to find anime %d: %w", id, err)
	}
	s.logger.Debug("find", "id", id, "found", true)
	return anime, nil
}

// Save stores a new anime and returns it with its assigned ID. Any ID on
// the input is ignored.
func (s *AnimeService) Save(ctx context.Context, anime domain.Anime) (domain.Anime, error) {
	anime.ID = 0
	saved, err := s.repo.Save(ctx, anime)
	if err != nil {
		s.logger.Debug("save failed", "name", anime.Name, "err", err)
		return domain.Anime{}, fmt.Errorf("failed to save anime: %w", err)
	}
	s.logger.Debug("save", "id", saved.ID, "name", saved.Name)
	return saved, nil
}

// Update replaces the stored anime with the given one. The whole record is
// written as supplied; fields are not merged with the stored copy.
func (s *AnimeService) Update(ctx context.Context, anime domain.Anime) error {
	if _, err := s.FindByID(ctx, anime.ID); err != nil {
		return err
	}

	if _, err := s.repo.Save(ctx, anime); err != nil {
		// Deleted between the lookup and the write
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Debug("update failed", "id", anime.ID, "err", err)
		return fmt.Errorf("failed to update anime %d: %w", anime.ID, err)
	}
	s.logger.Debug("update", "id", anime.ID, "name", anime.Name)
	return nil
}

// Delete removes the anime with the given ID or returns ErrNotFound.
func (s *AnimeService) Delete(ctx context.Context, id int64) error {
	anime, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteByID(ctx, anime.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Debug("delete failed", "id", id, "err", err)
		return fmt.Errorf("failed to delete anime %d: %w", id, err)
	}
	s.logger.Debug("delete", "id", id)
	return nil
}
