package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/jbweber/homelab/animes/internal/domain"
	"github.com/jbweber/homelab/animes/internal/repository"
)

// fakeAnimeRepository is an in-memory AnimeRepository that counts writes and
// can be told to fail. err fails every call; saveErr and deleteErr fail only
// the matching write so the lookup before it still succeeds.
type fakeAnimeRepository struct {
	animes    map[int64]domain.Anime
	nextID    int64
	err       error
	saveErr   error
	deleteErr error
	writes    int
}

func newFakeAnimeRepository(seed ...domain.Anime) *fakeAnimeRepository {
	f := &fakeAnimeRepository{animes: map[int64]domain.Anime{}, nextID: 1}
	for _, a := range seed {
		f.animes[a.ID] = a
		if a.ID >= f.nextID {
			f.nextID = a.ID + 1
		}
	}
	return f
}

func (f *fakeAnimeRepository) Save(ctx context.Context, a domain.Anime) (domain.Anime, error) {
	if f.err != nil {
		return domain.Anime{}, f.err
	}
	if f.saveErr != nil {
		return domain.Anime{}, f.saveErr
	}
	if a.ID == 0 {
		a.ID = f.nextID
		f.nextID++
	} else if _, ok := f.animes[a.ID]; !ok {
		return domain.Anime{}, fmt.Errorf("anime with ID %d: %w", a.ID, repository.ErrNotFound)
	}
	f.animes[a.ID] = a
	f.writes++
	return a, nil
}

func (f *fakeAnimeRepository) FindByID(ctx context.Context, id int64) (domain.Anime, error) {
	if f.err != nil {
		return domain.Anime{}, f.err
	}
	a, ok := f.animes[id]
	if !ok {
		return domain.Anime{}, fmt.Errorf("anime with ID %d: %w", id, repository.ErrNotFound)
	}
	return a, nil
}

func (f *fakeAnimeRepository) FindAll(ctx context.Context) ([]domain.Anime, error) {
	if f.err != nil {
		return nil, f.err
	}
	animes := make([]domain.Anime, 0, len(f.animes))
	for _, a := range f.animes {
		animes = append(animes, a)
	}
	sort.Slice(animes, func(i, j int) bool { return animes[i].ID < animes[j].ID })
	return animes, nil
}

func (f *fakeAnimeRepository) DeleteByID(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.animes[id]; !ok {
		return fmt.Errorf("anime with ID %d: %w", id, repository.ErrNotFound)
	}
	delete(f.animes, id)
	f.writes++
	return nil
}
