// Package cinema holds the movie watch-list. Posters are looked up when a
// movie is added; a movie without a poster is never created.
package cinema

import (
	"context"
	"fmt"
	"time"

	"lovenest/logging"
	"lovenest/models"
	"lovenest/moviemeta"
	"lovenest/records"
	"lovenest/store"
	"lovenest/viewmodel"
)

var Entity = records.Entity[models.Movie]{
	Name:  store.Cinema,
	SetID: func(m *models.Movie, id string) { m.ID = id },
	Prepare: func(m *models.Movie) {
		m.Watched = false
		m.WatchedAt = nil
	},
	Validate: models.Movie.Validate,
	View:     viewmodel.Cinema,
}

type Service struct {
	*records.Service[models.Movie]
	posters moviemeta.PosterFinder
	now     func() time.Time
}

func NewService(coll store.Collection[models.Movie], posters moviemeta.PosterFinder, notify records.Notifier, log logging.Logger) *Service {
	return &Service{
		Service: records.NewService(Entity, coll, notify, log),
		posters: posters,
		now:     time.Now,
	}
}

// AddMovie resolves the poster for title and stores the movie. Lookup
// failures abort the add.
func (s *Service) AddMovie(ctx context.Context, title, link string) (string, error) {
	poster, err := s.posters.Poster(ctx, title)
	if err != nil {
		return "", fmt.Errorf("add movie %q: %w", title, err)
	}
	return s.Add(ctx, models.Movie{
		Title:   title,
		Poster:  poster,
		Link:    link,
		AddedAt: s.now().UnixMilli(),
	})
}

// MarkWatched records when the movie was watched; a zero at means now.
func (s *Service) MarkWatched(ctx context.Context, id string, at int64) error {
	if at == 0 {
		at = s.now().UnixMilli()
	}
	return s.Set(ctx, id, store.Fields{"watched": true, "watchedAt": at})
}

func (s *Service) MarkUnwatched(ctx context.Context, id string) error {
	return s.Set(ctx, id, store.Fields{"watched": nil, "watchedAt": nil})
}
