// Package movies реализует каталог фильмов и его администрирование.
package movies

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/moviestream-console/internal/apiclient"
	"github.com/magabrotheeeer/moviestream-console/internal/endpoints"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// Service обращается к API фильмов.
type Service struct {
	api apiclient.Doer
	ep  *endpoints.Registry
	log *slog.Logger
}

// New создает сервис фильмов.
func New(api apiclient.Doer, ep *endpoints.Registry, log *slog.Logger) *Service {
	return &Service{api: api, ep: ep, log: log}
}

// List возвращает страницу каталога.
func (s *Service) List(ctx context.Context, query url.Values) (models.Page[models.Movie], error) {
	const op = "movies.List"
	raw, err := s.api.Do(ctx, http.MethodGet, s.ep.MustPath(endpoints.Movies), query, nil)
	if err != nil {
		s.log.Error("failed to list movies", slog.String("op", op), sl.Err(err))
		return models.Page[models.Movie]{}, err
	}
	return apiclient.DecodePage[models.Movie](raw, "movies")
}

// Get возвращает фильм по id.
func (s *Service) Get(ctx context.Context, id string) (models.Movie, error) {
	const op = "movies.Get"
	path, err := s.ep.Path(endpoints.Movie, id)
	if err != nil {
		return models.Movie{}, fmt.Errorf("%s: %w", op, err)
	}
	m, err := apiclient.Call[models.Movie](ctx, s.api, http.MethodGet, path, nil, nil)
	if err != nil {
		s.log.Error("failed to get movie", slog.String("op", op), slog.String("id", id), sl.Err(err))
		return models.Movie{}, err
	}
	return m, nil
}

// Create добавляет фильм в каталог.
func (s *Service) Create(ctx context.Context, m models.Movie) (models.Movie, error) {
	const op = "movies.Create"
	if m.Title == "" {
		return models.Movie{}, &apiclient.Error{Op: op, Kind: apiclient.KindValidation, Message: "title is required"}
	}
	created, err := apiclient.Call[models.Movie](ctx, s.api, http.MethodPost, s.ep.MustPath(endpoints.Movies), nil, m)
	if err != nil {
		s.log.Error("failed to create movie", slog.String("op", op), slog.String("title", m.Title), sl.Err(err))
		return models.Movie{}, err
	}
	s.log.Info("movie created", slog.String("id", created.ID))
	return created, nil
}

// Update изменяет фильм id.
func (s *Service) Update(ctx context.Context, id string, m models.Movie) (models.Movie, error) {
	const op = "movies.Update"
	path, err := s.ep.Path(endpoints.Movie, id)
	if err != nil {
		return models.Movie{}, fmt.Errorf("%s: %w", op, err)
	}
	updated, err := apiclient.Call[models.Movie](ctx, s.api, http.MethodPut, path, nil, m)
	if err != nil {
		s.log.Error("failed to update movie", slog.String("op", op), slog.String("id", id), sl.Err(err))
		return models.Movie{}, err
	}
	return updated, nil
}

// Delete удаляет фильм.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "movies.Delete"
	path, err := s.ep.Path(endpoints.Movie, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.api.Do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		s.log.Error("failed to delete movie", slog.String("op", op), slog.String("id", id), sl.Err(err))
		return err
	}
	return nil
}
