// Package watchlater реализует список «Посмотреть позже».
package watchlater

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/moviestream-console/internal/apiclient"
	"github.com/magabrotheeeer/moviestream-console/internal/endpoints"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// Service обращается к API списка «Посмотреть позже».
type Service struct {
	api apiclient.Doer
	ep  *endpoints.Registry
	log *slog.Logger
}

// New создает сервис списка.
func New(api apiclient.Doer, ep *endpoints.Registry, log *slog.Logger) *Service {
	return &Service{api: api, ep: ep, log: log}
}

// List возвращает фильмы из списка текущего пользователя.
func (s *Service) List(ctx context.Context) ([]models.WatchLaterItem, error) {
	const op = "watchlater.List"
	raw, err := s.api.Do(ctx, http.MethodGet, s.ep.MustPath(endpoints.WatchLater), nil, nil)
	if err != nil {
		s.log.Error("failed to list watch later", slog.String("op", op), sl.Err(err))
		return nil, err
	}
	page, err := apiclient.DecodePage[models.WatchLaterItem](raw, "watchLater")
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Add добавляет фильм в список.
func (s *Service) Add(ctx context.Context, movieID string) (models.WatchLaterItem, error) {
	const op = "watchlater.Add"
	item, err := apiclient.Call[models.WatchLaterItem](ctx, s.api, http.MethodPost, s.ep.MustPath(endpoints.WatchLater), nil,
		map[string]string{"movieId": movieID})
	if err != nil {
		s.log.Error("failed to add to watch later", slog.String("op", op), slog.String("movie_id", movieID), sl.Err(err))
		return models.WatchLaterItem{}, err
	}
	if item.MovieID == "" {
		item.MovieID = movieID
	}
	return item, nil
}

// Remove удаляет фильм из списка.
func (s *Service) Remove(ctx context.Context, movieID string) error {
	const op = "watchlater.Remove"
	path, err := s.ep.Path(endpoints.WatchLaterItem, movieID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.api.Do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		s.log.Error("failed to remove from watch later", slog.String("op", op), slog.String("movie_id", movieID), sl.Err(err))
		return err
	}
	return nil
}

// inList бэкенд отдаёт признак булевым значением или объектом { inWatchLater }.
type inList bool

func (v *inList) UnmarshalJSON(b []byte) error {
	var flag bool
	if err := json.Unmarshal(b, &flag); err == nil {
		*v = inList(flag)
		return nil
	}
	var obj struct {
		InWatchLater bool `json:"inWatchLater"`
		Exists       bool `json:"exists"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*v = inList(obj.InWatchLater || obj.Exists)
	return nil
}

// Contains сообщает, есть ли фильм в списке. Ответ 404 означает «нет».
func (s *Service) Contains(ctx context.Context, movieID string) (bool, error) {
	const op = "watchlater.Contains"
	path, err := s.ep.Path(endpoints.WatchLaterCheck, movieID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	v, err := apiclient.Call[inList](ctx, s.api, http.MethodGet, path, nil, nil)
	if apiclient.IsKind(err, apiclient.KindNotFound) {
		return false, nil
	}
	if err != nil {
		s.log.Error("failed to check watch later", slog.String("op", op), slog.String("movie_id", movieID), sl.Err(err))
		return false, err
	}
	return bool(v), nil
}
