// Package ratings реализует оценки фильмов пользователями.
package ratings

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/moviestream-console/internal/apiclient"
	"github.com/magabrotheeeer/moviestream-console/internal/endpoints"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// Границы допустимой оценки.
const (
	MinRating = 1
	MaxRating = 10
)

// Service обращается к API оценок.
type Service struct {
	api apiclient.Doer
	ep  *endpoints.Registry
	log *slog.Logger
}

// New создает сервис оценок.
func New(api apiclient.Doer, ep *endpoints.Registry, log *slog.Logger) *Service {
	return &Service{api: api, ep: ep, log: log}
}

// GetUserRating возвращает оценку текущего пользователя. Если пользователь
// ещё не оценивал фильм (404), возвращается оценка 0 с HasRated=false.
func (s *Service) GetUserRating(ctx context.Context, movieID string) (models.Rating, error) {
	const op = "ratings.GetUserRating"
	path, err := s.ep.Path(endpoints.MovieRating, movieID)
	if err != nil {
		return models.Rating{}, fmt.Errorf("%s: %w", op, err)
	}

	r, err := apiclient.Call[models.Rating](ctx, s.api, http.MethodGet, path, nil, nil)
	if apiclient.IsKind(err, apiclient.KindNotFound) {
		return models.Rating{MovieID: movieID}, nil
	}
	if err != nil {
		s.log.Error("failed to get user rating", slog.String("op", op), slog.String("movie_id", movieID), sl.Err(err))
		return models.Rating{}, err
	}
	if r.MovieID == "" {
		r.MovieID = movieID
	}
	if r.Rating > 0 {
		r.HasRated = true
	}
	return r, nil
}

// Rate ставит фильму оценку value. Значение вне диапазона отклоняется без запроса.
func (s *Service) Rate(ctx context.Context, movieID string, value int) (models.Rating, error) {
	const op = "ratings.Rate"
	if value < MinRating || value > MaxRating {
		return models.Rating{}, &apiclient.Error{
			Op:      op,
			Kind:    apiclient.KindValidation,
			Message: fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating),
		}
	}
	path, err := s.ep.Path(endpoints.MovieRate, movieID)
	if err != nil {
		return models.Rating{}, fmt.Errorf("%s: %w", op, err)
	}

	r, err := apiclient.Call[models.Rating](ctx, s.api, http.MethodPost, path, nil, map[string]int{"rating": value})
	if err != nil {
		s.log.Error("failed to rate movie", slog.String("op", op), slog.String("movie_id", movieID), sl.Err(err))
		return models.Rating{}, err
	}
	r.MovieID = movieID
	r.Rating = value
	r.HasRated = true
	return r, nil
}

// GetMovieRatings возвращает среднюю оценку и количество оценок фильма.
func (s *Service) GetMovieRatings(ctx context.Context, movieID string) (models.MovieRatings, error) {
	const op = "ratings.GetMovieRatings"
	path, err := s.ep.Path(endpoints.MovieStats, movieID)
	if err != nil {
		return models.MovieRatings{}, fmt.Errorf("%s: %w", op, err)
	}

	stats, err := apiclient.Call[models.MovieRatings](ctx, s.api, http.MethodGet, path, nil, nil)
	if err != nil {
		s.log.Error("failed to get movie ratings", slog.String("op", op), slog.String("movie_id", movieID), sl.Err(err))
		return models.MovieRatings{}, err
	}
	return stats, nil
}
