// Package userstats реализует статистику просмотров пользователя.
package userstats

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

// Service обращается к API статистики.
type Service struct {
	api apiclient.Doer
	ep  *endpoints.Registry
	log *slog.Logger
}

// New создает сервис статистики.
func New(api apiclient.Doer, ep *endpoints.Registry, log *slog.Logger) *Service {
	return &Service{api: api, ep: ep, log: log}
}

// Get возвращает статистику пользователя userID. Для нового пользователя
// бэкенд отвечает 404, в этом случае возвращается нулевая статистика.
func (s *Service) Get(ctx context.Context, userID string) (models.UserStats, error) {
	const op = "userstats.Get"
	path, err := s.ep.Path(endpoints.UserStatistics, userID)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("%s: %w", op, err)
	}
	st, err := apiclient.Call[models.UserStats](ctx, s.api, http.MethodGet, path, nil, nil)
	if apiclient.IsKind(err, apiclient.KindNotFound) {
		return models.UserStats{}, nil
	}
	if err != nil {
		s.log.Error("failed to get user statistics", slog.String("op", op), slog.String("user_id", userID), sl.Err(err))
		return models.UserStats{}, err
	}
	return st, nil
}
