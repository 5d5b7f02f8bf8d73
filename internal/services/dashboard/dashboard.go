// Package dashboard отдаёт сводные показатели админ-панели.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/moviestream-console/internal/apiclient"
	"github.com/magabrotheeeer/moviestream-console/internal/endpoints"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// Service обращается к API админ-панели.
type Service struct {
	api apiclient.Doer
	ep  *endpoints.Registry
	log *slog.Logger
}

// New создает сервис админ-панели.
func New(api apiclient.Doer, ep *endpoints.Registry, log *slog.Logger) *Service {
	return &Service{api: api, ep: ep, log: log}
}

// Overview возвращает сводку по пользователям, фильмам, жалобам и подпискам.
func (s *Service) Overview(ctx context.Context) (models.DashboardOverview, error) {
	const op = "dashboard.Overview"
	ov, err := apiclient.Call[models.DashboardOverview](ctx, s.api, http.MethodGet, s.ep.MustPath(endpoints.Dashboard), nil, nil)
	if err != nil {
		s.log.Error("failed to get dashboard overview", slog.String("op", op), sl.Err(err))
		return models.DashboardOverview{}, err
	}
	return ov, nil
}
