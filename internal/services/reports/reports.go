// Package reports реализует модерацию жалоб в админ-консоли.
package reports

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

// Service обращается к API жалоб.
type Service struct {
	api apiclient.Doer
	ep  *endpoints.Registry
	log *slog.Logger
}

// New создает сервис жалоб.
func New(api apiclient.Doer, ep *endpoints.Registry, log *slog.Logger) *Service {
	return &Service{api: api, ep: ep, log: log}
}

// List возвращает страницу жалоб по параметрам query.
func (s *Service) List(ctx context.Context, query url.Values) (models.Page[models.Report], error) {
	const op = "reports.List"
	raw, err := s.api.Do(ctx, http.MethodGet, s.ep.MustPath(endpoints.Reports), query, nil)
	if err != nil {
		s.log.Error("failed to list reports", slog.String("op", op), sl.Err(err))
		return models.Page[models.Report]{}, err
	}
	page, err := apiclient.DecodePage[models.Report](raw, "reports")
	if err != nil {
		s.log.Error("failed to decode reports", slog.String("op", op), sl.Err(err))
		return models.Page[models.Report]{}, err
	}
	return page, nil
}

// Get возвращает жалобу по id.
func (s *Service) Get(ctx context.Context, id string) (models.Report, error) {
	const op = "reports.Get"
	path, err := s.ep.Path(endpoints.Report, id)
	if err != nil {
		return models.Report{}, fmt.Errorf("%s: %w", op, err)
	}
	r, err := apiclient.Call[models.Report](ctx, s.api, http.MethodGet, path, nil, nil)
	if err != nil {
		s.log.Error("failed to get report", slog.String("op", op), slog.String("id", id), sl.Err(err))
		return models.Report{}, err
	}
	return r, nil
}

// UpdateStatus меняет статус одной жалобы.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	const op = "reports.UpdateStatus"
	path, err := s.ep.Path(endpoints.ReportStatus, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.api.Do(ctx, http.MethodPatch, path, nil, map[string]string{"status": status}); err != nil {
		s.log.Error("failed to update report status",
			slog.String("op", op), slog.String("id", id), slog.String("status", status), sl.Err(err))
		return err
	}
	return nil
}

// Delete удаляет жалобу.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "reports.Delete"
	path, err := s.ep.Path(endpoints.Report, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.api.Do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		s.log.Error("failed to delete report", slog.String("op", op), slog.String("id", id), sl.Err(err))
		return err
	}
	return nil
}

// Stats возвращает количество жалоб по статусам.
func (s *Service) Stats(ctx context.Context) (models.ReportStats, error) {
	const op = "reports.Stats"
	st, err := apiclient.Call[models.ReportStats](ctx, s.api, http.MethodGet, s.ep.MustPath(endpoints.ReportStats), nil, nil)
	if err != nil {
		s.log.Error("failed to get report stats", slog.String("op", op), sl.Err(err))
		return models.ReportStats{}, err
	}
	return st, nil
}
