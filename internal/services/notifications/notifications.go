// Package notifications реализует уведомления пользователя.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/moviestream-console/internal/apiclient"
	"github.com/magabrotheeeer/moviestream-console/internal/endpoints"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// Service обращается к API уведомлений.
type Service struct {
	api apiclient.Doer
	ep  *endpoints.Registry
	log *slog.Logger
}

// New создает сервис уведомлений.
func New(api apiclient.Doer, ep *endpoints.Registry, log *slog.Logger) *Service {
	return &Service{api: api, ep: ep, log: log}
}

// List возвращает страницу уведомлений.
func (s *Service) List(ctx context.Context, query url.Values) (models.Page[models.Notification], error) {
	const op = "notifications.List"
	raw, err := s.api.Do(ctx, http.MethodGet, s.ep.MustPath(endpoints.Notifications), query, nil)
	if err != nil {
		s.log.Error("failed to list notifications", slog.String("op", op), sl.Err(err))
		return models.Page[models.Notification]{}, err
	}
	return apiclient.DecodePage[models.Notification](raw, "notifications")
}

// unreadCount бэкенд отдаёт счётчик числом или объектом { count }.
type unreadCount int

func (c *unreadCount) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*c = unreadCount(n)
		return nil
	}
	var obj struct {
		Count       *int `json:"count"`
		UnreadCount *int `json:"unreadCount"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	switch {
	case obj.Count != nil:
		*c = unreadCount(*obj.Count)
	case obj.UnreadCount != nil:
		*c = unreadCount(*obj.UnreadCount)
	}
	return nil
}

// UnreadCount возвращает число непрочитанных уведомлений. При ошибке
// возвращается 0 вместе с ошибкой, чтобы счётчик в интерфейсе не пропадал.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	const op = "notifications.UnreadCount"
	n, err := apiclient.Call[unreadCount](ctx, s.api, http.MethodGet, s.ep.MustPath(endpoints.NotificationsUnread), nil, nil)
	if err != nil {
		s.log.Warn("failed to get unread count", slog.String("op", op), sl.Err(err))
		return 0, err
	}
	return int(n), nil
}

// MarkRead отмечает уведомление прочитанным.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	const op = "notifications.MarkRead"
	path, err := s.ep.Path(endpoints.NotificationRead, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.api.Do(ctx, http.MethodPatch, path, nil, nil); err != nil {
		s.log.Error("failed to mark notification read", slog.String("op", op), slog.String("id", id), sl.Err(err))
		return err
	}
	return nil
}

// MarkAllRead отмечает все уведомления прочитанными.
func (s *Service) MarkAllRead(ctx context.Context) error {
	const op = "notifications.MarkAllRead"
	if _, err := s.api.Do(ctx, http.MethodPatch, s.ep.MustPath(endpoints.NotificationsRead), nil, nil); err != nil {
		s.log.Error("failed to mark all notifications read", slog.String("op", op), sl.Err(err))
		return err
	}
	return nil
}

// Delete удаляет уведомление.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "notifications.Delete"
	path, err := s.ep.Path(endpoints.Notification, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.api.Do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		s.log.Error("failed to delete notification", slog.String("op", op), slog.String("id", id), sl.Err(err))
		return err
	}
	return nil
}
