// Package users реализует управление пользователями в админ-консоли.
package users

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

// Service обращается к API пользователей.
type Service struct {
	api apiclient.Doer
	ep  *endpoints.Registry
	log *slog.Logger
}

// New создает сервис пользователей.
func New(api apiclient.Doer, ep *endpoints.Registry, log *slog.Logger) *Service {
	return &Service{api: api, ep: ep, log: log}
}

// List возвращает страницу пользователей.
func (s *Service) List(ctx context.Context, query url.Values) (models.Page[models.User], error) {
	const op = "users.List"
	raw, err := s.api.Do(ctx, http.MethodGet, s.ep.MustPath(endpoints.Users), query, nil)
	if err != nil {
		s.log.Error("failed to list users", slog.String("op", op), sl.Err(err))
		return models.Page[models.User]{}, err
	}
	return apiclient.DecodePage[models.User](raw, "users")
}

// Get возвращает пользователя по id.
func (s *Service) Get(ctx context.Context, id string) (models.User, error) {
	return s.call(ctx, "users.Get", http.MethodGet, endpoints.User, id, nil)
}

// Update изменяет поля пользователя, nil-поля не передаются.
func (s *Service) Update(ctx context.Context, id string, upd models.UserUpdate) (models.User, error) {
	return s.call(ctx, "users.Update", http.MethodPut, endpoints.User, id, upd)
}

// SetActive включает или отключает учётную запись.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (models.User, error) {
	return s.call(ctx, "users.SetActive", http.MethodPatch, endpoints.UserStatus, id, map[string]bool{"isActive": active})
}

// Lock блокирует учётную запись.
func (s *Service) Lock(ctx context.Context, id string) (models.User, error) {
	return s.call(ctx, "users.Lock", http.MethodPost, endpoints.UserLock, id, nil)
}

// Unlock снимает блокировку учётной записи.
func (s *Service) Unlock(ctx context.Context, id string) (models.User, error) {
	return s.call(ctx, "users.Unlock", http.MethodPost, endpoints.UserUnlock, id, nil)
}

// Delete удаляет пользователя.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "users.Delete"
	path, err := s.ep.Path(endpoints.User, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.api.Do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		s.log.Error("failed to delete user", slog.String("op", op), slog.String("id", id), sl.Err(err))
		return err
	}
	return nil
}

// Me возвращает профиль текущего пользователя.
func (s *Service) Me(ctx context.Context) (models.User, error) {
	const op = "users.Me"
	u, err := apiclient.Call[models.User](ctx, s.api, http.MethodGet, s.ep.MustPath(endpoints.UserMe), nil, nil)
	if err != nil {
		s.log.Error("failed to get current user", slog.String("op", op), sl.Err(err))
		return models.User{}, err
	}
	return u, nil
}

func (s *Service) call(ctx context.Context, op, method string, ep endpoints.Op, id string, body any) (models.User, error) {
	path, err := s.ep.Path(ep, id)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	u, err := apiclient.Call[models.User](ctx, s.api, method, path, nil, body)
	if err != nil {
		s.log.Error("user request failed", slog.String("op", op), slog.String("id", id), sl.Err(err))
		return models.User{}, err
	}
	return u, nil
}
