// Package roles реализует управление ролями доступа.
package roles

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

// Service обращается к API ролей.
type Service struct {
	api apiclient.Doer
	ep  *endpoints.Registry
	log *slog.Logger
}

// New создает сервис ролей.
func New(api apiclient.Doer, ep *endpoints.Registry, log *slog.Logger) *Service {
	return &Service{api: api, ep: ep, log: log}
}

// List возвращает все роли.
func (s *Service) List(ctx context.Context) ([]models.Role, error) {
	const op = "roles.List"
	raw, err := s.api.Do(ctx, http.MethodGet, s.ep.MustPath(endpoints.Roles), nil, nil)
	if err != nil {
		s.log.Error("failed to list roles", slog.String("op", op), sl.Err(err))
		return nil, err
	}
	page, err := apiclient.DecodePage[models.Role](raw, "roles")
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Create создаёт роль.
func (s *Service) Create(ctx context.Context, r models.Role) (models.Role, error) {
	const op = "roles.Create"
	if r.Name == "" {
		return models.Role{}, &apiclient.Error{Op: op, Kind: apiclient.KindValidation, Message: "role name is required"}
	}
	created, err := apiclient.Call[models.Role](ctx, s.api, http.MethodPost, s.ep.MustPath(endpoints.Roles), nil, r)
	if err != nil {
		s.log.Error("failed to create role", slog.String("op", op), slog.String("name", r.Name), sl.Err(err))
		return models.Role{}, err
	}
	return created, nil
}

// Update изменяет роль id.
func (s *Service) Update(ctx context.Context, id string, r models.Role) (models.Role, error) {
	const op = "roles.Update"
	path, err := s.ep.Path(endpoints.Role, id)
	if err != nil {
		return models.Role{}, fmt.Errorf("%s: %w", op, err)
	}
	updated, err := apiclient.Call[models.Role](ctx, s.api, http.MethodPut, path, nil, r)
	if err != nil {
		s.log.Error("failed to update role", slog.String("op", op), slog.String("id", id), sl.Err(err))
		return models.Role{}, err
	}
	return updated, nil
}

// Delete удаляет роль.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "roles.Delete"
	path, err := s.ep.Path(endpoints.Role, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.api.Do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		s.log.Error("failed to delete role", slog.String("op", op), slog.String("id", id), sl.Err(err))
		return err
	}
	return nil
}

// AssignToUser назначает пользователю userID роль roleName.
func (s *Service) AssignToUser(ctx context.Context, userID, roleName string) (models.User, error) {
	const op = "roles.AssignToUser"
	path, err := s.ep.Path(endpoints.UserRole, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	u, err := apiclient.Call[models.User](ctx, s.api, http.MethodPatch, path, nil, map[string]string{"role": roleName})
	if err != nil {
		s.log.Error("failed to assign role",
			slog.String("op", op), slog.String("user_id", userID), slog.String("role", roleName), sl.Err(err))
		return models.User{}, err
	}
	return u, nil
}
