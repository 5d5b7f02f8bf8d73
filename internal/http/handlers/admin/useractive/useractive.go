// Package useractive включает и отключает выбранных пользователей.
package useractive

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/moviestream-console/internal/admin"
	"github.com/magabrotheeeer/moviestream-console/internal/http/response"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
)

// Activator выполняет массовое включение пользователей.
type Activator interface {
	SetUsersActive(ctx context.Context, ids []string, active bool) error
}

// Request тело POST /admin/users/active.
type Request struct {
	IDs    []string `json:"ids" validate:"required,min=1,dive,required"`
	Active *bool    `json:"active" validate:"required"`
}

// Handler обработчик POST /admin/users/active.
type Handler struct {
	log       *slog.Logger
	activator Activator
	validate  *validator.Validate
}

// New создаёт обработчик.
func New(log *slog.Logger, activator Activator) *Handler {
	return &Handler{
		log:       log,
		activator: activator,
		validate:  validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.useractive"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("empty request"))
			return
		}
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.activator.SetUsersActive(r.Context(), req.IDs, *req.Active); err != nil {
		log.Error("bulk activation failed", sl.Err(err))
		status, resp := response.FromError(err, "failed to update users")
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"updated": len(admin.Unique(req.IDs)),
		"active":  *req.Active,
	}))
}
