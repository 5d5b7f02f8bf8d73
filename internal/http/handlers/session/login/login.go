// Package login сохраняет токен, полученный клиентом при входе, в сессии консоли.
package login

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/moviestream-console/internal/http/response"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
	"github.com/magabrotheeeer/moviestream-console/internal/session"
)

// Session владелец учётных данных.
type Session interface {
	Login(ctx context.Context, token string, user models.User) error
}

// Request тело POST /session.
type Request struct {
	Token string      `json:"token" validate:"required"`
	User  models.User `json:"user"`
}

// Handler обработчик POST /session.
type Handler struct {
	log      *slog.Logger
	sess     Session
	validate *validator.Validate
}

// New создаёт обработчик.
func New(log *slog.Logger, sess Session) *Handler {
	return &Handler{
		log:      log,
		sess:     sess,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.login"
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

	if session.IsSentinel(req.Token) {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid token"))
		return
	}

	if err := h.sess.Login(r.Context(), req.Token, req.User); err != nil {
		if errors.Is(err, session.ErrInvalidToken) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid token"))
			return
		}
		log.Error("failed to store session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to store session"))
		return
	}
	log.Info("session started", slog.String("user_id", req.User.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{"authenticated": true}))
}
