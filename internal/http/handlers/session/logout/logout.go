// Package logout удаляет учётные данные из сессии консоли.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/moviestream-console/internal/http/response"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
)

// Session владелец учётных данных.
type Session interface {
	Clear(ctx context.Context) error
}

// Handler обработчик DELETE /session.
type Handler struct {
	log     *slog.Logger
	session Session
}

// New создаёт обработчик.
func New(log *slog.Logger, session Session) *Handler {
	return &Handler{
		log:     log,
		session: session,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Clear(r.Context()); err != nil {
		h.log.Error("failed to clear session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to clear session"))
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{"authenticated": false}))
}
