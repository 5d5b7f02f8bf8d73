// Package health отдаёт состояние консоли.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/moviestream-console/internal/http/response"
)

// OnlineChecker сообщает, доступен ли бэкенд.
type OnlineChecker interface {
	Online() bool
}

// Handler обработчик GET /health.
type Handler struct {
	log     *slog.Logger
	checker OnlineChecker
}

// New создаёт обработчик.
func New(log *slog.Logger, checker OnlineChecker) *Handler {
	return &Handler{
		log:     log,
		checker: checker,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status":  "ok",
		"backend": h.checker.Online(),
	}))
}
