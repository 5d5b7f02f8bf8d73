// Package refresh запускает внеочередную загрузку рекламных привилегий.
package refresh

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/moviestream-console/internal/adbenefits"
	"github.com/magabrotheeeer/moviestream-console/internal/http/response"
)

// Manager менеджер привилегий.
type Manager interface {
	Refresh()
	Snapshot() adbenefits.Snapshot
}

// Handler обработчик POST /ad-benefits/refresh.
type Handler struct {
	log     *slog.Logger
	manager Manager
}

// New создаёт обработчик.
func New(log *slog.Logger, manager Manager) *Handler {
	return &Handler{log: log, manager: manager}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.adbenefits.refresh"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if !h.manager.Snapshot().Authenticated {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	// загрузка, которая уже идёт, не дублируется
	h.manager.Refresh()
	snap := h.manager.Snapshot()
	log.Debug("ad benefits refresh requested", slog.String("state", snap.State.String()))

	w.WriteHeader(http.StatusAccepted)
	render.JSON(w, r, response.OKWithData(map[string]any{"state": snap.State}))
}
