// Package snapshot отдаёт рекламные привилегии текущего пользователя.
package snapshot

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/moviestream-console/internal/adbenefits"
	"github.com/magabrotheeeer/moviestream-console/internal/http/response"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// Manager источник привилегий.
type Manager interface {
	Snapshot() adbenefits.Snapshot
	Benefits(route string) models.AdBenefits
}

// Handler обработчик GET /ad-benefits?route=.
type Handler struct {
	log     *slog.Logger
	manager Manager
}

// New создаёт обработчик.
func New(log *slog.Logger, manager Manager) *Handler {
	return &Handler{
		log:     log,
		manager: manager,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.adbenefits.snapshot"
	route := r.URL.Query().Get("route")

	snap := h.manager.Snapshot()
	snap.Benefits = h.manager.Benefits(route)

	h.log.Debug("ad benefits requested",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.Route(route),
		slog.String("state", snap.State.String()))
	render.JSON(w, r, response.OKWithData(snap))
}
