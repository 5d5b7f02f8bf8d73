// Package status отдаёт состояние сети и баннера восстановления связи.
package status

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/moviestream-console/internal/http/response"
	"github.com/magabrotheeeer/moviestream-console/internal/netstatus"
)

// Notice источник состояния баннера.
type Notice interface {
	State() netstatus.NoticeState
}

// Handler обработчик GET /network-status.
type Handler struct {
	log    *slog.Logger
	notice Notice
}

// New создаёт обработчик.
func New(log *slog.Logger, notice Notice) *Handler {
	return &Handler{
		log:    log,
		notice: notice,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(h.notice.State()))
}
