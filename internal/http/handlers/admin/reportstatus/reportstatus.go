// Package reportstatus меняет статус выбранных жалоб.
package reportstatus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/moviestream-console/internal/admin"
	"github.com/magabrotheeeer/moviestream-console/internal/http/response"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// Updater выполняет массовую смену статуса.
type Updater interface {
	UpdateReportStatus(ctx context.Context, req admin.BulkReportStatus) error
}

// Rows источник текущих строк таблицы.
type Rows interface {
	Page() models.Page[models.Report]
}

// Handler обработчик POST /admin/reports/status.
type Handler struct {
	log     *slog.Logger
	updater Updater
	rows    Rows
}

// New создаёт обработчик.
func New(log *slog.Logger, updater Updater, rows Rows) *Handler {
	return &Handler{
		log:     log,
		updater: updater,
		rows:    rows,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.reportstatus"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req admin.BulkReportStatus
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

	if err := h.updater.UpdateReportStatus(r.Context(), req); err != nil {
		log.Error("bulk status update failed", sl.Err(err))
		status, resp := response.FromError(err, "failed to update reports")
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	page := h.rows.Page()
	render.JSON(w, r, response.OKWithData(map[string]any{
		"updated": len(admin.Unique(req.IDs)),
		"status":  req.Status,
		"reports": page.Items,
	}))
}
