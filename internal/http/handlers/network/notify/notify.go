// Package notify принимает события сети от клиента: системные события
// online/offline и события обёртки service worker.
package notify

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/moviestream-console/internal/http/response"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/netstatus"
)

// Monitor получатель событий сети.
type Monitor interface {
	NotifyNative(online bool)
	NotifyWorker(online bool)
	Online() bool
}

// Request тело POST /network-status.
type Request struct {
	Online *bool  `json:"online" validate:"required"`
	Source string `json:"source" validate:"omitempty,oneof=native worker"`
}

// Handler обработчик POST /network-status.
type Handler struct {
	log      *slog.Logger
	monitor  Monitor
	validate *validator.Validate
}

// New создаёт обработчик.
func New(log *slog.Logger, monitor Monitor) *Handler {
	return &Handler{
		log:      log,
		monitor:  monitor,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.network.notify"
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

	if netstatus.Source(req.Source) == netstatus.SourceWorker {
		h.monitor.NotifyWorker(*req.Online)
	} else {
		h.monitor.NotifyNative(*req.Online)
	}
	render.JSON(w, r, response.OKWithData(map[string]any{"online": h.monitor.Online()}))
}
