// Package resource отдаёт один ресурс бэкенда без собственного состояния:
// сводку дашборда, роли, статистику, оценки, список "смотреть позже".
package resource

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/moviestream-console/internal/http/response"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
)

// Loader загружает ресурс по запросу клиента консоли.
type Loader[T any] func(r *http.Request) (T, error)

// Handler обработчик GET ресурса.
type Handler[T any] struct {
	log  *slog.Logger
	key  string
	load Loader[T]
}

// New создаёт обработчик, отдающий результат load под ключом key.
func New[T any](log *slog.Logger, key string, load Loader[T]) *Handler[T] {
	return &Handler[T]{log: log, key: key, load: load}
}

func (h *Handler[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.resource"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("resource", h.key),
	)

	v, err := h.load(r)
	if err != nil {
		log.Error("failed to load resource", sl.Err(err))
		status, resp := response.FromError(err, "failed to load "+h.key)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{h.key: v}))
}
