// Package list отдаёт страницу таблицы админ-консоли: жалобы, пользователи,
// фильмы и премиум-подписки.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/moviestream-console/internal/admin"
	"github.com/magabrotheeeer/moviestream-console/internal/http/response"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// Служебные параметры, которые не попадают в фильтры.
const (
	// ParamToggleSort сортирует по полю, повторный выбор того же поля меняет направление.
	ParamToggleSort = "toggleSort"
	// ParamResetFilters снимает все фильтры таблицы.
	ParamResetFilters = "resetFilters"
)

// Table состояние таблицы.
type Table[T any] interface {
	Query() admin.Query
	SetQuery(q admin.Query) error
	SetPage(page int) error
	SetLimit(limit int) error
	SetSort(field string) error
	SetFilter(key, value string) error
	Refresh(ctx context.Context) error
	Page() models.Page[T]
}

// Handler обработчик GET списка. Параметры page, limit, sortBy, sortOrder
// меняют запрос таблицы, остальные параметры считаются фильтрами.
// Смена фильтра или размера страницы возвращает на первую страницу,
// если page не передан явно.
type Handler[T any] struct {
	log      *slog.Logger
	table    Table[T]
	itemsKey string
	view     func(T) any
}

// New создаёт обработчик, отдающий строки под ключом itemsKey.
func New[T any](log *slog.Logger, table Table[T], itemsKey string) *Handler[T] {
	return &Handler[T]{
		log:      log,
		table:    table,
		itemsKey: itemsKey,
	}
}

// WithView задаёт представление строки в ответе.
func (h *Handler[T]) WithView(view func(T) any) *Handler[T] {
	h.view = view
	return h
}

func (h *Handler[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("table", h.itemsKey),
	)

	if err := h.apply(r.URL.Query()); err != nil {
		log.Debug("invalid list query", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.JSON(w, r, response.Error("invalid query"))
		return
	}

	if err := h.table.Refresh(r.Context()); err != nil {
		log.Error("failed to load rows", sl.Err(err))
		status, resp := response.FromError(err, "failed to load "+h.itemsKey)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	page := h.table.Page()
	log.Info("rows listed", slog.Int("count", len(page.Items)), slog.Int("page", page.Pagination.Page))

	var items any = page.Items
	if h.view != nil {
		rows := make([]any, len(page.Items))
		for i, row := range page.Items {
			rows[i] = h.view(row)
		}
		items = rows
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"query":      h.table.Query(),
		h.itemsKey:   items,
		"pagination": page.Pagination,
	}))
}

// apply переносит параметры запроса в таблицу. Параметры проверяются целиком
// до первого изменения таблицы.
func (h *Handler[T]) apply(values url.Values) error {
	toggle := values.Get(ParamToggleSort)
	_, reset := values[ParamResetFilters]
	values.Del(ParamToggleSort)
	values.Del(ParamResetFilters)

	base := h.table.Query()
	if reset {
		base.Filters = map[string]string{}
	}
	q, err := admin.ParseQuery(values, base)
	if err != nil {
		return err
	}

	if reset {
		for key := range h.table.Query().Filters {
			if err := h.table.SetFilter(key, ""); err != nil {
				return err
			}
		}
	}

	sorted := h.table.Query()
	sorted.SortBy, sorted.SortOrder = q.SortBy, q.SortOrder
	if err := h.table.SetQuery(sorted); err != nil {
		return err
	}
	for key, val := range q.Filters {
		if base.Filters[key] != val {
			if err := h.table.SetFilter(key, val); err != nil {
				return err
			}
		}
	}
	if q.Limit != base.Limit {
		if err := h.table.SetLimit(q.Limit); err != nil {
			return err
		}
	}
	if _, ok := values["page"]; ok {
		if err := h.table.SetPage(q.Page); err != nil {
			return err
		}
	}
	if toggle != "" {
		return h.table.SetSort(toggle)
	}
	return nil
}
