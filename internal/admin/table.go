package admin

import (
	"context"
	"net/url"
	"sync"

	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// FetchFunc загружает страницу строк по параметрам запроса.
type FetchFunc[T any] func(ctx context.Context, query url.Values) (models.Page[T], error)

// Table состояние страницы списка: запрос, строки и пагинация.
// Результат загрузки заменяет строки целиком. Если загрузки пересекаются,
// применяется результат последней начатой.
type Table[T any] struct {
	fetch FetchFunc[T]
	id    func(T) string

	mu         sync.RWMutex
	query      Query
	rows       []T
	pagination models.Pagination
	seq        uint64
}

// NewTable создаёт таблицу с начальным запросом q. id возвращает идентификатор строки.
func NewTable[T any](fetch FetchFunc[T], id func(T) string, q Query) *Table[T] {
	if q.Filters == nil {
		q.Filters = map[string]string{}
	}
	return &Table[T]{fetch: fetch, id: id, query: q, rows: []T{}}
}

// Query возвращает копию текущего запроса.
func (t *Table[T]) Query() Query {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.query.clone()
}

// Rows возвращает копию текущих строк.
func (t *Table[T]) Rows() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]T(nil), t.rows...)
}

// Page возвращает строки вместе с пагинацией.
func (t *Table[T]) Page() models.Page[T] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return models.Page[T]{Items: append([]T{}, t.rows...), Pagination: t.pagination}
}

// Refresh загружает страницу по текущему запросу. При ошибке строки не меняются.
func (t *Table[T]) Refresh(ctx context.Context) error {
	t.mu.Lock()
	q := t.query.clone()
	t.seq++
	seq := t.seq
	t.mu.Unlock()

	if err := q.Validate(); err != nil {
		return err
	}
	page, err := t.fetch(ctx, q.Values())
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if seq != t.seq {
		return nil
	}
	page = page.Normalize()
	t.rows = page.Items
	t.pagination = page.Pagination
	return nil
}

// SetQuery заменяет запрос целиком.
func (t *Table[T]) SetQuery(q Query) error {
	if err := q.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	t.query = q.clone()
	t.mu.Unlock()
	return nil
}

// SetPage переходит на страницу page.
func (t *Table[T]) SetPage(page int) error {
	return t.update(func(q *Query) { q.Page = page })
}

// SetLimit меняет размер страницы и возвращает на первую страницу.
func (t *Table[T]) SetLimit(limit int) error {
	return t.update(func(q *Query) {
		q.Limit = limit
		q.Page = 1
	})
}

// SetSort сортирует по field. Повторный выбор того же поля меняет направление,
// новое поле сортируется по возрастанию.
func (t *Table[T]) SetSort(field string) error {
	return t.update(func(q *Query) {
		if q.SortBy == field {
			if q.SortOrder == SortAsc {
				q.SortOrder = SortDesc
			} else {
				q.SortOrder = SortAsc
			}
			return
		}
		q.SortBy = field
		q.SortOrder = SortAsc
	})
}

// SetFilter задаёт фильтр и возвращает на первую страницу. Пустое значение снимает фильтр.
func (t *Table[T]) SetFilter(key, value string) error {
	return t.update(func(q *Query) {
		if value == "" {
			delete(q.Filters, key)
		} else {
			q.Filters[key] = value
		}
		q.Page = 1
	})
}

func (t *Table[T]) update(fn func(q *Query)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	q := t.query.clone()
	fn(&q)
	if err := q.Validate(); err != nil {
		return err
	}
	t.query = q
	return nil
}

// Patch изменяет строку с идентификатором id. Возвращает false, если строки нет на странице.
func (t *Table[T]) Patch(id string, fn func(row *T)) bool {
	return t.PatchMany([]string{id}, fn) == 1
}

// PatchMany изменяет строки с идентификаторами ids и возвращает число изменённых.
func (t *Table[T]) PatchMany(ids []string, fn func(row *T)) int {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for i := range t.rows {
		if _, ok := set[t.id(t.rows[i])]; ok {
			fn(&t.rows[i])
			n++
		}
	}
	return n
}

// Replace заменяет строку с тем же идентификатором, что и row.
func (t *Table[T]) Replace(row T) bool {
	return t.Patch(t.id(row), func(r *T) { *r = row })
}

// ReportID идентификатор строки жалобы.
func ReportID(r models.Report) string { return r.ID }

// UserID идентификатор строки пользователя.
func UserID(u models.User) string { return u.ID }

// MovieID идентификатор строки фильма.
func MovieID(m models.Movie) string { return m.ID }

// SubscriptionID идентификатор строки премиум-подписки.
func SubscriptionID(s models.PremiumSubscription) string { return s.ID }
