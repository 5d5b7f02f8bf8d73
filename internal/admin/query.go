// Package admin содержит состояние страниц админ-консоли: параметры
// запроса списка, таблицу с пагинацией и массовые операции над строками.
package admin

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/go-playground/validator"
)

// Направления сортировки.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Значения по умолчанию для страниц списка.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var validate = validator.New()

// Query параметры запроса страницы списка.
type Query struct {
	Page      int               `json:"page" validate:"min=1"`
	Limit     int               `json:"limit" validate:"min=1,max=100"`
	SortBy    string            `json:"sortBy,omitempty" validate:"max=64"`
	SortOrder string            `json:"sortOrder,omitempty" validate:"omitempty,oneof=asc desc"`
	Filters   map[string]string `json:"filters,omitempty"`
}

// NewQuery возвращает запрос первой страницы с сортировкой sortBy по убыванию.
func NewQuery(sortBy string) Query {
	return Query{
		Page:      1,
		Limit:     DefaultLimit,
		SortBy:    sortBy,
		SortOrder: SortDesc,
		Filters:   map[string]string{},
	}
}

// Validate проверяет параметры запроса.
func (q Query) Validate() error {
	return validate.Struct(q)
}

// Values строит параметры URL. Пустые фильтры не передаются.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
		if q.SortOrder != "" {
			v.Set("sortOrder", q.SortOrder)
		}
	}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if val := q.Filters[k]; val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// clone копирует запрос вместе с фильтрами.
func (q Query) clone() Query {
	out := q
	out.Filters = make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		out.Filters[k] = v
	}
	return out
}

// ParseQuery разбирает параметры URL в Query на основе base.
// Неизвестные параметры считаются фильтрами.
func ParseQuery(values url.Values, base Query) (Query, error) {
	const op = "admin.ParseQuery"
	q := base.clone()

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		val := vals[0]
		switch key {
		case "page", "limit":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Query{}, fmt.Errorf("%s: %s must be a number", op, key)
			}
			if key == "page" {
				q.Page = n
			} else {
				q.Limit = n
			}
		case "sortBy":
			q.SortBy = val
		case "sortOrder":
			q.SortOrder = val
		default:
			q.Filters[key] = val
		}
	}

	if err := q.Validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}
