package models

// Pagination метаданные страницы списка, возвращаемые бэкендом.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page страница результатов списка с пагинацией.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Normalize заполняет отсутствующие поля пагинации по содержимому страницы:
// бэкенд не всегда присылает их для коротких списков.
func (p Page[T]) Normalize() Page[T] {
	if p.Items == nil {
		p.Items = []T{}
	}
	if p.Pagination.Page == 0 {
		p.Pagination.Page = 1
	}
	if p.Pagination.Total == 0 {
		p.Pagination.Total = len(p.Items)
	}
	if p.Pagination.Limit == 0 {
		p.Pagination.Limit = len(p.Items)
	}
	if p.Pagination.TotalPages == 0 && p.Pagination.Limit > 0 {
		p.Pagination.TotalPages = (p.Pagination.Total + p.Pagination.Limit - 1) / p.Pagination.Limit
	}
	return p
}
