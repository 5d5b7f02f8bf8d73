// Package models содержит транспортные структуры, которыми консоль обменивается с бэкендом.
// Структуры передаются без изменений от ответа REST API до строк таблиц
// и не проверяются на соответствие схеме.
package models

import "time"

// User представляет учётную запись пользователя платформы.
type User struct {
	ID          string     `json:"id"`
	Fullname    string     `json:"fullname"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	AccountType string     `json:"accountType"`
	IsActive    bool       `json:"isActive"`
	IsLocked    bool       `json:"isLocked,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// UserUpdate описывает изменяемые администратором поля пользователя.
type UserUpdate struct {
	Fullname    *string `json:"fullname,omitempty"`
	Email       *string `json:"email,omitempty"`
	Role        *string `json:"role,omitempty"`
	AccountType *string `json:"accountType,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// UserStats агрегированная статистика просмотров пользователя.
type UserStats struct {
	MoviesWatched  int     `json:"moviesWatched"`
	MinutesWatched int     `json:"minutesWatched"`
	RatingsGiven   int     `json:"ratingsGiven"`
	AverageRating  float64 `json:"averageRating"`
	WatchLater     int     `json:"watchLaterCount"`
}

// Role роль доступа в админ-консоли.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}
