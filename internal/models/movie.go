package models

import "time"

// Movie карточка фильма в каталоге.
type Movie struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Genres      []string   `json:"genres,omitempty"`
	ReleaseYear int        `json:"releaseYear,omitempty"`
	Duration    int        `json:"duration,omitempty"`
	PosterURL   string     `json:"posterUrl,omitempty"`
	Status      string     `json:"status,omitempty"`
	IsPremium   bool       `json:"isPremium"`
	AvgRating   float64    `json:"averageRating"`
	Views       int        `json:"views"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// Rating оценка фильма пользователем.
type Rating struct {
	MovieID  string `json:"movieId,omitempty"`
	Rating   int    `json:"rating"`
	HasRated bool   `json:"hasRated"`
}

// MovieRatings сводная оценка фильма.
type MovieRatings struct {
	Average float64 `json:"averageRating"`
	Count   int     `json:"totalRatings"`
}

// WatchLaterItem фильм в списке «Посмотреть позже».
type WatchLaterItem struct {
	ID      string     `json:"id"`
	MovieID string     `json:"movieId"`
	Movie   *Movie     `json:"movie,omitempty"`
	AddedAt *time.Time `json:"addedAt,omitempty"`
}
