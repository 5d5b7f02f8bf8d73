// Package endpoints содержит реестр адресов REST API бэкенда.
//
// Каждой логической операции соответствует шаблон пути с параметрами
// вида {id}. Полный адрес строится от базового URL клиента.
package endpoints

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnknownOperation возвращается для операции, отсутствующей в реестре.
var ErrUnknownOperation = errors.New("endpoints: unknown operation")

// Op логическая операция API.
type Op string

// Операции API.
const (
	Movies      Op = "movies.list"
	Movie       Op = "movies.get"
	MovieRating Op = "movies.rating"
	MovieRate   Op = "movies.rate"
	MovieStats  Op = "movies.ratings"

	Users          Op = "users.list"
	User           Op = "users.get"
	UserStatus     Op = "users.status"
	UserLock       Op = "users.lock"
	UserUnlock     Op = "users.unlock"
	UserMe         Op = "users.me"
	UserStatistics Op = "users.statistics"
	UserRole       Op = "users.role"

	Roles Op = "roles.list"
	Role  Op = "roles.get"

	Reports      Op = "reports.list"
	Report       Op = "reports.get"
	ReportStatus Op = "reports.status"
	ReportStats  Op = "reports.stats"

	Packages             Op = "subscriptions.packages"
	CurrentSubscription  Op = "subscriptions.current"
	Subscribe            Op = "subscriptions.subscribe"
	CancelSubscription   Op = "subscriptions.cancel"
	AdBenefits           Op = "subscriptions.adBenefits"
	PremiumSubscriptions Op = "subscriptions.admin.list"
	PremiumStatus        Op = "subscriptions.admin.status"

	Notifications       Op = "notifications.list"
	NotificationsUnread Op = "notifications.unread"
	NotificationRead    Op = "notifications.read"
	NotificationsRead   Op = "notifications.readAll"
	Notification        Op = "notifications.get"

	WatchLater      Op = "watchLater.list"
	WatchLaterItem  Op = "watchLater.item"
	WatchLaterCheck Op = "watchLater.check"

	Dashboard Op = "admin.dashboard"
	Ping      Op = "health.ping"
)

var templates = map[Op]string{
	Movies:      "/movies",
	Movie:       "/movies/{id}",
	MovieRating: "/ratings/movie/{id}/user",
	MovieRate:   "/ratings/movie/{id}",
	MovieStats:  "/ratings/movie/{id}/stats",

	Users:          "/admin/users",
	User:           "/admin/users/{id}",
	UserStatus:     "/admin/users/{id}/status",
	UserLock:       "/admin/users/{id}/lock",
	UserUnlock:     "/admin/users/{id}/unlock",
	UserMe:         "/users/me",
	UserStatistics: "/users/{id}/statistics",
	UserRole:       "/admin/users/{id}/role",

	Roles: "/admin/roles",
	Role:  "/admin/roles/{id}",

	Reports:      "/admin/reports",
	Report:       "/admin/reports/{id}",
	ReportStatus: "/admin/reports/{id}/status",
	ReportStats:  "/admin/reports/stats",

	Packages:             "/subscriptions/packages",
	CurrentSubscription:  "/subscriptions/current",
	Subscribe:            "/subscriptions/subscribe",
	CancelSubscription:   "/subscriptions/cancel",
	AdBenefits:           "/subscriptions/ad-benefits",
	PremiumSubscriptions: "/admin/subscriptions",
	PremiumStatus:        "/admin/subscriptions/{id}/status",

	Notifications:       "/notifications",
	NotificationsUnread: "/notifications/unread-count",
	NotificationRead:    "/notifications/{id}/read",
	NotificationsRead:   "/notifications/read-all",
	Notification:        "/notifications/{id}",

	WatchLater:      "/watch-later",
	WatchLaterItem:  "/watch-later/{id}",
	WatchLaterCheck: "/watch-later/check/{id}",

	Dashboard: "/admin/dashboard",
	Ping:      "/health",
}

// Registry строит адреса операций относительно базового URL.
type Registry struct {
	base string
}

// New создаёт реестр для базового URL, завершающий слэш отбрасывается.
func New(baseURL string) *Registry {
	return &Registry{base: strings.TrimRight(baseURL, "/")}
}

// Base возвращает базовый URL.
func (r *Registry) Base() string {
	return r.base
}

// Path возвращает путь операции с подставленными параметрами без базового URL.
// Параметры подставляются по порядку и экранируются.
func (r *Registry) Path(op Op, params ...string) (string, error) {
	const fn = "endpoints.Path"
	tpl, ok := templates[op]
	if !ok {
		return "", fmt.Errorf("%s: %w: %s", fn, ErrUnknownOperation, op)
	}

	var b strings.Builder
	rest := tpl
	i := 0
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return "", fmt.Errorf("%s: malformed template %q", fn, tpl)
		}
		if i >= len(params) {
			return "", fmt.Errorf("%s: %s expects more than %d params", fn, op, len(params))
		}
		b.WriteString(rest[:start])
		b.WriteString(url.PathEscape(params[i]))
		i++
		rest = rest[start+end+1:]
	}
	if i != len(params) {
		return "", fmt.Errorf("%s: %s expects %d params, got %d", fn, op, i, len(params))
	}
	return b.String(), nil
}

// URL возвращает полный адрес операции.
func (r *Registry) URL(op Op, params ...string) (string, error) {
	p, err := r.Path(op, params...)
	if err != nil {
		return "", err
	}
	return r.base + p, nil
}

// MustPath как Path, но паникует при ошибке. Используется для операций
// с постоянным набором параметров, известным при компиляции.
func (r *Registry) MustPath(op Op, params ...string) string {
	p, err := r.Path(op, params...)
	if err != nil {
		panic(err)
	}
	return p
}
