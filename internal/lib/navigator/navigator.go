// Package navigator моделирует полную переадресацию клиента на служебный маршрут.
//
// Веб-клиент при ошибках авторизации и потере сети делает полный переход
// на фиксированную страницу. Здесь переход фиксируется как текущее
// местоположение сессии консоли и рассылается подписчикам.
package navigator

import (
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
)

// Маршруты, на которые консоль переводит клиента как побочный эффект.
const (
	RouteLogin         = "/auth/login"
	RouteAccountLocked = "/account-locked"
	RouteOffline       = "/offline"
	RouteNoAccess      = "/noaccess"
)

// historyLimit число последних переадресаций, которые хранит Recorder.
const historyLimit = 64

// Navigator выполняет переход на маршрут и сообщает текущее местоположение.
type Navigator interface {
	Redirect(route string)
	Navigate(route string)
	Location() string
}

// Recorder потокобезопасная реализация Navigator, хранящая текущий маршрут.
type Recorder struct {
	mu       sync.RWMutex
	location string
	history  []string
	subs     []chan string
	log      *slog.Logger
}

// NewRecorder создаёт Recorder с начальным маршрутом start.
func NewRecorder(start string, log *slog.Logger) *Recorder {
	return &Recorder{location: start, log: log}
}

// Redirect переводит клиента на route.
func (r *Recorder) Redirect(route string) {
	r.mu.Lock()
	r.location = route
	r.history = append(r.history, route)
	if len(r.history) > historyLimit {
		r.history = append(r.history[:0], r.history[len(r.history)-historyLimit:]...)
	}
	subs := append([]chan string(nil), r.subs...)
	r.mu.Unlock()

	if r.log != nil {
		r.log.Info("redirect", sl.Route(route))
	}
	for _, ch := range subs {
		select {
		case ch <- route:
		default:
		}
	}
}

// Navigate меняет текущий маршрут без записи в историю переадресаций,
// аналог обычного перехода пользователя по страницам.
func (r *Recorder) Navigate(route string) {
	r.mu.Lock()
	r.location = route
	r.mu.Unlock()
}

// Location возвращает текущий маршрут.
func (r *Recorder) Location() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.location
}

// History возвращает копию последних переадресаций в порядке их выполнения.
func (r *Recorder) History() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.history...)
}

// Subscribe возвращает канал, в который приходят маршруты переадресаций,
// и функцию отписки. Медленный подписчик пропускает события.
func (r *Recorder) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 8)
	r.mu.Lock()
	r.subs = append(r.subs, ch)
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, c := range r.subs {
				if c == ch {
					r.subs = append(r.subs[:i], r.subs[i+1:]...)
					break
				}
			}
		})
	}
}
