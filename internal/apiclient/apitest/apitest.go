// Package apitest содержит вспомогательные функции для тестов сервисов,
// работающих через apiclient: поднимает тестовый бэкенд и клиент к нему.
package apitest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/magabrotheeeer/moviestream-console/internal/apiclient"
	"github.com/magabrotheeeer/moviestream-console/internal/cache"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/navigator"
	"github.com/magabrotheeeer/moviestream-console/internal/session"
)

// Request запрос, полученный тестовым бэкендом.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// Backend тестовый бэкенд с записью полученных запросов.
type Backend struct {
	Client    *apiclient.Client
	Session   *session.Session
	Navigator *navigator.Recorder

	mu       sync.Mutex
	requests []Request
}

// New поднимает тестовый бэкенд с обработчиком handler.
func New(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	b := &Backend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests = append(b.requests, Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
		b.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	b.Session = session.New(cache.NewMemory(), Logger())
	b.Navigator = navigator.NewRecorder("/", nil)
	b.Client = apiclient.New(apiclient.Options{BaseURL: srv.URL + "/api"}, b.Session, b.Navigator, Logger())
	return b
}

// Requests возвращает копию полученных запросов.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Logger возвращает логгер, отбрасывающий записи.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// JSON пишет v как JSON-ответ со статусом status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK пишет ответ в стандартной обёртке { success: true, data }.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}
