package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/moviestream-console/internal/apiclient"
	"github.com/magabrotheeeer/moviestream-console/internal/cache"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/navigator"
	"github.com/magabrotheeeer/moviestream-console/internal/session"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type fixture struct {
	client *apiclient.Client
	store  *cache.Memory
	sess   *session.Session
	nav    *navigator.Recorder

	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()
	f := &fixture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, r.Clone(context.Background()))
		f.bodies = append(f.bodies, body)
		f.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	f.store = cache.NewMemory()
	f.sess = session.New(f.store, newNoopLogger())
	f.nav = navigator.NewRecorder("/admin", nil)
	f.client = apiclient.New(apiclient.Options{BaseURL: srv.URL + "/api/"}, f.sess, f.nav, newNoopLogger())
	return f
}

func (f *fixture) lastRequest(t *testing.T) *http.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_NoTokenNoAuthorizationHeader(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	_, err := f.client.Get(context.Background(), "/movies", nil)
	require.NoError(t, err)

	req := f.lastRequest(t)
	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
	assert.Equal(t, "/api/movies", req.URL.Path)
}

func TestClient_SentinelTokenIgnored(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	require.NoError(t, f.store.Set(context.Background(), "auth_token", "undefined"))
	require.NoError(t, f.store.Set(context.Background(), "token", "null"))

	_, err := f.client.Get(context.Background(), "/movies", nil)
	require.NoError(t, err)
	assert.Empty(t, f.lastRequest(t).Header.Get("Authorization"))
}

func TestClient_BearerFromLegacyKey(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	require.NoError(t, f.store.Set(context.Background(), "authToken", "legacy-token"))

	_, err := f.client.Get(context.Background(), "/movies", url.Values{"page": {"2"}})
	require.NoError(t, err)

	req := f.lastRequest(t)
	assert.Equal(t, "Bearer legacy-token", req.Header.Get("Authorization"))
	assert.Equal(t, "2", req.URL.Query().Get("page"))
}

func TestClient_PatchCarriesCORSHeaders(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	_, err := f.client.Patch(context.Background(), "/admin/reports/1/status", map[string]string{"status": "resolved"})
	require.NoError(t, err)

	req := f.lastRequest(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "*", req.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, req.Header.Get("Access-Control-Allow-Methods"), "PATCH")
	assert.JSONEq(t, `{"status":"resolved"}`, string(f.bodies[0]))
}

func TestClient_UnauthorizedClearsCredentialsAndRedirects(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "jwt expired"})
	})
	ctx := context.Background()
	for _, k := range []string{"auth_token", "token", "authToken"} {
		require.NoError(t, f.store.Set(ctx, k, "tok"))
	}

	_, err := f.client.Get(ctx, "/users/me", nil)

	require.Error(t, err)
	assert.True(t, apiclient.IsKind(err, apiclient.KindUnauthorized))
	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "jwt expired", apiErr.Message)

	for _, k := range []string{"auth_token", "token", "authToken"} {
		_, ok, _ := f.store.Get(ctx, k)
		assert.False(t, ok, k)
	}
	assert.Equal(t, navigator.RouteLogin, f.nav.Location())
}

func TestClient_AccountLocked(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "top-level flag", body: map[string]any{"isAccountLocked": true, "message": "locked"}},
		{name: "flag under data", body: map[string]any{"success": false, "data": map[string]any{"isAccountLocked": true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusForbidden, tt.body)
			})
			ctx := context.Background()

			_, err := f.client.Get(ctx, "/movies", nil)

			assert.True(t, apiclient.IsKind(err, apiclient.KindAccountLocked))
			val, _, _ := f.store.Get(ctx, "isAccountLocked")
			assert.Equal(t, "true", val)
			assert.Equal(t, navigator.RouteAccountLocked, f.nav.Location())
		})
	}
}

func TestClient_ForbiddenWithoutLockDoesNotRedirect(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "admins only"})
	})

	_, err := f.client.Get(context.Background(), "/admin/users", nil)

	assert.True(t, apiclient.IsKind(err, apiclient.KindForbidden))
	assert.Equal(t, "/admin", f.nav.Location())
	assert.Empty(t, f.nav.History())
}

func TestClient_StatusKinds(t *testing.T) {
	tests := []struct {
		status int
		want   apiclient.Kind
	}{
		{http.StatusNotFound, apiclient.KindNotFound},
		{http.StatusBadRequest, apiclient.KindValidation},
		{http.StatusUnprocessableEntity, apiclient.KindValidation},
		{http.StatusInternalServerError, apiclient.KindServer},
		{http.StatusBadGateway, apiclient.KindServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := f.client.Get(context.Background(), "/x", nil)
			assert.Equal(t, tt.want, apiclient.KindOf(err))
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	sess := session.New(cache.NewMemory(), newNoopLogger())
	client := apiclient.New(apiclient.Options{BaseURL: "http://127.0.0.1:1/api", Timeout: time.Second}, sess, nil, newNoopLogger())

	_, err := client.Get(context.Background(), "/movies", nil)
	assert.Equal(t, apiclient.KindNetwork, apiclient.KindOf(err))
}

func TestClient_CanceledContext(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.client.Get(ctx, "/movies", nil)
	assert.Equal(t, apiclient.KindCanceled, apiclient.KindOf(err))
}

func TestClient_RateLimiterDelaysRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sess := session.New(cache.NewMemory(), newNoopLogger())
	client := apiclient.New(apiclient.Options{BaseURL: srv.URL, RequestsPerSecond: 20, Burst: 1}, sess, nil, newNoopLogger())

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.Get(context.Background(), "/", nil)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestCall_UnwrapsEnvelope(t *testing.T) {
	type movie struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}

	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/wrapped":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": "1", "title": "Heat"}})
		case "/api/plain":
			writeJSON(w, http.StatusOK, map[string]any{"id": "2", "title": "Alien"})
		case "/api/failed":
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "not allowed"})
		}
	})
	ctx := context.Background()

	got, err := apiclient.Call[movie](ctx, f.client, http.MethodGet, "/wrapped", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, movie{ID: "1", Title: "Heat"}, got)

	got, err = apiclient.Call[movie](ctx, f.client, http.MethodGet, "/plain", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, movie{ID: "2", Title: "Alien"}, got)

	_, err = apiclient.Call[movie](ctx, f.client, http.MethodGet, "/failed", nil, nil)
	assert.Equal(t, apiclient.KindServer, apiclient.KindOf(err))
	assert.Contains(t, err.Error(), "not allowed")
}
