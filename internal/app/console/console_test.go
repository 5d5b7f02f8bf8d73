package console

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/moviestream-console/internal/apiclient/apitest"
	"github.com/magabrotheeeer/moviestream-console/internal/config"
)

type backend struct {
	mu      sync.Mutex
	auth    []string
	patched []string
	queries []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	b.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/admin/reports":
		apitest.OK(w, map[string]any{
			"reports": []map[string]any{
				{"id": "r1", "status": "pending"},
				{"id": "r2", "status": "pending"},
			},
			"pagination": map[string]any{"page": 1, "limit": 10, "total": 2, "totalPages": 1},
		})
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/api/admin/reports/"):
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.patched = append(b.patched, r.URL.Path+" "+string(body))
		b.mu.Unlock()
		apitest.OK(w, map[string]any{})
	case r.Method == http.MethodGet && r.URL.Path == "/api/movies":
		b.mu.Lock()
		b.queries = append(b.queries, r.URL.RawQuery)
		b.mu.Unlock()
		apitest.OK(w, map[string]any{
			"movies":     []map[string]any{{"id": "m1", "title": "Matrix"}},
			"pagination": map[string]any{"page": 1, "limit": 10, "total": 1, "totalPages": 1},
		})
	case r.Method == http.MethodGet && r.URL.Path == "/api/admin/subscriptions":
		apitest.OK(w, map[string]any{
			"subscriptions": []map[string]any{{"id": "s1", "userId": "u1", "status": "active"}},
			"pagination":    map[string]any{"page": 1, "limit": 10, "total": 1, "totalPages": 1},
		})
	case r.Method == http.MethodGet && r.URL.Path == "/api/admin/roles":
		apitest.OK(w, map[string]any{"roles": []map[string]any{{"id": "1", "name": "admin", "permissions": []string{"users"}}}})
	case r.Method == http.MethodGet && r.URL.Path == "/api/users/admin/statistics":
		http.NotFound(w, r)
	case r.URL.Path == "/api/health":
		w.WriteHeader(http.StatusOK)
	default:
		http.NotFound(w, r)
	}
}

func newTestApp(t *testing.T, be http.Handler) *App {
	t.Helper()
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Env: "local",
		API: config.API{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second},
		AdBenefits: config.AdBenefits{
			RefreshInterval:  time.Minute,
			MaxRetries:       3,
			AuthRetryDelay:   time.Millisecond,
			NetworkRetryBase: time.Millisecond,
			PremiumPackageID: "premium_no_ads",
			AdFreeRoute:      "/premium",
		},
		NetStatus: config.NetStatus{
			PollInterval:    time.Minute,
			ReconnectedTTL:  time.Second,
			OfflineRedirect: time.Second,
			PingTimeout:     time.Second,
		},
		Push:       config.Push{Enabled: false},
		HTTPServer: config.HTTPServer{AddressHTTP: ":0"},
	}

	app, err := New(context.Background(), cfg, apitest.Logger())
	require.NoError(t, err)
	return app
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, r))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr.Code, out
}

func TestApp_AdminFlow(t *testing.T) {
	be := &backend{}
	app := newTestApp(t, be)
	h := app.server.Handler

	code, _ := do(t, h, http.MethodPost, "/api/v1/session", `{"token":"tok-1","user":{"id":"admin"}}`)
	require.Equal(t, http.StatusOK, code)

	code, body := do(t, h, http.MethodGet, "/api/v1/admin/reports?status=pending", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Len(t, data["reports"], 2)

	code, body = do(t, h, http.MethodPost, "/api/v1/admin/reports/status", `{"ids":["r1","r2","r1"],"status":"resolved"}`)
	require.Equal(t, http.StatusOK, code)
	for _, row := range body["data"].(map[string]any)["reports"].([]any) {
		assert.Equal(t, "resolved", row.(map[string]any)["status"])
	}

	be.mu.Lock()
	defer be.mu.Unlock()
	assert.Len(t, be.patched, 2)
	assert.Contains(t, be.auth, "Bearer tok-1")
}

func TestApp_NetworkStatus(t *testing.T) {
	app := newTestApp(t, &backend{})
	h := app.server.Handler

	code, body := do(t, h, http.MethodPost, "/api/v1/network-status", `{"online":false,"source":"native"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["data"].(map[string]any)["online"])
	assert.False(t, app.monitor.Online())

	code, body = do(t, h, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["data"].(map[string]any)["backend"])
}

func TestApp_AdBenefitsAnonymous(t *testing.T) {
	app := newTestApp(t, &backend{})

	code, body := do(t, app.server.Handler, http.MethodGet, "/api/v1/ad-benefits?route=/movies", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["authenticated"])
	assert.Equal(t, false, data["benefits"].(map[string]any)["hideVideoAds"])
}

func TestApp_AdminPages(t *testing.T) {
	be := &backend{}
	app := newTestApp(t, be)
	h := app.server.Handler

	code, _ := do(t, h, http.MethodPost, "/api/v1/session", `{"token":"tok-1","user":{"id":"admin"}}`)
	require.Equal(t, http.StatusOK, code)

	code, body := do(t, h, http.MethodGet, "/api/v1/admin/movies?toggleSort=title", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"].(map[string]any)["movies"], 1)

	code, body = do(t, h, http.MethodGet, "/api/v1/admin/subscriptions", "")
	require.Equal(t, http.StatusOK, code)
	row := body["data"].(map[string]any)["subscriptions"].([]any)[0].(map[string]any)
	assert.Equal(t, "N/A", row["userEmail"])
	assert.Equal(t, "N/A", row["endDate"])

	code, body = do(t, h, http.MethodGet, "/api/v1/admin/roles", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"].(map[string]any)["roles"], 1)

	// новый пользователь без статистики получает нули
	code, body = do(t, h, http.MethodGet, "/api/v1/me/stats", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["data"].(map[string]any)["stats"].(map[string]any)["moviesWatched"])

	be.mu.Lock()
	defer be.mu.Unlock()
	require.Len(t, be.queries, 1)
	assert.Contains(t, be.queries[0], "sortBy=title")
	assert.Contains(t, be.queries[0], "sortOrder=asc")
}

func TestApp_LoginRejectsSentinelToken(t *testing.T) {
	app := newTestApp(t, &backend{})
	h := app.server.Handler

	code, body := do(t, h, http.MethodPost, "/api/v1/session", `{"token":"null","user":{"id":"u1"}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid token", body["error"])

	_, err := app.session.User(context.Background())
	assert.Error(t, err)
}
