package netstatus

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/moviestream-console/internal/config"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/navigator"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMonitor_NativeEventsFlipImmediately(t *testing.T) {
	m := NewMonitor("http://127.0.0.1:1/health", config.NetStatus{}, discard())
	require.True(t, m.Online())

	m.NotifyNative(false)
	assert.False(t, m.Online())

	m.NotifyNative(true)
	assert.True(t, m.Online())

	m.NotifyWorker(false)
	assert.False(t, m.Online())
}

func TestMonitor_PollCacheBustsAndMapsStatus(t *testing.T) {
	var (
		status  atomic.Int32
		lastT   atomic.Value
		fixedMs = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	)
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastT.Store(r.URL.Query().Get("t"))
		w.WriteHeader(int(status.Load()))
	}))
	t.Cleanup(srv.Close)

	m := NewMonitor(srv.URL+"/api/health", config.NetStatus{}, discard())
	m.now = func() time.Time { return fixedMs }

	assert.True(t, m.Poll(context.Background()))
	assert.Equal(t, strconv.FormatInt(fixedMs.UnixMilli(), 10), lastT.Load())

	status.Store(http.StatusServiceUnavailable)
	assert.False(t, m.Poll(context.Background()))
	assert.False(t, m.Online())

	status.Store(http.StatusNoContent)
	assert.True(t, m.Poll(context.Background()))
}

func TestMonitor_PollTransportErrorIsOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	m := NewMonitor(url+"/health", config.NetStatus{PingTimeout: time.Second}, discard())
	assert.False(t, m.Poll(context.Background()))
	assert.False(t, m.Online())
}

func TestMonitor_NativeEventIndependentOfPoll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	m := NewMonitor(srv.URL, config.NetStatus{}, discard())
	require.True(t, m.Poll(context.Background()))

	m.NotifyNative(false)
	assert.False(t, m.Online())
}

func TestMonitor_SubscribeReceivesTransitionsOnly(t *testing.T) {
	m := NewMonitor("http://127.0.0.1:1", config.NetStatus{}, discard())
	ch, unsubscribe := m.Subscribe()
	defer unsubscribe()

	m.NotifyNative(true)
	m.NotifyNative(false)
	m.NotifyWorker(false)
	m.NotifyWorker(true)

	assert.False(t, <-ch)
	assert.True(t, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected transition %v", v)
	default:
	}
}

func noticeConfig() config.NetStatus {
	return config.NetStatus{ReconnectedTTL: 30 * time.Millisecond, OfflineRedirect: 40 * time.Millisecond}
}

func TestNotice_OfflineRedirectsAfterDelay(t *testing.T) {
	nav := navigator.NewRecorder("/movies", nil)
	n := NewNotice(nav, noticeConfig(), discard())
	t.Cleanup(n.Stop)

	n.Handle(false)
	assert.True(t, n.State().RedirectPending)
	assert.Equal(t, "/movies", nav.Location())

	require.Eventually(t, func() bool { return nav.Location() == navigator.RouteOffline }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{navigator.RouteOffline}, nav.History())
	assert.False(t, n.State().RedirectPending)
}

func TestNotice_ReconnectCancelsRedirect(t *testing.T) {
	nav := navigator.NewRecorder("/movies", nil)
	n := NewNotice(nav, noticeConfig(), discard())
	t.Cleanup(n.Stop)

	n.Handle(false)
	n.Handle(true)

	st := n.State()
	assert.True(t, st.Online)
	assert.True(t, st.Reconnected)
	assert.False(t, st.RedirectPending)

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, nav.History())
	assert.False(t, n.State().Reconnected)
}

func TestNotice_AlreadyOnOfflinePage(t *testing.T) {
	nav := navigator.NewRecorder(navigator.RouteOffline, nil)
	n := NewNotice(nav, noticeConfig(), discard())
	t.Cleanup(n.Stop)

	n.Handle(false)
	assert.False(t, n.State().RedirectPending)

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, nav.History())
}

func TestNotice_ReturnsAfterReconnectAndRedirectsAgain(t *testing.T) {
	nav := navigator.NewRecorder("/movies", nil)
	n := NewNotice(nav, noticeConfig(), discard())
	t.Cleanup(n.Stop)

	n.Handle(false)
	require.Eventually(t, func() bool { return nav.Location() == navigator.RouteOffline }, time.Second, 5*time.Millisecond)

	n.Handle(true)
	assert.Equal(t, "/movies", nav.Location())

	n.Handle(false)
	assert.True(t, n.State().RedirectPending)
	require.Eventually(t, func() bool { return nav.Location() == navigator.RouteOffline }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{navigator.RouteOffline, navigator.RouteOffline}, nav.History())
}

func TestNotice_RunFollowsMonitor(t *testing.T) {
	nav := navigator.NewRecorder("/", nil)
	m := NewMonitor("http://127.0.0.1:1", config.NetStatus{}, discard())
	n := NewNotice(nav, noticeConfig(), discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Run(ctx, m)
		close(done)
	}()

	m.NotifyNative(false)
	require.Eventually(t, func() bool { return nav.Location() == navigator.RouteOffline }, time.Second, 5*time.Millisecond)

	m.NotifyNative(true)
	require.Eventually(t, func() bool { return n.State().Reconnected }, time.Second, 2*time.Millisecond)

	cancel()
	<-done
}
