package status

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/moviestream-console/internal/netstatus"
)

type stubNotice netstatus.NoticeState

func (s stubNotice) State() netstatus.NoticeState { return netstatus.NoticeState(s) }

func TestStatusHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	h := New(logger, stubNotice{Online: false, RedirectPending: true, Location: "/movies"})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/network-status", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t,
		`{"status":"OK","data":{"online":false,"reconnected":false,"redirectPending":true,"location":"/movies"}}`,
		rr.Body.String())
}
