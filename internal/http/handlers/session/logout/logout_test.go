package logout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubSession struct {
	err     error
	cleared bool
}

func (s *stubSession) Clear(context.Context) error {
	s.cleared = true
	return s.err
}

func TestLogoutHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("выход", func(t *testing.T) {
		s := &stubSession{}
		rr := httptest.NewRecorder()
		New(logger, s).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/session", nil))

		assert.True(t, s.cleared)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"OK","data":{"authenticated":false}}`, rr.Body.String())
	})

	t.Run("ошибка хранилища", func(t *testing.T) {
		s := &stubSession{err: errors.New("redis down")}
		rr := httptest.NewRecorder()
		New(logger, s).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/session", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
