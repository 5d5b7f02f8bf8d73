package movies

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/moviestream-console/internal/apiclient"
	"github.com/magabrotheeeer/moviestream-console/internal/apiclient/apitest"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

func newService(t *testing.T, handler http.HandlerFunc) (*Service, *apitest.Backend) {
	b := apitest.New(t, handler)
	return New(b.Client, b.Client.Endpoints(), apitest.Logger()), b
}

func TestList(t *testing.T) {
	svc, b := newService(t, func(w http.ResponseWriter, _ *http.Request) {
		apitest.OK(w, map[string]any{
			"movies":     []map[string]any{{"id": "m1", "title": "Heat"}},
			"pagination": map[string]any{"page": 1, "limit": 20, "total": 1, "totalPages": 1},
		})
	})

	page, err := svc.List(context.Background(), url.Values{"sortBy": {"title"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Heat", page.Items[0].Title)
	assert.Equal(t, "sortBy=title", b.Requests()[0].Query)
}

func TestCreate(t *testing.T) {
	svc, b := newService(t, func(w http.ResponseWriter, _ *http.Request) {
		apitest.JSON(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"id": "m2", "title": "Alien"}})
	})

	m, err := svc.Create(context.Background(), models.Movie{Title: "Alien"})
	require.NoError(t, err)
	assert.Equal(t, "m2", m.ID)
	assert.Equal(t, http.MethodPost, b.Requests()[0].Method)
}

func TestCreate_RequiresTitle(t *testing.T) {
	svc, b := newService(t, func(w http.ResponseWriter, _ *http.Request) {
		apitest.OK(w, nil)
	})

	_, err := svc.Create(context.Background(), models.Movie{})
	assert.True(t, apiclient.IsKind(err, apiclient.KindValidation))
	assert.Empty(t, b.Requests())
}

func TestUpdateDelete(t *testing.T) {
	svc, b := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			apitest.OK(w, nil)
			return
		}
		apitest.OK(w, map[string]any{"id": "m3", "title": "Ran", "isPremium": true})
	})

	m, err := svc.Update(context.Background(), "m3", models.Movie{Title: "Ran", IsPremium: true})
	require.NoError(t, err)
	assert.True(t, m.IsPremium)
	require.NoError(t, svc.Delete(context.Background(), "m3"))

	reqs := b.Requests()
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/api/movies/m3", reqs[1].Path)
}
