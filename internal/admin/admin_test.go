package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

func TestQuery_Values(t *testing.T) {
	q := Query{
		Page:      2,
		Limit:     25,
		SortBy:    "createdAt",
		SortOrder: SortAsc,
		Filters:   map[string]string{"status": "pending", "search": ""},
	}

	v := q.Values()
	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "25", v.Get("limit"))
	assert.Equal(t, "createdAt", v.Get("sortBy"))
	assert.Equal(t, "asc", v.Get("sortOrder"))
	assert.Equal(t, "pending", v.Get("status"))
	_, hasSearch := v["search"]
	assert.False(t, hasSearch)
}

func TestQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		q       Query
		wantErr bool
	}{
		{name: "default", q: NewQuery("createdAt")},
		{name: "page zero", q: Query{Page: 0, Limit: 10}, wantErr: true},
		{name: "limit too big", q: Query{Page: 1, Limit: 101}, wantErr: true},
		{name: "limit max", q: Query{Page: 1, Limit: 100}},
		{name: "bad order", q: Query{Page: 1, Limit: 10, SortOrder: "up"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery(url.Values{"page": {"3"}, "sortOrder": {"asc"}, "status": {"resolved"}}, NewQuery("createdAt"))
	require.NoError(t, err)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Equal(t, "createdAt", q.SortBy)
	assert.Equal(t, SortAsc, q.SortOrder)
	assert.Equal(t, map[string]string{"status": "resolved"}, q.Filters)

	_, err = ParseQuery(url.Values{"limit": {"abc"}}, NewQuery(""))
	assert.Error(t, err)
	_, err = ParseQuery(url.Values{"limit": {"500"}}, NewQuery(""))
	assert.Error(t, err)
}

func reportsFetch(calls *[]url.Values, mu *sync.Mutex, page models.Page[models.Report], err error) FetchFunc[models.Report] {
	return func(_ context.Context, q url.Values) (models.Page[models.Report], error) {
		mu.Lock()
		*calls = append(*calls, q)
		mu.Unlock()
		return page, err
	}
}

func TestTable_RefreshReplacesRows(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []url.Values
	)
	page := models.Page[models.Report]{
		Items:      []models.Report{{ID: "1", Status: "pending"}, {ID: "2", Status: "pending"}},
		Pagination: models.Pagination{Page: 1, Limit: 10, Total: 12, TotalPages: 2},
	}
	tbl := NewTable(reportsFetch(&calls, &mu, page, nil), ReportID, NewQuery("createdAt"))

	require.NoError(t, tbl.Refresh(context.Background()))
	assert.Equal(t, page.Items, tbl.Rows())
	assert.Equal(t, page.Pagination, tbl.Page().Pagination)
	require.Len(t, calls, 1)
	assert.Equal(t, "1", calls[0].Get("page"))
}

func TestTable_RefreshErrorKeepsRows(t *testing.T) {
	tbl := NewTable(func(context.Context, url.Values) (models.Page[models.Report], error) {
		return models.Page[models.Report]{Items: []models.Report{{ID: "1"}}}, nil
	}, ReportID, NewQuery(""))
	require.NoError(t, tbl.Refresh(context.Background()))

	tbl.fetch = func(context.Context, url.Values) (models.Page[models.Report], error) {
		return models.Page[models.Report]{}, errors.New("boom")
	}
	assert.Error(t, tbl.Refresh(context.Background()))
	assert.Len(t, tbl.Rows(), 1)
}

func TestTable_QueryMutations(t *testing.T) {
	tbl := NewTable[models.Report](nil, ReportID, NewQuery("createdAt"))

	require.NoError(t, tbl.SetPage(4))
	assert.Equal(t, 4, tbl.Query().Page)

	require.NoError(t, tbl.SetFilter("status", "pending"))
	assert.Equal(t, 1, tbl.Query().Page)
	assert.Equal(t, "pending", tbl.Query().Filters["status"])

	require.NoError(t, tbl.SetFilter("status", ""))
	assert.NotContains(t, tbl.Query().Filters, "status")

	require.NoError(t, tbl.SetSort("reason"))
	assert.Equal(t, "reason", tbl.Query().SortBy)
	assert.Equal(t, SortAsc, tbl.Query().SortOrder)
	require.NoError(t, tbl.SetSort("reason"))
	assert.Equal(t, SortDesc, tbl.Query().SortOrder)

	assert.Error(t, tbl.SetPage(0))
	assert.Equal(t, 1, tbl.Query().Page)
	assert.Error(t, tbl.SetLimit(1000))
}

func TestTable_LatestRefreshWins(t *testing.T) {
	slow := make(chan struct{})
	var n int
	var mu sync.Mutex
	tbl := NewTable(func(_ context.Context, _ url.Values) (models.Page[models.Report], error) {
		mu.Lock()
		n++
		call := n
		mu.Unlock()
		if call == 1 {
			<-slow
			return models.Page[models.Report]{Items: []models.Report{{ID: "stale"}}}, nil
		}
		return models.Page[models.Report]{Items: []models.Report{{ID: "fresh"}}}, nil
	}, ReportID, NewQuery(""))

	done := make(chan error)
	go func() { done <- tbl.Refresh(context.Background()) }()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return n == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, tbl.Refresh(context.Background()))
	close(slow)
	require.NoError(t, <-done)

	assert.Equal(t, []models.Report{{ID: "fresh"}}, tbl.Rows())
}

func TestTable_ReplaceRow(t *testing.T) {
	tbl := NewTable(func(context.Context, url.Values) (models.Page[models.User], error) {
		return models.Page[models.User]{Items: []models.User{{ID: "u1", Fullname: "Old"}, {ID: "u2"}}}, nil
	}, UserID, NewQuery(""))
	require.NoError(t, tbl.Refresh(context.Background()))

	assert.True(t, tbl.Replace(models.User{ID: "u1", Fullname: "New"}))
	assert.False(t, tbl.Replace(models.User{ID: "u9"}))
	assert.Equal(t, "New", tbl.Rows()[0].Fullname)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "N/A", Display(""))
	assert.Equal(t, "Ann", Display("Ann"))
	assert.Equal(t, "N/A", DisplayTime(nil, time.DateOnly))
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-01", DisplayTime(&ts, time.DateOnly))
}

func TestSubscriptionView(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	row := SubscriptionView(models.PremiumSubscription{
		ID:          "s1",
		UserEmail:   "ann@example.com",
		PackageName: "Premium",
		Status:      "active",
		Amount:      9.99,
		StartDate:   &start,
	})

	assert.Equal(t, SubscriptionRow{
		ID:          "s1",
		UserEmail:   "ann@example.com",
		PackageName: "Premium",
		PackageType: "N/A",
		Status:      "active",
		Amount:      9.99,
		StartDate:   "2026-01-15",
		EndDate:     "N/A",
	}, row)
}

type mockReports struct {
	mock.Mock
}

func (m *mockReports) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) SetActive(ctx context.Context, id string, active bool) (models.User, error) {
	args := m.Called(ctx, id, active)
	return args.Get(0).(models.User), args.Error(1)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingReports(t *testing.T, ids ...string) *Table[models.Report] {
	t.Helper()
	rows := make([]models.Report, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.Report{ID: id, Status: models.ReportPending})
	}
	tbl := NewTable(func(context.Context, url.Values) (models.Page[models.Report], error) {
		return models.Page[models.Report]{Items: rows}, nil
	}, ReportID, NewQuery(""))
	require.NoError(t, tbl.Refresh(context.Background()))
	return tbl
}

func TestBulk_UpdateReportStatus_AllSucceed(t *testing.T) {
	svc := &mockReports{}
	svc.On("UpdateStatus", mock.Anything, mock.AnythingOfType("string"), models.ReportResolved).Return(nil)
	tbl := pendingReports(t, "1", "2", "3", "4")

	err := NewBulk(discard()).UpdateReportStatus(context.Background(), svc, tbl,
		BulkReportStatus{IDs: []string{"1", "2", "3"}, Status: models.ReportResolved})
	require.NoError(t, err)

	svc.AssertNumberOfCalls(t, "UpdateStatus", 3)
	rows := tbl.Rows()
	assert.Equal(t, models.ReportResolved, rows[0].Status)
	assert.Equal(t, models.ReportResolved, rows[1].Status)
	assert.Equal(t, models.ReportResolved, rows[2].Status)
	assert.Equal(t, models.ReportPending, rows[3].Status)
}

func TestBulk_UpdateReportStatus_PartialFailureLeavesState(t *testing.T) {
	svc := &mockReports{}
	svc.On("UpdateStatus", mock.Anything, "2", models.ReportRejected).Return(errors.New("server down"))
	svc.On("UpdateStatus", mock.Anything, mock.AnythingOfType("string"), models.ReportRejected).Return(nil)
	tbl := pendingReports(t, "1", "2", "3")

	err := NewBulk(discard()).UpdateReportStatus(context.Background(), svc, tbl,
		BulkReportStatus{IDs: []string{"1", "2", "3"}, Status: models.ReportRejected})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server down")

	svc.AssertNumberOfCalls(t, "UpdateStatus", 3)
	for _, r := range tbl.Rows() {
		assert.Equal(t, models.ReportPending, r.Status)
	}
}

func TestBulk_UpdateReportStatus_Validation(t *testing.T) {
	svc := &mockReports{}
	b := NewBulk(discard())

	assert.Error(t, b.UpdateReportStatus(context.Background(), svc, nil, BulkReportStatus{Status: models.ReportResolved}))
	assert.Error(t, b.UpdateReportStatus(context.Background(), svc, nil, BulkReportStatus{IDs: []string{"1"}, Status: "archived"}))
	svc.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestBulk_SetUsersActive(t *testing.T) {
	svc := &mockUsers{}
	svc.On("SetActive", mock.Anything, mock.AnythingOfType("string"), false).Return(models.User{}, nil)
	tbl := NewTable(func(context.Context, url.Values) (models.Page[models.User], error) {
		return models.Page[models.User]{Items: []models.User{{ID: "a", IsActive: true}, {ID: "b", IsActive: true}}}, nil
	}, UserID, NewQuery(""))
	require.NoError(t, tbl.Refresh(context.Background()))

	err := NewBulk(discard()).SetUsersActive(context.Background(), svc, tbl, []string{"a", "b", "a"}, false)
	require.NoError(t, err)

	svc.AssertNumberOfCalls(t, "SetActive", 2)
	for _, u := range tbl.Rows() {
		assert.False(t, u.IsActive)
	}
}
