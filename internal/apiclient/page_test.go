package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID string `json:"id"`
}

func TestDecodePage(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantIDs   []string
		wantTotal int
		wantPages int
	}{
		{
			name:      "keyed items inside data",
			raw:       `{"success":true,"data":{"reports":[{"id":"a"},{"id":"b"}],"pagination":{"page":2,"limit":2,"total":10,"totalPages":5}}}`,
			wantIDs:   []string{"a", "b"},
			wantTotal: 10,
			wantPages: 5,
		},
		{
			name:      "array data with sibling pagination",
			raw:       `{"success":true,"data":[{"id":"a"}],"pagination":{"page":1,"limit":10,"total":1}}`,
			wantIDs:   []string{"a"},
			wantTotal: 1,
			wantPages: 1,
		},
		{
			name:      "items without envelope",
			raw:       `{"items":[{"id":"x"}]}`,
			wantIDs:   []string{"x"},
			wantTotal: 1,
			wantPages: 1,
		},
		{
			name:      "bare array",
			raw:       `[{"id":"1"},{"id":"2"},{"id":"3"}]`,
			wantIDs:   []string{"1", "2", "3"},
			wantTotal: 3,
			wantPages: 1,
		},
		{
			name:      "empty data",
			raw:       `{"success":true,"data":{"reports":[]}}`,
			wantIDs:   []string{},
			wantTotal: 0,
			wantPages: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := DecodePage[row]([]byte(tt.raw), "reports")
			require.NoError(t, err)

			ids := make([]string, 0, len(page.Items))
			for _, r := range page.Items {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTotal, page.Pagination.Total)
			assert.Equal(t, tt.wantPages, page.Pagination.TotalPages)
		})
	}
}

func TestDecodePage_Failure(t *testing.T) {
	_, err := DecodePage[row]([]byte(`{"success":false,"message":"boom"}`), "reports")
	assert.Equal(t, KindServer, KindOf(err))

	_, err = DecodePage[row]([]byte(`not json`), "reports")
	assert.Equal(t, KindDecode, KindOf(err))
}
