package kpi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/lineplan/core/model"
	kpistore "github.com/kilianp07/lineplan/infra/kpi"
)

type memStore struct {
	loads      []kpistore.DailyLoad
	start, end time.Time
}

func (m *memStore) Upsert(l []kpistore.DailyLoad) error {
	m.loads = append(m.loads, l...)
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) Query(start, end time.Time) ([]kpistore.DailyLoad, error) {
	m.start, m.end = start, end
	return m.loads, nil
}

func TestKPIHandler(t *testing.T) {
	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	store := &memStore{}
	require.NoError(t, store.Upsert([]kpistore.DailyLoad{{
		Date: monday, Weekday: model.Monday, RunID: "r1", Week: "2025-W10",
		TotalBefore: 108, TotalAfter: 102, ViolationBefore: true,
	}}))
	h := NewHandler(store, "")

	req := httptest.NewRequest(http.MethodGet, "/api/kpi/daily?start=2025-03-03", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, monday, store.start)
	assert.True(t, store.end.IsZero())

	var out []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "2025-03-03", out[0]["date"])
	assert.Equal(t, -6.0, out[0]["change"])

	req = httptest.NewRequest(http.MethodGet, "/api/kpi/daily?end=03.03.2025", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
