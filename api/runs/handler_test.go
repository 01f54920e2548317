package runs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/core/runlog"
)

type memStore struct{ recs []runlog.RunRecord }

func (m *memStore) Append(ctx context.Context, r runlog.RunRecord) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(ctx context.Context, q runlog.LogQuery) ([]runlog.RunRecord, error) {
	var res []runlog.RunRecord
	for _, r := range m.recs {
		if q.Matches(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestHandler_AuthAndFilters(t *testing.T) {
	store := &memStore{}
	now := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	for i, line := range []string{"lineA", "lineB"} {
		rec := runlog.RunRecord{
			ID:        line,
			Timestamp: now.Add(time.Duration(i) * time.Hour),
			Week:      "2025-W10",
			Transfers: []model.AppliedTransfer{{TransferCandidate: model.TransferCandidate{Line: line}}},
		}
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	h := NewHandler(store, "tok")

	get := func(url string, auth bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		if auth {
			req.Header.Set("Authorization", "Bearer tok")
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	rr := get("/api/runs?line=lineA&week=2025-W10", true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []runlog.RunRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].ID != "lineA" {
		t.Fatalf("unexpected records %+v", out)
	}

	rr = get("/api/runs?start=2025-03-07T12:30:00Z", true)
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].ID != "lineB" {
		t.Fatalf("start filter: %+v", out)
	}

	rr = get("/api/runs?week=2024-W01", true)
	if rr.Body.String() != "[]\n" {
		t.Fatalf("expected empty array, got %q", rr.Body.String())
	}

	if rr = get("/api/runs?end=yesterday", true); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
	if rr = get("/api/runs", false); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}
