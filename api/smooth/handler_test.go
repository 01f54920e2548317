package smooth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/core/personnel"
	"github.com/kilianp07/lineplan/core/smoothing"
	"github.com/kilianp07/lineplan/pkg/planio"
)

type fakeSmoother struct {
	rows   []model.Row
	budget int
	err    error
}

func (f *fakeSmoother) Smooth(_ context.Context, rows []model.Row, budget int) (planio.Report, error) {
	f.rows, f.budget = rows, budget
	if f.err != nil {
		return planio.Report{}, f.err
	}
	return planio.Report{RunID: "r1", Week: "2025-W10", Parameters: planio.Parameters{MaxTransfers: budget}}, nil
}

func post(h http.Handler, body string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/smooth", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSmoothHandler(t *testing.T) {
	svc := &fakeSmoother{}
	h := NewHandler(svc, personnel.NewResolver([]string{"handarbeit"}, nil), 5, "tok")

	body := `{"rows":[
		{"date":"2025-03-03","line":"a","hours":8,"product":"Handarbeit"},
		{"date":"2025-03-03","line":"b","hours":8,"product":"Handarbeit","personnel_intensive":false}
	]}`
	rr := post(h, body, "tok")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 5, svc.budget)
	require.Len(t, svc.rows, 2)
	assert.True(t, svc.rows[0].PersonnelIntensive)
	assert.False(t, svc.rows[1].PersonnelIntensive)

	var rep planio.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	assert.Equal(t, "r1", rep.RunID)

	rr = post(h, `{"max_transfers":0,"rows":[]}`, "tok")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, svc.budget)
}

func TestSmoothHandlerErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"bad json", `{"rows":`, nil, http.StatusBadRequest},
		{"unknown field", `{"budget":3}`, nil, http.StatusBadRequest},
		{"bad date", `{"rows":[{"date":"3/3/25","line":"a","hours":1}]}`, nil, http.StatusBadRequest},
		{"invalid grid", `{"rows":[]}`, fmt.Errorf("wrap: %w", model.ErrInvalidGrid), http.StatusBadRequest},
		{"invalid budget", `{"rows":[]}`, smoothing.ErrInvalidBudget, http.StatusBadRequest},
		{"internal", `{"rows":[]}`, fmt.Errorf("disk full"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := NewHandler(&fakeSmoother{err: c.err}, nil, 5, "")
			assert.Equal(t, c.want, post(h, c.body, "").Code)
		})
	}

	h := NewHandler(&fakeSmoother{}, nil, 5, "tok")
	assert.Equal(t, http.StatusUnauthorized, post(h, `{"rows":[]}`, "").Code)
	req := httptest.NewRequest(http.MethodGet, "/api/smooth", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
