package kpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/core/smoothing"
)

var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func grid(t *testing.T, a []float64) *model.Grid {
	t.Helper()
	var rows []model.Row
	for i, h := range a {
		d := monday.AddDate(0, 0, i)
		rows = append(rows, model.Row{Date: d, Line: "a", Hours: h}, model.Row{Date: d, Line: "idle"})
	}
	g, err := model.NewGrid(rows, model.GridOptions{})
	require.NoError(t, err)
	return g
}

func TestDailyLoads(t *testing.T) {
	before := grid(t, []float64{25, 10, 4})
	after := grid(t, []float64{19, 10, 10})
	loads := DailyLoads("r1", smoothing.DefaultRules(), before, after)
	require.Len(t, loads, 3)
	assert.Equal(t, model.Monday, loads[0].Weekday)
	assert.True(t, loads[0].ViolationBefore)
	assert.False(t, loads[0].ViolationAfter)
	assert.InDelta(t, -6, loads[0].Change(), 1e-9)
	assert.InDelta(t, 6, loads[2].Change(), 1e-9)
	assert.Equal(t, "2025-W10", loads[0].Week)
}

func TestSQLiteStore_UpsertQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:kpi_test.db?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	loads := DailyLoads("r1", smoothing.DefaultRules(), grid(t, []float64{25, 10, 4}), grid(t, []float64{19, 10, 10}))
	require.NoError(t, store.Upsert(loads))
	loads[1].RunID = "r2"
	loads[1].TotalAfter = 11
	require.NoError(t, store.Upsert(loads[1:2]))

	all, err := store.Query(time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r2", all[1].RunID)
	assert.Equal(t, 11.0, all[1].TotalAfter)
	assert.True(t, all[0].ViolationBefore)
	assert.Equal(t, model.Wednesday, all[2].Weekday)

	some, err := store.Query(monday.AddDate(0, 0, 1), monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, monday.AddDate(0, 0, 1), some[0].Date)
}
