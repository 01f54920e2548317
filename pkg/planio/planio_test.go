package planio

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/core/personnel"
)

var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func TestReadRows(t *testing.T) {
	in := "Datum,Linie,predicted_hours,Produkt\n" +
		"2025-03-03,lineA,24,Handarbeit Premium\n" +
		"04.03.2025,lineB,7.5,Standard\n"
	res := personnel.NewResolver([]string{"handarbeit"}, nil)
	rows, err := ReadRows(strings.NewReader(in), res)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, monday, rows[0].Date)
	assert.Equal(t, "lineA", rows[0].Line)
	assert.Equal(t, 24.0, rows[0].Hours)
	assert.True(t, rows[0].PersonnelIntensive)
	assert.Equal(t, monday.AddDate(0, 0, 1), rows[1].Date)
	assert.False(t, rows[1].PersonnelIntensive)
}

func TestReadRowsExplicitFlag(t *testing.T) {
	in := "date,weekday,line,hours,personnel_intensive,product\n" +
		"2025-03-03,Monday,lineA,8,0,Handarbeit\n" +
		"2025-03-04,Tue,lineA,8,,Handarbeit\n"
	res := personnel.NewResolver([]string{"handarbeit"}, nil)
	rows, err := ReadRows(strings.NewReader(in), res)
	require.NoError(t, err)
	assert.Equal(t, model.Monday, rows[0].Weekday)
	assert.False(t, rows[0].PersonnelIntensive)
	assert.True(t, rows[1].PersonnelIntensive)
}

func TestReadRowsErrors(t *testing.T) {
	cases := map[string]string{
		"missing hours": "date,line\n2025-03-03,a\n",
		"bad date":      "date,line,hours\n03/03/2025,a,1\n",
		"bad hours":     "date,line,hours\n2025-03-03,a,x\n",
		"bad weekday":   "date,line,hours,weekday\n2025-03-03,a,1,Sat\n",
		"bad flag":      "date,line,hours,personnel_intensive\n2025-03-03,a,1,maybe\n",
		"empty":         "",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadRows(strings.NewReader(in), nil)
			assert.Error(t, err)
		})
	}
	_, err := ReadRows(strings.NewReader("date,line\n"), nil)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestWriteRowsRoundTrip(t *testing.T) {
	rows := []model.Row{
		{Date: monday, Weekday: model.Monday, Line: "a", Hours: 17.99999, PersonnelIntensive: true},
		{Date: monday, Weekday: model.Monday, Line: "b", Hours: 0},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2025-03-03,Mon,a,18,true", lines[1])

	back, err := ReadRows(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, 18.0, back[0].Hours)
	assert.True(t, back[0].PersonnelIntensive)
}

func TestWriteTransfers(t *testing.T) {
	ts := []model.AppliedTransfer{{
		TransferCandidate: model.TransferCandidate{
			PeakDate: monday, ValleyDate: monday.AddDate(0, 0, 2), Line: "lineA",
			HoursToTransfer: 6, PeakBefore: 108, PeakAfter: 102, ValleyBefore: 88, ValleyAfter: 94,
		},
		Iteration: 1,
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteTransfers(&buf, ts))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1,2025-03-03,2025-03-05,lineA,6,108,102,88,94,false", lines[1])
}

func TestWriteReportRounds(t *testing.T) {
	r := Report{
		RunID:      "r1",
		Timestamp:  monday,
		Week:       "2025-W10",
		Parameters: Parameters{InputFile: "plan.csv", MaxTransfers: 5},
		Improvement: model.Improvement{
			OriginalVariance: 36.8, SmoothedVariance: 6.8, VarianceReductionPct: 81.52173913,
			Weekdays: []model.WeekdayComparison{{Weekday: model.Monday, OriginalAvg: 108, SmoothedAvg: 101.999, Change: -6.001}},
		},
		Transfers: []model.AppliedTransfer{{TransferCandidate: model.TransferCandidate{HoursToTransfer: 5.996}}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, r))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 5.0, doc["parameters"].(map[string]any)["max_transfers"])
	imp := doc["improvement_metrics"].(map[string]any)
	assert.Equal(t, 81.52, imp["variance_reduction_pct"])
	wd := imp["weekday_comparison"].([]any)[0].(map[string]any)
	assert.Equal(t, 102.0, wd["smoothed_avg"])
	tr := doc["applied_transfers"].([]any)[0].(map[string]any)
	assert.Equal(t, 6.0, tr["hours_to_transfer"])

	// the caller's report is untouched
	assert.Equal(t, 5.996, r.Transfers[0].HoursToTransfer)
}
