package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/lineplan/core/model"
)

var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func TestAverages(t *testing.T) {
	history := []model.Row{
		{Date: monday, Line: "b", Hours: 10, PersonnelIntensive: true},
		{Date: monday.AddDate(0, 0, 7), Line: "b", Hours: 14},
		{Date: monday.AddDate(0, 0, 14), Line: "b", Hours: 12, PersonnelIntensive: true},
		{Date: monday, Line: "a", Hours: 6},
		{Date: monday.AddDate(0, 0, 1), Line: "a", Hours: 8},
		{Date: monday.AddDate(0, 0, 5), Line: "a", Hours: 99},
	}
	avgs := Averages(history)
	require.Len(t, avgs, 3)

	assert.Equal(t, model.Monday, avgs[0].Weekday)
	assert.Equal(t, "a", avgs[0].Line)
	assert.Equal(t, 0.0, avgs[0].StdHours)
	assert.Equal(t, "low", avgs[0].Confidence())

	b := avgs[1]
	assert.Equal(t, "b", b.Line)
	assert.InDelta(t, 12, b.AvgHours, 1e-9)
	assert.InDelta(t, 2, b.StdHours, 1e-9)
	assert.Equal(t, 3, b.Count)
	assert.InDelta(t, 2.0/3.0, b.PersonnelRate, 1e-9)
	assert.Equal(t, 10.0, b.MinHours)
	assert.Equal(t, 14.0, b.MaxHours)
	assert.Equal(t, "high", b.Confidence())

	assert.Equal(t, model.Tuesday, avgs[2].Weekday)
}

func TestGenerate(t *testing.T) {
	avgs := []WeekdayAverage{
		{Weekday: model.Monday, Line: "a", AvgHours: 10, PersonnelRate: 0.6},
		{Weekday: model.Friday, Line: "a", AvgHours: 4, PersonnelRate: 0.5},
	}
	wednesday := monday.AddDate(0, 0, 2)
	rows := Generate(avgs, wednesday, 2, 0.5)
	require.Len(t, rows, 4)
	assert.Equal(t, monday.AddDate(0, 0, 7), rows[0].Date)
	assert.True(t, rows[0].PersonnelIntensive)
	assert.Equal(t, model.Friday, rows[1].Weekday)
	assert.False(t, rows[1].PersonnelIntensive)
	assert.Equal(t, monday.AddDate(0, 0, 14), rows[2].Date)

	weeks := SplitWeeks(rows)
	require.Len(t, weeks, 2)
	assert.Len(t, weeks[0], 2)
	assert.Equal(t, "2025-W12", model.WeekLabel(weeks[1][0].Date))
}

func TestStartOfWeek(t *testing.T) {
	assert.Equal(t, monday, StartOfWeek(monday.Add(5*time.Hour)))
	assert.Equal(t, monday.AddDate(0, 0, 7), StartOfWeek(monday.AddDate(0, 0, 6)))
}

func TestConfig(t *testing.T) {
	var c Config
	c.SetDefaults()
	require.NoError(t, c.Validate())
	assert.Equal(t, 4, c.Weeks)
	c.PersonnelThreshold = 2
	assert.Error(t, c.Validate())
}
