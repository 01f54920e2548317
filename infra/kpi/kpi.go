// Package kpi keeps one row per production date with the daily load before
// and after the latest smoothing run touching that date.
package kpi

import (
	"time"

	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/core/smoothing"
)

// Config enables the KPI store.
type Config struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SetDefaults applies the default database path.
func (c *Config) SetDefaults() {
	if c.Path == "" {
		c.Path = "kpi.db"
	}
}

// DailyLoad is the KPI row of one date.
type DailyLoad struct {
	Date            time.Time     `json:"date"`
	Weekday         model.Weekday `json:"weekday"`
	RunID           string        `json:"run_id"`
	Week            string        `json:"week"`
	TotalBefore     float64       `json:"total_before"`
	TotalAfter      float64       `json:"total_after"`
	ViolationBefore bool          `json:"violation_before"`
	ViolationAfter  bool          `json:"violation_after"`
}

// Change is the load added (positive) or removed on the date.
func (d DailyLoad) Change() float64 { return d.TotalAfter - d.TotalBefore }

// Store persists daily loads.
type Store interface {
	Upsert(loads []DailyLoad) error
	Query(start, end time.Time) ([]DailyLoad, error)
	Close() error
}

// DailyLoads derives the KPI rows of a run from its original and final grids.
// Dates missing from final are skipped.
func DailyLoads(runID string, rules smoothing.Rules, original, final *model.Grid) []DailyLoad {
	after := make(map[int64]model.DailySummary)
	for _, s := range smoothing.Summarize(final) {
		after[s.Date.Unix()] = s
	}
	var out []DailyLoad
	for _, s := range smoothing.Summarize(original) {
		a, ok := after[s.Date.Unix()]
		if !ok {
			continue
		}
		out = append(out, DailyLoad{
			Date:            s.Date,
			Weekday:         s.Weekday,
			RunID:           runID,
			Week:            model.WeekLabel(s.Date),
			TotalBefore:     s.TotalHours,
			TotalAfter:      a.TotalHours,
			ViolationBefore: !rules.Check(original, s.Date).AllOK,
			ViolationAfter:  !rules.Check(final, s.Date).AllOK,
		})
	}
	return out
}
