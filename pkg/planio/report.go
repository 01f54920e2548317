package planio

import (
	"encoding/json"
	"io"
	"math"
	"time"

	"github.com/kilianp07/lineplan/core/model"
)

// Parameters records how a run was invoked.
type Parameters struct {
	InputFile    string `json:"input_file,omitempty"`
	MaxTransfers int    `json:"max_transfers"`
}

// Report is the JSON document produced for every smoothing run.
type Report struct {
	RunID       string                  `json:"run_id"`
	Timestamp   time.Time               `json:"timestamp"`
	Week        string                  `json:"week"`
	Parameters  Parameters              `json:"parameters"`
	Stop        string                  `json:"stop"`
	Iterations  int                     `json:"iterations"`
	Rejected    int                     `json:"rejected"`
	Transfers   []model.AppliedTransfer `json:"applied_transfers"`
	Improvement model.Improvement       `json:"improvement_metrics"`
	Smoothed    []model.Row             `json:"smoothed,omitempty"`
	Outputs     map[string]string       `json:"outputs,omitempty"`
}

// Rounded returns a copy with every hour figure rounded to two decimals.
func (r Report) Rounded() Report {
	out := r
	out.Transfers = make([]model.AppliedTransfer, len(r.Transfers))
	for i, t := range r.Transfers {
		t.HoursToTransfer = Round2(t.HoursToTransfer)
		t.PeakBefore = Round2(t.PeakBefore)
		t.PeakAfter = Round2(t.PeakAfter)
		t.ValleyBefore = Round2(t.ValleyBefore)
		t.ValleyAfter = Round2(t.ValleyAfter)
		t.PeakConstraints.MaxLineHours = Round2(t.PeakConstraints.MaxLineHours)
		t.ValleyConstraints.MaxLineHours = Round2(t.ValleyConstraints.MaxLineHours)
		out.Transfers[i] = t
	}
	imp := r.Improvement
	imp.OriginalVariance = Round2(imp.OriginalVariance)
	imp.SmoothedVariance = Round2(imp.SmoothedVariance)
	imp.VarianceReductionPct = Round2(imp.VarianceReductionPct)
	imp.OriginalRange = Round2(imp.OriginalRange)
	imp.SmoothedRange = Round2(imp.SmoothedRange)
	imp.RangeReduction = Round2(imp.RangeReduction)
	imp.RangeReductionPct = Round2(imp.RangeReductionPct)
	imp.Weekdays = make([]model.WeekdayComparison, len(r.Improvement.Weekdays))
	for i, w := range r.Improvement.Weekdays {
		w.OriginalAvg = Round2(w.OriginalAvg)
		w.SmoothedAvg = Round2(w.SmoothedAvg)
		w.Change = Round2(w.Change)
		imp.Weekdays[i] = w
	}
	out.Improvement = imp
	if r.Smoothed != nil {
		out.Smoothed = make([]model.Row, len(r.Smoothed))
		for i, row := range r.Smoothed {
			row.Hours = Round2(row.Hours)
			out.Smoothed[i] = row
		}
	}
	return out
}

// WriteReport writes the rounded report as indented JSON.
func WriteReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Rounded())
}

// Round2 rounds to two decimals.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
