package model

import (
	"fmt"
	"time"
)

// DailySummary aggregates one date of the grid.
type DailySummary struct {
	Date                    time.Time `json:"date"`
	Weekday                 Weekday   `json:"weekday"`
	TotalHours              float64   `json:"total_hours"`
	ActiveLineCount         int       `json:"active_line_count"`
	MaxLineHours            float64   `json:"max_line_hours"`
	PersonnelIntensiveCount int       `json:"personnel_intensive_count"`
}

// ConstraintResult is the verdict of the three operational rules for one date.
type ConstraintResult struct {
	CapacityOK              bool    `json:"capacity_ok"`
	IdleOK                  bool    `json:"idle_ok"`
	PersonnelOK             bool    `json:"personnel_ok"`
	AllOK                   bool    `json:"all_ok"`
	MaxLineHours            float64 `json:"max_line_hours"`
	IdleLineCount           int     `json:"idle_line_count"`
	PersonnelIntensiveCount int     `json:"personnel_intensive_count"`
}

// TransferCandidate proposes moving hours of one line from a peak to a valley date.
type TransferCandidate struct {
	PeakDate           time.Time `json:"peak_date"`
	ValleyDate         time.Time `json:"valley_date"`
	Line               string    `json:"line"`
	HoursToTransfer    float64   `json:"hours_to_transfer"`
	PeakBefore         float64   `json:"peak_before"`
	PeakAfter          float64   `json:"peak_after"`
	ValleyBefore       float64   `json:"valley_before"`
	ValleyAfter        float64   `json:"valley_after"`
	PersonnelIntensive bool      `json:"personnel_intensive"`
}

// CandidateKey identifies the (peak, valley, line) triple of a candidate.
type CandidateKey struct {
	Peak   int64
	Valley int64
	Line   string
}

// Key returns the triple identifying c independently of the hours involved.
func (c TransferCandidate) Key() CandidateKey {
	return CandidateKey{Peak: Day(c.PeakDate).Unix(), Valley: Day(c.ValleyDate).Unix(), Line: c.Line}
}

func (c TransferCandidate) String() string {
	return fmt.Sprintf("%.2fh %s %s->%s", c.HoursToTransfer, c.Line,
		c.PeakDate.Format(time.DateOnly), c.ValleyDate.Format(time.DateOnly))
}

// AppliedTransfer is a committed candidate with the audits taken at commit time.
type AppliedTransfer struct {
	TransferCandidate
	Iteration         int              `json:"iteration"`
	PeakConstraints   ConstraintResult `json:"peak_constraints"`
	ValleyConstraints ConstraintResult `json:"valley_constraints"`
}

// WeekdayComparison compares the average daily total of one weekday label.
type WeekdayComparison struct {
	Weekday     Weekday `json:"weekday"`
	OriginalAvg float64 `json:"original_avg"`
	SmoothedAvg float64 `json:"smoothed_avg"`
	Change      float64 `json:"change"`
}

// Improvement summarises the effect of a smoothing run.
type Improvement struct {
	OriginalVariance     float64             `json:"original_variance"`
	SmoothedVariance     float64             `json:"smoothed_variance"`
	VarianceReductionPct float64             `json:"variance_reduction_pct"`
	OriginalRange        float64             `json:"original_range"`
	SmoothedRange        float64             `json:"smoothed_range"`
	RangeReduction       float64             `json:"range_reduction"`
	RangeReductionPct    float64             `json:"range_reduction_pct"`
	OriginalViolations   int                 `json:"original_violations"`
	SmoothedViolations   int                 `json:"smoothed_violations"`
	Weekdays             []WeekdayComparison `json:"weekday_comparison"`
}
