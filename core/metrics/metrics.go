package metrics

import "time"

// RunSummary is recorded once per optimizer run.
type RunSummary struct {
	RunID                string
	Week                 string
	Iterations           int
	Applied              int
	Rejected             int
	Stop                 string
	HoursMoved           float64
	OriginalVariance     float64
	SmoothedVariance     float64
	VarianceReductionPct float64
	OriginalViolations   int
	SmoothedViolations   int
	Duration             time.Duration
	Time                 time.Time
}

// MetricsSink records smoothing runs for observability purposes.
type MetricsSink interface {
	RecordRun(RunSummary) error
}

// TransferEvent describes one committed or reverted transfer.
type TransferEvent struct {
	RunID      string
	Iteration  int
	Line       string
	PeakDate   time.Time
	ValleyDate time.Time
	Hours      float64
	Applied    bool
	// Reason is empty for applied transfers.
	Reason string
	Time   time.Time
}

// TransferRecorder is implemented by sinks able to record single transfers.
type TransferRecorder interface {
	RecordTransfer(TransferEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunSummary) error         { return nil }
func (NopSink) RecordTransfer(TransferEvent) error { return nil }
