package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/lineplan/core/metrics"
)

// PromSink exposes smoothing runs as Prometheus metrics.
type PromSink struct {
	runs       *prometheus.CounterVec
	transfers  *prometheus.CounterVec
	hoursMoved prometheus.Counter
	reduction  prometheus.Gauge
	violations *prometheus.GaugeVec
	duration   prometheus.Histogram
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineplan_runs_total",
			Help: "Total number of smoothing runs by stop reason",
		}, []string{"stop"}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineplan_transfers_total",
			Help: "Transfers evaluated by the optimizer",
		}, []string{"applied", "reason"}),
		hoursMoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lineplan_hours_moved_total",
			Help: "Production hours moved between dates",
		}),
		reduction: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lineplan_variance_reduction_percent",
			Help: "Variance reduction of the daily totals achieved by the last run",
		}),
		violations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lineplan_constraint_violations",
			Help: "Dates violating at least one rule in the last run",
		}, []string{"stage"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lineplan_run_duration_seconds",
			Help:    "Wall-clock time of a smoothing run",
			Buckets: prometheus.DefBuckets,
		}),
	}
	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.transfers, err = register(reg, s.transfers); err != nil {
		return nil, err
	}
	if s.hoursMoved, err = register(reg, s.hoursMoved); err != nil {
		return nil, err
	}
	if s.reduction, err = register(reg, s.reduction); err != nil {
		return nil, err
	}
	if s.violations, err = register(reg, s.violations); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the run counters and the last-run gauges.
func (s *PromSink) RecordRun(r coremetrics.RunSummary) error {
	s.runs.WithLabelValues(r.Stop).Inc()
	s.hoursMoved.Add(r.HoursMoved)
	s.reduction.Set(r.VarianceReductionPct)
	s.violations.WithLabelValues("original").Set(float64(r.OriginalViolations))
	s.violations.WithLabelValues("smoothed").Set(float64(r.SmoothedViolations))
	s.duration.Observe(r.Duration.Seconds())
	return nil
}

// RecordTransfer counts a committed or reverted transfer.
func (s *PromSink) RecordTransfer(ev coremetrics.TransferEvent) error {
	s.transfers.WithLabelValues(strconv.FormatBool(ev.Applied), ev.Reason).Inc()
	return nil
}
