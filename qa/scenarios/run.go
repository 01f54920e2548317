package scenarios

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/lineplan/core/events"
	coremetrics "github.com/kilianp07/lineplan/core/metrics"
	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/core/smoothing"
	"github.com/kilianp07/lineplan/infra/logger"
	"github.com/kilianp07/lineplan/infra/metrics"
	"github.com/kilianp07/lineplan/internal/eventbus"
)

// RunScenario smooths the scenario week and reports every failed expectation.
//
//gocyclo:ignore
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	sink, err := metrics.NewPromSinkWithRegistry(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	rows, err := sc.Rows()
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	grid, err := model.NewGrid(rows, model.GridOptions{})
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	original := grid.Clone()

	bus := eventbus.NewWithBuffer(4 * (sc.Budget + 1))
	defer bus.Close()
	sub := bus.Subscribe(events.KindTransferApplied)

	cfg := sc.Config()
	opt := smoothing.NewOptimizerFromConfig(cfg, logger.NopLogger{}, bus)
	res, err := opt.Run(context.Background(), grid, sc.Budget)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	imp := opt.Rules().Compare(original, res.Grid)
	if err := sink.RecordRun(coremetrics.RunSummary{
		RunID:                res.RunID,
		Week:                 res.Grid.Week(),
		Iterations:           res.Iterations,
		Applied:              len(res.Transfers),
		Rejected:             res.Rejected,
		Stop:                 string(res.Stop),
		VarianceReductionPct: imp.VarianceReductionPct,
		Time:                 time.Unix(0, 0),
	}); err != nil {
		t.Errorf("record run: %v", err)
	}

	applied := 0
	for len(sub) > 0 {
		<-sub
		applied++
	}
	if applied != len(res.Transfers) {
		t.Errorf("scenario %s: %d applied events for %d transfers", sc.Name, applied, len(res.Transfers))
	}

	exp := sc.Expected
	if exp.Applied != nil && len(res.Transfers) != *exp.Applied {
		t.Errorf("scenario %s expected %d applied, got %d", sc.Name, *exp.Applied, len(res.Transfers))
	}
	if exp.Rejected != nil && res.Rejected != *exp.Rejected {
		t.Errorf("scenario %s expected %d rejected, got %d", sc.Name, *exp.Rejected, res.Rejected)
	}
	if exp.Iterations != nil && res.Iterations != *exp.Iterations {
		t.Errorf("scenario %s expected %d iterations, got %d", sc.Name, *exp.Iterations, res.Iterations)
	}
	if exp.Stop != "" && string(res.Stop) != exp.Stop {
		t.Errorf("scenario %s expected stop %s, got %s", sc.Name, exp.Stop, res.Stop)
	}
	if exp.MaxSmoothedViolations != nil && imp.SmoothedViolations > *exp.MaxSmoothedViolations {
		t.Errorf("scenario %s expected at most %d violations, got %d", sc.Name, *exp.MaxSmoothedViolations, imp.SmoothedViolations)
	}
	if exp.VarianceReduced != nil {
		reduced := imp.SmoothedVariance < imp.OriginalVariance
		if reduced != *exp.VarianceReduced {
			t.Errorf("scenario %s variance %.3f -> %.3f, reduced=%v", sc.Name, imp.OriginalVariance, imp.SmoothedVariance, reduced)
		}
	}
	for i, want := range exp.Transfers {
		if i >= len(res.Transfers) {
			t.Errorf("scenario %s missing transfer %d", sc.Name, i+1)
			break
		}
		got := res.Transfers[i]
		if got.Line != want.Line ||
			got.PeakDate.Format(time.DateOnly) != want.Peak ||
			got.ValleyDate.Format(time.DateOnly) != want.Valley ||
			!approx(got.HoursToTransfer, want.Hours) {
			t.Errorf("scenario %s transfer %d: got %s", sc.Name, i+1, got.TransferCandidate)
		}
	}
	if imp.SmoothedViolations > imp.OriginalViolations && len(res.Transfers) > 0 {
		t.Errorf("scenario %s: smoothing added violations %d -> %d", sc.Name, imp.OriginalViolations, imp.SmoothedViolations)
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}
