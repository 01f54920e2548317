package smoothing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/lineplan/core/events"
	"github.com/kilianp07/lineplan/core/logger"
	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/internal/eventbus"
)

// ErrInvalidBudget is returned for a negative transfer budget.
var ErrInvalidBudget = errors.New("smoothing: max transfers must not be negative")

// StopReason tells why the loop ended.
type StopReason string

const (
	StopBudget        StopReason = "budget"
	StopNoOpportunity StopReason = "no_opportunity"
	StopCancelled     StopReason = "cancelled"
)

// Rejection reasons reported on the event bus.
const (
	ReasonConstraints   = "constraints"
	ReasonNoImprovement = "no_improvement"
)

// Options alters the loop behaviour.
type Options struct {
	// RetryRejected keeps reverted candidates eligible. The same candidate is
	// then proposed again on the next iteration and typically consumes the
	// remaining budget.
	RetryRejected bool
	// RequireImprovement reverts a valid transfer when the sample variance of
	// the daily totals does not decrease.
	RequireImprovement bool
}

// Result is the outcome of one optimizer run.
type Result struct {
	RunID      string
	Grid       *model.Grid
	Transfers  []model.AppliedTransfer
	Iterations int
	Rejected   int
	Stop       StopReason
}

// Optimizer runs the greedy peak-to-valley loop.
type Optimizer struct {
	rules  Rules
	gen    Generator
	opts   Options
	logger logger.Logger
	bus    eventbus.Publisher
	now    func() time.Time
}

// NewOptimizer builds an optimizer. log and bus may be nil.
func NewOptimizer(rules Rules, params Params, opts Options, log logger.Logger, bus eventbus.Publisher) *Optimizer {
	if log == nil {
		log = logger.Nop{}
	}
	return &Optimizer{
		rules:  rules,
		gen:    NewGenerator(rules, params),
		opts:   opts,
		logger: log,
		bus:    bus,
		now:    time.Now,
	}
}

// NewOptimizerFromConfig builds an optimizer from a validated Config.
func NewOptimizerFromConfig(cfg Config, log logger.Logger, bus eventbus.Publisher) *Optimizer {
	return NewOptimizer(cfg.Rules(), cfg.Params(), cfg.Options(), log, bus)
}

// Rules returns the constraint rules used to validate transfers.
func (o *Optimizer) Rules() Rules { return o.rules }

// Run smooths g in place for at most maxTransfers iterations. Each iteration
// applies the best candidate, validates both dates and either commits or
// reverts it. A commit is never undone. ctx is checked between iterations; on
// cancellation the committed prefix is returned together with ctx.Err().
//
//gocyclo:ignore
func (o *Optimizer) Run(ctx context.Context, g *model.Grid, maxTransfers int) (Result, error) {
	if g == nil {
		return Result{}, fmt.Errorf("smoothing: nil grid")
	}
	if maxTransfers < 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidBudget, maxTransfers)
	}
	res := Result{RunID: uuid.NewString(), Grid: g, Stop: StopBudget}
	start := o.now()
	excluded := make(map[model.CandidateKey]struct{})

	for res.Iterations < maxTransfers {
		if err := ctx.Err(); err != nil {
			res.Stop = StopCancelled
			o.finish(g, &res, start)
			return res, err
		}
		cand, ok := o.next(g, excluded)
		if !ok {
			res.Stop = StopNoOpportunity
			break
		}
		res.Iterations++

		var before float64
		if o.opts.RequireImprovement {
			before = variance(Totals(Summarize(g)))
		}
		prevPeak := g.Hours(cand.PeakDate, cand.Line)
		prevValley := g.Hours(cand.ValleyDate, cand.Line)
		if err := o.write(g, cand, cand.PeakAfter, cand.ValleyAfter); err != nil {
			return res, err
		}
		peakRes := o.rules.Check(g, cand.PeakDate)
		valleyRes := o.rules.Check(g, cand.ValleyDate)

		reason := ""
		switch {
		case !peakRes.AllOK || !valleyRes.AllOK:
			reason = ReasonConstraints
		case o.opts.RequireImprovement && variance(Totals(Summarize(g))) >= before:
			reason = ReasonNoImprovement
		}
		if reason != "" {
			if err := o.write(g, cand, prevPeak, prevValley); err != nil {
				return res, err
			}
			res.Rejected++
			if !o.opts.RetryRejected {
				excluded[cand.Key()] = struct{}{}
			}
			o.logger.Debugw("transfer reverted", map[string]any{
				"iteration": res.Iterations,
				"candidate": cand.String(),
				"reason":    reason,
				"peak_ok":   peakRes.AllOK,
				"valley_ok": valleyRes.AllOK,
			})
			o.publish(events.TransferRejected{
				RunID:             res.RunID,
				Iteration:         res.Iterations,
				Candidate:         cand,
				PeakConstraints:   peakRes,
				ValleyConstraints: valleyRes,
				Reason:            reason,
			})
			continue
		}

		applied := model.AppliedTransfer{
			TransferCandidate: cand,
			Iteration:         res.Iterations,
			PeakConstraints:   peakRes,
			ValleyConstraints: valleyRes,
		}
		res.Transfers = append(res.Transfers, applied)
		o.logger.Infof("transfer %d applied: %s", res.Iterations, cand)
		o.publish(events.TransferApplied{RunID: res.RunID, Transfer: applied})
	}

	o.finish(g, &res, start)
	return res, nil
}

// next returns the best candidate not yet excluded.
func (o *Optimizer) next(g *model.Grid, excluded map[model.CandidateKey]struct{}) (model.TransferCandidate, bool) {
	for _, c := range o.gen.Generate(g) {
		if _, skip := excluded[c.Key()]; skip {
			continue
		}
		return c, true
	}
	return model.TransferCandidate{}, false
}

func (o *Optimizer) write(g *model.Grid, c model.TransferCandidate, peak, valley float64) error {
	if err := g.Set(c.PeakDate, c.Line, peak); err != nil {
		return fmt.Errorf("smoothing: write peak: %w", err)
	}
	if err := g.Set(c.ValleyDate, c.Line, valley); err != nil {
		return fmt.Errorf("smoothing: write valley: %w", err)
	}
	return nil
}

func (o *Optimizer) finish(g *model.Grid, res *Result, start time.Time) {
	o.logger.Infof("smoothing run %s finished: %d applied, %d rejected in %d iterations (%s, %s)",
		res.RunID, len(res.Transfers), res.Rejected, res.Iterations, res.Stop, o.now().Sub(start))
	o.publish(events.RunFinished{
		RunID:      res.RunID,
		Week:       g.Week(),
		Iterations: res.Iterations,
		Applied:    len(res.Transfers),
		Rejected:   res.Rejected,
		Stop:       string(res.Stop),
	})
}

func (o *Optimizer) publish(e events.Event) {
	if o.bus != nil {
		o.bus.Publish(e)
	}
}
