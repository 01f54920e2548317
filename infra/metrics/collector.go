package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/lineplan/core/events"
	coremetrics "github.com/kilianp07/lineplan/core/metrics"
	"github.com/kilianp07/lineplan/internal/eventbus"
)

// StartEventCollector subscribes to transfer events and records them on sinks
// implementing TransferRecorder. It stops when the context is canceled or the
// bus is closed. The returned channel is closed once the collector exits.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.TransferRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	sub := bus.Subscribe(events.KindTransferApplied, events.KindTransferRejected)
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if te, ok := transferEvent(ev); ok {
					_ = rec.RecordTransfer(te)
				}
			}
		}
	}()
	return done
}

func transferEvent(ev events.Event) (coremetrics.TransferEvent, bool) {
	switch e := ev.(type) {
	case events.TransferApplied:
		return coremetrics.TransferEvent{
			RunID:      e.RunID,
			Iteration:  e.Transfer.Iteration,
			Line:       e.Transfer.Line,
			PeakDate:   e.Transfer.PeakDate,
			ValleyDate: e.Transfer.ValleyDate,
			Hours:      e.Transfer.HoursToTransfer,
			Applied:    true,
			Time:       time.Now(),
		}, true
	case events.TransferRejected:
		return coremetrics.TransferEvent{
			RunID:      e.RunID,
			Iteration:  e.Iteration,
			Line:       e.Candidate.Line,
			PeakDate:   e.Candidate.PeakDate,
			ValleyDate: e.Candidate.ValleyDate,
			Hours:      e.Candidate.HoursToTransfer,
			Reason:     e.Reason,
			Time:       time.Now(),
		}, true
	}
	return coremetrics.TransferEvent{}, false
}
