package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/lineplan/core/events"
	coremetrics "github.com/kilianp07/lineplan/core/metrics"
	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/internal/eventbus"
)

type transferSink struct {
	mu  sync.Mutex
	evs []coremetrics.TransferEvent
}

func (s *transferSink) RecordRun(coremetrics.RunSummary) error { return nil }

func (s *transferSink) RecordTransfer(ev coremetrics.TransferEvent) error {
	s.mu.Lock()
	s.evs = append(s.evs, ev)
	s.mu.Unlock()
	return nil
}

func (s *transferSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.evs)
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New()
	sink := &transferSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := StartEventCollector(ctx, bus, sink)

	cand := model.TransferCandidate{Line: "hohl2", HoursToTransfer: 6}
	bus.Publish(events.TransferApplied{RunID: "r", Transfer: model.AppliedTransfer{TransferCandidate: cand, Iteration: 1}})
	bus.Publish(events.TransferRejected{RunID: "r", Iteration: 2, Candidate: cand, Reason: "constraints"})
	bus.Publish(events.RunFinished{RunID: "r"})

	deadline := time.After(time.Second)
	for sink.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected 2 transfer events, got %d", sink.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	bus.Close()
	<-done

	if !sink.evs[0].Applied || sink.evs[0].Iteration != 1 {
		t.Fatalf("unexpected applied event %+v", sink.evs[0])
	}
	if sink.evs[1].Applied || sink.evs[1].Reason != "constraints" {
		t.Fatalf("unexpected rejected event %+v", sink.evs[1])
	}
}

func TestStartEventCollector_NoRecorder(t *testing.T) {
	done := StartEventCollector(context.Background(), eventbus.New(), struct{ coremetrics.MetricsSink }{})
	select {
	case <-done:
	default:
		t.Fatal("collector should exit immediately without a recorder")
	}
}
