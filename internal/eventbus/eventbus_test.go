package eventbus

import (
	"testing"

	"github.com/kilianp07/lineplan/core/events"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish(events.RunFinished{RunID: "r1"})
	v := <-ch
	rf, ok := v.(events.RunFinished)
	if !ok || rf.RunID != "r1" {
		t.Fatalf("unexpected event %#v", v)
	}
	bus.Unsubscribe(ch)
}

func TestBusKindFilter(t *testing.T) {
	bus := New()
	applied := bus.Subscribe(events.KindTransferApplied)
	all := bus.Subscribe()
	bus.Publish(events.TransferRejected{Iteration: 1})
	bus.Publish(events.TransferApplied{RunID: "r"})

	if ev := <-applied; ev.Kind() != events.KindTransferApplied {
		t.Fatalf("filtered subscriber got %s", ev.Kind())
	}
	if ev := <-all; ev.Kind() != events.KindTransferRejected {
		t.Fatalf("expected rejected first, got %s", ev.Kind())
	}
	if ev := <-all; ev.Kind() != events.KindTransferApplied {
		t.Fatalf("expected applied second, got %s", ev.Kind())
	}
	select {
	case ev := <-applied:
		t.Fatalf("unexpected extra event %v", ev)
	default:
	}
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewWithBuffer(1)
	ch := bus.Subscribe()
	bus.Publish(events.RunFinished{RunID: "a"})
	bus.Publish(events.RunFinished{RunID: "b"})
	if ev := <-ch; ev.(events.RunFinished).RunID != "a" {
		t.Fatalf("expected first event kept")
	}
	select {
	case <-ch:
		t.Fatalf("second event should have been dropped")
	default:
	}
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	bus.Publish(events.RunFinished{})
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("subscribe after close must return a closed channel")
	}
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
