package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	runs      int
	transfers int
	err       error
}

func (r *recordSink) RecordRun(RunSummary) error {
	r.runs++
	return r.err
}

func (r *recordSink) RecordTransfer(TransferEvent) error {
	r.transfers++
	return nil
}

type runOnlySink struct{ runs int }

func (r *runOnlySink) RecordRun(RunSummary) error {
	r.runs++
	return nil
}

// TestMultiSink ensures records are forwarded to all sinks.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &runOnlySink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordRun(RunSummary{RunID: "r"}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordTransfer(TransferEvent{RunID: "r", Applied: true}); err != nil {
		t.Fatalf("record transfer: %v", err)
	}
	if s1.runs != 1 || s2.runs != 1 || s1.transfers != 1 {
		t.Fatalf("records not forwarded: %+v %+v", s1, s2)
	}
}

func TestMultiSink_FirstError(t *testing.T) {
	boom := errors.New("boom")
	s2 := &runOnlySink{}
	m := NewMultiSink(&recordSink{err: boom}, s2)
	if err := m.RecordRun(RunSummary{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s2.runs != 0 {
		t.Fatalf("sink after failure should not be called")
	}
}
