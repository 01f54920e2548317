package metrics

// MultiSink fans out records to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the summary to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(s RunSummary) error {
	for _, sink := range m.Sinks {
		if err := sink.RecordRun(s); err != nil {
			return err
		}
	}
	return nil
}

// RecordTransfer forwards the event to sinks implementing TransferRecorder.
func (m *MultiSink) RecordTransfer(ev TransferEvent) error {
	for _, sink := range m.Sinks {
		if rec, ok := sink.(TransferRecorder); ok {
			if err := rec.RecordTransfer(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
