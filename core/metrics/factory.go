package metrics

import (
	"fmt"
	"strings"

	"github.com/kilianp07/lineplan/core/factory"
)

var sinks = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink makes a sink type available to metrics.sinks.
func RegisterMetricsSink(typ string, f factory.Factory[MetricsSink]) error {
	return sinks.Register(typ, f)
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string { return sinks.Types() }

// NewMetricsSink builds the sinks listed in the configuration. No entry
// yields a NopSink and several entries are combined into a MultiSink.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	built := make([]MetricsSink, 0, len(cfgs))
	for i, c := range cfgs {
		s, err := sinks.Create(c)
		if err != nil {
			return nil, fmt.Errorf("sink %d (%s, known: %s): %w", i, c.Type, strings.Join(SinkTypes(), ","), err)
		}
		built = append(built, s)
	}
	switch len(built) {
	case 0:
		return NopSink{}, nil
	case 1:
		return built[0], nil
	default:
		return NewMultiSink(built...), nil
	}
}
