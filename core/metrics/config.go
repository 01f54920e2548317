package metrics

import (
	"fmt"

	"github.com/kilianp07/lineplan/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusPort exposes /metrics when set, for example "9090".
	PrometheusPort string `json:"prometheus_port" yaml:"prometheus_port"`
}

// Validate checks that each sink names a type.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics: sink %d has no type", i)
		}
	}
	return nil
}
