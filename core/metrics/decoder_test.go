package metrics_test

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/lineplan/core/factory"
	metrics "github.com/kilianp07/lineplan/core/metrics"
	_ "github.com/kilianp07/lineplan/infra/metrics"
)

// Sinks listed in YAML are combined into a MultiSink.
func TestMetricsConfigDecodeYAML(t *testing.T) {
	data := `prometheus_port: "9091"
sinks:
  - type: nop
  - type: nop
    conf:
      ignored: true
`
	var cfg metrics.Config
	if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("yaml unmarshal: %v", err)
	}
	if cfg.PrometheusPort != "9091" {
		t.Fatalf("unexpected port %q", cfg.PrometheusPort)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	s, err := metrics.NewMetricsSink(cfg.Sinks)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := s.(*metrics.MultiSink); !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
}

// Unknown sink types are rejected at construction.
func TestMetricsConfigDecodeJSON_Invalid(t *testing.T) {
	data := `{"sinks":[{"type":"missing"}]}`
	var cfg metrics.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if _, err := metrics.NewMetricsSink(cfg.Sinks); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if err := (metrics.Config{Sinks: []factory.ModuleConfig{{}}}).Validate(); err == nil {
		t.Fatalf("expected error for empty type")
	}
}
