// Package metrics defines the sinks recording smoothing runs for
// observability. Sinks like the Prometheus and InfluxDB implementations in
// infra/metrics are built from configuration through the factory registry
// and combined with NewMultiSink when several are configured. Transfer-level
// events are optional and only reach sinks implementing TransferRecorder.
package metrics
