package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/lineplan/core/metrics"
	"github.com/kilianp07/lineplan/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket receiving run points.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes smoothing runs to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one smoothing_run point.
func (s *InfluxSink) RecordRun(r coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("smoothing_run").
		AddTag("run_id", r.RunID).
		AddTag("week", r.Week).
		AddTag("stop", r.Stop).
		AddField("iterations", r.Iterations).
		AddField("applied", r.Applied).
		AddField("rejected", r.Rejected).
		AddField("hours_moved", round3(r.HoursMoved)).
		AddField("variance_before", round3(r.OriginalVariance)).
		AddField("variance_after", round3(r.SmoothedVariance)).
		AddField("variance_reduction_pct", round3(r.VarianceReductionPct)).
		AddField("violations_before", r.OriginalViolations).
		AddField("violations_after", r.SmoothedViolations).
		AddField("duration_ms", round3(r.Duration.Seconds()*1000)).
		SetTime(r.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTransfer writes one smoothing_transfer point.
func (s *InfluxSink) RecordTransfer(ev coremetrics.TransferEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("smoothing_transfer").
		AddTag("run_id", ev.RunID).
		AddTag("line", ev.Line).
		AddTag("applied", strconv.FormatBool(ev.Applied))
	if ev.Reason != "" {
		p = p.AddTag("reason", ev.Reason)
	}
	p = p.AddField("iteration", ev.Iteration).
		AddField("hours", round3(ev.Hours)).
		AddField("peak_date", ev.PeakDate.Format(time.DateOnly)).
		AddField("valley_date", ev.ValleyDate.Format(time.DateOnly)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
