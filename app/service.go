// Package app wires configuration into a running planning service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/lineplan/api/kpi"
	"github.com/kilianp07/lineplan/api/runs"
	"github.com/kilianp07/lineplan/api/smooth"
	"github.com/kilianp07/lineplan/config"
	coremetrics "github.com/kilianp07/lineplan/core/metrics"
	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/core/monitoring"
	"github.com/kilianp07/lineplan/core/personnel"
	"github.com/kilianp07/lineplan/core/publish"
	"github.com/kilianp07/lineplan/core/runlog"
	"github.com/kilianp07/lineplan/core/smoothing"
	kpistore "github.com/kilianp07/lineplan/infra/kpi"
	"github.com/kilianp07/lineplan/infra/logger"
	"github.com/kilianp07/lineplan/infra/metrics"
	"github.com/kilianp07/lineplan/infra/mqtt"
	"github.com/kilianp07/lineplan/internal/eventbus"
	"github.com/kilianp07/lineplan/pkg/planio"
)

// Service runs optimizations and records their outcome.
type Service struct {
	cfg       *config.Config
	optimizer *smoothing.Optimizer
	resolver  *personnel.Resolver
	bus       eventbus.EventBus
	sink      coremetrics.MetricsSink
	store     runlog.LogStore
	kpi       kpistore.Store
	publisher publish.Publisher
	log       logger.Logger
	now       func() time.Time

	cancel    context.CancelFunc
	collector <-chan struct{}
}

// Option overrides a dependency built from configuration.
type Option func(*Service)

// WithPublisher replaces the MQTT publisher.
func WithPublisher(p publish.Publisher) Option { return func(s *Service) { s.publisher = p } }

// WithMetricsSink replaces the sinks listed in metrics.sinks.
func WithMetricsSink(m coremetrics.MetricsSink) Option { return func(s *Service) { s.sink = m } }

// WithClock sets the time source used for report timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	logger.SetLevel(cfg.Logging.Level)
	svc := &Service{cfg: cfg, log: logger.New("service"), now: time.Now}
	for _, o := range opts {
		o(svc)
	}

	var err error
	if svc.resolver, err = personnel.FromConfig(cfg.Personnel); err != nil {
		return nil, fmt.Errorf("personnel: %w", err)
	}
	if svc.sink == nil {
		if svc.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
	}
	if svc.store, err = runlog.Open(cfg.Logging.RunLog()); err != nil {
		return nil, fmt.Errorf("run log: %w", err)
	}
	if cfg.KPI.Enabled {
		if svc.kpi, err = kpistore.NewSQLiteStore(cfg.KPI.Path); err != nil {
			_ = svc.store.Close()
			return nil, fmt.Errorf("kpi store: %w", err)
		}
	}
	if svc.publisher == nil {
		svc.publisher = publish.Nop{}
		if cfg.MQTT.Enabled {
			p, err := mqtt.NewPahoPublisher(cfg.MQTT)
			if err != nil {
				_ = svc.Close()
				return nil, fmt.Errorf("mqtt publisher: %w", err)
			}
			svc.publisher = p
		}
	}

	bus := eventbus.New()
	svc.bus = bus
	ctx, cancel := context.WithCancel(context.Background())
	svc.cancel = cancel
	svc.collector = metrics.StartEventCollector(ctx, bus, svc.sink)
	svc.optimizer = smoothing.NewOptimizerFromConfig(cfg.Smoothing, logger.New("optimizer"), bus)
	return svc, nil
}

// Resolver returns the personnel resolver built from configuration.
func (s *Service) Resolver() *personnel.Resolver { return s.resolver }

// RunLog returns the run log store.
func (s *Service) RunLog() runlog.LogStore { return s.store }

// Smooth runs one optimization over rows. The original plan is kept for the
// comparison; the returned report carries the smoothed rows. Persistence,
// publication and metrics failures are logged and reported to the monitor
// without failing the run. A cancelled run returns the partial report with
// the context error and is not persisted.
func (s *Service) Smooth(ctx context.Context, rows []model.Row, maxTransfers int) (planio.Report, error) {
	grid, err := model.NewGrid(rows, model.GridOptions{AllowMultiWeek: s.cfg.Smoothing.AllowMultiWeek})
	if err != nil {
		return planio.Report{}, err
	}
	original := grid.Clone()
	start := time.Now()
	res, runErr := s.optimizer.Run(ctx, grid, maxTransfers)
	if runErr != nil && res.Grid == nil {
		return planio.Report{}, runErr
	}
	rep := planio.Report{
		RunID:       res.RunID,
		Timestamp:   s.now().UTC(),
		Week:        original.Week(),
		Parameters:  planio.Parameters{MaxTransfers: maxTransfers},
		Stop:        string(res.Stop),
		Iterations:  res.Iterations,
		Rejected:    res.Rejected,
		Transfers:   res.Transfers,
		Improvement: s.optimizer.Rules().Compare(original, res.Grid),
		Smoothed:    res.Grid.Rows(),
	}
	if rep.Transfers == nil {
		rep.Transfers = []model.AppliedTransfer{}
	}
	if runErr != nil {
		return rep, runErr
	}
	s.record(ctx, rep, original, res.Grid, time.Since(start))
	return rep, nil
}

func (s *Service) record(ctx context.Context, rep planio.Report, original, final *model.Grid, took time.Duration) {
	tags := map[string]string{"run_id": rep.RunID, "week": rep.Week}
	fail := func(what string, err error) {
		s.log.Errorf("%s for run %s: %v", what, rep.RunID, err)
		monitoring.CaptureException(fmt.Errorf("%s: %w", what, err), tags)
	}

	rec := runlog.RunRecord{
		ID:           rep.RunID,
		Timestamp:    rep.Timestamp,
		Week:         rep.Week,
		MaxTransfers: rep.Parameters.MaxTransfers,
		Stop:         rep.Stop,
		Iterations:   rep.Iterations,
		Rejected:     rep.Rejected,
		Transfers:    rep.Transfers,
		Improvement:  rep.Improvement,
	}
	if err := s.store.Append(ctx, rec); err != nil {
		fail("append run log", err)
	}
	if s.kpi != nil {
		if err := s.kpi.Upsert(kpistore.DailyLoads(rep.RunID, s.optimizer.Rules(), original, final)); err != nil {
			fail("upsert kpi", err)
		}
	}
	plan := publish.Plan{
		RunID:       rep.RunID,
		Week:        rep.Week,
		Rows:        rep.Smoothed,
		Transfers:   rep.Transfers,
		Improvement: rep.Improvement,
		Time:        rep.Timestamp,
	}
	if err := s.publisher.PublishPlan(ctx, plan); err != nil {
		fail("publish plan", err)
	}
	var moved float64
	for _, t := range rep.Transfers {
		moved += t.HoursToTransfer
	}
	sum := coremetrics.RunSummary{
		RunID:                rep.RunID,
		Week:                 rep.Week,
		Iterations:           rep.Iterations,
		Applied:              len(rep.Transfers),
		Rejected:             rep.Rejected,
		Stop:                 rep.Stop,
		HoursMoved:           moved,
		OriginalVariance:     rep.Improvement.OriginalVariance,
		SmoothedVariance:     rep.Improvement.SmoothedVariance,
		VarianceReductionPct: rep.Improvement.VarianceReductionPct,
		OriginalViolations:   rep.Improvement.OriginalViolations,
		SmoothedViolations:   rep.Improvement.SmoothedViolations,
		Duration:             took,
		Time:                 rep.Timestamp,
	}
	if err := s.sink.RecordRun(sum); err != nil {
		fail("record metrics", err)
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	token := s.cfg.API.Token
	mux := http.NewServeMux()
	mux.Handle("/api/smooth", smooth.NewHandler(s, s.resolver, s.cfg.Smoothing.MaxTransfers, token))
	mux.Handle("/api/runs", runs.NewHandler(s.store, token))
	if s.kpi != nil {
		mux.Handle("/api/kpi/daily", kpi.NewHandler(s.kpi, token))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// Run serves the HTTP API, and Prometheus when a port is configured, until
// the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			defer monitoring.Recover()
			if err := metrics.StartPromServer(ctx, ":"+port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	srv := &http.Server{Addr: s.cfg.API.Address, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("serving API on %s", s.cfg.API.Address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the event collector and releases stores and connections.
func (s *Service) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.collector
	}
	if s.bus != nil {
		s.bus.Close()
	}
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if s.kpi != nil {
		errs = append(errs, s.kpi.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return errors.Join(errs...)
}
