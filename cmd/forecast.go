package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/lineplan/connectors"
	"github.com/kilianp07/lineplan/connectors/factory"
	"github.com/kilianp07/lineplan/core/forecast"
	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/pkg/planio"
)

var forecastFlags struct {
	input        string
	start        string
	weeks        int
	output       string
	smooth       bool
	maxTransfers int
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Build a weekday-average plan from history, optionally smoothed week by week",
	RunE:  runForecast,
}

func init() {
	f := forecastCmd.Flags()
	f.StringVarP(&forecastFlags.input, "input", "i", "", "history CSV (history source from config when empty)")
	f.StringVar(&forecastFlags.start, "start", "", "first forecast date, snapped to the next Monday (today when empty)")
	f.IntVarP(&forecastFlags.weeks, "weeks", "w", 0, "number of weeks (config value when zero)")
	f.StringVarP(&forecastFlags.output, "output", "o", "", "forecast CSV (stdout when empty)")
	f.BoolVar(&forecastFlags.smooth, "smooth", false, "smooth every forecast week")
	f.IntVarP(&forecastFlags.maxTransfers, "max-transfers", "n", -1, "iteration budget per week (config value when negative)")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, closeFn, err := newService(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	start := time.Now()
	if forecastFlags.start != "" {
		if start, err = planio.ParseDate(forecastFlags.start); err != nil {
			return err
		}
	}
	weeks := forecastFlags.weeks
	if weeks <= 0 {
		weeks = cfg.Forecast.Weeks
	}

	hcfg := cfg.History
	if forecastFlags.input != "" {
		hcfg = connectors.Config{Type: factory.IDCSV, Path: forecastFlags.input}
	}
	src, err := factory.NewHistorySource(ctx, hcfg, svc.Resolver())
	if err != nil {
		return err
	}
	history, err := src.Fetch(ctx, time.Time{}, start)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}
	if len(history) == 0 {
		return fmt.Errorf("no history before %s", start.Format(time.DateOnly))
	}
	rows := forecast.Generate(forecast.Averages(history), start, weeks, cfg.Forecast.PersonnelThreshold)

	if forecastFlags.smooth {
		budget := forecastFlags.maxTransfers
		if budget < 0 {
			budget = cfg.Smoothing.MaxTransfers
		}
		var smoothed []model.Row
		for _, week := range forecast.SplitWeeks(rows) {
			rep, err := svc.Smooth(ctx, week, budget)
			if err != nil {
				return fmt.Errorf("smooth %s: %w", model.WeekLabel(week[0].Date), err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d transfers, variance %.2f -> %.2f\n",
				rep.Week, len(rep.Transfers), rep.Improvement.OriginalVariance, rep.Improvement.SmoothedVariance)
			smoothed = append(smoothed, rep.Smoothed...)
		}
		rows = smoothed
	}
	return writeFile(forecastFlags.output, cmd.OutOrStdout(), func(w io.Writer) error {
		return planio.WriteRows(w, rows)
	})
}
