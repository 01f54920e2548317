package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/core/personnel"
	"github.com/kilianp07/lineplan/pkg/planio"
)

var smoothFlags struct {
	input        string
	output       string
	transfers    string
	report       string
	maxTransfers int
}

var smoothCmd = &cobra.Command{
	Use:   "smooth",
	Short: "Smooth a weekly plan read from CSV",
	RunE:  runSmooth,
}

func init() {
	f := smoothCmd.Flags()
	f.StringVarP(&smoothFlags.input, "input", "i", "", "plan CSV")
	f.StringVarP(&smoothFlags.output, "output", "o", "", "smoothed plan CSV (stdout when empty)")
	f.StringVar(&smoothFlags.transfers, "transfers", "", "applied transfers CSV")
	f.StringVar(&smoothFlags.report, "report", "", "JSON report")
	f.IntVarP(&smoothFlags.maxTransfers, "max-transfers", "n", -1, "iteration budget (config value when negative)")
	_ = smoothCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(smoothCmd)
}

func runSmooth(cmd *cobra.Command, args []string) error {
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

	rows, err := readPlan(smoothFlags.input, svc.Resolver())
	if err != nil {
		return err
	}
	budget := smoothFlags.maxTransfers
	if budget < 0 {
		budget = cfg.Smoothing.MaxTransfers
	}
	rep, err := svc.Smooth(ctx, rows, budget)
	if err != nil {
		return fmt.Errorf("smooth %s: %w", smoothFlags.input, err)
	}
	rep.Parameters.InputFile = smoothFlags.input
	rep.Outputs = map[string]string{}

	if err := writeFile(smoothFlags.output, cmd.OutOrStdout(), func(w io.Writer) error {
		return planio.WriteRows(w, rep.Smoothed)
	}); err != nil {
		return err
	}
	if smoothFlags.output != "" {
		rep.Outputs["smoothed_csv"] = smoothFlags.output
	}
	if smoothFlags.transfers != "" {
		if err := writeFile(smoothFlags.transfers, nil, func(w io.Writer) error {
			return planio.WriteTransfers(w, rep.Transfers)
		}); err != nil {
			return err
		}
		rep.Outputs["transfers_csv"] = smoothFlags.transfers
	}
	if smoothFlags.report != "" {
		rep.Outputs["report_json"] = smoothFlags.report
		if err := writeFile(smoothFlags.report, nil, func(w io.Writer) error {
			return planio.WriteReport(w, rep)
		}); err != nil {
			return err
		}
	}
	imp := rep.Improvement
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d transfers, variance %.2f -> %.2f (%.1f%%), violations %d -> %d\n",
		rep.Week, len(rep.Transfers), imp.OriginalVariance, imp.SmoothedVariance,
		imp.VarianceReductionPct, imp.OriginalViolations, imp.SmoothedViolations)
	return nil
}

func readPlan(path string, r *personnel.Resolver) ([]model.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := planio.ReadRows(f, r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// writeFile writes to path, or to fallback when path is empty.
func writeFile(path string, fallback io.Writer, fn func(io.Writer) error) error {
	if path == "" {
		if fallback == nil {
			return nil
		}
		return fn(fallback)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
