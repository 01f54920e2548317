package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/lineplan/core/runlog"
)

var runsFlags struct {
	week  string
	line  string
	since string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Run log related commands",
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recorded smoothing runs",
	RunE:  runRunsLs,
}

func init() {
	f := runsLsCmd.Flags()
	f.StringVar(&runsFlags.week, "week", "", "ISO week, e.g. 2025-W10")
	f.StringVar(&runsFlags.line, "line", "", "only runs that moved hours of this line")
	f.StringVar(&runsFlags.since, "since", "", "only runs recorded after this RFC 3339 time")
	runsCmd.AddCommand(runsLsCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := runlog.Open(cfg.Logging.RunLog())
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error while closing run log: %v\n", err)
		}
	}()
	q := runlog.LogQuery{Week: runsFlags.week, Line: runsFlags.line}
	if runsFlags.since != "" {
		if q.Start, err = time.Parse(time.RFC3339, runsFlags.since); err != nil {
			return fmt.Errorf("since: %w", err)
		}
	}
	recs, err := store.Query(context.Background(), q)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tWEEK\tAPPLIED\tREJECTED\tSTOP\tVARIANCE")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%.2f -> %.2f\n",
			r.ID, r.Timestamp.Format(time.RFC3339), r.Week, len(r.Transfers), r.Rejected, r.Stop,
			r.Improvement.OriginalVariance, r.Improvement.SmoothedVariance)
	}
	return tw.Flush()
}
