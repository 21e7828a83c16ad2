package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/homereels/agent-enrich/internal/store"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Show past pipeline runs",
	Long:  "Without arguments, lists recent runs. With a run ID, shows the per-stage breakdown of that run.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if len(args) == 1 {
			stages, err := st.ListStages(ctx, args[0])
			if err != nil {
				return eris.Wrap(err, "list stages")
			}
			if len(stages) == 0 {
				fmt.Fprintln(os.Stderr, "No stages recorded for this run.")
				return nil
			}
			formatStages(os.Stdout, stages)
			return nil
		}

		runs, err := st.ListRuns(ctx, statusLimit)
		if err != nil {
			return eris.Wrap(err, "list runs")
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}
		formatRuns(os.Stdout, runs)
		return nil
	},
}

// formatRuns writes a tabular list of runs to w.
func formatRuns(out io.Writer, runs []store.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tZIP\tPAGES\tSTATUS\tSTARTED\tDURATION\tERROR")

	for _, r := range runs {
		dur := ""
		if r.FinishedAt != nil {
			dur = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			r.ZipCode,
			r.Pages,
			r.Status,
			r.StartedAt.Format("2006-01-02 15:04"),
			dur,
			truncateErr(r.Error),
		)
	}
	_ = w.Flush()
}

// formatStages writes the per-stage breakdown of one run to w.
func formatStages(out io.Writer, stages []store.StageRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STAGE\tSTATUS\tATTEMPTED\tENRICHED\tDROPPED\tSKIPPED\tDURATION\tERROR")

	for _, s := range stages {
		status := "ran"
		switch {
		case s.Skipped:
			status = "skipped"
		case s.Error != "":
			status = "failed"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			s.Stage,
			status,
			s.Stats.Attempted,
			s.Stats.Enriched,
			s.Stats.Dropped,
			s.Stats.Skipped,
			(time.Duration(s.DurationMS) * time.Millisecond).String(),
			truncateErr(s.Error),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateErr(msg string) string {
	if len(msg) > 60 {
		return msg[:57] + "..."
	}
	return msg
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "max number of runs to display")
	rootCmd.AddCommand(statusCmd)
}
