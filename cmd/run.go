package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/homereels/agent-enrich/internal/checkpoint"
	"github.com/homereels/agent-enrich/internal/config"
	"github.com/homereels/agent-enrich/internal/pipeline"
	"github.com/homereels/agent-enrich/pkg/firecrawl"
	"github.com/homereels/agent-enrich/pkg/wiza"
)

var (
	runZip        string
	runPages      int
	runLevel      string
	runForce      []string
	runSkipExport bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the enrichment pipeline for a zip code",
	Long:  "Runs acquire, linkedin, contacts and export in order. Stages whose checkpoint file already exists are skipped, so an interrupted run picks up where it stopped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		force, err := parseForce(runForce)
		if err != nil {
			return err
		}

		st, err := initStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ckpt := checkpoint.NewStore(cfg.Checkpoint.Dir)

		extract := firecrawl.NewClient(cfg.Firecrawl.Key,
			firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL),
			firecrawl.WithMinDelay(config.Delay(cfg.Firecrawl.DelaySecs)),
		)
		reveal := wiza.NewClient(cfg.Wiza.Key,
			wiza.WithBaseURL(cfg.Wiza.BaseURL),
			wiza.WithMinDelay(config.Delay(cfg.Wiza.DelaySecs)),
		)

		p := pipeline.New(cfg, ckpt, st, extract, reveal)

		summary, runErr := p.Run(ctx, pipeline.Options{
			ZipCode:    runZip,
			Pages:      runPages,
			Level:      wiza.EnrichmentLevel(runLevel),
			Force:      force,
			SkipExport: runSkipExport,
		})

		if summary != nil {
			formatSummary(summary)
		}
		if runErr != nil {
			return runErr
		}

		zap.L().Info("pipeline complete",
			zap.String("run_id", summary.RunID),
			zap.Int("stages", len(summary.Reports)),
		)
		return nil
	},
}

// parseForce validates --force values against the known stage names.
func parseForce(names []string) (map[pipeline.Stage]bool, error) {
	if len(names) == 0 {
		return nil, nil
	}
	known := make(map[pipeline.Stage]bool, len(pipeline.Stages))
	for _, s := range pipeline.Stages {
		known[s] = true
	}

	force := make(map[pipeline.Stage]bool, len(names))
	for _, name := range names {
		stage := pipeline.Stage(name)
		if !known[stage] {
			return nil, eris.Errorf("unknown stage %q (valid: acquire, linkedin, contacts, export)", name)
		}
		force[stage] = true
	}
	return force, nil
}

// formatSummary writes a per-stage table to stdout.
func formatSummary(s *pipeline.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STAGE\tSTATUS\tATTEMPTED\tENRICHED\tDROPPED\tSKIPPED\tDURATION\tOUTPUT")

	for _, r := range s.Reports {
		status := "ran"
		if r.Skipped {
			status = "skipped"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			r.Stage,
			status,
			r.Stats.Attempted,
			r.Stats.Enriched,
			r.Stats.Dropped,
			r.Stats.Skipped,
			r.Duration.Round(time.Millisecond),
			r.Output,
		)
	}
	_ = w.Flush()
}

func init() {
	runCmd.Flags().StringVar(&runZip, "zip", "", "zip code to scrape agents for")
	runCmd.Flags().IntVar(&runPages, "pages", 1, "number of listing pages to scrape")
	runCmd.Flags().StringVar(&runLevel, "level", "", "enrichment level (none, partial, phone, full); overrides config")
	runCmd.Flags().StringSliceVar(&runForce, "force", nil, "stages to rerun even if their checkpoint exists")
	runCmd.Flags().BoolVar(&runSkipExport, "skip-export", false, "stop after the contacts stage")
	rootCmd.AddCommand(runCmd)
}
