// Package pipeline sequences the enrichment stages. Each stage consumes the
// previous stage's checkpoint artifact and writes its own, so a halted run
// can be resumed from the failed stage without repeating completed work.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homereels/agent-enrich/internal/checkpoint"
	"github.com/homereels/agent-enrich/internal/config"
	"github.com/homereels/agent-enrich/internal/enrich"
	"github.com/homereels/agent-enrich/internal/store"
	"github.com/homereels/agent-enrich/pkg/firecrawl"
	"github.com/homereels/agent-enrich/pkg/wiza"
)

// Stage identifies one pipeline step.
type Stage string

const (
	StageAcquire  Stage = "acquire"
	StageLinkedIn Stage = "linkedin"
	StageContacts Stage = "contacts"
	StageExport   Stage = "export"
)

// Stages lists the pipeline stages in execution order.
var Stages = []Stage{StageAcquire, StageLinkedIn, StageContacts, StageExport}

// artifactNames maps each checkpoint-producing stage to its artifact file.
var artifactNames = map[Stage]string{
	StageAcquire:  "0_agents.json",
	StageLinkedIn: "1_agents_with_linkedin.json",
	StageContacts: "2_agents_with_contacts.json",
}

// Options selects what a pipeline run does.
type Options struct {
	ZipCode    string
	Pages      int
	Level      wiza.EnrichmentLevel
	Force      map[Stage]bool
	SkipExport bool
}

// StageReport summarizes one stage of a run.
type StageReport struct {
	Stage    Stage
	Skipped  bool
	Stats    enrich.Stats
	Output   string
	Duration time.Duration
}

// Summary is the result of a full pipeline run.
type Summary struct {
	RunID   string
	Reports []StageReport
}

// Pipeline orchestrates the acquire, linkedin, contacts and export stages.
type Pipeline struct {
	cfg     *config.Config
	ckpt    *checkpoint.Store
	runs    store.Store
	extract firecrawl.Client
	reveal  wiza.Client
	now     func() time.Time
}

// New creates a Pipeline. The run-history store may be nil, in which case
// runs are not recorded.
func New(cfg *config.Config, ckpt *checkpoint.Store, runs store.Store, extract firecrawl.Client, reveal wiza.Client) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		ckpt:    ckpt,
		runs:    runs,
		extract: extract,
		reveal:  reveal,
		now:     time.Now,
	}
}

// WithNow sets a fixed clock for testing.
func (p *Pipeline) WithNow(fn func() time.Time) *Pipeline {
	p.now = fn
	return p
}

// Run executes all stages in order. A stage whose artifact already exists is
// skipped unless forced. The first stage error halts the pipeline; artifacts
// written by earlier stages stay on disk so the run can be resumed.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Summary, error) {
	log := zap.L()
	summary := &Summary{}

	runID := p.startRun(ctx, opts)
	summary.RunID = runID

	type stageFn func(context.Context, Options) (enrich.Stats, string, error)
	stageFns := map[Stage]stageFn{
		StageAcquire:  p.runAcquire,
		StageLinkedIn: p.runLinkedIn,
		StageContacts: p.runContacts,
		StageExport:   p.runExport,
	}

	for _, stage := range Stages {
		if stage == StageExport && opts.SkipExport {
			log.Info("pipeline: export skipped by request")
			continue
		}

		artifact := artifactNames[stage]
		if artifact != "" && p.ckpt.Exists(artifact) && !opts.Force[stage] {
			log.Info("pipeline: stage skipped, checkpoint exists",
				zap.String("stage", string(stage)),
				zap.String("artifact", p.ckpt.Path(artifact)),
			)
			report := StageReport{Stage: stage, Skipped: true, Output: p.ckpt.Path(artifact)}
			summary.Reports = append(summary.Reports, report)
			p.recordStage(ctx, runID, report)
			continue
		}

		start := p.now()
		stats, output, err := stageFns[stage](ctx, opts)
		report := StageReport{
			Stage:    stage,
			Stats:    stats,
			Output:   output,
			Duration: p.now().Sub(start),
		}
		summary.Reports = append(summary.Reports, report)

		if err != nil {
			p.recordStageError(ctx, runID, report, err)
			p.finishRun(ctx, runID, store.RunStatusFailed, err)
			log.Error("pipeline: stage failed, halting",
				zap.String("stage", string(stage)),
				zap.Strings("checkpoints_present", p.existingArtifacts()),
				zap.Error(err),
			)
			return summary, eris.Wrapf(err, "pipeline: stage %s", stage)
		}

		p.recordStage(ctx, runID, report)
		log.Info("pipeline: stage complete",
			zap.String("stage", string(stage)),
			zap.Int("attempted", stats.Attempted),
			zap.Int("enriched", stats.Enriched),
			zap.Int("dropped", stats.Dropped),
			zap.Int("skipped", stats.Skipped),
			zap.Duration("duration", report.Duration),
			zap.String("output", output),
		)
	}

	p.finishRun(ctx, runID, store.RunStatusComplete, nil)
	return summary, nil
}

// existingArtifacts lists checkpoint files present on disk so a halted run
// reports where it can be resumed from.
func (p *Pipeline) existingArtifacts() []string {
	var present []string
	for _, stage := range Stages {
		name := artifactNames[stage]
		if name != "" && p.ckpt.Exists(name) {
			present = append(present, p.ckpt.Path(name))
		}
	}
	return present
}

func (p *Pipeline) startRun(ctx context.Context, opts Options) string {
	if p.runs == nil {
		return ""
	}
	run, err := p.runs.CreateRun(ctx, opts.ZipCode, opts.Pages)
	if err != nil {
		zap.L().Warn("pipeline: failed to record run", zap.Error(err))
		return ""
	}
	return run.ID
}

func (p *Pipeline) finishRun(ctx context.Context, runID string, status string, runErr error) {
	if p.runs == nil || runID == "" {
		return
	}
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	if err := p.runs.FinishRun(ctx, runID, status, msg); err != nil {
		zap.L().Warn("pipeline: failed to finish run", zap.Error(err))
	}
}

func (p *Pipeline) recordStage(ctx context.Context, runID string, report StageReport) {
	p.recordStageError(ctx, runID, report, nil)
}

func (p *Pipeline) recordStageError(ctx context.Context, runID string, report StageReport, stageErr error) {
	if p.runs == nil || runID == "" {
		return
	}
	msg := ""
	if stageErr != nil {
		msg = stageErr.Error()
	}
	err := p.runs.RecordStage(ctx, store.StageRun{
		RunID:      runID,
		Stage:      string(report.Stage),
		Skipped:    report.Skipped,
		Stats:      report.Stats,
		DurationMS: report.Duration.Milliseconds(),
		Error:      msg,
		StartedAt:  p.now(),
	})
	if err != nil {
		zap.L().Warn("pipeline: failed to record stage", zap.Error(err))
	}
}
