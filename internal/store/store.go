// Package store records pipeline run history in a local database so the
// status command can show past runs and where each one stopped.
package store

import (
	"context"
	"time"

	"github.com/homereels/agent-enrich/internal/enrich"
)

// Run statuses.
const (
	RunStatusRunning  = "running"
	RunStatusComplete = "complete"
	RunStatusFailed   = "failed"
)

// Run is one pipeline invocation.
type Run struct {
	ID         string     `json:"id"`
	ZipCode    string     `json:"zip_code"`
	Pages      int        `json:"pages"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// StageRun is one stage execution within a run.
type StageRun struct {
	RunID      string       `json:"run_id"`
	Stage      string       `json:"stage"`
	Skipped    bool         `json:"skipped"`
	Stats      enrich.Stats `json:"stats"`
	DurationMS int64        `json:"duration_ms"`
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
}

// Store defines the run-history persistence interface.
type Store interface {
	Migrate(ctx context.Context) error
	CreateRun(ctx context.Context, zipCode string, pages int) (*Run, error)
	FinishRun(ctx context.Context, runID string, status string, errMsg string) error
	RecordStage(ctx context.Context, stage StageRun) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ListStages(ctx context.Context, runID string) ([]StageRun, error)
	Close() error
}
