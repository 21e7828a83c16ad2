// Package enrich drives per-agent enrichment jobs against asynchronous
// reveal services and applies stage acceptance policies to the results.
package enrich

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/homereels/agent-enrich/internal/model"
)

// Service is one asynchronous enrichment backend: submit a profile
// reference, then poll the resulting job until it reaches a terminal state.
type Service interface {
	Submit(ctx context.Context, profileURL string) (string, error)
	Status(ctx context.Context, jobID string) (*JobStatus, error)
}

// JobStatus is a single poll observation of a submitted job.
type JobStatus struct {
	Complete bool
	Failed   bool
	Reason   string
	Payload  model.Enrichment
}

// jobState tracks a job through the submit/poll machine. The four terminal
// states map one-to-one onto OutcomeKind values.
type jobState int

const (
	stateSubmitted jobState = iota
	stateProcessing
	stateCompleted
	stateFailed
	stateSubmitFailed
	stateTimedOut
)

func (s jobState) String() string {
	switch s {
	case stateSubmitted:
		return "submitted"
	case stateProcessing:
		return "processing"
	case stateCompleted:
		return "completed"
	case stateFailed:
		return "failed"
	case stateSubmitFailed:
		return "submit_failed"
	case stateTimedOut:
		return "timed_out"
	}
	return "unknown"
}

// OutcomeKind classifies how a job resolved.
type OutcomeKind string

const (
	OutcomeEnriched      OutcomeKind = "enriched"
	OutcomeRemoteFailure OutcomeKind = "remote_failure"
	OutcomeTimeout       OutcomeKind = "timeout"
	OutcomeSubmitError   OutcomeKind = "submit_error"
)

// Outcome is the terminal result of one enrichment job.
type Outcome struct {
	Kind    OutcomeKind
	Payload model.Enrichment
	Reason  string
	JobID   string
	Polls   int
}

const (
	defaultInterval    = 5 * time.Second
	defaultMaxAttempts = 10
)

// Poller runs one job per call through the submit/poll state machine with a
// fixed poll interval and a bounded attempt budget.
type Poller struct {
	svc         Service
	interval    time.Duration
	maxAttempts int
	sleep       func(time.Duration)
}

// NewPoller creates a Poller. Non-positive interval or attempt values fall
// back to the defaults (5s, 10 attempts).
func NewPoller(svc Service, interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Poller{
		svc:         svc,
		interval:    interval,
		maxAttempts: maxAttempts,
		sleep:       time.Sleep,
	}
}

// WithSleep replaces the wait between polls, for tests.
func (p *Poller) WithSleep(fn func(time.Duration)) *Poller {
	p.sleep = fn
	return p
}

// Run drives one job from submission to a terminal state. Once the remote
// service has accepted the job it is always polled to resolution, even if
// the caller's context is cancelled in the meantime; abandoning an accepted
// job would orphan the remote work.
func (p *Poller) Run(ctx context.Context, profileURL string) Outcome {
	state := stateSubmitted

	id, err := p.svc.Submit(ctx, profileURL)
	if err != nil {
		return p.finish(stateSubmitFailed, Outcome{Reason: err.Error()})
	}
	if id == "" {
		// A job without an identifier cannot be polled. Treat it as a
		// submission failure rather than passing a partial result through.
		return p.finish(stateSubmitFailed, Outcome{Reason: "remote service returned no job id"})
	}

	state = stateProcessing
	ctx = context.WithoutCancel(ctx)
	out := Outcome{JobID: id}

	for attempt := 1; attempt <= p.maxAttempts && state == stateProcessing; attempt++ {
		status, err := p.svc.Status(ctx, id)
		out.Polls++

		switch {
		case err != nil:
			// A transport miss is non-terminal; it consumes this attempt
			// and the job stays in processing.
			zap.L().Warn("enrich: poll failed",
				zap.String("job_id", id),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", p.maxAttempts),
				zap.Error(err),
			)
		case status.Failed:
			state = stateFailed
			out.Reason = status.Reason
		case status.Complete:
			state = stateCompleted
			out.Payload = status.Payload
		}

		if state == stateProcessing && attempt < p.maxAttempts {
			p.sleep(p.interval)
		}
	}

	if state == stateProcessing {
		state = stateTimedOut
		out.Reason = fmt.Sprintf("no terminal status after %d polls", p.maxAttempts)
	}
	return p.finish(state, out)
}

func (p *Poller) finish(state jobState, out Outcome) Outcome {
	switch state {
	case stateCompleted:
		out.Kind = OutcomeEnriched
	case stateFailed:
		out.Kind = OutcomeRemoteFailure
	case stateSubmitFailed:
		out.Kind = OutcomeSubmitError
	case stateTimedOut:
		out.Kind = OutcomeTimeout
	}

	zap.L().Debug("enrich: job resolved",
		zap.String("job_id", out.JobID),
		zap.String("state", state.String()),
		zap.Int("polls", out.Polls),
	)
	return out
}
