package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homereels/agent-enrich/internal/model"
)

// Policy decides whether an agent whose job did not resolve to an enrichment
// is kept in the stage output.
type Policy int

const (
	// MustFind drops agents without a successful enrichment and omits
	// offices left empty.
	MustFind Policy = iota
	// BestEffort keeps every agent regardless of outcome and retains
	// offices even when no agent was enriched.
	BestEffort
)

func (p Policy) String() string {
	if p == MustFind {
		return "must_find"
	}
	return "best_effort"
}

// Stats counts per-agent outcomes for one stage run.
type Stats struct {
	Attempted int `json:"attempted"`
	Enriched  int `json:"enriched"`
	Dropped   int `json:"dropped"`
	Skipped   int `json:"skipped"`
}

// Batch applies one enrichment stage to every agent in every office,
// submitting one job per agent and folding successful payloads back into
// the agent before it is written to the next checkpoint.
type Batch struct {
	poller *Poller
	policy Policy
	ref    func(model.Agent) string
}

// NewBatch creates a Batch. ref selects the profile reference submitted for
// each agent; an empty reference means the agent has nothing to enrich and
// is skipped.
func NewBatch(poller *Poller, policy Policy, ref func(model.Agent) string) *Batch {
	return &Batch{poller: poller, policy: policy, ref: ref}
}

// Run enriches offices in input order, preserving the relative order of kept
// agents within each office. Per-agent failures never abort the batch;
// cancellation is honored between agents only, so an already submitted job
// always reaches a terminal state.
func (b *Batch) Run(ctx context.Context, offices []model.Office) ([]model.Office, Stats, error) {
	log := zap.L().With(zap.String("policy", b.policy.String()))
	total := model.AgentCount(offices)
	processed := 0

	out := make([]model.Office, 0, len(offices))
	var stats Stats

	for _, office := range offices {
		kept := make([]model.Agent, 0, len(office.Agents))

		for _, agent := range office.Agents {
			if err := ctx.Err(); err != nil {
				return nil, stats, eris.Wrap(err, "enrich: batch cancelled")
			}
			processed++

			ref := b.ref(agent)
			if ref == "" {
				stats.Skipped++
				log.Warn("enrich: agent has no profile reference",
					zap.String("agent", agent.Name),
				)
				if b.policy == BestEffort {
					kept = append(kept, agent)
				} else {
					stats.Dropped++
				}
				continue
			}

			stats.Attempted++
			outcome := b.poller.Run(ctx, ref)

			log.Info("enrich: agent processed",
				zap.String("agent", agent.Name),
				zap.String("outcome", string(outcome.Kind)),
				zap.String("job_id", outcome.JobID),
				zap.Int("progress", processed),
				zap.Int("total", total),
			)

			if outcome.Kind == OutcomeEnriched {
				agent.Merge(outcome.Payload)
				stats.Enriched++
				kept = append(kept, agent)
				continue
			}

			if b.policy == BestEffort {
				kept = append(kept, agent)
			} else {
				stats.Dropped++
			}
		}

		if len(kept) == 0 && b.policy == MustFind {
			continue
		}
		office.Agents = kept
		out = append(out, office)
	}

	return out, stats, nil
}
