package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homereels/agent-enrich/internal/enrich"
	"github.com/homereels/agent-enrich/internal/model"
	"github.com/homereels/agent-enrich/pkg/wiza"
)

// runContacts enriches each agent with email and phone through Wiza. The
// stage is best-effort: agents stay in the output even when the reveal did
// not resolve. Level none copies the previous checkpoint forward without any
// remote calls.
func (p *Pipeline) runContacts(ctx context.Context, opts Options) (enrich.Stats, string, error) {
	var stats enrich.Stats

	input, err := p.ckpt.Load(artifactNames[StageLinkedIn])
	if err != nil {
		return stats, "", eris.Wrap(err, "contacts: load linkedin checkpoint")
	}
	if model.AgentCount(input) == 0 {
		return stats, "", eris.New("contacts: linkedin checkpoint has no agents")
	}

	name := artifactNames[StageContacts]

	level := opts.Level
	if level == "" {
		level = wiza.EnrichmentLevel(p.cfg.Wiza.EnrichmentLevel)
	}
	if level == wiza.LevelNone {
		zap.L().Info("contacts: level none, carrying checkpoint forward")
		stats.Skipped = model.AgentCount(input)
		if err := p.ckpt.Save(name, input); err != nil {
			return stats, "", eris.Wrap(err, "contacts: save checkpoint")
		}
		return stats, p.ckpt.Path(name), nil
	}

	if p.cfg.Wiza.Key == "" {
		return stats, "", eris.New("contacts: wiza api key not configured")
	}

	// Verify credits before submitting any reveal.
	if _, err := p.reveal.Credits(ctx); err != nil {
		return stats, "", eris.Wrap(err, "contacts: verify wiza credits")
	}

	zap.L().Info("contacts: enriching agents",
		zap.Int("agents", model.AgentCount(input)),
		zap.String("level", string(level)),
	)

	poller := enrich.NewPoller(enrich.NewContactService(p.reveal, level), p.cfg.Poll.Interval(), p.cfg.Poll.MaxAttempts)
	batch := enrich.NewBatch(poller, enrich.BestEffort, func(a model.Agent) string {
		return a.LinkedIn
	})

	out, stats, err := batch.Run(ctx, input)
	if err != nil {
		return stats, "", err
	}

	if err := p.ckpt.Save(name, out); err != nil {
		return stats, "", eris.Wrap(err, "contacts: save checkpoint")
	}
	return stats, p.ckpt.Path(name), nil
}
