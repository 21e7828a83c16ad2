package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homereels/agent-enrich/internal/enrich"
	"github.com/homereels/agent-enrich/internal/model"
)

// runLinkedIn enriches each agent with a LinkedIn profile URL discovered on
// the agent's Zillow profile page. The stage is must-find: agents without a
// discovered link are dropped from the output.
func (p *Pipeline) runLinkedIn(ctx context.Context, _ Options) (enrich.Stats, string, error) {
	var stats enrich.Stats

	if p.cfg.Firecrawl.Key == "" {
		return stats, "", eris.New("linkedin: firecrawl api key not configured")
	}

	input, err := p.ckpt.Load(artifactNames[StageAcquire])
	if err != nil {
		return stats, "", eris.Wrap(err, "linkedin: load acquire checkpoint")
	}
	if model.AgentCount(input) == 0 {
		return stats, "", eris.New("linkedin: acquire checkpoint has no agents")
	}

	zap.L().Info("linkedin: enriching agents", zap.Int("agents", model.AgentCount(input)))

	poller := enrich.NewPoller(enrich.NewLinkService(p.extract), p.cfg.Poll.Interval(), p.cfg.Poll.MaxAttempts)
	batch := enrich.NewBatch(poller, enrich.MustFind, func(a model.Agent) string {
		return a.ZillowProfile
	})

	out, stats, err := batch.Run(ctx, input)
	if err != nil {
		return stats, "", err
	}

	name := artifactNames[StageLinkedIn]
	if err := p.ckpt.Save(name, out); err != nil {
		return stats, "", eris.Wrap(err, "linkedin: save checkpoint")
	}
	return stats, p.ckpt.Path(name), nil
}
