package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homereels/agent-enrich/internal/enrich"
	"github.com/homereels/agent-enrich/internal/model"
	"github.com/homereels/agent-enrich/pkg/firecrawl"
)

const acquirePrompt = `Extract the name, and Zillow profile URL for each real estate agent. ` +
	`zillow_profile looks like "https://www.zillow.com/profile/userid"`

// acquireSchema is the result shape requested from Firecrawl for a search
// results page.
var acquireSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"agents": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":           map[string]any{"type": "string"},
					"zillow_profile": map[string]any{"type": "string"},
				},
				"required": []string{"name", "zillow_profile"},
			},
		},
	},
	"required": []string{"agents"},
}

// searchURLs builds the Zillow agent-directory page URLs for a ZIP code.
func searchURLs(zipCode string, pages int) []string {
	base := fmt.Sprintf("https://www.zillow.com/professionals/real-estate-agent-reviews/%s/", zipCode)
	urls := make([]string, 0, pages)
	for page := 1; page <= pages; page++ {
		urls = append(urls, fmt.Sprintf("%s?page=%d", base, page))
	}
	return urls
}

// runAcquire extracts agent listings page by page and writes the first
// checkpoint. A page that fails to extract is logged and skipped; the stage
// fails only when configuration is missing or no agents were found at all.
func (p *Pipeline) runAcquire(ctx context.Context, opts Options) (enrich.Stats, string, error) {
	var stats enrich.Stats

	if p.cfg.Firecrawl.Key == "" {
		return stats, "", eris.New("acquire: firecrawl api key not configured")
	}
	if opts.ZipCode == "" || opts.Pages <= 0 {
		return stats, "", eris.New("acquire: zip code and page count are required")
	}

	log := zap.L().With(zap.String("zip", opts.ZipCode))
	urls := searchURLs(opts.ZipCode, opts.Pages)
	log.Info("acquire: extracting agent listings", zap.Int("pages", len(urls)))

	var agents []model.Agent
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return stats, "", eris.Wrap(err, "acquire: cancelled")
		}

		stats.Attempted++
		pageAgents, err := p.extractPage(ctx, url)
		if err != nil {
			stats.Dropped++
			log.Warn("acquire: page extraction failed", zap.String("url", url), zap.Error(err))
			continue
		}
		stats.Enriched++
		agents = append(agents, pageAgents...)
		log.Info("acquire: page extracted", zap.String("url", url), zap.Int("agents", len(pageAgents)))
	}

	if len(agents) == 0 {
		return stats, "", eris.New("acquire: no agents extracted")
	}

	artifact := []model.Office{{Agents: agents}}
	name := artifactNames[StageAcquire]
	if err := p.ckpt.Save(name, artifact); err != nil {
		return stats, "", eris.Wrap(err, "acquire: save checkpoint")
	}

	log.Info("acquire: complete", zap.Int("total_agents", len(agents)))
	return stats, p.ckpt.Path(name), nil
}

// extractPage runs one extract job for a search results page and waits for
// its result.
func (p *Pipeline) extractPage(ctx context.Context, url string) ([]model.Agent, error) {
	resp, err := p.extract.Extract(ctx, firecrawl.ExtractRequest{
		URLs:   []string{url},
		Prompt: acquirePrompt,
		Schema: acquireSchema,
	})
	if err != nil {
		return nil, eris.Wrap(err, "start extract")
	}
	if !resp.Success || resp.ID == "" {
		return nil, eris.New("extract request not accepted")
	}

	status, err := firecrawl.PollExtract(ctx, p.extract, resp.ID,
		firecrawl.WithPollInterval(p.cfg.Poll.Interval()),
		firecrawl.WithPollTimeout(p.cfg.Poll.Interval()*time.Duration(p.cfg.Poll.MaxAttempts)),
	)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Agents []model.Agent `json:"agents"`
	}
	if err := json.Unmarshal(status.Data, &payload); err != nil {
		return nil, eris.Wrap(err, "decode extract data")
	}
	return payload.Agents, nil
}
