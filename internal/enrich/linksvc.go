package enrich

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/homereels/agent-enrich/internal/model"
	"github.com/homereels/agent-enrich/pkg/firecrawl"
)

const linkExtractPrompt = `Extract the LinkedIn profile URL for this real estate agent. ` +
	`linkedin_profile looks like "https://www.linkedin.com/in/userid"`

// linkExtractSchema is the result shape requested from Firecrawl.
var linkExtractSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"linkedin_profile": map[string]any{"type": "string"},
	},
	"required": []string{"linkedin_profile"},
}

// LinkService finds an agent's LinkedIn profile URL by running a Firecrawl
// extract job against the agent's Zillow profile page.
type LinkService struct {
	client firecrawl.Client
}

// NewLinkService creates a LinkService backed by the given Firecrawl client.
func NewLinkService(client firecrawl.Client) *LinkService {
	return &LinkService{client: client}
}

// Submit starts an extract job for the profile page and returns its id.
func (s *LinkService) Submit(ctx context.Context, profileURL string) (string, error) {
	resp, err := s.client.Extract(ctx, firecrawl.ExtractRequest{
		URLs:   []string{profileURL},
		Prompt: linkExtractPrompt,
		Schema: linkExtractSchema,
	})
	if err != nil {
		return "", eris.Wrap(err, "enrich: submit link extract")
	}
	if !resp.Success {
		return "", eris.New("enrich: extract request not accepted")
	}
	return resp.ID, nil
}

// Status maps one extract status poll onto the job state machine. A
// completed extract that found no LinkedIn URL is reported as failed: the
// stage exists to find the link, so an empty result is a miss.
func (s *LinkService) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	resp, err := s.client.GetExtractStatus(ctx, jobID)
	if err != nil {
		return nil, err
	}

	switch resp.Status {
	case firecrawl.StatusCompleted:
		var data struct {
			LinkedInProfile string `json:"linkedin_profile"`
		}
		if len(resp.Data) > 0 {
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return nil, eris.Wrap(err, "enrich: decode extract data")
			}
		}
		if data.LinkedInProfile == "" {
			return &JobStatus{Failed: true, Reason: "no linkedin profile found"}, nil
		}
		return &JobStatus{
			Complete: true,
			Payload:  model.Enrichment{LinkedIn: data.LinkedInProfile},
		}, nil
	case firecrawl.StatusFailed, firecrawl.StatusCancelled:
		reason := resp.Error
		if reason == "" {
			reason = resp.Status
		}
		return &JobStatus{Failed: true, Reason: reason}, nil
	default:
		return &JobStatus{}, nil
	}
}
