package enrich

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/homereels/agent-enrich/internal/model"
	"github.com/homereels/agent-enrich/pkg/wiza"
)

// ContactService reveals an agent's email and phone through the Wiza
// individual-reveal API.
type ContactService struct {
	client wiza.Client
	level  wiza.EnrichmentLevel
}

// NewContactService creates a ContactService revealing at the given level.
func NewContactService(client wiza.Client, level wiza.EnrichmentLevel) *ContactService {
	return &ContactService{client: client, level: level}
}

// Submit creates an individual reveal and returns its id.
func (s *ContactService) Submit(ctx context.Context, profileURL string) (string, error) {
	resp, err := s.client.CreateReveal(ctx, wiza.RevealRequest{
		IndividualReveal: wiza.IndividualReveal{ProfileURL: profileURL},
		EnrichmentLevel:  s.level,
	})
	if err != nil {
		return "", eris.Wrap(err, "enrich: create reveal")
	}
	if resp.Data.ID == 0 {
		return "", nil
	}
	return strconv.FormatInt(resp.Data.ID, 10), nil
}

// Status maps one reveal status poll onto the job state machine.
func (s *ContactService) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	id, err := strconv.ParseInt(jobID, 10, 64)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: parse reveal id")
	}

	resp, err := s.client.GetReveal(ctx, id)
	if err != nil {
		return nil, err
	}

	data := resp.Data
	switch {
	case data.Status == wiza.StatusFailed:
		reason := data.FailReason
		if reason == "" {
			reason = "reveal failed"
		}
		return &JobStatus{Failed: true, Reason: reason}, nil
	case data.IsComplete:
		return &JobStatus{
			Complete: true,
			Payload:  model.Enrichment{Email: data.Email, Phone: data.Phone},
		}, nil
	default:
		return &JobStatus{}, nil
	}
}
