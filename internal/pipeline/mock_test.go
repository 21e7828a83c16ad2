package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/homereels/agent-enrich/pkg/firecrawl"
	"github.com/homereels/agent-enrich/pkg/wiza"
)

// mockExtract implements firecrawl.Client and counts calls.
type mockExtract struct {
	calls       atomic.Int32
	extractFunc func(ctx context.Context, req firecrawl.ExtractRequest) (*firecrawl.ExtractResponse, error)
	statusFunc  func(ctx context.Context, id string) (*firecrawl.ExtractStatusResponse, error)
}

func (m *mockExtract) Extract(ctx context.Context, req firecrawl.ExtractRequest) (*firecrawl.ExtractResponse, error) {
	m.calls.Add(1)
	return m.extractFunc(ctx, req)
}

func (m *mockExtract) GetExtractStatus(ctx context.Context, id string) (*firecrawl.ExtractStatusResponse, error) {
	m.calls.Add(1)
	return m.statusFunc(ctx, id)
}

// mockReveal implements wiza.Client and counts calls.
type mockReveal struct {
	calls       atomic.Int32
	createFunc  func(ctx context.Context, req wiza.RevealRequest) (*wiza.RevealResponse, error)
	getFunc     func(ctx context.Context, id int64) (*wiza.RevealResponse, error)
	creditsFunc func(ctx context.Context) (*wiza.CreditsResponse, error)
}

func (m *mockReveal) CreateReveal(ctx context.Context, req wiza.RevealRequest) (*wiza.RevealResponse, error) {
	m.calls.Add(1)
	return m.createFunc(ctx, req)
}

func (m *mockReveal) GetReveal(ctx context.Context, id int64) (*wiza.RevealResponse, error) {
	m.calls.Add(1)
	return m.getFunc(ctx, id)
}

func (m *mockReveal) Credits(ctx context.Context) (*wiza.CreditsResponse, error) {
	m.calls.Add(1)
	if m.creditsFunc == nil {
		return &wiza.CreditsResponse{}, nil
	}
	return m.creditsFunc(ctx)
}
