package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homereels/agent-enrich/internal/model"
)

// linkedInByProfile resolves jobs by profile URL: entries present map to an
// enriched LinkedIn URL, missing entries fail.
func linkedInByProfile(resolved map[string]string) Service {
	jobs := map[string]string{}
	return &mockService{
		submitFunc: func(ctx context.Context, profileURL string) (string, error) {
			id := "job-" + profileURL
			jobs[id] = profileURL
			return id, nil
		},
		statusFunc: func(ctx context.Context, jobID string) (*JobStatus, error) {
			url, ok := resolved[jobs[jobID]]
			if !ok {
				return &JobStatus{Failed: true, Reason: "no linkedin profile found"}, nil
			}
			return &JobStatus{Complete: true, Payload: model.Enrichment{LinkedIn: url}}, nil
		},
	}
}

func zillowRef(a model.Agent) string { return a.ZillowProfile }

func TestBatch_MustFindKeepsOnlyEnrichedAgents(t *testing.T) {
	svc := linkedInByProfile(map[string]string{"u1": "L1"})
	batch := NewBatch(newTestPoller(svc, 10), MustFind, zillowRef)

	input := []model.Office{
		{Agents: []model.Agent{
			{Name: "A", ZillowProfile: "u1"},
			{Name: "B", ZillowProfile: "u2"},
		}},
	}

	out, stats, err := batch.Run(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, out, 1)
	require.Len(t, out[0].Agents, 1)
	assert.Equal(t, model.Agent{Name: "A", ZillowProfile: "u1", LinkedIn: "L1"}, out[0].Agents[0])

	assert.Equal(t, Stats{Attempted: 2, Enriched: 1, Dropped: 1}, stats)
}

func TestBatch_MustFindOmitsEmptyOffices(t *testing.T) {
	svc := linkedInByProfile(map[string]string{"u3": "L3"})
	batch := NewBatch(newTestPoller(svc, 10), MustFind, zillowRef)

	input := []model.Office{
		{Name: "First", Agents: []model.Agent{{Name: "A", ZillowProfile: "u1"}}},
		{Name: "Second", Agents: []model.Agent{{Name: "C", ZillowProfile: "u3"}}},
	}

	out, _, err := batch.Run(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "Second", out[0].Name)
}

func TestBatch_BestEffortKeepsAllAgents(t *testing.T) {
	svc := &mockService{
		submitFunc: func(ctx context.Context, profileURL string) (string, error) { return "job", nil },
		statusFunc: func(ctx context.Context, jobID string) (*JobStatus, error) {
			return &JobStatus{Failed: true, Reason: "reveal failed"}, nil
		},
	}
	batch := NewBatch(newTestPoller(svc, 10), BestEffort, func(a model.Agent) string { return a.LinkedIn })

	input := []model.Office{
		{Name: "Office", Agents: []model.Agent{
			{Name: "A", ZillowProfile: "u1", LinkedIn: "L1"},
			{Name: "B", ZillowProfile: "u2"}, // no linkedin, skipped but kept
		}},
	}

	out, stats, err := batch.Run(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Len(t, out[0].Agents, 2)
	assert.Equal(t, Stats{Attempted: 1, Skipped: 1}, stats)
}

func TestBatch_BestEffortRetainsEmptiedOffices(t *testing.T) {
	svc := &mockService{
		submitFunc: func(ctx context.Context, profileURL string) (string, error) { return "job", nil },
		statusFunc: func(ctx context.Context, jobID string) (*JobStatus, error) {
			return &JobStatus{}, nil // never resolves
		},
	}
	batch := NewBatch(newTestPoller(svc, 2), BestEffort, func(a model.Agent) string { return a.LinkedIn })

	input := []model.Office{{Name: "Office", Agents: []model.Agent{{Name: "A", LinkedIn: "L1", ZillowProfile: "u1"}}}}

	out, stats, err := batch.Run(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Len(t, out[0].Agents, 1)
	assert.Empty(t, out[0].Agents[0].Email)
	assert.Equal(t, Stats{Attempted: 1}, stats)
}

func TestBatch_PreservesOrder(t *testing.T) {
	svc := linkedInByProfile(map[string]string{"u1": "L1", "u3": "L3", "u4": "L4"})
	batch := NewBatch(newTestPoller(svc, 10), MustFind, zillowRef)

	input := []model.Office{
		{Agents: []model.Agent{
			{Name: "A", ZillowProfile: "u1"},
			{Name: "B", ZillowProfile: "u2"},
			{Name: "C", ZillowProfile: "u3"},
			{Name: "D", ZillowProfile: "u4"},
		}},
	}

	out, _, err := batch.Run(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, out, 1)
	names := make([]string, 0, len(out[0].Agents))
	for _, a := range out[0].Agents {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"A", "C", "D"}, names)
}

func TestBatch_OneAgentFailureDoesNotAbortSiblings(t *testing.T) {
	submits := 0
	svc := &mockService{
		submitFunc: func(ctx context.Context, profileURL string) (string, error) {
			submits++
			return "job", nil
		},
		statusFunc: func(ctx context.Context, jobID string) (*JobStatus, error) {
			return &JobStatus{Failed: true, Reason: "boom"}, nil
		},
	}
	batch := NewBatch(newTestPoller(svc, 10), MustFind, zillowRef)

	input := []model.Office{
		{Agents: []model.Agent{
			{Name: "A", ZillowProfile: "u1"},
			{Name: "B", ZillowProfile: "u2"},
			{Name: "C", ZillowProfile: "u3"},
		}},
	}

	out, stats, err := batch.Run(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 3, submits)
	assert.Equal(t, Stats{Attempted: 3, Dropped: 3}, stats)
}

func TestBatch_CancelledBetweenAgents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	submits := 0
	svc := &mockService{
		submitFunc: func(ctx context.Context, profileURL string) (string, error) {
			submits++
			cancel() // cancel while the first job is in flight
			return "job", nil
		},
		statusFunc: func(ctx context.Context, jobID string) (*JobStatus, error) {
			return &JobStatus{Complete: true}, nil
		},
	}
	batch := NewBatch(newTestPoller(svc, 10), MustFind, zillowRef)

	input := []model.Office{
		{Agents: []model.Agent{
			{Name: "A", ZillowProfile: "u1"},
			{Name: "B", ZillowProfile: "u2"},
		}},
	}

	_, _, err := batch.Run(ctx, input)
	require.Error(t, err)
	// The in-flight job finished; no new job was started for B.
	assert.Equal(t, 1, submits)
}
