package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homereels/agent-enrich/pkg/wiza"
)

// mockWiza implements wiza.Client.
type mockWiza struct {
	createFunc  func(ctx context.Context, req wiza.RevealRequest) (*wiza.RevealResponse, error)
	getFunc     func(ctx context.Context, id int64) (*wiza.RevealResponse, error)
	creditsFunc func(ctx context.Context) (*wiza.CreditsResponse, error)
}

func (m *mockWiza) CreateReveal(ctx context.Context, req wiza.RevealRequest) (*wiza.RevealResponse, error) {
	return m.createFunc(ctx, req)
}

func (m *mockWiza) GetReveal(ctx context.Context, id int64) (*wiza.RevealResponse, error) {
	return m.getFunc(ctx, id)
}

func (m *mockWiza) Credits(ctx context.Context) (*wiza.CreditsResponse, error) {
	return m.creditsFunc(ctx)
}

func TestContactService_Submit(t *testing.T) {
	client := &mockWiza{
		createFunc: func(ctx context.Context, req wiza.RevealRequest) (*wiza.RevealResponse, error) {
			assert.Equal(t, "https://www.linkedin.com/in/johndoe", req.IndividualReveal.ProfileURL)
			assert.Equal(t, wiza.LevelFull, req.EnrichmentLevel)
			return &wiza.RevealResponse{Data: wiza.RevealData{ID: 42, Status: "queued"}}, nil
		},
	}

	id, err := NewContactService(client, wiza.LevelFull).Submit(context.Background(), "https://www.linkedin.com/in/johndoe")
	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

func TestContactService_SubmitWithoutID(t *testing.T) {
	client := &mockWiza{
		createFunc: func(ctx context.Context, req wiza.RevealRequest) (*wiza.RevealResponse, error) {
			return &wiza.RevealResponse{}, nil
		},
	}

	// An empty id makes the poller resolve the job as a submit error.
	id, err := NewContactService(client, wiza.LevelFull).Submit(context.Background(), "u")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestContactService_Status(t *testing.T) {
	tests := []struct {
		name         string
		data         wiza.RevealData
		wantComplete bool
		wantFailed   bool
		wantEmail    string
		wantPhone    string
	}{
		{
			name:         "complete",
			data:         wiza.RevealData{ID: 42, Status: "finished", IsComplete: true, Email: "john@example.com", Phone: "+1 555 0100"},
			wantComplete: true,
			wantEmail:    "john@example.com",
			wantPhone:    "+1 555 0100",
		},
		{
			name:       "failed",
			data:       wiza.RevealData{ID: 42, Status: wiza.StatusFailed, FailReason: "profile private"},
			wantFailed: true,
		},
		{
			name: "still processing",
			data: wiza.RevealData{ID: 42, Status: "in_progress"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockWiza{
				getFunc: func(ctx context.Context, id int64) (*wiza.RevealResponse, error) {
					assert.Equal(t, int64(42), id)
					return &wiza.RevealResponse{Data: tt.data}, nil
				},
			}

			status, err := NewContactService(client, wiza.LevelFull).Status(context.Background(), "42")
			require.NoError(t, err)
			assert.Equal(t, tt.wantComplete, status.Complete)
			assert.Equal(t, tt.wantFailed, status.Failed)
			assert.Equal(t, tt.wantEmail, status.Payload.Email)
			assert.Equal(t, tt.wantPhone, status.Payload.Phone)
		})
	}
}

func TestContactService_StatusRejectsBadJobID(t *testing.T) {
	client := &mockWiza{}
	_, err := NewContactService(client, wiza.LevelFull).Status(context.Background(), "not-a-number")
	require.Error(t, err)
}
