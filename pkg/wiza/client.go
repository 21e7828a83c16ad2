// Package wiza wraps the Wiza individual-reveal API: asynchronous email and
// phone lookups for a LinkedIn profile URL.
package wiza

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Default base URL for the Wiza API.
const defaultBaseURL = "https://wiza.co"

// EnrichmentLevel selects which contact fields a reveal looks up.
type EnrichmentLevel string

const (
	LevelNone    EnrichmentLevel = "none"
	LevelPartial EnrichmentLevel = "partial" // email only
	LevelPhone   EnrichmentLevel = "phone"
	LevelFull    EnrichmentLevel = "full"
)

// StatusFailed is the reveal status reported when the lookup failed.
const StatusFailed = "failed"

// Client defines the Wiza API operations.
type Client interface {
	CreateReveal(ctx context.Context, req RevealRequest) (*RevealResponse, error)
	GetReveal(ctx context.Context, id int64) (*RevealResponse, error)
	Credits(ctx context.Context) (*CreditsResponse, error)
}

// IndividualReveal identifies the profile to reveal.
type IndividualReveal struct {
	ProfileURL string `json:"profile_url"`
}

// RevealRequest is the body for POST /api/individual_reveals.
type RevealRequest struct {
	IndividualReveal IndividualReveal `json:"individual_reveal"`
	EnrichmentLevel  EnrichmentLevel  `json:"enrichment_level"`
}

// RevealData is the reveal state returned by both the create and get calls.
type RevealData struct {
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	IsComplete bool   `json:"is_complete"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	FailReason string `json:"fail_reason,omitempty"`
}

// RevealResponse wraps RevealData the way the API nests it.
type RevealResponse struct {
	Data RevealData `json:"data"`
}

// CreditsResponse is the response from GET /api/meta/credits.
type CreditsResponse struct {
	Credits map[string]any `json:"credits"`
}

// APIError is returned when Wiza responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wiza: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithMinDelay sets the minimum gap between the starts of consecutive
// outbound requests. Zero disables throttling.
func WithMinDelay(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		} else {
			c.limiter = nil
		}
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new Wiza client. Outbound calls are spaced at least
// one second apart by default.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) CreateReveal(ctx context.Context, req RevealRequest) (*RevealResponse, error) {
	var resp RevealResponse
	if err := c.post(ctx, "/api/individual_reveals", req, &resp); err != nil {
		return nil, eris.Wrap(err, "wiza: create reveal")
	}
	return &resp, nil
}

func (c *httpClient) GetReveal(ctx context.Context, id int64) (*RevealResponse, error) {
	var resp RevealResponse
	if err := c.get(ctx, fmt.Sprintf("/api/individual_reveals/%d", id), &resp); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("wiza: get reveal %d", id))
	}
	return &resp, nil
}

func (c *httpClient) Credits(ctx context.Context) (*CreditsResponse, error) {
	var resp CreditsResponse
	if err := c.get(ctx, "/api/meta/credits", &resp); err != nil {
		return nil, eris.Wrap(err, "wiza: get credits")
	}
	return &resp, nil
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) post(ctx context.Context, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req, out)
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out any) error {
	if err := c.wait(req.Context()); err != nil {
		return eris.Wrap(err, "rate limit")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}

	return nil
}
