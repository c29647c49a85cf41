// Package analysis provides the HTTP client for the externally run
// analysis services (expense behaviour, goal feasibility). Responses are
// passed through to the browser as-is; the gateway adds only transport,
// auth and error shaping.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultTimeout = 15 * time.Second

// ErrUnavailable wraps any transport-level failure reaching the upstream.
var ErrUnavailable = errors.New("analysis service unavailable")

// UpstreamError is a non-2xx answer from a reachable upstream.
type UpstreamError struct {
	Status int
	Body   json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("analysis upstream returned %d", e.Status)
}

type TokenSource interface {
	Mint() (string, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		tokens: tokens,
	}
}

// AnalyseExpenses forwards a user's expense history to the behaviour
// analysis service and returns the upstream JSON untouched.
func (c *Client) AnalyseExpenses(ctx context.Context, payload any) (json.RawMessage, error) {
	return c.post(ctx, "/api/analyse-expenses", payload)
}

// AssessGoal forwards goal parameters to the feasibility service.
func (c *Client) AssessGoal(ctx context.Context, payload any) (json.RawMessage, error) {
	return c.post(ctx, "/api/assess-goal", payload)
}

func (c *Client) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)

	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Mint()

		if err != nil {
			return nil, err
		}

		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: raw}
	}

	return raw, nil
}
