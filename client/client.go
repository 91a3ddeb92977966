// Package client is a small HTTP client for the pairing API, including the
// polling loop a frontend runs while a search is pending. The loop is bound
// to a context so abandoning a search stops further network activity.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultPollInterval is how often the status endpoint is polled.
	DefaultPollInterval = 2 * time.Second

	// DefaultAbandonAfter is the client-side give-up timeout. Independent of
	// the server's fallback threshold, which normally fires first.
	DefaultAbandonAfter = 60 * time.Second
)

// ErrNoMatch is returned when the abandonment timeout elapses without a
// match. Distinct from a server error: the caller should surface "no match
// found, try again".
var ErrNoMatch = errors.New("no match found, try again")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// StatusResponse mirrors the activity status payload.
type StatusResponse struct {
	Status        string  `json:"status"`
	ActivityClass string  `json:"activityClass"`
	MatchUserID   *string `json:"matchUserId"`
	MatchName     string  `json:"matchName"`
	MeetLocation  string  `json:"meetLocation"`
	MeetLinkID    *string `json:"meetLinkId"`
}

// Client talks to the pairing API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetStatus fetches the current state of a search request once.
func (c *Client) GetStatus(ctx context.Context, requestID, userID string) (*StatusResponse, error) {
	endpoint := fmt.Sprintf("%s/api/activities/status?requestId=%s&userId=%s",
		c.BaseURL, url.QueryEscape(requestID), url.QueryEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return &status, nil
}

// PollUntilMatched polls the status endpoint until the request reports
// matched, the context is cancelled, or abandonAfter elapses (ErrNoMatch).
// Client errors (4xx) stop the loop immediately; server and transport errors
// are retried on the next tick.
func (c *Client) PollUntilMatched(ctx context.Context, requestID, userID string, interval, abandonAfter time.Duration) (*StatusResponse, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if abandonAfter <= 0 {
		abandonAfter = DefaultAbandonAfter
	}

	ctx, cancel := context.WithTimeout(ctx, abandonAfter)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		// Re-check before each poll so a cancellation that raced the ticker
		// never issues another request.
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, ErrNoMatch
			}
			return nil, err
		}

		status, err := c.GetStatus(ctx, requestID, userID)
		if err == nil && status.Status == "matched" {
			return status, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return nil, err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrNoMatch
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
