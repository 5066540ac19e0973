// Package mlrec is the client for the external machine-learning
// recommendation service. The service maps two lists of track IDs (top
// tracks, recently played) to a ranked list of recommended track IDs, and
// separately maps a mood label to a ranked list. It runs as its own
// deployment with no uptime guarantee, so every failure is reported as
// ErrUnavailable and left for the orchestrator to handle; this client never
// retries and never falls back locally.
//
// The service host is deployment configuration passed to New, never a
// compiled-in literal.
package mlrec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tunesage/pkg/music"
)

// ErrUnavailable indicates a network failure or non-success response from
// the recommendation service.
var ErrUnavailable = errors.New("mlrec: service unavailable")

const defaultTimeout = 10 * time.Second

// Client provides access to the recommendation service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ music.Recommender = (*Client)(nil)

// New returns a Client talking to the service at baseURL, for example
// "http://10.0.0.5:5000". A conservative per-request timeout is applied so a
// hung service surfaces as ErrUnavailable instead of blocking the cascade.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type personalRequest struct {
	TopTracks      []string `json:"top_tracks"`
	RecentlyPlayed []string `json:"recently_played"`
}

type moodRequest struct {
	Mood string `json:"mood"`
}

type recommendResponse struct {
	RecommendedTracks []string `json:"recommended_tracks"`
	Error             string   `json:"error,omitempty"`
}

// RecommendPersonal implements music.Recommender by posting the caller's
// listening history to the /recommend route. The returned IDs are ranked
// most recommended first.
func (c *Client) RecommendPersonal(ctx context.Context, topTrackIDs, recentTrackIDs []string) ([]string, error) {
	return c.post(ctx, "/recommend", personalRequest{TopTracks: topTrackIDs, RecentlyPlayed: recentTrackIDs})
}

// RecommendByMood implements music.Recommender using the /recommend_mood
// route. The mood label is interpreted by the service; unknown moods are
// rejected upstream and surface as ErrUnavailable.
func (c *Client) RecommendByMood(ctx context.Context, mood string) ([]string, error) {
	return c.post(ctx, "/recommend_mood", moodRequest{Mood: mood})
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("mlrec: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("mlrec: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	var parsed recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, parsed.Error)
	}
	return parsed.RecommendedTracks, nil
}
