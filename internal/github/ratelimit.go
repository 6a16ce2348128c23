package github

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Window is one rate-limit bucket as reported by the server.
type Window struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Used      int       `json:"used"`
	Reset     time.Time `json:"reset"`
}

// UnmarshalJSON decodes the epoch-seconds reset the API returns.
func (w *Window) UnmarshalJSON(data []byte) error {
	var raw struct {
		Limit     int   `json:"limit"`
		Remaining int   `json:"remaining"`
		Used      int   `json:"used"`
		Reset     int64 `json:"reset"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	w.Limit = raw.Limit
	w.Remaining = raw.Remaining
	w.Used = raw.Used
	w.Reset = time.Unix(raw.Reset, 0)
	return nil
}

// RateLimits holds the windows the status command reports.
type RateLimits struct {
	Core   Window `json:"core"`
	Search Window `json:"search"`
}

type rateLimitResponse struct {
	Resources RateLimits `json:"resources"`
}

// RateLimits returns the current core and search windows.
func (c *Client) RateLimits(ctx context.Context) (*RateLimits, error) {
	return Do(ctx, c.retrier(), "get rate limit", c.fetchRateLimits)
}

// CoreReset implements ResetSource. It bypasses the retrier since the
// retrier is its only caller.
func (c *Client) CoreReset(ctx context.Context) (time.Time, error) {
	limits, err := c.fetchRateLimits(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return limits.Core.Reset, nil
}

func (c *Client) fetchRateLimits(ctx context.Context) (*RateLimits, error) {
	var resp rateLimitResponse
	if err := c.request(ctx, http.MethodGet, "/rate_limit", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Resources, nil
}
