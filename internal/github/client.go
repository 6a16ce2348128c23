// Package github is a small REST client for the GitHub API. Every exported
// operation runs through a Retrier so exhausted rate-limit windows are waited
// out rather than failing the command.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://api.github.com"
	defaultUserAgent = "gh-assist"
	apiVersion       = "2022-11-28"
)

// Client talks to the GitHub REST API with a personal access token.
type Client struct {
	BaseURL    string
	Token      string
	UserAgent  string
	HTTPClient *http.Client
	Retry      *Retrier
}

// NewClient returns a client with defaults applied. The retrier queries this
// client for the core window when it needs a reset time.
func NewClient(baseURL, token string) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	c := &Client{
		BaseURL:   strings.TrimRight(base, "/"),
		Token:     strings.TrimSpace(token),
		UserAgent: defaultUserAgent,
	}
	c.Retry = NewRetrier(DefaultRetryPolicy(), c, nil)
	return c
}

func (c *Client) retrier() *Retrier {
	if c.Retry == nil {
		c.Retry = NewRetrier(DefaultRetryPolicy(), c, nil)
	}
	if c.Retry.Source == nil {
		c.Retry.Source = c
	}
	return c.Retry
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

type errorBody struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}

// request performs one HTTP round trip. A nil out discards the body.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c == nil {
		return errors.New("github client is not configured")
	}
	if c.Token == "" {
		return ErrMissingToken
	}

	reqURL := c.BaseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return responseError(resp, method, path, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func responseError(resp *http.Response, method, path string, data []byte) error {
	var parsed errorBody
	if err := json.Unmarshal(data, &parsed); err != nil || parsed.Message == "" {
		parsed.Message = strings.TrimSpace(string(data))
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if window, ok := windowFromHeaders(resp.Header); ok && window.Remaining == 0 {
			return &RateLimitError{StatusCode: resp.StatusCode, Message: parsed.Message, Window: window}
		}
	}

	return &APIError{
		StatusCode:       resp.StatusCode,
		Method:           method,
		Path:             path,
		Message:          parsed.Message,
		DocumentationURL: parsed.DocumentationURL,
	}
}

func windowFromHeaders(h http.Header) (Window, bool) {
	remaining := strings.TrimSpace(h.Get("X-RateLimit-Remaining"))
	if remaining == "" {
		return Window{}, false
	}
	var w Window
	var err error
	if w.Remaining, err = strconv.Atoi(remaining); err != nil {
		return Window{}, false
	}
	if v, err := strconv.Atoi(strings.TrimSpace(h.Get("X-RateLimit-Limit"))); err == nil {
		w.Limit = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(h.Get("X-RateLimit-Used"))); err == nil {
		w.Used = v
	}
	if v, err := strconv.ParseInt(strings.TrimSpace(h.Get("X-RateLimit-Reset")), 10, 64); err == nil {
		w.Reset = time.Unix(v, 0)
	}
	return w, true
}

// repoPath validates an "owner/repo" name and returns its escaped API path.
func repoPath(fullName string) (string, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(fullName), "/")
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("invalid repository name %q: expected owner/repo", fullName)
	}
	return "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name), nil
}

const maxPerPage = 100

// listPages collects up to limit items from a paginated endpoint. A limit of
// zero or less fetches every page.
func listPages[T any](ctx context.Context, c *Client, op, path string, query url.Values, limit int) ([]T, error) {
	perPage := maxPerPage
	if limit > 0 && limit < perPage {
		perPage = limit
	}

	var all []T
	for page := 1; ; page++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))

		items, err := Do(ctx, c.retrier(), op, func(ctx context.Context) ([]T, error) {
			var batch []T
			if err := c.request(ctx, http.MethodGet, path, q, nil, &batch); err != nil {
				return nil, err
			}
			return batch, nil
		})
		if err != nil {
			return nil, err
		}

		all = append(all, items...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
		if len(items) < perPage {
			return all, nil
		}
	}
}
