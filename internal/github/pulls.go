package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// CreatePullRequest opens a pull request.
func (c *Client) CreatePullRequest(ctx context.Context, fullName string, pr NewPullRequest) (*PullRequest, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(pr.Title) == "" {
		return nil, errors.New("pull request title is required")
	}
	if strings.TrimSpace(pr.Head) == "" || strings.TrimSpace(pr.Base) == "" {
		return nil, errors.New("pull request head and base are required")
	}
	return Do(ctx, c.retrier(), "create pull request", func(ctx context.Context) (*PullRequest, error) {
		var out PullRequest
		if err := c.request(ctx, http.MethodPost, path+"/pulls", nil, pr, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// ListPullRequests lists pull requests in state (open, closed or all).
func (c *Client) ListPullRequests(ctx context.Context, fullName, state string, limit int) ([]PullRequest, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	q := url.Values{"state": {normalizeState(state)}}
	return listPages[PullRequest](ctx, c, "list pull requests", path+"/pulls", q, limit)
}

// GetPullRequest fetches one pull request.
func (c *Client) GetPullRequest(ctx context.Context, fullName string, number int) (*PullRequest, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	return Do(ctx, c.retrier(), "get pull request", func(ctx context.Context) (*PullRequest, error) {
		var out PullRequest
		if err := c.request(ctx, http.MethodGet, path+"/pulls/"+strconv.Itoa(number), nil, nil, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// PullRequestFiles lists the files a pull request changes.
func (c *Client) PullRequestFiles(ctx context.Context, fullName string, number int) ([]PullRequestFile, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	return listPages[PullRequestFile](ctx, c, "list pull request files", path+"/pulls/"+strconv.Itoa(number)+"/files", nil, 0)
}

// PullRequestDiff renders the changed files of a pull request as one text
// block: a header per file, its status and line counts, then the patch.
func (c *Client) PullRequestDiff(ctx context.Context, fullName string, number int) (string, error) {
	files, err := c.PullRequestFiles(ctx, fullName, number)
	if err != nil {
		return "", err
	}
	return FormatFiles(files), nil
}

// FormatFiles renders pull request files the way PullRequestDiff does.
func FormatFiles(files []PullRequestFile) string {
	var parts []string
	for _, f := range files {
		parts = append(parts,
			fmt.Sprintf("\n--- %s ---", f.Filename),
			"Status: "+f.Status,
			fmt.Sprintf("Changes: +%d -%d", f.Additions, f.Deletions),
		)
		if f.Patch != "" {
			parts = append(parts, f.Patch)
		}
	}
	return strings.Join(parts, "\n")
}

// CommentOnPullRequest adds a conversation comment to a pull request.
func (c *Client) CommentOnPullRequest(ctx context.Context, fullName string, number int, body string) (*Comment, error) {
	return c.CommentOnIssue(ctx, fullName, number, body)
}

// MergePullRequest merges with method merge, squash or rebase.
func (c *Client) MergePullRequest(ctx context.Context, fullName string, number int, method, message string) (*MergeResult, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	switch method = strings.ToLower(strings.TrimSpace(method)); method {
	case "":
		method = "merge"
	case "merge", "squash", "rebase":
	default:
		return nil, fmt.Errorf("unsupported merge method %q", method)
	}
	body := map[string]string{"merge_method": method}
	if message != "" {
		body["commit_message"] = message
	}
	return Do(ctx, c.retrier(), "merge pull request", func(ctx context.Context) (*MergeResult, error) {
		var out MergeResult
		if err := c.request(ctx, http.MethodPut, path+"/pulls/"+strconv.Itoa(number)+"/merge", nil, body, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

func normalizeState(state string) string {
	switch s := strings.ToLower(strings.TrimSpace(state)); s {
	case "closed", "all":
		return s
	default:
		return "open"
	}
}
