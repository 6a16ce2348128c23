package github

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// CreateIssue opens an issue.
func (c *Client) CreateIssue(ctx context.Context, fullName string, issue NewIssue) (*Issue, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(issue.Title) == "" {
		return nil, errors.New("issue title is required")
	}
	return Do(ctx, c.retrier(), "create issue", func(ctx context.Context) (*Issue, error) {
		var out Issue
		if err := c.request(ctx, http.MethodPost, path+"/issues", nil, issue, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// ListIssues lists issues in state, optionally filtered by labels. Pull
// requests returned by the issues endpoint are dropped.
func (c *Client) ListIssues(ctx context.Context, fullName, state string, labels []string, limit int) ([]Issue, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	q := url.Values{"state": {normalizeState(state)}}
	if len(labels) > 0 {
		q.Set("labels", strings.Join(labels, ","))
	}
	all, err := listPages[Issue](ctx, c, "list issues", path+"/issues", q, limit)
	if err != nil {
		return nil, err
	}
	issues := all[:0]
	for _, issue := range all {
		if !issue.IsPullRequest() {
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// GetIssue fetches one issue.
func (c *Client) GetIssue(ctx context.Context, fullName string, number int) (*Issue, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	return Do(ctx, c.retrier(), "get issue", func(ctx context.Context) (*Issue, error) {
		var out Issue
		if err := c.request(ctx, http.MethodGet, path+"/issues/"+strconv.Itoa(number), nil, nil, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// CloseIssue sets an issue's state to closed.
func (c *Client) CloseIssue(ctx context.Context, fullName string, number int) (*Issue, error) {
	return c.updateIssue(ctx, fullName, number, "close issue", map[string]any{"state": "closed"})
}

// AddLabels attaches labels to an issue, keeping existing ones.
func (c *Client) AddLabels(ctx context.Context, fullName string, number int, labels []string) ([]Label, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, nil
	}
	return Do(ctx, c.retrier(), "add labels", func(ctx context.Context) ([]Label, error) {
		var out []Label
		body := map[string][]string{"labels": labels}
		if err := c.request(ctx, http.MethodPost, path+"/issues/"+strconv.Itoa(number)+"/labels", nil, body, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

func (c *Client) updateIssue(ctx context.Context, fullName string, number int, op string, fields map[string]any) (*Issue, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	return Do(ctx, c.retrier(), op, func(ctx context.Context) (*Issue, error) {
		var out Issue
		if err := c.request(ctx, http.MethodPatch, path+"/issues/"+strconv.Itoa(number), nil, fields, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// CommentOnIssue adds a comment to an issue or pull request conversation.
func (c *Client) CommentOnIssue(ctx context.Context, fullName string, number int, body string) (*Comment, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("comment body is required")
	}
	return Do(ctx, c.retrier(), "create comment", func(ctx context.Context) (*Comment, error) {
		var out Comment
		payload := map[string]string{"body": body}
		if err := c.request(ctx, http.MethodPost, path+"/issues/"+strconv.Itoa(number)+"/comments", nil, payload, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}
