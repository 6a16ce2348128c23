package ailink

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Prompt slugs of the embedded prompt set.
const (
	PromptCommitMessage = "commit-message"
	PromptCodeReview    = "code-review"
	PromptPRReview      = "pr-review"
	PromptPRDescription = "pr-description"
	PromptExplainDiff   = "explain-diff"
	PromptBranchName    = "branch-name"
	PromptIssueLabels   = "issue-labels"
	PromptIssueTriage   = "issue-triage"
	PromptRepoAnalysis  = "repo-analysis"
	PromptAsk           = "ask"
)

// PullRequestInput describes the pull request handed to ReviewPullRequest.
type PullRequestInput struct {
	Title        string
	Description  string
	Diff         string
	FilesChanged int
}

// CommitMessage generates a conventional commit message for diff.
func (s *Service) CommitMessage(ctx context.Context, diff, extra string) (string, error) {
	return s.Complete(ctx, PromptCommitMessage, map[string]string{"diff": diff, "context": extra})
}

// ReviewChanges reviews a local diff. Unstructured answers are returned as
// the summary of a default review.
func (s *Service) ReviewChanges(ctx context.Context, diff, extra string) (*CodeReview, error) {
	text, err := s.Complete(ctx, PromptCodeReview, map[string]string{"diff": diff, "context": extra})
	if err != nil {
		return nil, err
	}
	return parseCodeReview(text), nil
}

// ReviewPullRequest reviews a pull request diff.
func (s *Service) ReviewPullRequest(ctx context.Context, in PullRequestInput) (*PullRequestReview, error) {
	text, err := s.Complete(ctx, PromptPRReview, map[string]string{
		"title":         in.Title,
		"description":   in.Description,
		"diff":          in.Diff,
		"files_changed": strconv.Itoa(in.FilesChanged),
	})
	if err != nil {
		return nil, err
	}
	return parsePullRequestReview(text), nil
}

// PRDescription drafts a pull request body from a branch, its commit
// subjects and the combined diff.
func (s *Service) PRDescription(ctx context.Context, branch string, commits []string, diff string) (string, error) {
	lines := make([]string, 0, len(commits))
	for _, c := range commits {
		lines = append(lines, "- "+c)
	}
	return s.Complete(ctx, PromptPRDescription, map[string]string{
		"branch":  branch,
		"commits": strings.Join(lines, "\n"),
		"diff":    diff,
	})
}

// ExplainDiff explains a diff in plain English.
func (s *Service) ExplainDiff(ctx context.Context, diff string) (string, error) {
	return s.Complete(ctx, PromptExplainDiff, map[string]string{"diff": diff})
}

// SuggestBranchName proposes a branch name for a work description.
func (s *Service) SuggestBranchName(ctx context.Context, description string) (string, error) {
	return s.Complete(ctx, PromptBranchName, map[string]string{"description": description})
}

// SuggestLabels proposes up to a handful of labels for an issue.
func (s *Service) SuggestLabels(ctx context.Context, title, body string) ([]string, error) {
	text, err := s.Complete(ctx, PromptIssueLabels, map[string]string{"title": title, "body": body})
	if err != nil {
		return nil, err
	}
	return parseLabels(text), nil
}

// TriageIssue classifies an issue by priority, category and complexity.
func (s *Service) TriageIssue(ctx context.Context, title, body string) (*IssueTriage, error) {
	text, err := s.Complete(ctx, PromptIssueTriage, map[string]string{"title": title, "body": body})
	if err != nil {
		return nil, err
	}
	return parseIssueTriage(text), nil
}

// AnalyzeRepository summarizes repository health from a description of
// its metadata.
func (s *Service) AnalyzeRepository(ctx context.Context, repoInfo string) (string, error) {
	if strings.TrimSpace(repoInfo) == "" {
		return "", fmt.Errorf("repository information is required")
	}
	return s.Complete(ctx, PromptRepoAnalysis, map[string]string{"repo_info": repoInfo})
}

// Ask answers a free-form question.
func (s *Service) Ask(ctx context.Context, question, extra string) (string, error) {
	return s.Complete(ctx, PromptAsk, map[string]string{"question": question, "context": extra})
}
