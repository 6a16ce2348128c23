package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghassist/gh-assist/internal/ailink"
	"github.com/ghassist/gh-assist/internal/git"
	"github.com/ghassist/gh-assist/internal/github"
)

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []github.Repository{{FullName: "octo/alpha", Private: true}}))
	assert.Contains(t, buf.String(), "\"full_name\": \"octo/alpha\"")
	assert.Contains(t, buf.String(), "\"private\": true")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestRepositoriesTable(t *testing.T) {
	rendered := Repositories([]github.Repository{
		{FullName: "octo/alpha", Description: strings.Repeat("x", 80), Language: "Go", StargazersCount: 7},
		{FullName: "octo/beta", Private: true},
	})
	assert.Contains(t, rendered, "octo/alpha")
	assert.Contains(t, rendered, "octo/beta")
	assert.Contains(t, rendered, "private")
	assert.Contains(t, rendered, "...")
	assert.Contains(t, rendered, "2 repositories")
}

func TestPullRequestsAndIssuesTables(t *testing.T) {
	prs := PullRequests([]github.PullRequest{
		{Number: 12, Title: "Add retry", State: "open", User: github.User{Login: "ada"}, Head: github.Ref{Ref: "feat"}, Base: github.Ref{Ref: "main"}},
	})
	assert.Contains(t, prs, "Add retry")
	assert.Contains(t, prs, "feat")
	assert.Contains(t, prs, "1 pull requests")

	issues := Issues([]github.Issue{
		{Number: 3, Title: "Crash", State: "open", Labels: []github.Label{{Name: "bug"}, {Name: "p1"}}},
	})
	assert.Contains(t, issues, "Crash")
	assert.Contains(t, issues, "bug, p1")
}

func TestReleasesAndNotificationsTables(t *testing.T) {
	published := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	out := Releases([]github.Release{
		{TagName: "v1.2.0", Name: "Gears", PublishedAt: published},
		{TagName: "v1.3.0-rc1", Prerelease: true},
	})
	assert.Contains(t, out, "v1.2.0")
	assert.Contains(t, out, "2026-05-01")
	assert.Contains(t, out, "prerelease")
	assert.Contains(t, out, "2 releases")

	n := github.Notification{Reason: "review_requested", Unread: true}
	n.Subject.Title = "Add gears"
	n.Subject.Type = "PullRequest"
	n.Repository.FullName = "acme/widgets"
	out = Notifications([]github.Notification{n})
	assert.Contains(t, out, "acme/widgets")
	assert.Contains(t, out, "review_requested")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "1 notifications")
}

func TestCommitsAndBranches(t *testing.T) {
	commits := Commits([]git.Commit{{SHA: "abcdef1234567", Author: "ada", Message: "Fix parser\n\nbody"}})
	assert.Contains(t, commits, "abcdef1")
	assert.NotContains(t, commits, "abcdef12")
	assert.Contains(t, commits, "Fix parser")

	branches := Branches([]string{"main", "feature"}, "feature")
	assert.Contains(t, branches, "*")
	assert.Contains(t, branches, "main")
}

func TestRateLimitsTable(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rendered := RateLimits(&github.RateLimits{
		Core:   github.Window{Limit: 5000, Remaining: 4999, Used: 1, Reset: now.Add(30 * time.Minute)},
		Search: github.Window{Limit: 30, Remaining: 0, Used: 30, Reset: now.Add(-time.Second)},
	}, now)
	assert.Contains(t, rendered, "core")
	assert.Contains(t, rendered, "search")
	assert.Contains(t, rendered, "30m0s")
	assert.Contains(t, rendered, "now")
}

func TestStatusPanel(t *testing.T) {
	clean := Status(&git.Status{CurrentBranch: "main"})
	assert.Contains(t, clean, "Working tree clean")

	dirty := Status(&git.Status{CurrentBranch: "main", Upstream: "origin/main", Ahead: 2, Modified: []string{"a.go"}, Untracked: []string{"b.go"}, IsDirty: true})
	assert.Contains(t, dirty, "main -> origin/main")
	assert.Contains(t, dirty, "Ahead 2, behind 0")
	assert.Contains(t, dirty, "Modified (1):")
	assert.Contains(t, dirty, "b.go")
	assert.NotContains(t, dirty, "Working tree clean")
}

func TestReviewComment(t *testing.T) {
	own := ReviewComment(&ailink.PullRequestReview{ReviewComment: "  Looks good  "})
	assert.Equal(t, "Looks good", own)

	built := ReviewComment(&ailink.PullRequestReview{
		Recommendation:    "request_changes",
		OverallAssessment: "Needs tests.",
		Issues:            []string{"missing error check"},
	})
	assert.Contains(t, built, "**Recommendation**: request_changes")
	assert.Contains(t, built, "### Issues")
	assert.Contains(t, built, "- missing error check")
	assert.NotContains(t, built, "### Suggestions")
}

func TestReviewPanels(t *testing.T) {
	review := CodeReview(&ailink.CodeReview{Summary: "ok", Issues: []string{"nil deref"}, Rating: "7/10"})
	assert.Contains(t, review, "Rating: 7/10")
	assert.Contains(t, review, "  - nil deref")

	triage := Triage(9, &ailink.IssueTriage{Priority: "high", Category: "bug", SuggestedLabels: []string{"bug"}, RequiresImmediateAttention: true})
	assert.Contains(t, triage, "Triage of issue #9")
	assert.Contains(t, triage, "Requires immediate attention")
	assert.Contains(t, triage, "Labels: bug")

	assert.Empty(t, PullRequestReview(1, nil))
}
