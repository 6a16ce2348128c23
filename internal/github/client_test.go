package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordedSleeps) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-token")
	client.HTTPClient = server.Client()
	sleeps := &recordedSleeps{}
	client.Retry.Sleep = sleeps.sleep
	client.Retry.Clock = func() time.Time { return fixedNow }
	return client, sleeps
}

func TestClientRequiresToken(t *testing.T) {
	client := NewClient("", "")
	_, err := client.CurrentUser(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}

func TestClientSendsHeadersAndDecodesUser(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		require.Equal(t, apiVersion, r.Header.Get("X-GitHub-Api-Version"))
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":"octocat","id":1,"name":"The Octocat","public_repos":8}`))
	})

	sess, err := Authenticate(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "octocat", sess.User.Login)
	assert.Equal(t, 8, sess.User.PublicRepos)
	assert.Equal(t, "octocat/demo", sess.FullName("demo"))
	assert.Equal(t, "other/demo", sess.FullName("other/demo"))
}

func TestClientMapsExhaustedWindowToRateLimitError(t *testing.T) {
	reset := fixedNow.Add(10 * time.Second)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded for 1.2.3.4."}`))
	})

	err := client.request(context.Background(), http.MethodGet, "/user", nil, nil, nil)
	var rle *RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, 60, rle.Window.Limit)
	assert.Equal(t, 0, rle.Window.Remaining)
	assert.True(t, rle.Window.Reset.Equal(reset))
}

func TestClientMapsOtherFailuresToAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "4999")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found","documentation_url":"https://docs.github.com"}`))
	})

	_, err := client.GetRepository(context.Background(), "octocat/missing")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Not Found", apiErr.Message)
	assert.Equal(t, "/repos/octocat/missing", apiErr.Path)
}

func TestClientRetriesRateLimitedCallAfterReset(t *testing.T) {
	reset := fixedNow.Add(10 * time.Second)
	repoCalls := 0
	client, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rate_limit":
			fmt.Fprintf(w, `{"resources":{"core":{"limit":5000,"remaining":0,"reset":%d},"search":{"limit":30,"remaining":30,"reset":%d}}}`, reset.Unix(), reset.Unix())
		case "/repos/octocat/hello":
			repoCalls++
			if repoCalls == 1 {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
				return
			}
			_, _ = w.Write([]byte(`{"name":"hello","full_name":"octocat/hello","default_branch":"main"}`))
		default:
			http.NotFound(w, r)
		}
	})

	repo, err := client.GetRepository(context.Background(), "octocat/hello")
	require.NoError(t, err)
	assert.Equal(t, "octocat/hello", repo.FullName)
	assert.Equal(t, 2, repoCalls)
	assert.Equal(t, []time.Duration{15 * time.Second}, sleeps.waits)
}

func TestRateLimitsDecodesWindows(t *testing.T) {
	reset := time.Unix(1767268800, 0)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"resources":{"core":{"limit":5000,"remaining":4990,"used":10,"reset":%d},"search":{"limit":30,"remaining":29,"reset":%d}}}`, reset.Unix(), reset.Unix())
	})

	limits, err := client.RateLimits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5000, limits.Core.Limit)
	assert.Equal(t, 4990, limits.Core.Remaining)
	assert.Equal(t, 10, limits.Core.Used)
	assert.True(t, limits.Core.Reset.Equal(reset))
	assert.Equal(t, 29, limits.Search.Remaining)
}

func TestListRepositoriesPaginates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/repos", r.URL.Path)
		require.Equal(t, "updated", r.URL.Query().Get("sort"))
		require.Equal(t, "2", r.URL.Query().Get("per_page"))
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`[{"name":"a"},{"name":"b"}]`))
		case "2":
			_, _ = w.Write([]byte(`[{"name":"c"}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})

	repos, err := client.ListRepositories(context.Background(), "", 2)
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "b", repos[1].Name)
}

func TestCreateBranchUsesSourceHead(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/repos/o/r/git/ref/heads/main":
			_, _ = w.Write([]byte(`{"ref":"refs/heads/main","object":{"sha":"abc123"}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/repos/o/r/git/refs":
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(body, &payload))
			require.Equal(t, "refs/heads/feature/x", payload["ref"])
			require.Equal(t, "abc123", payload["sha"])
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"ref":"refs/heads/feature/x","object":{"sha":"abc123"}}`))
		default:
			http.NotFound(w, r)
		}
	})

	branch, err := client.CreateBranch(context.Background(), "o/r", "feature/x", "")
	require.NoError(t, err)
	assert.Equal(t, "feature/x", branch.Name)
	assert.Equal(t, "abc123", branch.Commit.SHA)
}

func TestListIssuesDropsPullRequests(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "bug,ui", r.URL.Query().Get("labels"))
		_, _ = w.Write([]byte(`[{"number":1,"title":"bug"},{"number":2,"title":"pr","pull_request":{"url":"x"}}]`))
	})

	issues, err := client.ListIssues(context.Background(), "o/r", "open", []string{"bug", "ui"}, 0)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Number)
}

func TestReleasesDefaultNameToTag(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/o/r/releases", r.URL.Path)
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[{"tag_name":"v1.0.0","name":"One"}]`))
			return
		}
		var payload NewRelease
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "v1.1.0", payload.Name)
		require.True(t, payload.Prerelease)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"tag_name":"v1.1.0","name":"v1.1.0","prerelease":true}`))
	})

	rel, err := client.CreateRelease(context.Background(), "o/r", NewRelease{TagName: "v1.1.0", Prerelease: true})
	require.NoError(t, err)
	assert.Equal(t, "v1.1.0", rel.TagName)

	_, err = client.CreateRelease(context.Background(), "o/r", NewRelease{})
	assert.ErrorContains(t, err, "tag is required")

	releases, err := client.ListReleases(context.Background(), "o/r", 5)
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Equal(t, "One", releases[0].Name)
}

func TestNotificationsAndMarkRead(t *testing.T) {
	var marked bool
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/notifications", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			require.Equal(t, "true", r.URL.Query().Get("all"))
			_, _ = w.Write([]byte(`[{"id":"1","reason":"mention","unread":true,"subject":{"title":"Hi","type":"Issue"},"repository":{"full_name":"o/r"}}]`))
		case http.MethodPut:
			marked = true
			w.WriteHeader(http.StatusResetContent)
		}
	})

	threads, err := client.Notifications(context.Background(), true, 10)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "o/r", threads[0].Repository.FullName)
	assert.Equal(t, "Hi", threads[0].Subject.Title)

	require.NoError(t, client.MarkNotificationsRead(context.Background()))
	assert.True(t, marked)
}

func TestForkAndDeleteRepository(t *testing.T) {
	var deleted string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/repos/acme/widgets/forks":
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"full_name":"octo/widgets","fork":true}`))
		case r.Method == http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	})

	fork, err := client.ForkRepository(context.Background(), "acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, "octo/widgets", fork.FullName)
	assert.True(t, fork.Fork)

	require.NoError(t, client.DeleteRepository(context.Background(), "octo/widgets"))
	assert.Equal(t, "/repos/octo/widgets", deleted)
}

func TestFormatFiles(t *testing.T) {
	out := FormatFiles([]PullRequestFile{
		{Filename: "main.go", Status: "modified", Additions: 3, Deletions: 1, Patch: "@@ -1 +1 @@"},
		{Filename: "logo.png", Status: "added", Additions: 0, Deletions: 0},
	})
	assert.Equal(t, "\n--- main.go ---\nStatus: modified\nChanges: +3 -1\n@@ -1 +1 @@\n\n--- logo.png ---\nStatus: added\nChanges: +0 -0", out)
}

func TestMergePullRequestRejectsUnknownMethod(t *testing.T) {
	client := NewClient("", "token")
	_, err := client.MergePullRequest(context.Background(), "o/r", 1, "octopus", "")
	require.Error(t, err)
}

func TestRepoPathValidation(t *testing.T) {
	_, err := repoPath("just-a-name")
	require.Error(t, err)
	path, err := repoPath("owner/name")
	require.NoError(t, err)
	assert.Equal(t, "/repos/owner/name", path)
}
