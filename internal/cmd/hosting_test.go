package cmd

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghassist/gh-assist/internal/github"
)

// recordingAPI counts the write requests a command sends to GitHub.
type recordingAPI struct {
	mu       sync.Mutex
	requests map[string]int
	bodies   map[string]string
}

func (a *recordingAPI) count(key string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests[key]
}

func (a *recordingAPI) body(key string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bodies[key]
}

func newRecordingAPI(t *testing.T) (*github.Client, *recordingAPI) {
	t.Helper()
	api := &recordingAPI{requests: map[string]int{}, bodies: map[string]string{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		body, _ := io.ReadAll(r.Body)
		api.mu.Lock()
		api.requests[key]++
		api.bodies[key] = string(body)
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch key {
		case "DELETE /repos/acme/widgets":
			w.WriteHeader(http.StatusNoContent)
		case "POST /repos/acme/widgets/issues/4/labels":
			_, _ = w.Write([]byte(`[{"name":"bug"},{"name":"p1"}]`))
		case "POST /repos/acme/widgets/issues/9/comments":
			_, _ = w.Write([]byte(`{"id":1,"html_url":"https://github.com/acme/widgets/pull/9#issuecomment-1"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client := github.NewClient(server.URL, "test-token")
	client.HTTPClient = server.Client()
	return client, api
}

func TestDeleteRepositoryAssumeYesKeepsRepository(t *testing.T) {
	client, api := newRecordingAPI(t)
	c, out := newTestCommand()

	deleted, err := deleteRepository(context.Background(), c, client, NonInteractiveInteractor{}, "acme/widgets", false)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Zero(t, api.count("DELETE /repos/acme/widgets"))
	assert.Contains(t, out.String(), "Kept acme/widgets")
}

func TestDeleteRepositoryDeclinedKeepsRepository(t *testing.T) {
	client, api := newRecordingAPI(t)
	c, _ := newTestCommand()
	ui := &scriptedUI{confirms: []bool{false}}

	deleted, err := deleteRepository(context.Background(), c, client, ui, "acme/widgets", false)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, []string{"Permanently delete acme/widgets?"}, ui.questions)
	assert.Zero(t, api.count("DELETE /repos/acme/widgets"))
}

func TestDeleteRepositoryForceSkipsConfirmation(t *testing.T) {
	client, api := newRecordingAPI(t)
	c, out := newTestCommand()
	ui := &scriptedUI{}

	deleted, err := deleteRepository(context.Background(), c, client, ui, "acme/widgets", true)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, ui.questions)
	assert.Equal(t, 1, api.count("DELETE /repos/acme/widgets"))
	assert.Contains(t, out.String(), "Deleted acme/widgets")
}

func TestDeleteRepositoryConfirmedDeletes(t *testing.T) {
	client, api := newRecordingAPI(t)
	c, _ := newTestCommand()

	deleted, err := deleteRepository(context.Background(), c, client, &scriptedUI{confirms: []bool{true}}, "acme/widgets", false)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, api.count("DELETE /repos/acme/widgets"))
}

func TestDeleteRepositoryReportsAPIError(t *testing.T) {
	client, _ := newRecordingAPI(t)
	c, _ := newTestCommand()

	deleted, err := deleteRepository(context.Background(), c, client, NonInteractiveInteractor{}, "acme/missing", true)
	var apiErr *github.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.False(t, deleted)
}
