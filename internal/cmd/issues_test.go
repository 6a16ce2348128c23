package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghassist/gh-assist/internal/ailink"
)

const labelsEndpoint = "POST /repos/acme/widgets/issues/4/labels"

func TestApplyTriageLabelsDeclinedSendsNothing(t *testing.T) {
	client, api := newRecordingAPI(t)
	c, out := newTestCommand()
	ui := &scriptedUI{confirms: []bool{false}}
	triage := &ailink.IssueTriage{SuggestedLabels: []string{"bug", "p1"}}

	require.NoError(t, applyTriageLabels(context.Background(), c, client, ui, "acme/widgets", 4, triage, false))
	assert.Equal(t, []string{"Apply the suggested labels?"}, ui.questions)
	assert.Zero(t, api.count(labelsEndpoint))
	assert.NotContains(t, out.String(), "Labels now")
}

func TestApplyTriageLabelsAssumeYesSendsNothing(t *testing.T) {
	client, api := newRecordingAPI(t)
	c, _ := newTestCommand()
	triage := &ailink.IssueTriage{SuggestedLabels: []string{"bug"}}

	require.NoError(t, applyTriageLabels(context.Background(), c, client, NonInteractiveInteractor{}, "acme/widgets", 4, triage, false))
	assert.Zero(t, api.count(labelsEndpoint))
}

func TestApplyTriageLabelsWithApplyFlag(t *testing.T) {
	client, api := newRecordingAPI(t)
	c, out := newTestCommand()
	ui := &scriptedUI{}
	triage := &ailink.IssueTriage{SuggestedLabels: []string{"bug", "p1"}}

	require.NoError(t, applyTriageLabels(context.Background(), c, client, ui, "acme/widgets", 4, triage, true))
	assert.Empty(t, ui.questions)
	assert.Equal(t, 1, api.count(labelsEndpoint))
	assert.JSONEq(t, `{"labels":["bug","p1"]}`, api.body(labelsEndpoint))
	assert.Contains(t, out.String(), "Labels now: bug, p1")
}

func TestApplyTriageLabelsConfirmed(t *testing.T) {
	client, api := newRecordingAPI(t)
	c, _ := newTestCommand()
	triage := &ailink.IssueTriage{SuggestedLabels: []string{"bug"}}

	require.NoError(t, applyTriageLabels(context.Background(), c, client, &scriptedUI{confirms: []bool{true}}, "acme/widgets", 4, triage, false))
	assert.Equal(t, 1, api.count(labelsEndpoint))
}

func TestApplyTriageLabelsWithoutSuggestions(t *testing.T) {
	client, api := newRecordingAPI(t)
	c, _ := newTestCommand()
	ui := &scriptedUI{}

	require.NoError(t, applyTriageLabels(context.Background(), c, client, ui, "acme/widgets", 4, &ailink.IssueTriage{}, true))
	require.NoError(t, applyTriageLabels(context.Background(), c, client, ui, "acme/widgets", 4, nil, true))
	assert.Empty(t, ui.questions)
	assert.Zero(t, api.count(labelsEndpoint))
}
