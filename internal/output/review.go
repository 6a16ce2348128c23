package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ghassist/gh-assist/internal/ailink"
)

// CodeReview renders a local diff review as a panel.
func CodeReview(r *ailink.CodeReview) string {
	if r == nil {
		return ""
	}
	lines := []string{}
	if r.Rating != "" {
		lines = append(lines, "Rating: "+r.Rating)
	}
	if r.Recommendation != "" {
		lines = append(lines, "Recommendation: "+recommendationColor(r.Recommendation))
	}
	lines = appendParagraph(lines, "Summary", r.Summary)
	lines = appendBullets(lines, "Issues", r.Issues)
	lines = appendBullets(lines, "Suggestions", r.Suggestions)
	lines = appendBullets(lines, "Security concerns", r.SecurityConcerns)
	if r.Error != "" {
		lines = append(lines, "", text.FgYellow.Sprint("Note: "+r.Error))
	}
	return Panel("Code review", lines...)
}

// PullRequestReview renders a pull request review as a panel.
func PullRequestReview(number int, r *ailink.PullRequestReview) string {
	if r == nil {
		return ""
	}
	lines := []string{}
	if r.Recommendation != "" {
		lines = append(lines, "Recommendation: "+recommendationColor(r.Recommendation))
	}
	lines = appendParagraph(lines, "Overall", r.OverallAssessment)
	lines = appendParagraph(lines, "Code quality", r.CodeQuality)
	lines = appendParagraph(lines, "Test coverage", r.TestCoverage)
	lines = appendParagraph(lines, "Documentation", r.Documentation)
	lines = appendBullets(lines, "Breaking changes", r.BreakingChanges)
	lines = appendBullets(lines, "Issues", r.Issues)
	lines = appendBullets(lines, "Suggestions", r.Suggestions)
	if r.Error != "" {
		lines = append(lines, "", text.FgYellow.Sprint("Note: "+r.Error))
	}
	return Panel(fmt.Sprintf("Review of pull request #%d", number), lines...)
}

// ReviewComment renders the markdown body posted back to a pull request.
// The model's own review comment wins when present.
func ReviewComment(r *ailink.PullRequestReview) string {
	if r == nil {
		return ""
	}
	if c := strings.TrimSpace(r.ReviewComment); c != "" {
		return c
	}
	var sb strings.Builder
	sb.WriteString("## Automated review\n\n")
	if r.Recommendation != "" {
		fmt.Fprintf(&sb, "**Recommendation**: %s\n\n", r.Recommendation)
	}
	if r.OverallAssessment != "" {
		sb.WriteString(r.OverallAssessment + "\n\n")
	}
	writeMarkdownList(&sb, "Breaking changes", r.BreakingChanges)
	writeMarkdownList(&sb, "Issues", r.Issues)
	writeMarkdownList(&sb, "Suggestions", r.Suggestions)
	return strings.TrimSpace(sb.String())
}

// Triage renders an issue triage as a panel.
func Triage(number int, r *ailink.IssueTriage) string {
	if r == nil {
		return ""
	}
	lines := []string{
		"Priority: " + priorityColor(r.Priority),
		"Category: " + r.Category,
		"Complexity: " + r.Complexity,
	}
	if r.RequiresImmediateAttention {
		lines = append(lines, text.FgRed.Sprint("Requires immediate attention"))
	}
	if len(r.SuggestedLabels) > 0 {
		lines = append(lines, "Labels: "+strings.Join(r.SuggestedLabels, ", "))
	}
	lines = appendParagraph(lines, "Summary", r.Summary)
	if r.Error != "" {
		lines = append(lines, "", text.FgYellow.Sprint("Note: "+r.Error))
	}
	return Panel(fmt.Sprintf("Triage of issue #%d", number), lines...)
}

func appendParagraph(lines []string, label, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return lines
	}
	return append(lines, "", label+":", value)
}

func appendBullets(lines []string, label string, items []string) []string {
	if len(items) == 0 {
		return lines
	}
	lines = append(lines, "", label+":")
	for _, item := range items {
		lines = append(lines, "  - "+item)
	}
	return lines
}

func writeMarkdownList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "### %s\n\n", label)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}

func recommendationColor(value string) string {
	switch strings.ToLower(value) {
	case "approve":
		return text.FgGreen.Sprint(value)
	case "request_changes", "request changes", "reject":
		return text.FgRed.Sprint(value)
	default:
		return text.FgYellow.Sprint(value)
	}
}

func priorityColor(value string) string {
	switch strings.ToLower(value) {
	case "critical", "high":
		return text.FgRed.Sprint(value)
	case "medium":
		return text.FgYellow.Sprint(value)
	default:
		return value
	}
}
