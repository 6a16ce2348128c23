package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ghassist/gh-assist/internal/git"
	"github.com/ghassist/gh-assist/internal/github"
)

const (
	dateLayout     = "2006-01-02"
	descriptionMax = 50
)

func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(header)
	return t
}

// Repositories renders a repository listing.
func Repositories(repos []github.Repository) string {
	t := newTable(table.Row{"Name", "Visibility", "Description", "Language", "Stars", "Updated"})
	for _, r := range repos {
		visibility := text.FgGreen.Sprint("public")
		if r.Private {
			visibility = text.FgYellow.Sprint("private")
		}
		t.AppendRow(table.Row{
			r.FullName,
			visibility,
			truncate(r.Description, descriptionMax),
			r.Language,
			r.StargazersCount,
			formatDate(r.UpdatedAt),
		})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d repositories", len(repos))})
	return t.Render()
}

// PullRequests renders a pull request listing.
func PullRequests(prs []github.PullRequest) string {
	t := newTable(table.Row{"#", "Title", "Author", "Head", "Base", "State", "Updated"})
	for _, pr := range prs {
		t.AppendRow(table.Row{
			pr.Number,
			truncate(pr.Title, descriptionMax),
			pr.User.Login,
			pr.Head.Ref,
			pr.Base.Ref,
			prState(pr),
			formatDate(pr.UpdatedAt),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d pull requests", len(prs))})
	return t.Render()
}

// Issues renders an issue listing.
func Issues(issues []github.Issue) string {
	t := newTable(table.Row{"#", "Title", "Author", "Labels", "State", "Comments"})
	for _, issue := range issues {
		t.AppendRow(table.Row{
			issue.Number,
			truncate(issue.Title, descriptionMax),
			issue.User.Login,
			strings.Join(issue.LabelNames(), ", "),
			stateColor(issue.State),
			issue.Comments,
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d issues", len(issues))})
	return t.Render()
}

// Releases renders a release listing.
func Releases(releases []github.Release) string {
	t := newTable(table.Row{"Tag", "Name", "Kind", "Published"})
	for _, r := range releases {
		kind := "release"
		switch {
		case r.Draft:
			kind = text.FgYellow.Sprint("draft")
		case r.Prerelease:
			kind = text.FgCyan.Sprint("prerelease")
		}
		t.AppendRow(table.Row{r.TagName, truncate(r.Name, descriptionMax), kind, formatDate(r.PublishedAt)})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d releases", len(releases))})
	return t.Render()
}

// Notifications renders inbox threads. Unread threads are marked.
func Notifications(threads []github.Notification) string {
	t := newTable(table.Row{"", "Repository", "Type", "Title", "Reason", "Updated"})
	for _, n := range threads {
		marker := ""
		if n.Unread {
			marker = text.FgCyan.Sprint("●")
		}
		t.AppendRow(table.Row{
			marker,
			n.Repository.FullName,
			n.Subject.Type,
			truncate(n.Subject.Title, descriptionMax),
			n.Reason,
			formatDate(n.UpdatedAt),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d notifications", len(threads))})
	return t.Render()
}

// Commits renders a commit log.
func Commits(commits []git.Commit) string {
	t := newTable(table.Row{"SHA", "Author", "Date", "Message"})
	for _, c := range commits {
		sha := c.SHA
		if len(sha) > 7 {
			sha = sha[:7]
		}
		t.AppendRow(table.Row{
			text.FgYellow.Sprint(sha),
			c.Author,
			formatDate(c.Date),
			truncate(c.Subject(), 60),
		})
	}
	return t.Render()
}

// Branches renders local branch names, marking the current one.
func Branches(branches []string, current string) string {
	t := newTable(table.Row{"", "Branch"})
	for _, b := range branches {
		marker := ""
		name := b
		if b == current {
			marker = "*"
			name = text.FgGreen.Sprint(b)
		}
		t.AppendRow(table.Row{marker, name})
	}
	return t.Render()
}

// RateLimits renders the core and search windows.
func RateLimits(limits *github.RateLimits, now time.Time) string {
	t := newTable(table.Row{"Resource", "Limit", "Used", "Remaining", "Resets"})
	if limits == nil {
		return t.Render()
	}
	for _, entry := range []struct {
		name   string
		window github.Window
	}{
		{"core", limits.Core},
		{"search", limits.Search},
	} {
		w := entry.window
		remaining := text.FgGreen.Sprint(w.Remaining)
		if w.Limit > 0 && w.Remaining*10 < w.Limit {
			remaining = text.FgRed.Sprint(w.Remaining)
		}
		t.AppendRow(table.Row{entry.name, w.Limit, w.Used, remaining, resetIn(w.Reset, now)})
	}
	return t.Render()
}

// Status renders a working tree summary as a panel.
func Status(st *git.Status) string {
	if st == nil {
		return ""
	}
	branch := st.CurrentBranch
	if st.Upstream != "" {
		branch = fmt.Sprintf("%s -> %s", branch, st.Upstream)
	}
	lines := []string{"Branch: " + branch}
	if st.Ahead > 0 || st.Behind > 0 {
		lines = append(lines, fmt.Sprintf("Ahead %d, behind %d", st.Ahead, st.Behind))
	}
	if st.Clean() {
		lines = append(lines, "", text.FgGreen.Sprint("Working tree clean"))
		return Panel("Repository status", lines...)
	}
	lines = appendFiles(lines, "Staged", st.Staged, text.FgGreen)
	lines = appendFiles(lines, "Modified", st.Modified, text.FgYellow)
	lines = appendFiles(lines, "Untracked", st.Untracked, text.FgRed)
	return Panel("Repository status", lines...)
}

func appendFiles(lines []string, label string, files []string, color text.Color) []string {
	if len(files) == 0 {
		return lines
	}
	lines = append(lines, "", fmt.Sprintf("%s (%d):", label, len(files)))
	for _, f := range files {
		lines = append(lines, "  "+color.Sprint(f))
	}
	return lines
}

func prState(pr github.PullRequest) string {
	switch {
	case pr.Merged:
		return text.FgMagenta.Sprint("merged")
	case pr.Draft:
		return text.FgHiBlack.Sprint("draft")
	default:
		return stateColor(pr.State)
	}
}

func stateColor(state string) string {
	switch state {
	case "open":
		return text.FgGreen.Sprint(state)
	case "closed":
		return text.FgRed.Sprint(state)
	default:
		return state
	}
}

func resetIn(reset, now time.Time) string {
	if reset.IsZero() {
		return "-"
	}
	d := reset.Sub(now).Round(time.Second)
	if d <= 0 {
		return "now"
	}
	return fmt.Sprintf("%s (%s)", d, reset.Local().Format("15:04:05"))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
