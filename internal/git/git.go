// Package git is a thin adapter over the git binary. All correctness comes
// from git itself; this package only builds argument lists and parses output.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Repo is a work tree rooted at Dir.
type Repo struct {
	Dir  string
	Exec CommandExecutor
}

// New returns a Repo for dir using the os/exec executor when exec is nil.
func New(dir string, executor CommandExecutor) *Repo {
	if executor == nil {
		executor = NewExecExecutor()
	}
	return &Repo{Dir: dir, Exec: executor}
}

// Open verifies dir is inside a work tree.
func Open(ctx context.Context, dir string, executor CommandExecutor) (*Repo, error) {
	r := New(dir, executor)
	if !r.IsRepo(ctx) {
		return nil, ErrNotRepository
	}
	return r, nil
}

// Init creates a repository in dir.
func Init(ctx context.Context, dir string, executor CommandExecutor) (*Repo, error) {
	r := New(dir, executor)
	if err := r.run(ctx, "init"); err != nil {
		return nil, err
	}
	return r, nil
}

// Clone clones url into dir and returns the new repo.
func Clone(ctx context.Context, url, dir string, executor CommandExecutor) (*Repo, error) {
	if executor == nil {
		executor = NewExecExecutor()
	}
	cmd := exec.CommandContext(ctx, "git", "clone", url, dir)
	if err := executor.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return New(dir, executor), nil
}

func (r *Repo) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	return cmd
}

func (r *Repo) run(ctx context.Context, args ...string) error {
	return r.Exec.Execute(ctx, r.command(ctx, args...))
}

func (r *Repo) output(ctx context.Context, args ...string) (string, error) {
	return r.Exec.ExecuteWithOutput(ctx, r.command(ctx, args...))
}

// IsRepo reports whether Dir is inside a work tree.
func (r *Repo) IsRepo(ctx context.Context) bool {
	out, err := r.output(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// Status is a snapshot of the work tree.
type Status struct {
	CurrentBranch string   `json:"current_branch"`
	Upstream      string   `json:"upstream,omitempty"`
	Ahead         int      `json:"ahead"`
	Behind        int      `json:"behind"`
	Modified      []string `json:"modified"`
	Staged        []string `json:"staged"`
	Untracked     []string `json:"untracked"`
	IsDirty       bool     `json:"is_dirty"`
}

// Clean reports whether nothing is modified, staged or untracked.
func (s *Status) Clean() bool {
	return len(s.Modified) == 0 && len(s.Staged) == 0 && len(s.Untracked) == 0
}

// Status reads `git status --porcelain=v1 -b`.
func (r *Repo) Status(ctx context.Context) (*Status, error) {
	out, err := r.output(ctx, "status", "--porcelain=v1", "-b")
	if err != nil {
		return nil, err
	}
	return ParseStatus(out), nil
}

// ParseStatus parses porcelain v1 output with a branch header.
func ParseStatus(out string) *Status {
	st := &Status{Modified: []string{}, Staged: []string{}, Untracked: []string{}}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "## ") {
			parseBranchHeader(strings.TrimPrefix(line, "## "), st)
			continue
		}
		if len(line) < 4 {
			continue
		}
		x, y, path := line[0], line[1], line[3:]
		if _, dst, ok := strings.Cut(path, " -> "); ok {
			path = dst
		}
		path = strings.Trim(path, `"`)

		if x == '?' && y == '?' {
			st.Untracked = append(st.Untracked, path)
			continue
		}
		if x != ' ' && x != '!' {
			st.Staged = append(st.Staged, path)
		}
		if y != ' ' && y != '!' {
			st.Modified = append(st.Modified, path)
		}
	}
	st.IsDirty = len(st.Modified) > 0 || len(st.Staged) > 0
	return st
}

func parseBranchHeader(header string, st *Status) {
	if rest, ok := strings.CutPrefix(header, "No commits yet on "); ok {
		st.CurrentBranch = strings.TrimSpace(rest)
		return
	}
	if strings.HasPrefix(header, "HEAD (no branch)") {
		st.CurrentBranch = "HEAD"
		return
	}

	branchPart, tracking, _ := strings.Cut(header, " [")
	local, upstream, _ := strings.Cut(branchPart, "...")
	st.CurrentBranch = strings.TrimSpace(local)
	st.Upstream = strings.TrimSpace(upstream)

	tracking = strings.TrimSuffix(tracking, "]")
	for _, part := range strings.Split(tracking, ",") {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			continue
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		switch fields[0] {
		case "ahead":
			st.Ahead = n
		case "behind":
			st.Behind = n
		}
	}
}

// Diff returns the unstaged diff, or the staged diff when staged is true.
func (r *Repo) Diff(ctx context.Context, staged bool) (string, error) {
	args := []string{"diff"}
	if staged {
		args = append(args, "--cached")
	}
	return r.output(ctx, args...)
}

// DiffRange returns the changes on head since it diverged from base.
// When base is not a local branch the origin tracking branch is tried.
func (r *Repo) DiffRange(ctx context.Context, base, head string) (string, error) {
	out, err := r.output(ctx, "diff", base+"..."+head)
	if err == nil {
		return out, nil
	}
	if remoteOut, remoteErr := r.output(ctx, "diff", "origin/"+base+"..."+head); remoteErr == nil {
		return remoteOut, nil
	}
	return "", err
}

// Commit is one log entry.
type Commit struct {
	SHA     string    `json:"sha"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
}

// Subject returns the first line of the message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return subject
}

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
	logFormat = "--format=%H%x1f%an%x1f%aI%x1f%B%x1e"
)

// Log returns up to max commits from branch, or HEAD when branch is empty.
func (r *Repo) Log(ctx context.Context, max int, branch string) ([]Commit, error) {
	if max <= 0 {
		max = 10
	}
	args := []string{"log", "-n", strconv.Itoa(max), logFormat}
	if branch = strings.TrimSpace(branch); branch != "" {
		args = append(args, branch, "--")
	}
	out, err := r.output(ctx, args...)
	if err != nil {
		return nil, err
	}
	return ParseLog(out), nil
}

// ParseLog parses output produced with the package's log format.
func ParseLog(out string) []Commit {
	var commits []Commit
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if strings.TrimSpace(record) == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSep, 4)
		if len(fields) != 4 {
			continue
		}
		sha := fields[0]
		if len(sha) > 7 {
			sha = sha[:7]
		}
		date, _ := time.Parse(time.RFC3339, strings.TrimSpace(fields[2]))
		commits = append(commits, Commit{
			SHA:     sha,
			Author:  fields[1],
			Date:    date,
			Message: strings.TrimSpace(fields[3]),
		})
	}
	return commits
}

// Add stages files, or everything when all is true.
func (r *Repo) Add(ctx context.Context, files []string, all bool) error {
	if all {
		return r.run(ctx, "add", "-A")
	}
	if len(files) == 0 {
		return errors.New("no files to add")
	}
	return r.run(ctx, append([]string{"add", "--"}, files...)...)
}

// Reset unstages files, or everything when files is empty.
func (r *Repo) Reset(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return r.run(ctx, "reset")
	}
	return r.run(ctx, append([]string{"reset", "--"}, files...)...)
}

// Commit records the index and returns the short hash of the new commit.
func (r *Repo) Commit(ctx context.Context, message, author, email string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errors.New("commit message is required")
	}
	args := []string{"commit", "-m", message}
	if author != "" && email != "" {
		args = append(args, "--author", fmt.Sprintf("%s <%s>", author, email))
	}
	if err := r.run(ctx, args...); err != nil {
		return "", err
	}
	return r.head(ctx)
}

// Amend rewrites the last commit, keeping its message when message is empty.
func (r *Repo) Amend(ctx context.Context, message string) (string, error) {
	args := []string{"commit", "--amend"}
	if strings.TrimSpace(message) != "" {
		args = append(args, "-m", message)
	} else {
		args = append(args, "--no-edit")
	}
	if err := r.run(ctx, args...); err != nil {
		return "", err
	}
	return r.head(ctx)
}

func (r *Repo) head(ctx context.Context) (string, error) {
	out, err := r.output(ctx, "rev-parse", "--short=7", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the checked out branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CreateBranch creates name at HEAD and optionally checks it out.
func (r *Repo) CreateBranch(ctx context.Context, name string, checkout bool) (string, error) {
	if checkout {
		if err := r.run(ctx, "checkout", "-b", name); err != nil {
			return "", err
		}
		return fmt.Sprintf("Created and checked out branch '%s'", name), nil
	}
	if err := r.run(ctx, "branch", name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Created branch '%s'", name), nil
}

// Checkout switches to name, creating it first when create is true.
func (r *Repo) Checkout(ctx context.Context, name string, create bool) (string, error) {
	args := []string{"checkout"}
	if create {
		args = append(args, "-b")
	}
	if err := r.run(ctx, append(args, name)...); err != nil {
		return "", err
	}
	return fmt.Sprintf("Switched to branch '%s'", name), nil
}

// DeleteBranch deletes a local branch.
func (r *Repo) DeleteBranch(ctx context.Context, name string, force bool) (string, error) {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if err := r.run(ctx, "branch", flag, name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted branch '%s'", name), nil
}

// ListBranches lists local branches, or remote-tracking ones when remote is true.
func (r *Repo) ListBranches(ctx context.Context, remote bool) ([]string, error) {
	args := []string{"branch", "--format=%(refname:short)"}
	if remote {
		args = append(args, "-r")
	}
	out, err := r.output(ctx, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// AddRemote adds a remote.
func (r *Repo) AddRemote(ctx context.Context, name, url string) (string, error) {
	if err := r.run(ctx, "remote", "add", name, url); err != nil {
		return "", err
	}
	return fmt.Sprintf("Added remote '%s' -> %s", name, url), nil
}

// RemoveRemote removes a remote.
func (r *Repo) RemoveRemote(ctx context.Context, name string) (string, error) {
	if err := r.run(ctx, "remote", "remove", name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed remote '%s'", name), nil
}

// ListRemotes maps remote names to their fetch URLs.
func (r *Repo) ListRemotes(ctx context.Context) (map[string]string, error) {
	out, err := r.output(ctx, "remote", "-v")
	if err != nil {
		return nil, err
	}
	remotes := map[string]string{}
	for _, line := range splitLines(out) {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if len(fields) == 3 && fields[2] != "(fetch)" {
			continue
		}
		remotes[fields[0]] = fields[1]
	}
	return remotes, nil
}

// RemoteURL returns the URL of a remote.
func (r *Repo) RemoteURL(ctx context.Context, name string) (string, error) {
	if name == "" {
		name = "origin"
	}
	out, err := r.output(ctx, "remote", "get-url", name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Fetch fetches a remote.
func (r *Repo) Fetch(ctx context.Context, remote string, prune bool) (string, error) {
	remote = defaultRemote(remote)
	args := []string{"fetch", remote}
	if prune {
		args = append(args, "--prune")
	}
	if err := r.run(ctx, args...); err != nil {
		return "", err
	}
	return "Fetched from " + remote, nil
}

// Pull pulls branch (the current branch when empty) from remote.
func (r *Repo) Pull(ctx context.Context, remote, branch string, rebase bool) (string, error) {
	remote = defaultRemote(remote)
	branch, err := r.branchOrCurrent(ctx, branch)
	if err != nil {
		return "", err
	}
	args := []string{"pull"}
	if rebase {
		args = append(args, "--rebase")
	}
	if err := r.run(ctx, append(args, remote, branch)...); err != nil {
		return "", err
	}
	return fmt.Sprintf("Pulled from %s/%s", remote, branch), nil
}

// Push pushes branch (the current branch when empty) to remote. force uses
// --force-with-lease.
func (r *Repo) Push(ctx context.Context, remote, branch string, setUpstream, force bool) (string, error) {
	remote = defaultRemote(remote)
	branch, err := r.branchOrCurrent(ctx, branch)
	if err != nil {
		return "", err
	}
	args := []string{"push"}
	if setUpstream {
		args = append(args, "--set-upstream")
	}
	if force {
		args = append(args, "--force-with-lease")
	}
	if err := r.run(ctx, append(args, remote, branch)...); err != nil {
		return "", err
	}
	return fmt.Sprintf("Pushed to %s/%s", remote, branch), nil
}

// Merge merges branch into the current branch.
func (r *Repo) Merge(ctx context.Context, branch string, noFF bool) (string, error) {
	current, err := r.CurrentBranch(ctx)
	if err != nil {
		return "", err
	}
	args := []string{"merge"}
	if noFF {
		args = append(args, "--no-ff")
	}
	if err := r.run(ctx, append(args, branch)...); err != nil {
		return "", err
	}
	return fmt.Sprintf("Merged %s into %s", branch, current), nil
}

// AbortMerge aborts an in-progress merge.
func (r *Repo) AbortMerge(ctx context.Context) (string, error) {
	if err := r.run(ctx, "merge", "--abort"); err != nil {
		return "", err
	}
	return "Merge aborted", nil
}

// Stash stashes local changes.
func (r *Repo) Stash(ctx context.Context, message string, includeUntracked bool) (string, error) {
	args := []string{"stash", "push"}
	if includeUntracked {
		args = append(args, "--include-untracked")
	}
	if message != "" {
		args = append(args, "-m", message)
	}
	out, err := r.output(ctx, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// StashPop applies and drops stash@{index}.
func (r *Repo) StashPop(ctx context.Context, index int) (string, error) {
	ref := fmt.Sprintf("stash@{%d}", index)
	if err := r.run(ctx, "stash", "pop", ref); err != nil {
		return "", err
	}
	return "Applied " + ref, nil
}

// StashList lists stash entries.
func (r *Repo) StashList(ctx context.Context) ([]string, error) {
	out, err := r.output(ctx, "stash", "list")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// CreateTag creates a tag at HEAD, annotated when message is set.
func (r *Repo) CreateTag(ctx context.Context, name, message string) (string, error) {
	args := []string{"tag"}
	if message != "" {
		args = append(args, "-a", name, "-m", message)
	} else {
		args = append(args, name)
	}
	if err := r.run(ctx, args...); err != nil {
		return "", err
	}
	return fmt.Sprintf("Created tag '%s'", name), nil
}

// DeleteTag deletes a local tag.
func (r *Repo) DeleteTag(ctx context.Context, name string) (string, error) {
	if err := r.run(ctx, "tag", "-d", name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted tag '%s'", name), nil
}

// ListTags lists tags.
func (r *Repo) ListTags(ctx context.Context) ([]string, error) {
	out, err := r.output(ctx, "tag", "--list")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func (r *Repo) branchOrCurrent(ctx context.Context, branch string) (string, error) {
	if branch = strings.TrimSpace(branch); branch != "" {
		return branch, nil
	}
	return r.CurrentBranch(ctx)
}

func defaultRemote(remote string) string {
	if strings.TrimSpace(remote) == "" {
		return "origin"
	}
	return strings.TrimSpace(remote)
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
