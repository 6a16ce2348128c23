package git

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	out := "## main...origin/main [ahead 2, behind 1]\n" +
		" M README.md\n" +
		"M  staged.go\n" +
		"MM both.go\n" +
		"R  old.go -> new.go\n" +
		"?? notes.txt\n"

	st := ParseStatus(out)
	assert.Equal(t, "main", st.CurrentBranch)
	assert.Equal(t, "origin/main", st.Upstream)
	assert.Equal(t, 2, st.Ahead)
	assert.Equal(t, 1, st.Behind)
	assert.Equal(t, []string{"README.md", "both.go"}, st.Modified)
	assert.Equal(t, []string{"staged.go", "both.go", "new.go"}, st.Staged)
	assert.Equal(t, []string{"notes.txt"}, st.Untracked)
	assert.True(t, st.IsDirty)
	assert.False(t, st.Clean())
}

func TestParseStatusCleanAndUnbornBranch(t *testing.T) {
	st := ParseStatus("## No commits yet on trunk\n")
	assert.Equal(t, "trunk", st.CurrentBranch)
	assert.True(t, st.Clean())
	assert.False(t, st.IsDirty)

	st = ParseStatus("## HEAD (no branch)\n?? a\n")
	assert.Equal(t, "HEAD", st.CurrentBranch)
	assert.False(t, st.IsDirty, "untracked files alone do not make the tree dirty")
}

func TestParseLog(t *testing.T) {
	out := "0123456789abcdef\x1fAda\x1f2026-01-02T03:04:05+00:00\x1fAdd parser\n\nLonger body\n\x1e\n" +
		"fedcba9876543210\x1fGrace\x1f2026-01-01T00:00:00Z\x1fInitial commit\n\x1e\n"

	commits := ParseLog(out)
	require.Len(t, commits, 2)
	assert.Equal(t, "0123456", commits[0].SHA)
	assert.Equal(t, "Ada", commits[0].Author)
	assert.Equal(t, "Add parser\n\nLonger body", commits[0].Message)
	assert.Equal(t, "Add parser", commits[0].Subject())
	assert.Equal(t, 2026, commits[0].Date.Year())
	assert.Equal(t, "Initial commit", commits[1].Message)
}

func TestRepoCommitReturnsShortHash(t *testing.T) {
	m := newMockExecutor()
	m.outputs["rev-parse --short=7 HEAD"] = "abc1234\n"
	r := New(".", m)

	sha, err := r.Commit(context.Background(), "feat: add thing", "Ada", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "abc1234", sha)
	assert.Equal(t, []string{"commit", "-m", "feat: add thing", "--author", "Ada <ada@example.com>"}, m.commands[0])
}

func TestRepoCommitRequiresMessage(t *testing.T) {
	_, err := New(".", newMockExecutor()).Commit(context.Background(), "  ", "", "")
	require.Error(t, err)
}

func TestRepoPushDefaultsToCurrentBranch(t *testing.T) {
	m := newMockExecutor()
	m.outputs["rev-parse --abbrev-ref HEAD"] = "feature/x\n"
	r := New(".", m)

	msg, err := r.Push(context.Background(), "", "", true, false)
	require.NoError(t, err)
	assert.Equal(t, "Pushed to origin/feature/x", msg)
	assert.Equal(t, "push --set-upstream origin feature/x", m.last())
}

func TestRepoPullAndMergeMessages(t *testing.T) {
	m := newMockExecutor()
	m.outputs["rev-parse --abbrev-ref HEAD"] = "main\n"
	r := New(".", m)

	msg, err := r.Pull(context.Background(), "upstream", "dev", true)
	require.NoError(t, err)
	assert.Equal(t, "Pulled from upstream/dev", msg)
	assert.Equal(t, "pull --rebase upstream dev", m.last())

	msg, err = r.Merge(context.Background(), "dev", true)
	require.NoError(t, err)
	assert.Equal(t, "Merged dev into main", msg)
}

func TestRepoAddVariants(t *testing.T) {
	m := newMockExecutor()
	r := New(".", m)

	require.NoError(t, r.Add(context.Background(), nil, true))
	assert.Equal(t, "add -A", m.last())
	require.NoError(t, r.Add(context.Background(), []string{"a.go", "b.go"}, false))
	assert.Equal(t, "add -- a.go b.go", m.last())
	require.Error(t, r.Add(context.Background(), nil, false))
}

func TestRepoDiffRangeFallsBackToOrigin(t *testing.T) {
	m := newMockExecutor()
	m.errs["diff main...feature"] = &Error{Op: "git", Args: []string{"diff"}, Stderr: "unknown revision"}
	m.outputs["diff origin/main...feature"] = "diff --git a/x b/x\n"

	out, err := New(".", m).DiffRange(context.Background(), "main", "feature")
	require.NoError(t, err)
	assert.Equal(t, "diff --git a/x b/x\n", out)

	m.errs["diff origin/main...feature"] = errors.New("boom")
	_, err = New(".", m).DiffRange(context.Background(), "main", "feature")
	var gitErr *Error
	require.ErrorAs(t, err, &gitErr)
}

func TestRepoListRemotes(t *testing.T) {
	m := newMockExecutor()
	m.outputs["remote -v"] = "origin\tgit@github.com:o/r.git (fetch)\norigin\tgit@github.com:o/r.git (push)\nup\thttps://github.com/u/r (fetch)\n"
	remotes, err := New(".", m).ListRemotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"origin": "git@github.com:o/r.git", "up": "https://github.com/u/r"}, remotes)
}

func TestOpenRejectsNonRepository(t *testing.T) {
	m := newMockExecutor()
	m.errs["rev-parse --is-inside-work-tree"] = &Error{Op: "git", Args: []string{"rev-parse"}, Stderr: "fatal: not a git repository"}
	_, err := Open(context.Background(), ".", m)
	require.ErrorIs(t, err, ErrNotRepository)
	assert.EqualError(t, err, "Not a git repository. Run 'git init' first.")
}

func TestErrorMessageUsesStderr(t *testing.T) {
	err := &Error{Op: "git", Args: []string{"push", "origin"}, Stderr: "rejected\n", Err: errors.New("exit status 1")}
	assert.Equal(t, "git push failed: rejected", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "exit status 1")
}

func TestParseRemote(t *testing.T) {
	tests := map[string]string{
		"https://github.com/octo/hello.git":    "octo/hello",
		"https://github.com/octo/hello":        "octo/hello",
		"git@github.com:octo/hello.git":        "octo/hello",
		"ssh://git@github.com/octo/hello.git":  "octo/hello",
		"https://token@github.com/octo/hello/": "octo/hello",
	}
	for in, want := range tests {
		got, ok := ParseRemote(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseRemote("/local/path")
	assert.False(t, ok)
	_, ok = ParseRemote("")
	assert.False(t, ok)
}

func TestExecExecutorAgainstRealGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "repo")

	outside := New(t.TempDir(), nil)
	assert.False(t, outside.IsRepo(ctx))

	repo, err := Init(ctx, t.TempDir(), nil)
	require.NoError(t, err)
	assert.True(t, repo.IsRepo(ctx))

	require.NoError(t, NewExecExecutor().Execute(ctx, exec.Command("git", "init", dir)))
	repo = New(dir, nil)
	st, err := repo.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Clean())
}
