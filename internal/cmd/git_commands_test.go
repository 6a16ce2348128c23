package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghassist/gh-assist/internal/git"
)

// runRoot executes the root command against a fake git work tree.
func runRoot(t *testing.T, g *fakeGit, args ...string) (string, error) {
	t.Helper()
	if _, ok := g.outputs["rev-parse --is-inside-work-tree"]; !ok {
		g.outputs["rev-parse --is-inside-work-tree"] = "true\n"
	}
	prev := gitExecutor
	gitExecutor = g
	t.Cleanup(func() {
		gitExecutor = prev
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--dir", t.TempDir()}, args...))
	err := Execute(context.Background())
	return out.String(), err
}

func TestRemoteListSorted(t *testing.T) {
	g := newFakeGit()
	g.outputs["remote -v"] = "upstream\thttps://github.com/acme/widgets.git (fetch)\n" +
		"upstream\thttps://github.com/acme/widgets.git (push)\n" +
		"origin\tgit@github.com:octo/widgets.git (fetch)\n"

	out, err := runRoot(t, g, "remote", "list")
	require.NoError(t, err)
	assert.Equal(t, "origin\tgit@github.com:octo/widgets.git\nupstream\thttps://github.com/acme/widgets.git\n", out)
}

func TestRemoteAddRequiresURL(t *testing.T) {
	_, err := runRoot(t, newFakeGit(), "remote", "add", "upstream")
	assert.ErrorContains(t, err, "requires a name and a url")
}

func TestBranchDelete(t *testing.T) {
	g := newFakeGit()
	t.Cleanup(func() { branchDelete, branchForce = false, false })

	out, err := runRoot(t, g, "branch", "old-work", "-d", "-f")
	require.NoError(t, err)
	assert.True(t, g.called("branch -D old-work"))
	assert.Contains(t, out, "Deleted branch 'old-work'")
}

func TestMergeAbort(t *testing.T) {
	g := newFakeGit()
	t.Cleanup(func() { mergeAbort = false })

	out, err := runRoot(t, g, "merge", "--abort")
	require.NoError(t, err)
	assert.True(t, g.called("merge --abort"))
	assert.Contains(t, out, "Merge aborted")
}

func TestFetchPrune(t *testing.T) {
	g := newFakeGit()
	t.Cleanup(func() { fetchPrune, syncRemote = false, "origin" })

	out, err := runRoot(t, g, "fetch", "-r", "upstream", "--prune")
	require.NoError(t, err)
	assert.True(t, g.called("fetch upstream --prune"))
	assert.Contains(t, out, "Fetched from upstream")
}

func TestStatusCleanTree(t *testing.T) {
	g := newFakeGit()
	g.outputs["status --porcelain=v1 -b"] = "## main...origin/main\n"

	out, err := runRoot(t, g, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Working tree clean")
}

func TestStatusOutsideRepository(t *testing.T) {
	g := newFakeGit()
	g.outputs["rev-parse --is-inside-work-tree"] = "false\n"

	_, err := runRoot(t, g, "status")
	assert.ErrorIs(t, err, git.ErrNotRepository)
}
