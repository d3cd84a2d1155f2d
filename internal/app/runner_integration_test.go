package app

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/gaiacommit/internal/git"
	"github.com/chmouel/gaiacommit/internal/history"
)

func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

func newRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	gitCmd(t, dir, "init")
	gitCmd(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	gitCmd(t, dir, "config", "user.email", "test@example.com")
	gitCmd(t, dir, "config", "user.name", "Test User")
	gitCmd(t, dir, "config", "commit.gpgsign", "false")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o600))
	gitCmd(t, dir, "add", "README.md")
	gitCmd(t, dir, "commit", "-m", "initial")
	return dir
}

func newRepoRunner(t *testing.T, dir string, answers map[string]bool) (*Runner, *fakeGaia, *history.Store) {
	t.Helper()

	svc, err := git.Open(dir, &bytes.Buffer{})
	require.NoError(t, err)

	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	gen := &fakeGaia{answer: "```\\n📝 docs(readme): greet the world\\n---\\n```"}
	return &Runner{
		Git:     svc,
		Gaia:    gen,
		Prompt:  &fakePrompt{answers: answers},
		History: store,
		Out:     &bytes.Buffer{},
		Err:     &bytes.Buffer{},
		Remote:  "origin",
		Branch:  "HEAD",
	}, gen, store
}

func TestRepoCommitOnly(t *testing.T) {
	dir := newRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello world\n"), 0o600))

	r, gen, store := newRepoRunner(t, dir, map[string]bool{QuestionCommitOnly: true})
	res := r.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeCommitted, res.Outcome)

	require.Len(t, gen.completed, 1)
	assert.Contains(t, gen.completed[0], "+hello world")
	assert.Equal(t, "📝 docs(readme): greet the world", gitCmd(t, dir, "log", "-1", "--format=%B"))

	entries, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "README.md", entries[0].File)
	assert.Equal(t, string(OutcomeCommitted), entries[0].Outcome)
}

func TestRepoStopLeavesIndexClean(t *testing.T) {
	dir := newRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("new\n"), 0o600))

	r, _, _ := newRepoRunner(t, dir, map[string]bool{QuestionStop: true})
	res := r.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeStopped, res.Outcome)

	assert.Equal(t, "?? new.txt", gitCmd(t, dir, "status", "--porcelain"))
	assert.Equal(t, "initial", gitCmd(t, dir, "log", "-1", "--format=%s"))
}

func TestRepoPushToBareRemote(t *testing.T) {
	dir := newRepo(t)
	remote := t.TempDir()
	gitCmd(t, remote, "init", "--bare")
	gitCmd(t, dir, "remote", "add", "origin", remote)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("pushed\n"), 0o600))

	r, _, _ := newRepoRunner(t, dir, map[string]bool{QuestionPush: true})
	res := r.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomePushed, res.Outcome)
	assert.Equal(t, "📝 docs(readme): greet the world", gitCmd(t, remote, "log", "-1", "--format=%s", "main"))
}

func TestRepoNothingToCommit(t *testing.T) {
	dir := newRepo(t)

	r, gen, _ := newRepoRunner(t, dir, nil)
	res := r.Run(context.Background())
	assert.Equal(t, OutcomeNothing, res.Outcome)
	assert.Empty(t, gen.completed)
	assert.Contains(t, r.Out.(*bytes.Buffer).String(), "No changes to commit")
}
