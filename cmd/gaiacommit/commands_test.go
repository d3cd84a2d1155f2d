package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appiCli "github.com/urfave/cli/v3"

	"github.com/chmouel/gaiacommit/internal/app"
	"github.com/chmouel/gaiacommit/internal/buildinfo"
	"github.com/chmouel/gaiacommit/internal/git"
	"github.com/chmouel/gaiacommit/internal/history"
)

// isolate points every config layer at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(dir, "gitconfig"))

	prevGetwd, prevOpenGit := getwdFunc, openGitFunc
	getwdFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() {
		getwdFunc = prevGetwd
		openGitFunc = prevOpenGit
	})
	return dir
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := newApp()
	var out, errOut bytes.Buffer
	cmd.Writer = &out
	cmd.ErrWriter = &errOut
	err := cmd.Run(context.Background(), append([]string{"gaiacommit", "--theme", "dracula"}, args...))
	return out.String(), errOut.String(), err
}

type emptyRepo struct {
	calls []string
}

func (r *emptyRepo) StageAll(context.Context) error {
	r.calls = append(r.calls, "add .")
	return nil
}
func (r *emptyRepo) AddAll(context.Context) error { return nil }
func (r *emptyRepo) StagedFiles(context.Context) ([]string, error) {
	return []string{}, nil
}
func (r *emptyRepo) StagedDiff(context.Context, string) (string, error) { return "", nil }
func (r *emptyRepo) Reset(context.Context) error {
	r.calls = append(r.calls, "reset")
	return nil
}
func (r *emptyRepo) Commit(context.Context, string) (string, error) { return "", nil }
func (r *emptyRepo) Push(context.Context, string, string) error    { return nil }
func (r *emptyRepo) ResolveBranch(b string) (string, error)         { return b, nil }

func TestVersionCommand(t *testing.T) {
	isolate(t)
	buildinfo.Set("1.2.3", "abc123", "2026-01-01", "goreleaser")
	t.Cleanup(func() { buildinfo.Set("dev", "none", "unknown", "unknown") })

	out, _, err := runApp(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gaiacommit version 1.2.3")
	assert.Contains(t, out, "commit: abc123")
}

func TestConfigOverridesOrder(t *testing.T) {
	var got []string
	cmd := &appiCli.Command{
		Name:  "gaiacommit",
		Flags: globalFlags(),
		Action: func(_ context.Context, cmd *appiCli.Command) error {
			got = configOverrides(cmd)
			return nil
		},
	}
	err := cmd.Run(context.Background(), []string{
		"gaiacommit", "-C", "gc.remote=upstream", "--remote", "fork", "-t", "nord", "--branch", "HEAD",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"gc.remote=upstream", "gc.theme=nord", "gc.remote=fork", "gc.push_branch=HEAD"}, got)
}

func TestUnknownThemeIsAnError(t *testing.T) {
	isolate(t)

	cmd := newApp()
	cmd.Writer, cmd.ErrWriter = io.Discard, io.Discard
	err := cmd.Run(context.Background(), []string{"gaiacommit", "-t", "no-such-theme", "nodes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown theme")
}

func TestInvalidOverrideIsAnError(t *testing.T) {
	isolate(t)

	_, _, err := runApp(t, "-C", "gc.retry_attempts=0", "nodes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func directoryServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nodes/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"objects":[
			{"status":"ONLINE","model_name":"Meta-Llama-3-8B","subdomain":"llama.gaianet.network"},
			{"status":"OFFLINE","model_name":"Llama-2","subdomain":"down.gaianet.network"},
			{"status":"ONLINE","model_name":"Qwen2","subdomain":"qwen.gaianet.network"}
		]}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNodesCommand(t *testing.T) {
	isolate(t)
	srv := directoryServer(t)

	out, errOut, err := runApp(t, "-C", "gc.directory_url="+srv.URL+"/nodes/", "nodes")
	require.NoError(t, err)
	assert.Contains(t, out, "SUBDOMAIN")
	assert.Contains(t, out, "llama.gaianet.network")
	assert.NotContains(t, out, "down.gaianet.network")
	assert.NotContains(t, out, "qwen.gaianet.network")
	assert.Contains(t, errOut, `1 eligible node(s) serving "llama"`)
}

func TestNodesCommandModelFilterFlag(t *testing.T) {
	isolate(t)
	srv := directoryServer(t)

	out, _, err := runApp(t, "-C", "gc.directory_url="+srv.URL+"/nodes/", "--model-filter", "qwen", "nodes", "--json")
	require.NoError(t, err)

	var nodes []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "qwen.gaianet.network", nodes[0]["subdomain"])
}

func seedHistory(t *testing.T, path string) {
	t.Helper()

	store, err := history.Open(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, msg := range []string{"🐛 fix(a): first\nbody", "✨ feat(b): second"} {
		_, err := store.Record(context.Background(), history.Entry{
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			File:      "f.go",
			Node:      "n.gaianet.network",
			Model:     "Llama-3",
			Message:   msg,
			Outcome:   string(app.OutcomeCommitted),
		})
		require.NoError(t, err)
	}
}

func TestHistoryCommand(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "h.db")
	seedHistory(t, path)

	out, _, err := runApp(t, "-C", "gc.history_file="+path, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "WHEN")
	assert.Contains(t, out, "fix(a): first")
	assert.NotContains(t, out, "body")
	assert.Less(t, bytes.Index([]byte(out), []byte("second")), bytes.Index([]byte(out), []byte("first")))
}

func TestHistoryCommandLimitJSON(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "h.db")
	seedHistory(t, path)

	out, _, err := runApp(t, "-C", "gc.history_file="+path, "history", "--limit", "1", "--json")
	require.NoError(t, err)

	var entries []historyJSON
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "✨ feat(b): second", entries[0].Message)
	assert.Equal(t, "committed", entries[0].Outcome)
}

func TestPipelineOutsideRepository(t *testing.T) {
	isolate(t)

	_, _, err := runApp(t)
	require.Error(t, err)
	assert.ErrorIs(t, err, git.ErrNotRepository)
}

func TestPipelineNothingToCommitExitsCleanly(t *testing.T) {
	dir := isolate(t)
	repo := &emptyRepo{}
	openGitFunc = func(string, io.Writer) (app.GitClient, error) { return repo, nil }
	metricsPath := filepath.Join(dir, "metrics", "gaiacommit.prom")

	out, _, err := runApp(t, "-C", "gc.metrics_file="+metricsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No changes to commit")
	assert.Equal(t, []string{"add .", "reset"}, repo.calls)

	data, err := os.ReadFile(metricsPath) //nolint:gosec
	require.NoError(t, err)
	assert.Contains(t, string(data), `gaiacommit_runs_total{outcome="nothing"}`)
}

func TestPipelineRejectsArguments(t *testing.T) {
	isolate(t)

	_, _, err := runApp(t, "extra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected argument")
}
