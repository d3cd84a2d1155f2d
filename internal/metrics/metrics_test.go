package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunsTotalCounts(t *testing.T) {
	before := testutil.ToFloat64(RunsTotal.WithLabelValues("pushed"))
	RunsTotal.WithLabelValues("pushed").Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(RunsTotal.WithLabelValues("pushed")), 0.0001)
}

func TestWriteTextfile(t *testing.T) {
	RunsTotal.WithLabelValues("committed").Inc()
	HTTPAttempts.WithLabelValues("completion", "504").Inc()

	path := filepath.Join(t.TempDir(), "nested", "gaiacommit.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path) //nolint:gosec
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `gaiacommit_runs_total{outcome="committed"}`)
	assert.Contains(t, content, `gaiacommit_http_attempts_total{code="504",operation="completion"}`)
	assert.NotContains(t, content, "go_goroutines")
}

func TestWriteTextfileEmptyPath(t *testing.T) {
	require.NoError(t, WriteTextfile(""))
}
