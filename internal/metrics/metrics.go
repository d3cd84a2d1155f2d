// Package metrics records per-run counters and can dump them in the
// node_exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every gaiacommit collector. It is separate from the default
// registry so Go runtime collectors do not end up in the textfile.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// RunsTotal counts finished runs by outcome.
	RunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaiacommit_runs_total",
			Help: "Total number of gaiacommit runs by outcome",
		},
		[]string{"outcome"},
	)

	// HTTPAttempts counts HTTP attempts against the directory and nodes.
	HTTPAttempts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaiacommit_http_attempts_total",
			Help: "HTTP attempts by operation and status code",
		},
		[]string{"operation", "code"},
	)

	// CompletionDuration tracks how long the completion request took, retries included.
	CompletionDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gaiacommit_completion_duration_seconds",
			Help:    "Completion request duration in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 50, 90},
		},
	)

	// DiffBytes tracks the size of the diffs sent to the model.
	DiffBytes = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gaiacommit_diff_bytes",
			Help:    "Size of the staged diff sent for completion",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
	)
)

// WriteTextfile writes the registry to path atomically. An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
