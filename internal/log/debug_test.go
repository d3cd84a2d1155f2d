package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetSink(t *testing.T) {
	t.Helper()

	std.mu.Lock()
	prevFile := std.out
	prevBuffer := append([]byte(nil), std.pending...)
	prevDiscard := std.dropped
	std.out = nil
	std.pending = nil
	std.dropped = false
	std.mu.Unlock()

	t.Cleanup(func() {
		std.mu.Lock()
		if std.out != nil {
			_ = std.out.Close()
		}
		std.out = prevFile
		std.pending = prevBuffer
		std.dropped = prevDiscard
		std.mu.Unlock()
	})
}

func TestSetFileFlushesBufferedLines(t *testing.T) {
	resetSink(t)

	Printf("run: git add .")
	Errorf("push rejected")

	logPath := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, SetFile(logPath))
	Println("after open")
	require.NoError(t, Close())

	data, err := os.ReadFile(logPath) //nolint:gosec
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "run: git add .")
	assert.Contains(t, content, "error: push rejected")
	assert.Contains(t, content, "after open")
	assert.Less(t, strings.Index(content, "run: git add ."), strings.Index(content, "after open"))
}

func TestSetFileFailureDiscardsLogs(t *testing.T) {
	resetSink(t)

	logPath := filepath.Join(t.TempDir(), "missing", "debug.log")
	err := SetFile(logPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open debug log")

	Printf("should be discarded")

	std.mu.Lock()
	defer std.mu.Unlock()
	assert.True(t, std.dropped)
	assert.Empty(t, std.pending)
}

func TestEmptyPathDiscards(t *testing.T) {
	resetSink(t)

	Printf("buffered")
	require.NoError(t, SetFile(""))
	Printf("dropped")

	std.mu.Lock()
	defer std.mu.Unlock()
	assert.Empty(t, std.pending)
}

func TestBufferIsBounded(t *testing.T) {
	resetSink(t)

	chunk := strings.Repeat("x", 1024)
	for i := 0; i < 400; i++ {
		_, _ = std.Write([]byte(chunk))
	}
	_, _ = std.Write([]byte("tail"))

	std.mu.Lock()
	defer std.mu.Unlock()
	assert.LessOrEqual(t, len(std.pending), maxPendingBytes)
	assert.True(t, strings.HasSuffix(string(std.pending), "tail"))
}
