package driver

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceWritesOneLinePerEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.ndjson")
	Trace(TraceEntry{Driver: "dropped"})

	cleanup, err := EnableTracing(path)
	require.NoError(t, err)
	Trace(TraceEntry{Driver: "anthropic", StatusCode: 200})
	Trace(TraceEntry{Driver: "openai", Error: "timeout"})
	cleanup()
	Trace(TraceEntry{Driver: "after-cleanup"})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var drivers []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry TraceEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		assert.False(t, entry.Timestamp.IsZero())
		drivers = append(drivers, entry.Driver)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"anthropic", "openai"}, drivers)
}

func TestEnableTracingReplacesPreviousFile(t *testing.T) {
	dir := t.TempDir()
	first, err := EnableTracing(filepath.Join(dir, "a.ndjson"))
	require.NoError(t, err)
	second, err := EnableTracing(filepath.Join(dir, "b.ndjson"))
	require.NoError(t, err)

	first()
	Trace(TraceEntry{Driver: "anthropic"})
	second()

	a, err := os.ReadFile(filepath.Join(dir, "a.ndjson"))
	require.NoError(t, err)
	assert.Empty(t, a)
	b, err := os.ReadFile(filepath.Join(dir, "b.ndjson"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"driver":"anthropic"`)
}

func TestEnableTracingBadPath(t *testing.T) {
	_, err := EnableTracing(filepath.Join(t.TempDir(), "missing", "trace.ndjson"))
	assert.ErrorContains(t, err, "open trace file")
}
