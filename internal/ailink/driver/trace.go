package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// TraceEntry is one model round trip as written to the --trace file.
// Credentials never appear: drivers send them as headers, which are not
// recorded.
type TraceEntry struct {
	Timestamp   time.Time       `json:"timestamp"`
	Driver      string          `json:"driver"`
	Endpoint    string          `json:"endpoint"`
	Method      string          `json:"method"`
	Model       string          `json:"model,omitempty"`
	PromptSlug  string          `json:"prompt_slug,omitempty"`
	RequestBody json.RawMessage `json:"request_body,omitempty"`
	StatusCode  int             `json:"status_code,omitempty"`
	Response    json.RawMessage `json:"response,omitempty"`
	Error       string          `json:"error,omitempty"`
	DurationMs  int64           `json:"duration_ms"`
}

var trace struct {
	mu   sync.Mutex
	sink io.WriteCloser
	enc  *json.Encoder
}

// EnableTracing appends NDJSON entries to path until the returned cleanup
// runs. Enabling again replaces the previous file.
func EnableTracing(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 -- path from --trace
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}

	trace.mu.Lock()
	if trace.sink != nil {
		_ = trace.sink.Close()
	}
	trace.sink, trace.enc = f, json.NewEncoder(f)
	trace.mu.Unlock()

	return func() {
		trace.mu.Lock()
		defer trace.mu.Unlock()
		if trace.sink == f {
			_ = f.Close()
			trace.sink, trace.enc = nil, nil
		}
	}, nil
}

// Trace records entry when tracing is enabled. Write failures are dropped.
func Trace(entry TraceEntry) {
	trace.mu.Lock()
	defer trace.mu.Unlock()
	if trace.enc == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	_ = trace.enc.Encode(entry)
}
