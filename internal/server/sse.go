package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/pipeline"
)

// SSE event names
const (
	EventProgress = "progress"
	EventResult   = "result"
	EventFailed   = "failed"
	EventError    = "error"
)

// SSEWriter helps write Server-Sent Events. Section progress arrives from
// concurrent goroutines, so writes are serialized.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends the terminal event for err: "failed" for a fatal job
// failure and "error" for anything else.
func (s *SSEWriter) WriteError(err error) {
	event := EventError
	if _, ok := pipeline.IsFatal(err); ok {
		event = EventFailed
	}
	s.WriteEvent(event, errorBody(err)) //nolint:errcheck
}
