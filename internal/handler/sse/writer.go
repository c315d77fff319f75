package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrStreamingUnsupported is returned when the response cannot be flushed
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// Writer writes Server-Sent Events to one connection. It is not safe for
// concurrent use; callers write from a single loop.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// NewWriter sets the SSE headers and returns a writer for w
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	return &Writer{w: w, flusher: flusher}, nil
}

// WriteRetry tells the client how long to wait before reconnecting
func (s *Writer) WriteRetry(millis int64) error {
	if _, err := fmt.Fprintf(s.w, "retry: %d\n\n", millis); err != nil {
		return fmt.Errorf("write retry failed: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// WriteEvent writes one event with a JSON payload and flushes it
func (s *Writer) WriteEvent(event string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}

	s.nextID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		return fmt.Errorf("write %s event failed: %w", event, err)
	}
	s.flusher.Flush()
	return nil
}

// WriteKeepAlive writes an SSE comment (: keepalive) and flushes.
// Lines starting with : are ignored by clients.
func (s *Writer) WriteKeepAlive() error {
	if _, err := fmt.Fprintf(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive failed: %w", err)
	}
	s.flusher.Flush()
	return nil
}
