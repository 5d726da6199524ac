package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// sseRetryMillis is the reconnect delay suggested to EventSource clients.
const sseRetryMillis = 3000

// SSEWriter writes Server-Sent Events to a single client. Event ids are
// sequential per stream; every event carries a full snapshot, so a client
// that reconnects only needs the next event and ignores Last-Event-ID.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  uint64
	retried bool
}

// NewSSEWriter sets the streaming headers on w.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends data as a JSON event named event.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	s.nextID++
	var buf bytes.Buffer
	if !s.retried {
		fmt.Fprintf(&buf, "retry: %d\n", sseRetryMillis)
		s.retried = true
	}
	fmt.Fprintf(&buf, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload)
	return s.flush(buf.Bytes())
}

// WriteKeepAlive sends a comment line so proxies keep the stream open.
func (s *SSEWriter) WriteKeepAlive() error {
	return s.flush([]byte(": keep-alive\n\n"))
}

func (s *SSEWriter) flush(frame []byte) error {
	if _, err := s.w.Write(frame); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
