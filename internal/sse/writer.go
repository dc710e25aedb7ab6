// Package sse carries batch progress events over a Server-Sent Events stream,
// on both the server and the client side.
package sse

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/mimmersdev/pases-universitarios/internal/events"
)

// TransportError reports a failed write to the response stream, usually
// because the client went away.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("event stream write failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Writer frames events onto an open HTTP response and flushes each one.
// After the first failed write every Emit returns the same TransportError.
type Writer struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	rc     *http.ResponseController
	closed *TransportError
}

// NewWriter sends the stream headers and a 200 status. Nothing may be written
// to w by the caller afterwards.
func NewWriter(w http.ResponseWriter) *Writer {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sw := &Writer{w: w, rc: http.NewResponseController(w)}
	if err := sw.rc.Flush(); err != nil {
		sw.closed = &TransportError{Err: err}
	}
	return sw
}

// Emit implements events.Emitter.
func (s *Writer) Emit(ev events.Event) error {
	name, data, err := events.Encode(ev)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed != nil {
		return s.closed
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		s.closed = &TransportError{Err: err}
		return s.closed
	}
	if err := s.rc.Flush(); err != nil {
		s.closed = &TransportError{Err: err}
		return s.closed
	}
	return nil
}
