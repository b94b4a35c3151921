// Package eventlog persists error events to an append-only log file without
// putting the write on the request path.
package eventlog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/technotes/notes-api/internal/api/metrics"
)

const (
	// ErrorLogFile is the file name used under the configured log directory.
	ErrorLogFile  = "errLog.log"
	defaultBuffer = 256
)

// Event is a single failure as seen by the error handler.
type Event struct {
	ID      string
	Time    time.Time
	Kind    string
	Message string
	Status  int
	Method  string
	Path    string
	Origin  string
}

// Sink buffers events and writes them from a single worker goroutine. Record
// never blocks: when the buffer is full the event is dropped and counted.
type Sink struct {
	events chan Event
	log    zerolog.Logger
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewSink returns a Sink writing JSON lines to w. If buffer <= 0,
// defaultBuffer is used. Call Start before recording.
func NewSink(w io.Writer, buffer int) *Sink {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Sink{
		events: make(chan Event, buffer),
		log:    zerolog.New(w),
		done:   make(chan struct{}),
	}
}

// OpenFile opens (creating if needed) the error log inside dir for appending.
func OpenFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, ErrorLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open error log: %w", err)
	}
	return f, nil
}

// Start launches the writer goroutine. It exits once Close drains the buffer.
func (s *Sink) Start() {
	go s.run()
}

// Record enqueues e, stamping an ID and time when missing.
func (s *Sink) Record(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.events <- e:
		metrics.ErrorLogQueueDepth.Set(float64(len(s.events)))
	default:
		metrics.ErrorLogDroppedTotal.Inc()
	}
}

// Close stops accepting events and waits for pending ones to be written or
// for ctx to expire.
func (s *Sink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sink) run() {
	defer close(s.done)
	for e := range s.events {
		metrics.ErrorLogQueueDepth.Set(float64(len(s.events)))
		s.write(e)
	}
}

func (s *Sink) write(e Event) {
	level := zerolog.WarnLevel
	if e.Status >= http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}
	s.log.WithLevel(level).
		Time("time", e.Time).
		Str("id", e.ID).
		Str("kind", e.Kind).
		Int("status", e.Status).
		Str("method", e.Method).
		Str("path", e.Path).
		Str("origin", e.Origin).
		Msg(e.Message)
}
