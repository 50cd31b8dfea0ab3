// Package file writes events to an NDJSON file with buffered appends.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/mechsight/triage/internal/model"
)

const defaultBufSize = 64 * 1024

// Option configures a file Sink.
type Option func(*Sink)

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(s *Sink) { s.bufSize = bytes }
}

// Sink appends NDJSON events to a file. Safe for concurrent writers.
type Sink struct {
	mu      sync.Mutex
	f       *os.File
	w       *bufio.Writer
	path    string
	bufSize int
}

// New opens (or creates) the file at path for appending.
func New(path string, opts ...Option) (*Sink, error) {
	s := &Sink{path: path, bufSize: defaultBufSize}
	for _, opt := range opts {
		opt(s)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("file sink: open %s: %w", path, err)
	}
	s.f = f
	s.w = bufio.NewWriterSize(f, s.bufSize)
	return s, nil
}

// Write appends one event as a JSON line.
func (s *Sink) Write(_ context.Context, event model.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("file sink: marshal: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("file sink: write: %w", err)
	}
	return nil
}

// Close flushes the buffer and closes the file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return fmt.Errorf("file sink: flush: %w", err)
	}
	return s.f.Close()
}
