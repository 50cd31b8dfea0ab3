// Package stdout writes events to a stream, one JSON document per line.
package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mechsight/triage/internal/model"
)

// Sink JSON-encodes events onto a writer. Compact NDJSON by default;
// pretty indents each document for human reading.
type Sink struct {
	enc *json.Encoder
}

// New creates a Sink writing to w, typically os.Stdout.
func New(w io.Writer, pretty bool) *Sink {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Sink{enc: enc}
}

// Write encodes one event.
func (s *Sink) Write(_ context.Context, event model.Event) error {
	if err := s.enc.Encode(event); err != nil {
		return fmt.Errorf("stdout sink: %w", err)
	}
	return nil
}

// Close is a no-op; the underlying stream is not owned by the sink.
func (s *Sink) Close() error {
	return nil
}
