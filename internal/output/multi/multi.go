// Package multi fans events out to several sinks.
package multi

import (
	"context"
	"errors"

	"github.com/mechsight/triage/internal/model"
	"github.com/mechsight/triage/internal/output"
)

// Sink delivers each event to every wrapped sink sequentially. A failing
// sink does not stop delivery to the rest; errors are joined.
type Sink struct {
	sinks []output.Sink
}

// New creates a fan-out over the given sinks.
func New(sinks ...output.Sink) *Sink {
	return &Sink{sinks: sinks}
}

// Write delivers the event to every wrapped sink.
func (m *Sink) Write(ctx context.Context, event model.Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every wrapped sink, collecting errors.
func (m *Sink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
