// Package output delivers normalized events to export destinations as
// NDJSON, one event per line in the canonical schema.
package output

import (
	"context"

	"github.com/mechsight/triage/internal/model"
)

// Sink is a destination for normalized events.
type Sink interface {
	Write(ctx context.Context, event model.Event) error
	Close() error
}
