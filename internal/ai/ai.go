// Package ai integrates the large-language-model collaborator. The model
// is consumed as an opaque completion service: one bounded attempt per
// request, and any malformed or partial response is a failure for the
// caller to recover from, never partially trusted.
package ai

import (
	"context"

	"github.com/mechsight/triage/internal/model"
)

// Analysis is a well-formed structured response from the collaborator.
type Analysis struct {
	Report         model.MaintenanceReport
	RiskScore      int // 0-100
	Priority       model.Priority
	Recommendation string
	RawText        string
}

// Analyzer produces a maintenance analysis for an event given similar
// prior events. Implementations must honor ctx cancellation and return an
// error for any transport, auth, timeout, or parse failure.
type Analyzer interface {
	Analyze(ctx context.Context, event model.Event, similar []model.Match) (*Analysis, error)
}
