package triage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mechsight/triage/internal/ai"
	"github.com/mechsight/triage/internal/history"
	"github.com/mechsight/triage/internal/model"
	"github.com/mechsight/triage/internal/store"
)

// stubAnalyzer counts calls and returns a fixed analysis or error.
type stubAnalyzer struct {
	analysis *ai.Analysis
	err      error
	calls    int
}

func (s *stubAnalyzer) Analyze(ctx context.Context, event model.Event, similar []model.Match) (*ai.Analysis, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.analysis, nil
}

func goodAnalysis(score int, priority model.Priority) *ai.Analysis {
	return &ai.Analysis{
		Report: model.MaintenanceReport{
			DiagnoseCause:      "Reducer backlash on J3",
			MaintenanceActions: "Replace reducer",
		},
		RiskScore:      score,
		Priority:       priority,
		Recommendation: "Replace the J3 reducer before next shift",
	}
}

func triageEvent(severity model.Severity) model.Event {
	return model.Event{
		RecordID:        "r_" + string(severity),
		EventID:         "ev_" + string(severity),
		Type:            model.KindErrorLog,
		Timestamp:       time.Date(2025, 11, 17, 9, 0, 0, 0, time.UTC),
		Joint:           "J3",
		Severity:        severity,
		ErrorCode:       "SRVO-050",
		Description:     "Collision detected on J3",
		RecurrenceCount: 1,
	}
}

func newScorer(analyzer ai.Analyzer, corpus *store.Store) *Scorer {
	if corpus == nil {
		corpus = store.New()
	}
	matcher := history.New(0, 0, zap.NewNop())
	return New(corpus, matcher, analyzer, ai.NewCache(10), zap.NewNop())
}

func TestScoreHeuristicOnlyMode(t *testing.T) {
	s := newScorer(nil, nil)

	result := s.Score(context.Background(), triageEvent(model.SeverityMed))

	assert.Equal(t, model.ProvenanceHeuristic, result.Provenance)
	assert.Equal(t, 45, result.Score)
	assert.Equal(t, model.PriorityMedium, result.Priority)
	assert.NotEmpty(t, result.Report.DiagnoseCause)
	assert.NotEmpty(t, result.Recommendation)
	assert.False(t, result.Cached)
}

func TestScoreFallsBackWhenAIFails(t *testing.T) {
	stub := &stubAnalyzer{err: errors.New("service unavailable")}
	s := newScorer(stub, nil)

	result := s.Score(context.Background(), triageEvent(model.SeverityHigh))

	assert.Equal(t, model.ProvenanceHeuristic, result.Provenance)
	assert.Equal(t, 65, result.Score)
	assert.Equal(t, model.PriorityHigh, result.Priority)
	assert.Equal(t, 1, stub.calls)
	// Failures are never cached; a second call tries the service again.
	s.Score(context.Background(), triageEvent(model.SeverityHigh))
	assert.Equal(t, 2, stub.calls)
}

func TestScoreUsesAIResult(t *testing.T) {
	stub := &stubAnalyzer{analysis: goodAnalysis(72, model.PriorityHigh)}
	s := newScorer(stub, nil)

	result := s.Score(context.Background(), triageEvent(model.SeverityMed))

	assert.Equal(t, model.ProvenanceAI, result.Provenance)
	assert.Equal(t, 72, result.Score)
	assert.Equal(t, model.PriorityHigh, result.Priority)
	assert.Equal(t, "Reducer backlash on J3", result.Report.DiagnoseCause)
	assert.Equal(t, "Replace the J3 reducer before next shift", result.Recommendation)
}

func TestScoreCachesIdenticalEvents(t *testing.T) {
	stub := &stubAnalyzer{analysis: goodAnalysis(72, model.PriorityHigh)}
	s := newScorer(stub, nil)

	first := triageEvent(model.SeverityMed)
	second := first
	second.RecordID = "different_record"

	r1 := s.Score(context.Background(), first)
	r2 := s.Score(context.Background(), second)

	assert.Equal(t, 1, stub.calls)
	assert.False(t, r1.Cached)
	assert.True(t, r2.Cached)
	assert.Equal(t, r1.Score, r2.Score)
}

func TestScoreCriticalFloor(t *testing.T) {
	// AI returned an implausibly low score for a critical event.
	stub := &stubAnalyzer{analysis: goodAnalysis(30, model.PriorityLow)}
	s := newScorer(stub, nil)

	result := s.Score(context.Background(), triageEvent(model.SeverityCritical))

	assert.GreaterOrEqual(t, result.Score, 80)
	assert.Equal(t, model.PriorityCritical, result.Priority)
	assert.Equal(t, model.ProvenanceAI, result.Provenance)
}

func TestScoreCriticalSeverityForcesCriticalPriority(t *testing.T) {
	s := newScorer(nil, nil)
	result := s.Score(context.Background(), triageEvent(model.SeverityCritical))
	assert.Equal(t, model.PriorityCritical, result.Priority)
}

func TestApplyOverridesHighFloor(t *testing.T) {
	ev := triageEvent(model.SeverityHigh)
	assert.Equal(t, 60, applyOverrides(10, ev, nil))
	// A score already above the floor is untouched.
	assert.Equal(t, 75, applyOverrides(75, ev, nil))
}

func TestApplyOverridesRecurrenceSingleTier(t *testing.T) {
	tests := []struct {
		recurrence int
		want       int
	}{
		{1, 40},
		{10, 40}, // tiers are strictly greater-than
		{11, 55},
		{51, 60},
		{101, 65},
	}
	for _, tt := range tests {
		ev := triageEvent(model.SeverityMed)
		ev.RecurrenceCount = tt.recurrence
		assert.Equal(t, tt.want, applyOverrides(40, ev, nil), "recurrence %d", tt.recurrence)
	}
}

func TestApplyOverridesRecurrenceMonotonic(t *testing.T) {
	prev := 0
	for _, recurrence := range []int{1, 5, 11, 25, 51, 75, 101, 500} {
		ev := triageEvent(model.SeverityLow)
		ev.RecurrenceCount = recurrence
		score := applyOverrides(20, ev, nil)
		assert.GreaterOrEqual(t, score, prev, "recurrence %d", recurrence)
		prev = score
	}
}

func TestApplyOverridesSimilarityBoost(t *testing.T) {
	ev := triageEvent(model.SeverityMed)
	strong := []model.Match{{Event: &model.Event{}, Score: 0.75}}
	weak := []model.Match{{Event: &model.Event{}, Score: 0.5}}

	assert.Equal(t, 50, applyOverrides(40, ev, strong))
	assert.Equal(t, 40, applyOverrides(40, ev, weak))
}

func TestApplyOverridesClampsAt100(t *testing.T) {
	ev := triageEvent(model.SeverityCritical)
	ev.RecurrenceCount = 200
	strong := []model.Match{{Event: &model.Event{}, Score: 0.9}}
	assert.Equal(t, 100, applyOverrides(95, ev, strong))
}

func TestScorePriorityBuckets(t *testing.T) {
	tests := []struct {
		score int
		want  model.Priority
	}{
		{100, model.PriorityCritical},
		{80, model.PriorityCritical},
		{79, model.PriorityHigh},
		{60, model.PriorityHigh},
		{59, model.PriorityMedium},
		{40, model.PriorityMedium},
		{39, model.PriorityLow},
		{0, model.PriorityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scorePriority(tt.score), "score %d", tt.score)
	}
}

func TestScoreIncludesSimilarEvents(t *testing.T) {
	corpus := store.New()
	prior := triageEvent(model.SeverityHigh)
	prior.RecordID = "prior"
	prior.EventID = "prior_ev"
	prior.Timestamp = time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
	corpus.Append(prior)

	s := newScorer(nil, corpus)
	result := s.Score(context.Background(), triageEvent(model.SeverityHigh))

	require.NotEmpty(t, result.SimilarEvents)
	assert.Equal(t, "prior", result.SimilarEvents[0].Event.RecordID)
}

func TestFallbackReportSections(t *testing.T) {
	ev := triageEvent(model.SeverityCritical)
	ev.ErrorCode = "SRVO-324"

	r := fallbackReport(ev)

	assert.Contains(t, r.DiagnoseCause, "SRVO-324")
	assert.Contains(t, r.DiagnoseCause, "J3 (Elbow)")
	assert.NotEmpty(t, r.InspectionProcedure)
	assert.Contains(t, r.MaintenanceActions, "out of service")
	assert.NotEmpty(t, r.SafetyClearance)
	assert.NotEmpty(t, r.ReturnToService)
}

func TestFallbackReportUnknownJoint(t *testing.T) {
	ev := triageEvent(model.SeverityLow)
	ev.Joint = model.JointUnknown
	ev.ErrorCode = ""

	r := fallbackReport(ev)
	assert.Contains(t, r.DiagnoseCause, "unidentified joint")
}

func TestFallbackRecommendationByPriority(t *testing.T) {
	assert.Contains(t, fallbackRecommendation(model.PriorityCritical), "Immediate action")
	assert.Contains(t, fallbackRecommendation(model.PriorityLow), "Log for tracking")
}
