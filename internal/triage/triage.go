// Package triage combines AI and heuristic signals into a final priority
// decision. The AI collaborator is optional and allowed to fail: scoring
// always returns a complete result, with provenance saying which path
// produced it.
package triage

import (
	"context"

	"go.uber.org/zap"

	"github.com/mechsight/triage/internal/ai"
	"github.com/mechsight/triage/internal/history"
	"github.com/mechsight/triage/internal/model"
	"github.com/mechsight/triage/internal/store"
)

// Heuristic base scores by severity, used when no well-formed AI risk
// score is available.
var severityBaseScore = map[model.Severity]int{
	model.SeverityCritical: 85,
	model.SeverityHigh:     65,
	model.SeverityMed:      45,
	model.SeverityLow:      20,
}

// Severity floors: these severities force a minimum score regardless of
// what the AI returned.
const (
	criticalFloor = 80
	highFloor     = 60
)

// Recurrence boost tiers; only the single highest matching tier applies.
var recurrenceTiers = []struct {
	Above int
	Boost int
}{
	{100, 25},
	{50, 20},
	{10, 15},
}

// similarityBoostThreshold is the best-match score at or above which the
// similarity boost applies.
const (
	similarityBoostThreshold = 0.7
	similarityBoost          = 10
)

// Scorer produces triage results for stored events.
type Scorer struct {
	corpus   *store.Store
	matcher  *history.Matcher
	analyzer ai.Analyzer // nil means heuristic-only mode
	cache    *ai.Cache
	log      *zap.Logger
}

// New creates a Scorer. analyzer may be nil, leaving the scorer in
// heuristic-only mode.
func New(corpus *store.Store, matcher *history.Matcher, analyzer ai.Analyzer, cache *ai.Cache, log *zap.Logger) *Scorer {
	if cache == nil {
		cache = ai.NewCache(0)
	}
	return &Scorer{corpus: corpus, matcher: matcher, analyzer: analyzer, cache: cache, log: log}
}

// Score triages one event. It never fails: AI trouble of any kind falls
// back to the deterministic heuristic path.
func (s *Scorer) Score(ctx context.Context, event model.Event) model.TriageResult {
	similar := s.matcher.FindSimilar(event, s.corpus.All())

	analysis, cached := s.analyze(ctx, event, similar)

	var base int
	provenance := model.ProvenanceHeuristic
	if analysis != nil {
		base = analysis.RiskScore
		provenance = model.ProvenanceAI
	} else {
		base = severityBaseScore[event.Severity]
	}

	score := applyOverrides(base, event, similar)
	priority := scorePriority(score)
	if event.Severity == model.SeverityCritical {
		priority = model.PriorityCritical
	}

	result := model.TriageResult{
		EventID:       event.EventID,
		Score:         score,
		Priority:      priority,
		SimilarEvents: similar,
		Provenance:    provenance,
		Cached:        cached,
	}
	if analysis != nil {
		result.Report = analysis.Report
		result.Recommendation = analysis.Recommendation
	} else {
		result.Report = fallbackReport(event)
		result.Recommendation = fallbackRecommendation(priority)
	}

	s.log.Info("triage scored",
		zap.String("event_id", event.EventID),
		zap.Int("score", score),
		zap.String("priority", string(priority)),
		zap.String("provenance", string(provenance)))
	return result
}

// analyze obtains an AI analysis via the content-keyed cache. Returns nil
// on any failure; only successful analyses are cached.
func (s *Scorer) analyze(ctx context.Context, event model.Event, similar []model.Match) (*ai.Analysis, bool) {
	if s.analyzer == nil {
		return nil, false
	}

	key := ai.CacheKey(event)
	if a, ok := s.cache.Get(key); ok {
		return a, true
	}

	a, err := s.analyzer.Analyze(ctx, event, similar)
	if err != nil {
		s.log.Warn("ai analysis failed, using heuristic fallback",
			zap.String("event_id", event.EventID), zap.Error(err))
		return nil, false
	}
	s.cache.Put(key, a)
	return a, false
}

// applyOverrides runs the deterministic override ladder: severity floors,
// then the single highest recurrence tier, then the similarity boost.
// Each step may only raise the score; the final clamp is shared.
func applyOverrides(base int, event model.Event, similar []model.Match) int {
	score := base

	switch event.Severity {
	case model.SeverityCritical:
		if score < criticalFloor {
			score = criticalFloor
		}
	case model.SeverityHigh:
		if score < highFloor {
			score = highFloor
		}
	}

	for _, tier := range recurrenceTiers {
		if event.RecurrenceCount > tier.Above {
			score += tier.Boost
			break
		}
	}

	if len(similar) > 0 && similar[0].Score >= similarityBoostThreshold {
		score += similarityBoost
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// scorePriority maps a final score onto the priority buckets.
func scorePriority(score int) model.Priority {
	switch {
	case score >= 80:
		return model.PriorityCritical
	case score >= 60:
		return model.PriorityHigh
	case score >= 40:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}
