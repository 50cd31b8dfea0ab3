// Package history finds and ranks prior events similar to a target event.
// The inclusion threshold is deliberately permissive: the goal is to give
// the AI collaborator generous context, not perfect precision.
package history

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mechsight/triage/internal/model"
)

// Signal weights. The first four sum to 1.0; the keyword bonus is
// additive on top, capped, with the final score clamped to [0,1].
const (
	weightType        = 0.40
	weightDescription = 0.30
	weightErrorCode   = 0.20
	weightSeverity    = 0.10

	keywordBonusPer = 0.05
	keywordBonusCap = 0.20
)

// DefaultThreshold is the minimum score for a match to be returned.
const DefaultThreshold = 0.3

// DefaultLimit caps how many matches are returned.
const DefaultLimit = 10

// importantTerms is the fixed industrial-robot vocabulary used for the
// keyword-overlap bonus.
var importantTerms = []string{
	"collision", "torque", "vibration", "temperature", "servo",
	"battery", "fence", "overtravel", "singularity", "joint",
	"motor", "axis", "sensor", "network", "calibrate", "belt",
	"wiring", "lubricate", "replace", "check", "inspect",
}

// Matcher scores corpus events against a target.
type Matcher struct {
	Threshold float64
	Limit     int
	log       *zap.Logger
}

// New creates a Matcher with the given inclusion threshold and result
// limit; zero values fall back to the defaults.
func New(threshold float64, limit int, log *zap.Logger) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Matcher{Threshold: threshold, Limit: limit, log: log}
}

// FindSimilar returns corpus events scoring at or above the threshold
// against the target, sorted by score descending with ties broken by
// more-recent timestamp. The target itself is skipped by record id and
// event id.
func (m *Matcher) FindSimilar(target model.Event, corpus []model.Event) []model.Match {
	var matches []model.Match
	for i := range corpus {
		e := &corpus[i]
		if e.RecordID == target.RecordID {
			continue
		}
		if target.EventID != "" && e.EventID == target.EventID {
			continue
		}

		score, reasons := Score(target, *e)
		if score >= m.Threshold {
			matches = append(matches, model.Match{Event: e, Score: score, Reasons: reasons})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Event.Timestamp.After(matches[j].Event.Timestamp)
	})

	if len(matches) > m.Limit {
		matches = matches[:m.Limit]
	}

	m.log.Debug("similar events found",
		zap.String("record_id", target.RecordID),
		zap.Int("matches", len(matches)),
		zap.Int("corpus", len(corpus)))
	return matches
}

// Score computes the weighted similarity between two events, clamped to
// [0,1], plus human-readable match reasons.
func Score(a, b model.Event) (float64, []string) {
	score := 0.0
	var reasons []string

	if a.Type != "" && a.Type == b.Type {
		score += weightType
		reasons = append(reasons, "same_type")
	}

	descA := strings.ToLower(a.Description)
	descB := strings.ToLower(b.Description)
	if descA != "" && descB != "" {
		r := ratio(descA, descB)
		score += r * weightDescription
		if r > 0.3 {
			reasons = append(reasons, fmt.Sprintf("similar_description(%.2f)", r))
		}
	}

	// Absent-vs-absent error codes are no match.
	if a.ErrorCode != "" && a.ErrorCode == b.ErrorCode {
		score += weightErrorCode
		reasons = append(reasons, "same_error_code")
	}

	if a.Severity != "" && a.Severity == b.Severity {
		score += weightSeverity
		reasons = append(reasons, "same_severity")
	}

	if shared := sharedKeywords(descA, descB); len(shared) > 0 {
		bonus := float64(len(shared)) * keywordBonusPer
		if bonus > keywordBonusCap {
			bonus = keywordBonusCap
		}
		score += bonus
		reasons = append(reasons, "common_keywords: "+strings.Join(shared, ", "))
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score, reasons
}

// Keywords extracts the important terms present in text.
func Keywords(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, term := range importantTerms {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}
	return found
}

func sharedKeywords(a, b string) []string {
	inB := make(map[string]bool)
	for _, k := range Keywords(b) {
		inB[k] = true
	}
	var shared []string
	for _, k := range Keywords(a) {
		if inB[k] {
			shared = append(shared, k)
		}
	}
	return shared
}
