// Package validate measures extraction quality and collapses duplicate
// observations. It only measures: batches below the accuracy target are
// reported, never rejected.
package validate

import (
	"github.com/mechsight/triage/internal/model"
)

// TargetScore is the weighted accuracy threshold the pipeline reports
// against, in percent.
const TargetScore = 75.0

// fieldWeights weight each field's fill rate in the overall score.
var fieldWeights = map[string]float64{
	"timestamp":      0.25,
	"joint":          0.25,
	"severity":       0.20,
	"force_value":    0.15,
	"collision_type": 0.15,
}

// Summary holds batch-level completeness metrics.
type Summary struct {
	TotalEvents   int                `json:"total_events"`
	ValidEvents   int                `json:"valid_events"`
	Accuracy      float64            `json:"accuracy"`       // percent of events with >=3 key fields
	FieldAccuracy map[string]float64 `json:"field_accuracy"` // percent per field
	OverallScore  float64            `json:"overall_score"`  // weighted percent
	MeetsTarget   bool               `json:"meets_target"`
}

// Report computes per-field fill rates and the weighted overall score for
// a batch of normalized events.
func Report(events []model.Event) Summary {
	if len(events) == 0 {
		return Summary{FieldAccuracy: map[string]float64{}}
	}

	filled := map[string]int{}
	valid := 0
	for _, e := range events {
		hasTimestamp := !e.Timestamp.IsZero()
		hasJoint := e.Joint != "" && e.Joint != model.JointUnknown
		hasSeverity := e.Severity != ""
		hasForce := e.ForceValue != nil
		hasCollision := e.CollisionType != ""

		countIf(filled, "timestamp", hasTimestamp)
		countIf(filled, "joint", hasJoint)
		countIf(filled, "severity", hasSeverity)
		countIf(filled, "force_value", hasForce)
		countIf(filled, "collision_type", hasCollision)

		if boolCount(hasTimestamp, hasJoint, hasSeverity) >= 3 {
			valid++
		}
	}

	total := float64(len(events))
	fieldAccuracy := make(map[string]float64, len(filled))
	for field := range fieldWeights {
		fieldAccuracy[field] = round2(float64(filled[field]) / total * 100)
	}

	score := 0.0
	for field, weight := range fieldWeights {
		score += fieldAccuracy[field] * weight
	}
	score = round2(score)

	return Summary{
		TotalEvents:   len(events),
		ValidEvents:   valid,
		Accuracy:      round2(float64(valid) / total * 100),
		FieldAccuracy: fieldAccuracy,
		OverallScore:  score,
		MeetsTarget:   score >= TargetScore,
	}
}

func countIf(m map[string]int, key string, ok bool) {
	if ok {
		m[key]++
	}
}

func boolCount(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
