package model

// Provenance records whether a triage result came from the AI collaborator
// or the deterministic fallback path.
type Provenance string

const (
	ProvenanceAI        Provenance = "ai_generated"
	ProvenanceHeuristic Provenance = "heuristic_fallback"
)

// Priority is the four-level triage bucket.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// MaintenanceReport is the fixed five-section structured recommendation.
type MaintenanceReport struct {
	DiagnoseCause       string `json:"diagnose_cause"`
	InspectionProcedure string `json:"inspection_procedure"`
	MaintenanceActions  string `json:"maintenance_actions"`
	SafetyClearance     string `json:"safety_clearance"`
	ReturnToService     string `json:"return_to_service"`
}

// Match pairs a similar prior event with its similarity score.
type Match struct {
	Event   *Event   `json:"event"`
	Score   float64  `json:"similarity_score"`
	Reasons []string `json:"match_reasons,omitempty"`
}

// TriageResult is the per-request output of the triage scorer.
type TriageResult struct {
	EventID        string            `json:"event_id"`
	Score          int               `json:"triage_score"`
	Priority       Priority          `json:"priority"`
	Recommendation string            `json:"recommendation"`
	Report         MaintenanceReport `json:"maintenance_report"`
	SimilarEvents  []Match           `json:"similar_events"`
	Provenance     Provenance        `json:"provenance"`
	Cached         bool              `json:"cached,omitempty"`
}
