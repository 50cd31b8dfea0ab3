package model

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the canonical wire representation for event timestamps.
const TimestampLayout = "2006-01-02T15:04:05"

// Severity is the four-level urgency classification of an event.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMed      Severity = "med"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// rank orders severities for dedup tie-breaks and floor checks.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMed:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is at or above other.
func (s Severity) AtLeast(other Severity) bool {
	return s.rank() >= other.rank()
}

// CollisionType classifies an impact event. Empty means no collision implied.
type CollisionType string

const (
	CollisionHardImpact    CollisionType = "hard_impact"
	CollisionSoft          CollisionType = "soft_collision"
	CollisionEmergencyStop CollisionType = "emergency_stop"
)

// Confidence reflects how much of a record was inferred vs. observed.
type Confidence string

const (
	ConfidenceHigh     Confidence = "high"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceInferred Confidence = "inferred"
)

// rank orders confidence flags; higher means more directly observed.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// Stronger reports whether c outranks other.
func (c Confidence) Stronger(other Confidence) bool {
	return c.rank() > other.rank()
}

// Cap returns the weaker of c and limit.
func (c Confidence) Cap(limit Confidence) Confidence {
	if c.rank() > limit.rank() {
		return limit
	}
	return c
}

// Status is the maintenance workflow state of an event.
type Status string

const (
	StatusPendingInspection Status = "pending_inspection"
	StatusUnderRepair       Status = "under_repair"
	StatusResolved          Status = "resolved"
)

// JointUnknown is the joint value when no axis indicator was found.
const JointUnknown = "UNKNOWN"

// Event is the canonical, normalized unit of the system. Created once by
// the normalizer; RecurrenceCount is set by deduplication; immutable after
// it reaches the store.
type Event struct {
	RecordID        string        `json:"record_id"`
	EventID         string        `json:"event_id"`
	Type            SourceKind    `json:"event_type"`
	Timestamp       time.Time     `json:"-"`
	Joint           string        `json:"joint"`
	CollisionType   CollisionType `json:"collision_type,omitempty"`
	ForceValue      *float64      `json:"force_value"`
	Severity        Severity      `json:"severity"`
	ErrorCode       string        `json:"error_code,omitempty"`
	Description     string        `json:"description"`
	Status          Status        `json:"status"`
	ConfidenceFlag  Confidence    `json:"confidence_flag"`
	RecurrenceCount int           `json:"recurrence_count"`
	Notes           string        `json:"notes,omitempty"`
}

// eventAlias avoids recursing into Event's own marshaller.
type eventAlias Event

type eventJSON struct {
	eventAlias
	Timestamp string `json:"timestamp"`
}

// MarshalJSON renders Timestamp in the canonical YYYY-MM-DDTHH:MM:SS form.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{eventAlias: eventAlias(e), Timestamp: e.Timestamp.Format(TimestampLayout)})
}

// UnmarshalJSON parses the canonical timestamp form.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := time.Parse(TimestampLayout, raw.Timestamp)
	if err != nil {
		return err
	}
	*e = Event(raw.eventAlias)
	e.Timestamp = ts
	return nil
}
