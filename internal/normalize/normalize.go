package normalize

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mechsight/triage/internal/model"
)

// Normalizer deterministically maps raw events onto the canonical schema.
// It never fails: missing or malformed fields are inferred and the
// inference recorded in the event's notes and confidence flag.
type Normalizer struct {
	log *zap.Logger
	now func() time.Time
}

// New creates a Normalizer.
func New(log *zap.Logger) *Normalizer {
	return &Normalizer{log: log, now: time.Now}
}

// WithClock overrides the processing-time source. Test hook.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// Batch carries ordering context across one file's events: time-only
// timestamps borrow the date of the most recently parsed event.
type Batch struct {
	lastDate    time.Time
	hasLastDate bool
}

// NewBatch starts a fresh batch context.
func NewBatch() *Batch {
	return &Batch{}
}

// NormalizeBatch normalizes a file's raw events in encounter order. Order
// matters: the date-inference context is threaded through sequentially.
func (n *Normalizer) NormalizeBatch(raws []model.RawEvent) []model.Event {
	batch := NewBatch()
	events := make([]model.Event, 0, len(raws))
	for _, raw := range raws {
		events = append(events, n.Normalize(raw, batch))
	}
	return events
}

// Normalize maps one raw event to one canonical event.
func (n *Normalizer) Normalize(raw model.RawEvent, batch *Batch) model.Event {
	var notes []string

	ts, tsObserved, tsCap := n.resolveTimestamp(raw.Timestamp, batch, &notes)

	joint := extractJoint(raw)
	if joint == model.JointUnknown {
		notes = append(notes, "Joint identifier not found, may need manual review")
	}

	force, forceSrc := extractForce(raw)
	switch forceSrc {
	case forceVibration:
		notes = append(notes, "Force approximated from vibration reading")
	case forceOutOfRange:
		notes = append(notes, "Force value out of range (0-10000N), rejected")
		n.log.Warn("rejected out-of-range force value", zap.String("event_id", raw.EventID))
	case forceNone:
		notes = append(notes, "Force value not available, severity calculated from other indicators")
	}

	errorCode := extractErrorCode(raw)
	severity := n.severity(raw, force)
	collision := detectCollision(raw.Description, errorCode, force)

	forceObserved := forceSrc == forceDirect || forceSrc == forceDescription || forceSrc == forceVibration
	confidence := confidenceFor(tsObserved, joint != model.JointUnknown, forceObserved, errorCode != "").Cap(tsCap)

	ev := model.Event{
		RecordID:        uuid.NewString(),
		EventID:         raw.EventID,
		Type:            raw.Kind,
		Timestamp:       ts,
		Joint:           joint,
		CollisionType:   collision,
		ForceValue:      force,
		Severity:        severity,
		ErrorCode:       errorCode,
		Description:     raw.Description,
		Status:          normalizeStatus(rawStatus(raw)),
		ConfidenceFlag:  confidence,
		RecurrenceCount: 1,
		Notes:           strings.Join(notes, "; "),
	}

	n.log.Debug("normalized event",
		zap.String("record_id", ev.RecordID),
		zap.String("joint", ev.Joint),
		zap.String("severity", string(ev.Severity)),
		zap.String("confidence", string(ev.ConfidenceFlag)))
	return ev
}

// resolveTimestamp applies the timestamp rule ladder. Returns the
// canonical value, whether the source carried a usable timestamp, and the
// ceiling the confidence flag may reach given how much was inferred.
func (n *Normalizer) resolveTimestamp(raw string, batch *Batch, notes *[]string) (time.Time, bool, model.Confidence) {
	t, precision := parseTimestamp(raw)

	switch precision {
	case tsFull:
		batch.lastDate, batch.hasLastDate = t, true
		return t, true, model.ConfidenceHigh
	case tsDateOnly:
		// Midnight of the given date.
		batch.lastDate, batch.hasLastDate = t, true
		return t, true, model.ConfidenceHigh
	case tsTimeOnly:
		date := n.now()
		if batch.hasLastDate {
			date = batch.lastDate
		}
		*notes = append(*notes, "Date inferred from batch context")
		return withDate(t, date), true, model.ConfidenceMedium
	default:
		*notes = append(*notes, "Timestamp inferred from processing time")
		return n.now().Truncate(time.Second), false, model.ConfidenceInferred
	}
}

// severity applies the tiered fallback: force bands, explicit severity
// words, error-code family heuristic, then low.
func (n *Normalizer) severity(raw model.RawEvent, force *float64) model.Severity {
	if force != nil {
		return forceSeverity(*force)
	}

	if word := rawSeverityWord(raw); word != "" {
		if s := wordSeverity(word); s != "" {
			return s
		}
	}

	errorCode := extractErrorCode(raw)
	if strings.HasPrefix(errorCode, "SRVO") || strings.Contains(strings.ToUpper(raw.Description), "COLLISION") {
		return model.SeverityMed
	}

	return model.SeverityLow
}

// confidenceFor is a pure function of which of the four key fields were
// directly observed: three or more observed is high, exactly two is
// medium, anything less is inferred.
func confidenceFor(timestamp, joint, force, errorCode bool) model.Confidence {
	observed := 0
	for _, b := range []bool{timestamp, joint, force, errorCode} {
		if b {
			observed++
		}
	}
	switch {
	case observed >= 3:
		return model.ConfidenceHigh
	case observed == 2:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceInferred
	}
}

func rawStatus(raw model.RawEvent) string {
	if raw.Generic != nil {
		if v := raw.Generic.FieldValue("status"); v != "" {
			return v
		}
		return raw.Generic.FieldValue("Status")
	}
	return ""
}
