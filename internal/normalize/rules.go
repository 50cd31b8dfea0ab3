package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mechsight/triage/internal/model"
)

// Force value bounds in Newtons. Parsed values outside this range are
// rejected, never stored.
const (
	ForceMin = 0.0
	ForceMax = 10000.0
)

// Severity band boundaries in Newtons. A boundary value belongs to the
// higher band: exactly 300N is med, exactly 800N is critical.
const (
	forceMedN      = 300.0
	forceHighN     = 600.0
	forceCriticalN = 800.0
)

// vibrationForceScale approximates force from a vibration reading (g)
// when no direct force or torque field exists.
const vibrationForceScale = 100.0

// errorCodeNames maps known controller error codes to canonical names.
var errorCodeNames = map[string]string{
	"SRVO-160": "Torque limit reached",
	"SRVO-161": "Torque limit reached",
	"SRVO-005": "Torque limit reached",
	"SRVO-050": "Torque limit reached",
	"SRVO-062": "Torque limit reached",
	"SRVO-324": "Collision detected",
	"TEMP-100": "Temperature anomaly",
	"MOTN-019": "Motion error",
	"INTP-105": "Interpreter error",
	"PROG-048": "Program error",
}

// CodeName returns the canonical name for a known error code, or the code
// itself when unrecognized.
func CodeName(code string) string {
	if name, ok := errorCodeNames[code]; ok {
		return name
	}
	return code
}

// hardImpactCode is the one code family that implies a hard impact on its own.
const hardImpactCode = "SRVO-324"

var (
	hardImpactWords = []string{"collision", "crash", "impact", "strike"}
	softImpactWords = []string{"contact", "touch", "brush"}
	estopWords      = []string{"e-stop", "estop", "emergency stop", "emergency"}
)

// jointPatterns are tried in order against description text; the first
// match wins.
var jointPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bJ([1-6])\b`),
	regexp.MustCompile(`(?i)\bAXIS\s*([1-6])\b`),
	regexp.MustCompile(`(?i)\bJOINT\s*([1-6])\b`),
}

var (
	forceTextRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[Nn]\b`)
	errorCodeRe = regexp.MustCompile(`\b([A-Z]{4}-\d+)\b`)
)

// extractJoint scans the description and payload for an axis indicator.
// Returns JointUnknown when nothing matches.
func extractJoint(raw model.RawEvent) string {
	for _, re := range jointPatterns {
		if m := re.FindStringSubmatch(raw.Description); m != nil {
			return "J" + m[1]
		}
	}

	if raw.Sensor != nil {
		for n := 1; n <= 6; n++ {
			if _, ok := raw.Sensor.Axes[n]; ok {
				return "J" + strconv.Itoa(n)
			}
		}
	}

	if raw.Generic != nil {
		for n := 1; n <= 6; n++ {
			key := "axis" + strconv.Itoa(n)
			for _, f := range raw.Generic.Fields {
				k := strings.ToLower(f.Key)
				if (k == key || k == key+"_deg") && f.Value != "" {
					return "J" + strconv.Itoa(n)
				}
			}
		}
		v := raw.Generic.FieldValue("Axis")
		if v == "" {
			v = raw.Generic.FieldValue("axis")
		}
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 1 && n <= 6 {
			return "J" + strconv.Itoa(n)
		}
	}

	return model.JointUnknown
}

// forceSource tells where a force value came from, for notes and
// confidence accounting.
type forceSource int

const (
	forceNone forceSource = iota
	forceDirect
	forceVibration
	forceDescription
	forceOutOfRange
)

// extractForce pulls a force value in Newtons from payload fields or
// description text. A value outside [ForceMin, ForceMax] is reported as
// forceOutOfRange with a nil result; the caller records the rejection.
func extractForce(raw model.RawEvent) (*float64, forceSource) {
	if v, src := payloadForce(raw); src != forceNone {
		return checkRange(v, src)
	}

	if m := forceTextRe.FindStringSubmatch(raw.Description); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return checkRange(v, forceDescription)
		}
	}

	return nil, forceNone
}

func payloadForce(raw model.RawEvent) (float64, forceSource) {
	if raw.Generic != nil {
		for _, key := range []string{"force", "force_value", "torque"} {
			for _, f := range raw.Generic.Fields {
				if strings.EqualFold(f.Key, key) && f.Value != "" {
					if v, err := strconv.ParseFloat(f.Value, 64); err == nil {
						return v, forceDirect
					}
				}
			}
		}
		for _, f := range raw.Generic.Fields {
			if strings.EqualFold(f.Key, "vibration") && f.Value != "" {
				if v, err := strconv.ParseFloat(f.Value, 64); err == nil && v > 0 {
					return v * vibrationForceScale, forceVibration
				}
			}
		}
	}

	if raw.Sensor != nil && raw.Sensor.Vibration != nil && *raw.Sensor.Vibration > 0 {
		return *raw.Sensor.Vibration * vibrationForceScale, forceVibration
	}

	return 0, forceNone
}

func checkRange(v float64, src forceSource) (*float64, forceSource) {
	if v < ForceMin || v > ForceMax {
		return nil, forceOutOfRange
	}
	rounded := round2(v)
	return &rounded, src
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// detectCollision classifies an impact from description text, error code
// and force level. Empty means no collision implied.
func detectCollision(desc, errorCode string, force *float64) model.CollisionType {
	d := strings.ToLower(desc)

	if containsAny(d, estopWords) {
		return model.CollisionEmergencyStop
	}

	if containsAny(d, hardImpactWords) || errorCode == hardImpactCode {
		if errorCode == hardImpactCode || (force != nil && *force >= forceHighN) {
			return model.CollisionHardImpact
		}
		return model.CollisionSoft
	}

	if containsAny(d, softImpactWords) {
		return model.CollisionSoft
	}

	return ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// forceSeverity maps a force value onto the four severity bands.
func forceSeverity(force float64) model.Severity {
	switch {
	case force >= forceCriticalN:
		return model.SeverityCritical
	case force >= forceHighN:
		return model.SeverityHigh
	case force >= forceMedN:
		return model.SeverityMed
	default:
		return model.SeverityLow
	}
}

// wordSeverity normalizes a free-form severity or alert-level word.
// Returns "" when the word maps to nothing.
func wordSeverity(raw string) model.Severity {
	w := strings.ToUpper(raw)
	switch {
	case strings.Contains(w, "CRITICAL"):
		return model.SeverityCritical
	case strings.Contains(w, "HIGH"), strings.Contains(w, "ALERT"):
		return model.SeverityHigh
	case strings.Contains(w, "MEDIUM"), strings.Contains(w, "MED"), strings.Contains(w, "WARN"):
		return model.SeverityMed
	case strings.Contains(w, "LOW"), strings.Contains(w, "NOTICE"), strings.Contains(w, "INFO"):
		return model.SeverityLow
	}
	return ""
}

// rawSeverityWord finds an explicit severity word on the raw record.
func rawSeverityWord(raw model.RawEvent) string {
	if raw.Alert != nil {
		return raw.Alert.SeverityWord
	}
	if raw.Generic != nil {
		if v := raw.Generic.FieldValue("severity"); v != "" {
			return v
		}
		if v := raw.Generic.FieldValue("Severity"); v != "" {
			return v
		}
	}
	return ""
}

// extractErrorCode returns the error code from the payload, falling back
// to a description scan.
func extractErrorCode(raw model.RawEvent) string {
	if raw.ErrorLog != nil && raw.ErrorLog.ErrorCode != "" {
		return raw.ErrorLog.ErrorCode
	}
	if m := errorCodeRe.FindStringSubmatch(raw.Description); m != nil {
		return m[1]
	}
	return ""
}

// normalizeStatus maps free-form status text onto the maintenance
// workflow vocabulary, defaulting to pending inspection.
func normalizeStatus(raw string) model.Status {
	s := model.Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_"))
	switch s {
	case model.StatusPendingInspection, model.StatusUnderRepair, model.StatusResolved:
		return s
	}
	return model.StatusPendingInspection
}
