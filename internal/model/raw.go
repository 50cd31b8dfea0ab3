package model

// SourceKind identifies the shape of the source a raw event came from.
type SourceKind string

const (
	KindSensorReading     SourceKind = "sensor_reading"
	KindPerformanceMetric SourceKind = "performance_metric"
	KindErrorLog          SourceKind = "error_log"
	KindSystemAlert       SourceKind = "system_alert"
	KindMaintenanceNote   SourceKind = "maintenance_note"
	KindGeneric           SourceKind = "generic"
)

// RawEvent is the intermediate type produced by the extractor and consumed
// by the normalizer. Timestamp and Description carry the raw source text;
// exactly one payload pointer is non-nil, matching Kind.
type RawEvent struct {
	EventID     string
	Kind        SourceKind
	Timestamp   string
	Description string

	Sensor      *SensorPayload
	Performance *PerformancePayload
	ErrorLog    *ErrorLogPayload
	Alert       *AlertPayload
	Maintenance *MaintenancePayload
	Generic     *GenericPayload
}

// SensorPayload holds one row of a sensor-reading table. Optional fields
// are pointers: a nil value means the column was absent or empty.
type SensorPayload struct {
	Temperature *float64           // degrees C
	Vibration   *float64           // g
	Axes        map[int]float64    // joint index (1-6) -> angle in degrees
}

// PerformancePayload holds one row of a performance-metric table.
type PerformancePayload struct {
	Metrics map[string]float64
}

// ErrorLogPayload holds one parsed controller error-log line.
type ErrorLogPayload struct {
	ErrorCode  string // e.g. SRVO-324; empty when no code was found
	ErrorClass string // matched fault word (Collision, Torque, ...)
	RawLine    string
}

// AlertPayload holds one parsed system-alert line.
type AlertPayload struct {
	SeverityWord string // raw severity token (NOTICE, WARN, ALERT, CRITICAL)
	Message      string
}

// MaintenancePayload holds one parsed maintenance-note line.
type MaintenancePayload struct {
	Action string
}

// GenericPayload preserves a row or line that matched no known shape.
// Fields keep source column order so nothing is lost.
type GenericPayload struct {
	Fields []Field
}

// Field is one named value from a generic row.
type Field struct {
	Key   string
	Value string
}

// FieldValue returns the value for key, or "" when absent.
func (p *GenericPayload) FieldValue(key string) string {
	for _, f := range p.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}
