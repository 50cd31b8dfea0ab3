package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mechsight/triage/internal/model"
)

// extractCSV splits tabular content into raw events, one per data row.
// The header decides the table shape: sensor readings, performance
// metrics, or generic.
func (e *Extractor) extractCSV(name string, content []byte) ([]model.RawEvent, Metadata, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := r.Read()
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%s: %w: no parseable header: %v", name, ErrUnreadableInput, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}

	kind := model.KindGeneric
	switch {
	case hasAny(cols, "Temperature_C", "Vibration_g"):
		kind = model.KindSensorReading
	case hasAny(cols, "Metric1", "Metric2"):
		kind = model.KindPerformanceMetric
	}

	meta := Metadata{Kind: kind, Columns: header}
	var events []model.RawEvent
	for idx := 0; ; idx++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row is data-quality softness, not a structural
			// failure: keep what parsed so far and move on.
			e.log.Warn("skipping malformed csv row", zap.String("file", name), zap.Int("row", idx), zap.Error(err))
			continue
		}

		switch kind {
		case model.KindSensorReading:
			events = append(events, sensorEvent(idx, header, cols, row))
		case model.KindPerformanceMetric:
			events = append(events, performanceEvent(idx, header, cols, row))
		default:
			events = append(events, genericRowEvent(idx, header, row))
		}
	}
	meta.RowCount = len(events)

	e.log.Info("extracted csv file",
		zap.String("file", name),
		zap.String("kind", string(kind)),
		zap.Int("events", len(events)))
	return events, meta, nil
}

func hasAny(cols map[string]int, names ...string) bool {
	for _, n := range names {
		if _, ok := cols[n]; ok {
			return true
		}
	}
	return false
}

func cell(cols map[string]int, row []string, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellFloat(cols map[string]int, row []string, name string) *float64 {
	s := cell(cols, row, name)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func sensorEvent(idx int, header []string, cols map[string]int, row []string) model.RawEvent {
	p := &model.SensorPayload{
		Temperature: cellFloat(cols, row, "Temperature_C"),
		Vibration:   cellFloat(cols, row, "Vibration_g"),
		Axes:        map[int]float64{},
	}
	for n := 1; n <= 6; n++ {
		if v := cellFloat(cols, row, fmt.Sprintf("Axis%d_deg", n)); v != nil {
			p.Axes[n] = *v
		}
	}

	return model.RawEvent{
		EventID:     fmt.Sprintf("sensor_%d", idx),
		Kind:        model.KindSensorReading,
		Timestamp:   cell(cols, row, "Timestamp"),
		Description: sensorDescription(p),
		Sensor:      p,
	}
}

// sensorDescription flags out-of-band readings so downstream text rules
// have something to work with.
func sensorDescription(p *model.SensorPayload) string {
	var parts []string
	if p.Temperature != nil {
		switch {
		case *p.Temperature > 40:
			parts = append(parts, fmt.Sprintf("High temperature: %g°C", *p.Temperature))
		case *p.Temperature < 20:
			parts = append(parts, fmt.Sprintf("Low temperature: %g°C", *p.Temperature))
		}
	}
	if p.Vibration != nil && *p.Vibration > 0.2 {
		parts = append(parts, fmt.Sprintf("High vibration: %gg", *p.Vibration))
	}
	if len(parts) == 0 {
		return "Sensor reading recorded"
	}
	return strings.Join(parts, "; ")
}

func performanceEvent(idx int, header []string, cols map[string]int, row []string) model.RawEvent {
	p := &model.PerformancePayload{Metrics: map[string]float64{}}
	for _, h := range header {
		if !strings.HasPrefix(h, "Metric") {
			continue
		}
		if v := cellFloat(cols, row, h); v != nil {
			p.Metrics[h] = *v
		}
	}

	ts := cell(cols, row, "Timestamp")
	return model.RawEvent{
		EventID:     fmt.Sprintf("perf_%d", idx),
		Kind:        model.KindPerformanceMetric,
		Timestamp:   ts,
		Description: fmt.Sprintf("Performance metrics recorded at %s", ts),
		Performance: p,
	}
}

// genericRowEvent keeps every column of an unrecognized table so no data
// is lost silently.
func genericRowEvent(idx int, header []string, row []string) model.RawEvent {
	p := &model.GenericPayload{}
	var ts string
	for i, h := range header {
		v := ""
		if i < len(row) {
			v = strings.TrimSpace(row[i])
		}
		p.Fields = append(p.Fields, model.Field{Key: h, Value: v})
		if ts == "" && isTimestampColumn(h) && v != "" {
			ts = v
		}
	}

	return model.RawEvent{
		EventID:     fmt.Sprintf("generic_%d", idx),
		Kind:        model.KindGeneric,
		Timestamp:   ts,
		Description: genericDescription(idx, p),
		Generic:     p,
	}
}

func isTimestampColumn(name string) bool {
	switch strings.ToLower(name) {
	case "timestamp", "time", "date", "datetime":
		return true
	}
	return false
}

// genericDescription prefers an explicit description-like column, then a
// compact key/value summary, then a positional fallback.
func genericDescription(idx int, p *model.GenericPayload) string {
	for _, f := range p.Fields {
		switch strings.ToLower(f.Key) {
		case "description", "message", "error":
			if f.Value != "" {
				return truncate(f.Value, 200)
			}
		}
	}

	var parts []string
	for _, f := range p.Fields {
		if isTimestampColumn(f.Key) || strings.EqualFold(f.Key, "id") || f.Value == "" {
			continue
		}
		parts = append(parts, f.Key+": "+f.Value)
		if len(parts) == 3 {
			break
		}
	}
	if len(parts) > 0 {
		return truncate(strings.Join(parts, " | "), 200)
	}
	return fmt.Sprintf("Data event from row %d", idx)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
