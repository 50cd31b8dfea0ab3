package extract

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/mechsight/triage/internal/model"
)

var (
	alertLineRe   = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2})\s+(\w+):\s+(.+)$`)
	maintLineRe   = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s+-\s+(.+)$`)
	errorCodeRe   = regexp.MustCompile(`([A-Z]{4}-\d+)`)
	errorClassRe  = regexp.MustCompile(`(?i)(Collision|Torque|Singularity|Overtravel|E-stop|Battery|Fence|Joint|Shift|Run request)`)
	logTimeRe     = regexp.MustCompile(`(\d{4}[-/]\d{2}[-/]\d{2} \d{2}:\d{2}(?::\d{2})?|\d{4}[-/]\d{2}[-/]\d{2}|\[\d{2}:\d{2}:\d{2}\]|\d{2}:\d{2}:\d{2})`)
	severityWords = []string{"ALERT", "WARN", "CRITICAL", "NOTICE"}
	maintVerbs    = []string{"Checked", "Replaced", "Calibrated", "Lubricated", "Inspected"}
	codeFamilies  = []string{"SRVO", "TEMP", "MOTN", "INTP", "PROG"}
)

// extractText splits line-oriented content into raw events. The file kind
// is inferred once per file from content signatures in the leading lines.
func (e *Extractor) extractText(name string, content []byte) ([]model.RawEvent, Metadata, error) {
	var lines []string
	for _, line := range strings.Split(string(content), "\n") {
		if s := strings.TrimSpace(line); s != "" {
			lines = append(lines, s)
		}
	}

	kind := detectTextKind(lines)
	var events []model.RawEvent
	for idx, line := range lines {
		events = append(events, parseLine(kind, idx, line))
	}

	e.log.Info("extracted text file",
		zap.String("file", name),
		zap.String("kind", string(kind)),
		zap.Int("events", len(events)))
	return events, Metadata{Kind: kind, RowCount: len(events)}, nil
}

// detectTextKind inspects the first lines of a file for content
// signatures. Order matters: severity keywords beat error codes because
// alert lines often mention fault words too.
func detectTextKind(lines []string) model.SourceKind {
	n := len(lines)
	if n > 10 {
		n = 10
	}
	preview := strings.Join(lines[:n], "")

	if containsAny(preview, severityWords) {
		return model.KindSystemAlert
	}
	if containsAny(preview, codeFamilies) {
		return model.KindErrorLog
	}
	if containsAny(preview, maintVerbs) {
		return model.KindMaintenanceNote
	}
	return model.KindGeneric
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// parseLine turns one line into a raw event. A line that does not match
// its file's expected shape still becomes a generic event; extraction
// never drops input.
func parseLine(kind model.SourceKind, idx int, line string) model.RawEvent {
	switch kind {
	case model.KindSystemAlert:
		if m := alertLineRe.FindStringSubmatch(line); m != nil {
			return model.RawEvent{
				EventID:     fmt.Sprintf("alert_%d", idx),
				Kind:        model.KindSystemAlert,
				Timestamp:   m[1],
				Description: m[3],
				Alert:       &model.AlertPayload{SeverityWord: m[2], Message: m[3]},
			}
		}
	case model.KindErrorLog:
		ev := model.RawEvent{
			EventID:     fmt.Sprintf("error_%d", idx),
			Kind:        model.KindErrorLog,
			Description: line,
			ErrorLog:    &model.ErrorLogPayload{RawLine: line},
		}
		if m := logTimeRe.FindStringSubmatch(line); m != nil {
			ev.Timestamp = m[1]
		}
		if m := errorCodeRe.FindStringSubmatch(line); m != nil {
			ev.ErrorLog.ErrorCode = m[1]
		}
		if m := errorClassRe.FindStringSubmatch(line); m != nil {
			ev.ErrorLog.ErrorClass = m[1]
		}
		return ev
	case model.KindMaintenanceNote:
		if m := maintLineRe.FindStringSubmatch(line); m != nil {
			return model.RawEvent{
				EventID:     fmt.Sprintf("maint_%d", idx),
				Kind:        model.KindMaintenanceNote,
				Timestamp:   m[1],
				Description: m[2],
				Maintenance: &model.MaintenancePayload{Action: m[2]},
			}
		}
	}

	return model.RawEvent{
		EventID:     fmt.Sprintf("txt_%d", idx),
		Kind:        model.KindGeneric,
		Description: line,
		Generic:     &model.GenericPayload{Fields: []model.Field{{Key: "content", Value: line}}},
	}
}
