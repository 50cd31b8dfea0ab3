package ai

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mechsight/triage/internal/model"
)

// Section header patterns. Each captures everything up to the next
// section header or the trailer.
var sectionPatterns = map[string]*regexp.Regexp{
	"diagnose_cause":       regexp.MustCompile(`(?is)(?:1\.\s*)?DIAGNOSE CAUSE:?\s*\n(.*?)(?:\n\s*(?:2\.|STEP-BY-STEP|REQUIRED|SAFETY|RETURN|RISK_SCORE)|\z)`),
	"inspection_procedure": regexp.MustCompile(`(?is)(?:2\.\s*)?STEP-BY-STEP INSPECTION(?: PROCEDURE)?:?\s*\n(.*?)(?:\n\s*(?:3\.|REQUIRED|SAFETY|RETURN|RISK_SCORE)|\z)`),
	"maintenance_actions":  regexp.MustCompile(`(?is)(?:3\.\s*)?REQUIRED MAINTENANCE(?: ACTIONS)?:?\s*\n(.*?)(?:\n\s*(?:4\.|SAFETY|RETURN|RISK_SCORE)|\z)`),
	"safety_clearance":     regexp.MustCompile(`(?is)(?:4\.\s*)?SAFETY CLEARANCE(?: PROCEDURE)?:?\s*\n(.*?)(?:\n\s*(?:5\.|RETURN|RISK_SCORE)|\z)`),
	"return_to_service":    regexp.MustCompile(`(?is)(?:5\.\s*)?RETURN-TO-SERVICE(?: CONDITIONS)?:?\s*\n(.*?)(?:\n\s*RISK_SCORE|\z)`),
}

var (
	riskScoreRe = regexp.MustCompile(`(?i)RISK_SCORE[:\s]+(\d+)`)
	priorityRe  = regexp.MustCompile(`(?i)PRIORITY[:\s]+(CRITICAL|HIGH|MEDIUM|LOW)`)
)

// ParseResponse extracts the five-section report and the RISK_SCORE /
// PRIORITY trailer from model output. A response missing the trailer or
// all five sections is malformed and rejected whole; partial responses
// are never trusted.
func ParseResponse(text string) (*Analysis, error) {
	sections := map[string]string{}
	for key, re := range sectionPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			sections[key] = strings.TrimSpace(m[1])
		}
	}

	if allEmpty(sections) {
		return nil, fmt.Errorf("parse response: no report sections found")
	}

	scoreMatch := riskScoreRe.FindStringSubmatch(text)
	if scoreMatch == nil {
		return nil, fmt.Errorf("parse response: missing RISK_SCORE")
	}
	score, err := strconv.Atoi(scoreMatch[1])
	if err != nil {
		return nil, fmt.Errorf("parse response: bad RISK_SCORE: %w", err)
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	prioMatch := priorityRe.FindStringSubmatch(text)
	if prioMatch == nil {
		return nil, fmt.Errorf("parse response: missing PRIORITY")
	}
	priority := model.Priority(strings.ToUpper(prioMatch[1]))

	report := model.MaintenanceReport{
		DiagnoseCause:       sections["diagnose_cause"],
		InspectionProcedure: sections["inspection_procedure"],
		MaintenanceActions:  sections["maintenance_actions"],
		SafetyClearance:     sections["safety_clearance"],
		ReturnToService:     sections["return_to_service"],
	}

	return &Analysis{
		Report:         report,
		RiskScore:      score,
		Priority:       priority,
		Recommendation: buildRecommendation(report),
		RawText:        text,
	}, nil
}

func allEmpty(sections map[string]string) bool {
	for _, v := range sections {
		if v != "" {
			return false
		}
	}
	return true
}

// buildRecommendation condenses the report into a short recommendation.
func buildRecommendation(r model.MaintenanceReport) string {
	var parts []string
	if r.DiagnoseCause != "" {
		parts = append(parts, "Diagnosis: "+clip(r.DiagnoseCause, 200))
	}
	if r.MaintenanceActions != "" {
		parts = append(parts, "Actions: "+clip(r.MaintenanceActions, 200))
	}
	if len(parts) == 0 {
		return "Review event details and follow standard maintenance procedures"
	}
	return strings.Join(parts, "\n\n")
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
