package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mechsight/triage/internal/model"
)

const wellFormedResponse = `1. DIAGNOSE CAUSE:
Hard collision on J3 consistent with SRVO-324. Likely fixture misalignment.

2. STEP-BY-STEP INSPECTION PROCEDURE:
- Lock out the cell
- Inspect J3 reducer for backlash
- Check fixture position against program

3. REQUIRED MAINTENANCE ACTIONS:
- Re-teach approach points
- Replace J3 reducer if backlash exceeds spec

4. SAFETY CLEARANCE PROCEDURE:
- Verify fence circuit before re-entry

5. RETURN-TO-SERVICE CONDITIONS:
- Dry run at 10% override with no faults

RISK_SCORE: 78
PRIORITY: HIGH`

func TestParseResponseWellFormed(t *testing.T) {
	a, err := ParseResponse(wellFormedResponse)
	require.NoError(t, err)

	assert.Equal(t, 78, a.RiskScore)
	assert.Equal(t, model.PriorityHigh, a.Priority)
	assert.Contains(t, a.Report.DiagnoseCause, "SRVO-324")
	assert.Contains(t, a.Report.InspectionProcedure, "reducer")
	assert.Contains(t, a.Report.MaintenanceActions, "Re-teach")
	assert.Contains(t, a.Report.SafetyClearance, "fence circuit")
	assert.Contains(t, a.Report.ReturnToService, "Dry run")
	assert.Contains(t, a.Recommendation, "Diagnosis:")
	assert.Contains(t, a.Recommendation, "Actions:")
	assert.Equal(t, wellFormedResponse, a.RawText)
}

func TestParseResponseMissingRiskScore(t *testing.T) {
	text := strings.Replace(wellFormedResponse, "RISK_SCORE: 78\n", "", 1)
	_, err := ParseResponse(text)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RISK_SCORE")
}

func TestParseResponseMissingPriority(t *testing.T) {
	text := strings.Replace(wellFormedResponse, "PRIORITY: HIGH", "", 1)
	_, err := ParseResponse(text)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRIORITY")
}

func TestParseResponseNoSections(t *testing.T) {
	_, err := ParseResponse("The robot seems fine.\nRISK_SCORE: 10\nPRIORITY: LOW")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no report sections")
}

func TestParseResponseClampsScore(t *testing.T) {
	text := strings.Replace(wellFormedResponse, "RISK_SCORE: 78", "RISK_SCORE: 250", 1)
	a, err := ParseResponse(text)
	require.NoError(t, err)
	assert.Equal(t, 100, a.RiskScore)
}

func TestParseResponseUnnumberedHeaders(t *testing.T) {
	text := `DIAGNOSE CAUSE:
Bearing wear on J5.

REQUIRED MAINTENANCE ACTIONS:
Replace bearing.

RISK_SCORE: 42
PRIORITY: MEDIUM`

	a, err := ParseResponse(text)
	require.NoError(t, err)
	assert.Equal(t, "Bearing wear on J5.", a.Report.DiagnoseCause)
	assert.Equal(t, "Replace bearing.", a.Report.MaintenanceActions)
	assert.Equal(t, model.PriorityMedium, a.Priority)
}

func TestBuildRecommendationEmptyReport(t *testing.T) {
	got := buildRecommendation(model.MaintenanceReport{})
	assert.Contains(t, got, "standard maintenance procedures")
}

func TestBuildRecommendationClipsLongText(t *testing.T) {
	r := model.MaintenanceReport{DiagnoseCause: strings.Repeat("x", 300)}
	got := buildRecommendation(r)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Less(t, len(got), 300)
}
