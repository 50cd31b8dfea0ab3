package triage

import (
	"fmt"

	"github.com/mechsight/triage/internal/model"
	"github.com/mechsight/triage/internal/normalize"
)

// fallbackReport builds the deterministic five-section report used when
// the AI collaborator is unavailable, keyed by severity and error code.
func fallbackReport(event model.Event) model.MaintenanceReport {
	subject := subjectFor(event)

	report := model.MaintenanceReport{
		DiagnoseCause:       fmt.Sprintf("%s on %s, severity %s. Heuristic assessment: review force readings, error history and recent maintenance for this joint to confirm the root cause.", subject, jointLabel(event.Joint), event.Severity),
		InspectionProcedure: inspectionFor(event),
		MaintenanceActions:  actionsFor(event),
		SafetyClearance: "1. Verify all safety interlocks are functional\n" +
			"2. Test the emergency stop system\n" +
			"3. Confirm the work area is clear\n" +
			"4. Check that all guards are in place",
		ReturnToService: "- Joint moves smoothly through full range\n" +
			"- Force readings within normal parameters (<300N)\n" +
			"- No error codes present\n" +
			"- Successful test cycle completed",
	}
	return report
}

func subjectFor(event model.Event) string {
	if event.ErrorCode != "" {
		return fmt.Sprintf("%s (%s)", event.ErrorCode, normalize.CodeName(event.ErrorCode))
	}
	switch event.CollisionType {
	case model.CollisionHardImpact:
		return "Hard impact detected"
	case model.CollisionSoft:
		return "Soft collision detected"
	case model.CollisionEmergencyStop:
		return "Emergency stop triggered"
	}
	return fmt.Sprintf("Event of type %s", event.Type)
}

func jointLabel(joint string) string {
	names := map[string]string{
		"J1": "J1 (Base)", "J2": "J2 (Shoulder)", "J3": "J3 (Elbow)",
		"J4": "J4 (Wrist Roll)", "J5": "J5 (Wrist Pitch)", "J6": "J6 (Wrist Yaw)",
	}
	if name, ok := names[joint]; ok {
		return name
	}
	return "an unidentified joint"
}

func inspectionFor(event model.Event) string {
	base := "1. Power down the robot and lock out/tag out per safety procedures\n" +
		"2. Visually inspect the affected joint for damage or obstructions\n" +
		"3. Check joint lubrication levels and condition\n" +
		"4. Manually rotate the joint through its full range to detect binding\n" +
		"5. Verify joint encoder readings match physical position"
	if event.CollisionType != "" {
		base += "\n6. Inspect cables and hoses for pinching or impact damage"
	}
	return base
}

func actionsFor(event model.Event) string {
	switch event.Severity {
	case model.SeverityCritical:
		return "- Keep the robot out of service until the fault is isolated\n" +
			"- Replace joint bearings if excessive play is detected\n" +
			"- Re-lubricate the joint with approved grease\n" +
			"- Calibrate the joint encoder if misalignment is detected"
	case model.SeverityHigh:
		return "- Schedule corrective maintenance before the next shift\n" +
			"- Re-lubricate the joint with approved grease\n" +
			"- Replace damaged cables if found"
	default:
		return "- Add the joint to the next scheduled maintenance window\n" +
			"- Monitor force and vibration readings for escalation"
	}
}

// fallbackRecommendation is the short-form recommendation for the
// heuristic path, keyed by priority.
func fallbackRecommendation(priority model.Priority) string {
	switch priority {
	case model.PriorityCritical:
		return "Immediate action required. Stop operations and investigate root cause."
	case model.PriorityHigh:
		return "Schedule maintenance soon. Monitor closely for escalation."
	case model.PriorityMedium:
		return "Review during next maintenance window. Continue monitoring."
	default:
		return "Log for tracking. No immediate action needed."
	}
}
