package ai

import (
	"fmt"
	"strings"

	"github.com/mechsight/triage/internal/model"
	"github.com/mechsight/triage/internal/normalize"
)

const systemPrompt = `You are an expert FANUC industrial robot maintenance and diagnostics system.
Your role is to analyze FANUC robot events, errors, and alerts to determine priority, assess risk,
and provide actionable recommendations for robot technicians. Consider:
- FANUC robot-specific error codes (SRVO, TEMP, MOTN, INTP, PROG)
- Robot joint-specific issues (J1-J6: base, shoulder, elbow, wrist)
- Safety implications for industrial robots
- Production line impact
- Historical patterns
- Severity indicators
- Maintenance history

Always provide clear, actionable recommendations specific to FANUC robot maintenance procedures.`

// BuildPrompt renders the triage request: the event's normalized fields,
// its history context, and the fixed five-section output contract the
// parser depends on.
func BuildPrompt(event model.Event, similar []model.Match) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are analyzing a FANUC robot maintenance event.\n\nEVENT TYPE: %s\n\n", strings.ToUpper(string(event.Type)))
	b.WriteString("FANUC ROBOT EVENT DETAILS:\n")
	fmt.Fprintf(&b, "- Joint: %s (J1=Base, J2=Shoulder, J3=Elbow, J4=Wrist Roll, J5=Wrist Pitch, J6=Wrist Yaw)\n", event.Joint)
	if event.ForceValue != nil {
		fmt.Fprintf(&b, "- Force Value: %gN\n", *event.ForceValue)
	} else {
		b.WriteString("- Force Value: N/A\n")
	}
	fmt.Fprintf(&b, "- Severity: %s\n", event.Severity)
	if event.CollisionType != "" {
		fmt.Fprintf(&b, "- Collision Type: %s\n", event.CollisionType)
	}
	fmt.Fprintf(&b, "- Timestamp: %s\n", event.Timestamp.Format(model.TimestampLayout))
	fmt.Fprintf(&b, "- Description: %s\n", orDefault(event.Description, "No description"))

	if event.ErrorCode != "" {
		fmt.Fprintf(&b, "\nFANUC Error Code: %s (%s)\n", event.ErrorCode, normalize.CodeName(event.ErrorCode))
	}

	if event.RecurrenceCount > 1 {
		fmt.Fprintf(&b, "\nRECURRENCE WARNING: This event has occurred %d times in the last 24 hours. This suggests a chronic issue requiring immediate attention.\n", event.RecurrenceCount)
	}

	if event.Notes != "" {
		fmt.Fprintf(&b, "\nDATA QUALITY NOTES: %s\n", event.Notes)
	}

	if len(similar) > 0 {
		fmt.Fprintf(&b, "\nSIMILAR HISTORICAL EVENTS (%d found):\n", len(similar))
		for i, m := range similar {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "%d. %s (Similarity: %.0f%%)\n", i+1, orDefault(m.Event.Description, "N/A"), m.Score*100)
		}
	}

	b.WriteString(outputContract)
	return b.String()
}

// outputContract fixes the response shape: five named sections followed
// by RISK_SCORE and PRIORITY trailer lines the parser extracts.
const outputContract = `
REQUIRED OUTPUT FORMAT (provide all 5 sections):

1. DIAGNOSE CAUSE:
   [Explain the root cause based on force level, joint location, frequency, error patterns, and event characteristics. Be specific and technical.]

2. STEP-BY-STEP INSPECTION PROCEDURE:
   [List specific checks the technician should perform, in order. Number each step.]

3. REQUIRED MAINTENANCE ACTIONS:
   [Specify exact repairs, replacements, or adjustments needed. Include torque specifications and required tools.]

4. SAFETY CLEARANCE PROCEDURE:
   [What must be verified before restarting the robot. Include lockout verification, safety system checks, and test procedures.]

5. RETURN-TO-SERVICE CONDITIONS:
   [Specific criteria for putting the robot back online. Include test movements, verification steps, and monitoring requirements.]

CRITICAL: At the END of your response, provide these values on separate lines:
RISK_SCORE: [number 0-100]
PRIORITY: [CRITICAL or HIGH or MEDIUM or LOW]

Provide your response in clear, technician-focused language. Use controlled vocabulary and be specific.`

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
