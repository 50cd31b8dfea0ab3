package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mechsight/triage/internal/model"
)

func TestBuildPromptIncludesEventDetails(t *testing.T) {
	prompt := BuildPrompt(testEvent(), nil)

	assert.Contains(t, prompt, "EVENT TYPE: ERROR_LOG")
	assert.Contains(t, prompt, "Joint: J3")
	assert.Contains(t, prompt, "Force Value: 645N")
	assert.Contains(t, prompt, "SRVO-324")
	assert.Contains(t, prompt, "RECURRENCE WARNING: This event has occurred 3 times")
	assert.Contains(t, prompt, "RISK_SCORE:")
	assert.Contains(t, prompt, "PRIORITY:")
}

func TestBuildPromptMissingFields(t *testing.T) {
	ev := model.Event{Severity: model.SeverityLow, RecurrenceCount: 1}
	prompt := BuildPrompt(ev, nil)

	assert.Contains(t, prompt, "Force Value: N/A")
	assert.Contains(t, prompt, "No description")
	assert.NotContains(t, prompt, "RECURRENCE WARNING")
	assert.NotContains(t, prompt, "FANUC Error Code")
}

func TestBuildPromptLimitsSimilarEvents(t *testing.T) {
	var similar []model.Match
	for i := 0; i < 5; i++ {
		similar = append(similar, model.Match{
			Event: &model.Event{Description: "historic event " + string(rune('A'+i))},
			Score: 0.8,
		})
	}

	prompt := BuildPrompt(testEvent(), similar)

	assert.Contains(t, prompt, "SIMILAR HISTORICAL EVENTS (5 found)")
	assert.Contains(t, prompt, "historic event C")
	assert.NotContains(t, prompt, "historic event D")
	assert.Equal(t, 3, strings.Count(prompt, "Similarity: 80%"))
}
