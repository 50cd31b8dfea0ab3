package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mechsight/triage/internal/extract"
	"github.com/mechsight/triage/internal/model"
	"github.com/mechsight/triage/internal/normalize"
	"github.com/mechsight/triage/internal/store"
)

func testPipeline(workers int) (*Pipeline, *store.Store) {
	log := zap.NewNop()
	corpus := store.New()
	normalizer := normalize.New(log).WithClock(func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	})
	return New(extract.New(log), normalizer, corpus, workers, log), corpus
}

func TestProcessFileEndToEnd(t *testing.T) {
	p, corpus := testPipeline(1)

	content := []byte("Timestamp,force,axis3,description\n" +
		"2025-11-17 09:15:00,645,12.4,collision detected\n" +
		"2025-11-17 09:45:00,645,12.4,collision detected\n" +
		"2025-11-17 14:20:00,650,12.4,collision detected\n")

	res, err := p.ProcessFile(FileInput{Name: "events.csv", Content: content, Kind: "csv"})
	require.NoError(t, err)

	assert.Equal(t, 3, res.RawEvents)
	// All three rows are J3 on the same day: one stored event.
	assert.Equal(t, 1, res.Stored)
	assert.Equal(t, 2, res.Duplicates)
	assert.Equal(t, 1, corpus.Len())

	stored := corpus.All()[0]
	assert.Equal(t, "J3", stored.Joint)
	assert.Equal(t, 3, stored.RecurrenceCount)
	assert.Equal(t, model.SeverityHigh, stored.Severity)
}

func TestProcessFileUnreadableInput(t *testing.T) {
	p, corpus := testPipeline(1)

	_, err := p.ProcessFile(FileInput{Name: "binary.bin", Content: []byte{0xff, 0xfe}, Kind: "text"})

	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrUnreadableInput)
	assert.Equal(t, 0, corpus.Len())
}

func TestProcessFileValidationSummary(t *testing.T) {
	p, _ := testPipeline(1)

	content := []byte("10:03:00 WARN: Vibration spike on axis 2\n")
	res, err := p.ProcessFile(FileInput{Name: "alerts.txt", Content: content, Kind: "text"})
	require.NoError(t, err)

	assert.Equal(t, model.KindSystemAlert, res.Kind)
	assert.Equal(t, 1, res.Validation.TotalEvents)
	assert.Greater(t, res.Validation.OverallScore, 0.0)
}

func TestProcessFilesOrderAndErrors(t *testing.T) {
	p, corpus := testPipeline(4)

	inputs := []FileInput{
		{Name: "good1.csv", Content: []byte("Timestamp,force\n2025-11-17 09:00:00,100\n"), Kind: "csv"},
		{Name: "bad.bin", Content: []byte{0xff, 0xfe}, Kind: "text"},
		{Name: "good2.txt", Content: []byte("2025-11-10 - Replaced J3 reducer\n"), Kind: "text"},
	}

	results := p.ProcessFiles(inputs)

	require.Len(t, results, 3)
	assert.Equal(t, "good1.csv", results[0].File)
	assert.Empty(t, results[0].Err)
	assert.Equal(t, 1, results[0].Stored)

	assert.Equal(t, "bad.bin", results[1].File)
	assert.NotEmpty(t, results[1].Err)

	assert.Equal(t, "good2.txt", results[2].File)
	assert.Equal(t, model.KindMaintenanceNote, results[2].Kind)

	assert.Equal(t, 2, corpus.Len())
}

func TestProcessFilesManyFilesBoundedWorkers(t *testing.T) {
	p, corpus := testPipeline(2)

	var inputs []FileInput
	for i := 0; i < 10; i++ {
		inputs = append(inputs, FileInput{
			Name:    "f.txt",
			Content: []byte("routine check completed\n"),
			Kind:    "text",
		})
	}

	results := p.ProcessFiles(inputs)

	require.Len(t, results, 10)
	for _, r := range results {
		assert.Empty(t, r.Err)
	}
	assert.Equal(t, 10, corpus.Len())
}
