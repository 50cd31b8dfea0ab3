// Package pipeline connects extraction, normalization, deduplication and
// the corpus store into the file-ingestion flow.
package pipeline

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mechsight/triage/internal/extract"
	"github.com/mechsight/triage/internal/model"
	"github.com/mechsight/triage/internal/normalize"
	"github.com/mechsight/triage/internal/store"
	"github.com/mechsight/triage/internal/validate"
)

// FileInput is one file handed to the pipeline by the upload boundary.
type FileInput struct {
	Name    string
	Content []byte
	Kind    string // "csv", "text" or "auto"
}

// FileResult describes what one file produced: what succeeded, what was
// inferred, and how much collapsed in deduplication.
type FileResult struct {
	File       string           `json:"file"`
	Kind       model.SourceKind `json:"kind"`
	RawEvents  int              `json:"raw_events"`
	Stored     int              `json:"stored_events"`
	Duplicates int              `json:"duplicates_collapsed"`
	Inferred   int              `json:"inferred_events"`
	Validation validate.Summary `json:"validation"`
	Err        string           `json:"error,omitempty"`
}

// Pipeline runs raw file content through to the corpus store.
type Pipeline struct {
	extractor  *extract.Extractor
	normalizer *normalize.Normalizer
	corpus     *store.Store
	workers    int
	log        *zap.Logger
}

// New creates a Pipeline. workers bounds cross-file parallelism; values
// below 1 mean sequential.
func New(ex *extract.Extractor, n *normalize.Normalizer, corpus *store.Store, workers int, log *zap.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{extractor: ex, normalizer: n, corpus: corpus, workers: workers, log: log}
}

// ProcessFile runs one file through extract, in-order normalize, dedup
// and store. Only structural extraction failure returns an error.
func (p *Pipeline) ProcessFile(in FileInput) (*FileResult, error) {
	raws, meta, err := p.extractor.ExtractFile(in.Name, in.Content, in.Kind)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", in.Name, err)
	}

	// Normalization must see the file's events in encounter order: the
	// date-inference context and dedup tie-breaks depend on it.
	events := p.normalizer.NormalizeBatch(raws)
	deduped := validate.Deduplicate(events)
	summary := validate.Report(deduped)

	inferred := 0
	for _, e := range deduped {
		if e.ConfidenceFlag == model.ConfidenceInferred {
			inferred++
		}
	}

	p.corpus.AppendBatch(deduped)

	p.log.Info("file processed",
		zap.String("file", in.Name),
		zap.Int("raw_events", len(raws)),
		zap.Int("stored", len(deduped)),
		zap.Float64("quality_score", summary.OverallScore))

	return &FileResult{
		File:       in.Name,
		Kind:       meta.Kind,
		RawEvents:  len(raws),
		Stored:     len(deduped),
		Duplicates: len(raws) - len(deduped),
		Inferred:   inferred,
		Validation: summary,
	}, nil
}

// ProcessFiles runs independent files in parallel on a bounded worker
// pool. Results come back in input order; a structurally unreadable file
// is reported in its result slot rather than aborting the batch.
func (p *Pipeline) ProcessFiles(inputs []FileInput) []FileResult {
	results := make([]FileResult, len(inputs))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in FileInput) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := p.ProcessFile(in)
			if err != nil {
				p.log.Error("file rejected", zap.String("file", in.Name), zap.Error(err))
				results[i] = FileResult{File: in.Name, Err: err.Error()}
				return
			}
			results[i] = *res
		}(i, in)
	}
	wg.Wait()
	return results
}
