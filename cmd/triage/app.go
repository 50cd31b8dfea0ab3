package main

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mechsight/triage/internal/ai"
	"github.com/mechsight/triage/internal/config"
	"github.com/mechsight/triage/internal/extract"
	"github.com/mechsight/triage/internal/history"
	"github.com/mechsight/triage/internal/logging"
	"github.com/mechsight/triage/internal/normalize"
	"github.com/mechsight/triage/internal/pipeline"
	"github.com/mechsight/triage/internal/store"
	"github.com/mechsight/triage/internal/triage"
)

// app holds one command invocation's wired components. The corpus lives
// for the process only; persistence is an external concern.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	corpus   *store.Store
	pipeline *pipeline.Pipeline
	scorer   *triage.Scorer
}

func newApp(cfg config.Config) (*app, error) {
	log, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	corpus := store.New()
	ex := extract.New(log)
	norm := normalize.New(log)
	pipe := pipeline.New(ex, norm, corpus, cfg.Workers, log)

	matcher := history.New(cfg.History.Threshold, cfg.History.Limit, log)

	var analyzer ai.Analyzer
	if cfg.AI.Enabled() {
		analyzer = ai.NewClient(ai.Config{
			Endpoint:   cfg.AI.Endpoint,
			APIKey:     cfg.AI.APIKey,
			Deployment: cfg.AI.Deployment,
			APIVersion: cfg.AI.APIVersion,
			Timeout:    cfg.AI.Timeout,
		}, log)
	} else {
		log.Warn("ai collaborator not configured, triage runs in heuristic mode")
	}
	cache := ai.NewCache(cfg.Cache.MaxEntries)
	scorer := triage.New(corpus, matcher, analyzer, cache, log)

	return &app{cfg: cfg, log: log, corpus: corpus, pipeline: pipe, scorer: scorer}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

// ingest reads the named files and runs them through the pipeline.
func (a *app) ingest(paths []string, kind string) ([]pipeline.FileResult, error) {
	inputs := make([]pipeline.FileInput, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		inputs = append(inputs, pipeline.FileInput{Name: path, Content: content, Kind: kind})
	}
	return a.pipeline.ProcessFiles(inputs), nil
}

// printJSON writes v to stdout, indented. Logs go to stderr so stdout
// stays parseable.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
