package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mechsight/triage/internal/config"
	"github.com/mechsight/triage/internal/model"
	"github.com/mechsight/triage/internal/output"
	"github.com/mechsight/triage/internal/output/file"
	"github.com/mechsight/triage/internal/output/multi"
	"github.com/mechsight/triage/internal/output/stdout"
	"github.com/mechsight/triage/internal/pipeline"
	"github.com/mechsight/triage/internal/store"
	"github.com/mechsight/triage/internal/validate"
)

type configLoader func() (config.Config, error)

func newProcessCmd(loadConfig configLoader) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "process <file>...",
		Short: "Ingest log files and print per-file results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			results, err := a.ingest(args, kind)
			if err != nil {
				return err
			}
			return printJSON(struct {
				Files  []pipeline.FileResult `json:"files"`
				Events []model.Event         `json:"events"`
			}{results, a.corpus.All()})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "auto", "input kind: csv, text or auto")
	return cmd
}

func newTriageCmd(loadConfig configLoader) *cobra.Command {
	var (
		kind     string
		eventID  string
		recordID string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "triage <file>...",
		Short: "Ingest log files and score events for triage priority",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if eventID == "" && recordID == "" && !all {
				return errors.New("one of --event-id, --record-id or --all is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.ingest(args, kind); err != nil {
				return err
			}

			targets, err := selectTargets(a.corpus, eventID, recordID, all)
			if err != nil {
				return err
			}

			results := make([]model.TriageResult, 0, len(targets))
			for _, e := range targets {
				results = append(results, a.scorer.Score(context.Background(), e))
			}
			if len(results) == 1 {
				return printJSON(results[0])
			}
			return printJSON(results)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "auto", "input kind: csv, text or auto")
	cmd.Flags().StringVar(&eventID, "event-id", "", "score the event with this source-local id")
	cmd.Flags().StringVar(&recordID, "record-id", "", "score the event with this record id")
	cmd.Flags().BoolVar(&all, "all", false, "score every stored event")
	return cmd
}

func selectTargets(corpus *store.Store, eventID, recordID string, all bool) ([]model.Event, error) {
	if all {
		return corpus.All(), nil
	}
	if recordID != "" {
		e, err := corpus.FindByRecordID(recordID)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", recordID, err)
		}
		return []model.Event{e}, nil
	}
	e, err := corpus.FindByEventID(eventID)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}
	return []model.Event{e}, nil
}

func newExportCmd(loadConfig configLoader) *cobra.Command {
	var (
		kind    string
		outPath string
		pretty  bool
	)

	cmd := &cobra.Command{
		Use:   "export <file>...",
		Short: "Ingest log files and export normalized events as NDJSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.ingest(args, kind); err != nil {
				return err
			}

			sink := output.Sink(stdout.New(os.Stdout, pretty))
			if outPath != "" {
				fileSink, err := file.New(outPath)
				if err != nil {
					return err
				}
				sink = multi.New(sink, fileSink)
			}

			ctx := cmd.Context()
			for _, e := range a.corpus.All() {
				if err := sink.Write(ctx, e); err != nil {
					sink.Close()
					return err
				}
			}
			return sink.Close()
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "auto", "input kind: csv, text or auto")
	cmd.Flags().StringVar(&outPath, "out", "", "also append events to this NDJSON file")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}

func newStatsCmd(loadConfig configLoader) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "stats <file>...",
		Short: "Ingest log files and print corpus statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.ingest(args, kind); err != nil {
				return err
			}

			kinds := []model.SourceKind{
				model.KindSensorReading, model.KindPerformanceMetric, model.KindErrorLog,
				model.KindSystemAlert, model.KindMaintenanceNote, model.KindGeneric,
			}
			byType := make([]store.TypeStats, 0, len(kinds))
			for _, k := range kinds {
				if s := a.corpus.StatsFor(k); s.Count > 0 {
					byType = append(byType, s)
				}
			}

			events := a.corpus.All()
			return printJSON(struct {
				TotalEvents int                 `json:"total_events"`
				ByType      []store.TypeStats   `json:"by_type"`
				Dedup       validate.DedupStats `json:"deduplication"`
			}{len(events), byType, validate.Stats(events)})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "auto", "input kind: csv, text or auto")
	return cmd
}

func newValidateCmd(loadConfig configLoader) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Ingest log files and print extraction quality metrics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.ingest(args, kind); err != nil {
				return err
			}
			return printJSON(validate.Report(a.corpus.All()))
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "auto", "input kind: csv, text or auto")
	return cmd
}
