package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mechsight/triage/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath  string
		logLevel string
	)

	root := &cobra.Command{
		Use:           "triage",
		Short:         "Normalize robot maintenance logs and score events for triage",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	loadConfig := func() (config.Config, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return config.Config{}, err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		return cfg, nil
	}

	root.AddCommand(
		newProcessCmd(loadConfig),
		newTriageCmd(loadConfig),
		newExportCmd(loadConfig),
		newStatsCmd(loadConfig),
		newValidateCmd(loadConfig),
	)
	return root
}
