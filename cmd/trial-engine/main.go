// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the trial-engine CLI.
// It ingests ClinicalTrials.gov and EU Clinical Trials Register exports,
// then lists, classifies, and summarizes the merged study records from the
// terminal or over HTTP.
package main

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/trial-engine/internal/config"
	"github.com/pdiddy/trial-engine/internal/secrets"
	"github.com/pdiddy/trial-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is loaded once per invocation in PersistentPreRunE.
var cfg *types.PipelineConfig

// rootCmd is the base command for the trial-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "trial-engine",
	Short: "Ingest, classify and summarize clinical-trial registry exports",
	Long: `trial-engine reads a ClinicalTrials.gov CSV export and an EU Clinical
Trials Register text dump, normalizes both into one study record shape, and
answers questions about them: which studies match a filter, how their titles
classify by therapeutic area, phase, treatment and population, and how the
set breaks down by condition, sponsor, start year and region.

Run "trial-engine ingest" to take a snapshot, then query it with studies,
classify and stats, or serve it over HTTP with serve.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		c, used, err := config.Load(cfgFile)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			c.Log.Level = lvl
		}
		if err := config.InitLogger(c.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		if used != "" {
			zap.L().Debug("using config file", zap.String("path", used))
		}

		s, err := secrets.Load(c.SecretsDir)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := secrets.Keys(s)
			sort.Strings(keys)
			zap.L().Debug("loaded secrets", zap.Strings("keys", keys))
		}
		c.Sources.Token = s[secrets.SourceToken]

		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./trial-engine.yaml or ~/.config/trial-engine/trial-engine.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
