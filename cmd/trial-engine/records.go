// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/trial-engine/internal/catalog"
	"github.com/pdiddy/trial-engine/internal/classify"
	"github.com/pdiddy/trial-engine/internal/filter"
	"github.com/pdiddy/trial-engine/internal/ingest"
	"github.com/pdiddy/trial-engine/internal/store"
	"github.com/pdiddy/trial-engine/pkg/types"
)

// sourceLoader is the subset of ingest.Loader the CLI needs.
type sourceLoader interface {
	Load(ctx context.Context) ([]types.StudyRecord, error)
}

// recordLoader seeds the first load from the saved snapshot when one
// exists; every later load (and the first, when live is set or no snapshot
// exists) reads the configured sources and replaces the snapshot.
type recordLoader struct {
	store   *store.Store
	sources sourceLoader
	seeded  atomic.Bool
}

func newRecordLoader(st *store.Store, sources sourceLoader, live bool) *recordLoader {
	l := &recordLoader{store: st, sources: sources}
	l.seeded.Store(live)
	return l
}

func (l *recordLoader) Load(ctx context.Context) ([]types.StudyRecord, error) {
	if l.seeded.CompareAndSwap(false, true) {
		records, err := l.store.Load(ctx)
		if err == nil {
			zap.L().Debug("loaded snapshot", zap.Int("records", len(records)))
			return records, nil
		}
		if !errors.Is(err, store.ErrNoSnapshot) {
			return nil, err
		}
		zap.L().Info("no snapshot saved, reading sources")
	}

	records, err := l.sources.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := l.store.SaveSnapshot(ctx, records); err != nil {
		zap.L().Warn("could not save snapshot", zap.Error(err))
	}
	return records, nil
}

// env bundles what record commands share. Close releases the store.
type env struct {
	store   *store.Store
	catalog *catalog.Catalog
}

func (e *env) Close() error {
	return e.store.Close()
}

// openEnv opens the store and builds a catalog over the snapshot or the
// configured sources.
func openEnv(cmd *cobra.Command) (*env, error) {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	classifier, err := classify.Load(cfg.Classify.PatternsFile)
	if err != nil {
		st.Close()
		return nil, err
	}
	live, _ := cmd.Flags().GetBool("live")
	loader := newRecordLoader(st, ingest.NewLoader(cfg.Ingest()), live)
	return &env{store: st, catalog: catalog.New(loader, classifier)}, nil
}

// filterFromFlags builds a filter state from --filter-file, then applies
// --region, --condition, --from and --to on top of it.
func filterFromFlags(cmd *cobra.Command) (types.FilterState, error) {
	var (
		state types.FilterState
		err   error
	)
	if path, _ := cmd.Flags().GetString("filter-file"); path != "" {
		f, err := filter.ReadFile(path)
		if err != nil {
			return state, err
		}
		if state, err = f.Filter.State(); err != nil {
			return state, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("region") {
		region, _ := flags.GetString("region")
		if state.Region, err = filter.ParseRegion(region); err != nil {
			return state, err
		}
	}
	if flags.Changed("condition") {
		state.ConditionSearch, _ = flags.GetString("condition")
	}
	if flags.Changed("from") {
		from, _ := flags.GetString("from")
		if state.DateRange.From, err = filter.ParseDate(from); err != nil {
			return state, err
		}
	}
	if flags.Changed("to") {
		to, _ := flags.GetString("to")
		if state.DateRange.To, err = filter.ParseDate(to); err != nil {
			return state, err
		}
	}
	return state, nil
}

// addRecordFlags registers the flags shared by commands that read records.
func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().String("region", "all", "region: us, eu or all")
	cmd.Flags().String("condition", "", "case-insensitive condition substring")
	cmd.Flags().String("from", "", "earliest start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "latest start date (YYYY-MM-DD)")
	cmd.Flags().String("filter-file", "", "apply a filter saved with --save-filter")
	cmd.Flags().Bool("live", false, "read the configured sources instead of the saved snapshot")
	cmd.Flags().Bool("json", false, "output as JSON")
}

// filteredRecords resolves the filter flags and returns matching records.
func filteredRecords(cmd *cobra.Command, e *env) ([]types.StudyRecord, types.FilterState, error) {
	state, err := filterFromFlags(cmd)
	if err != nil {
		return nil, state, err
	}
	records, err := e.catalog.Filter(cmd.Context(), state)
	return records, state, err
}
