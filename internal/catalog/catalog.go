// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog owns the ingested record list and exposes the read
// surface used by the CLI and HTTP server: records, filtered subsets,
// classifications, and statistics.
package catalog

import (
	"context"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/pdiddy/trial-engine/internal/aggregate"
	"github.com/pdiddy/trial-engine/internal/classify"
	"github.com/pdiddy/trial-engine/internal/filter"
	"github.com/pdiddy/trial-engine/pkg/types"
)

const recordsKey = "records"

// Loader produces the merged record list. ingest.Loader and store.Store
// both satisfy it.
type Loader interface {
	Load(ctx context.Context) ([]types.StudyRecord, error)
}

// Catalog caches the record list for the life of the process. The list is
// loaded on first use and replaced only by Refetch. Filtering,
// classification and aggregation are recomputed on every call.
type Catalog struct {
	loader     Loader
	classifier *classify.Classifier
	cache      *gocache.Cache
	loadMu     sync.Mutex
}

// New creates a Catalog. A nil classifier uses classify.Default.
func New(loader Loader, classifier *classify.Classifier) *Catalog {
	if classifier == nil {
		classifier = classify.Default()
	}
	return &Catalog{
		loader:     loader,
		classifier: classifier,
		cache:      gocache.New(gocache.NoExpiration, 0),
	}
}

// Records returns the cached record list, loading it if absent. Callers
// must treat the returned slice as read-only.
func (c *Catalog) Records(ctx context.Context) ([]types.StudyRecord, error) {
	if v, ok := c.cache.Get(recordsKey); ok {
		return v.([]types.StudyRecord), nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if v, ok := c.cache.Get(recordsKey); ok {
		return v.([]types.StudyRecord), nil
	}
	return c.load(ctx)
}

// Refetch reloads the record list and overwrites the cache. Concurrent
// refetches are not coordinated; the last one to finish wins.
func (c *Catalog) Refetch(ctx context.Context) ([]types.StudyRecord, error) {
	return c.load(ctx)
}

// Invalidate drops the cached list so the next Records call reloads it.
func (c *Catalog) Invalidate() {
	c.cache.Delete(recordsKey)
}

// Cached reports whether a record list is currently held.
func (c *Catalog) Cached() bool {
	_, ok := c.cache.Get(recordsKey)
	return ok
}

func (c *Catalog) load(ctx context.Context) ([]types.StudyRecord, error) {
	records, err := c.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(recordsKey, records, gocache.NoExpiration)
	zap.L().Debug("catalog loaded", zap.Int("records", len(records)))
	return records, nil
}

// Filter returns the records matching state.
func (c *Catalog) Filter(ctx context.Context, state types.FilterState) ([]types.StudyRecord, error) {
	records, err := c.Records(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(records, state), nil
}

// Classify classifies each record's title, preserving order.
func (c *Catalog) Classify(records []types.StudyRecord) []types.ClassificationResult {
	return c.classifier.ClassifyAll(records)
}

// Stats aggregates classification results.
func (c *Catalog) Stats(results []types.ClassificationResult) types.ClassificationStats {
	return aggregate.Summarize(results)
}
