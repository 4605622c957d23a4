// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest reads the ClinicalTrials.gov CSV export and the EU Clinical
// Trials Register text dump and normalizes both into StudyRecords.
package ingest

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/trial-engine/internal/httputil"
	"github.com/pdiddy/trial-engine/pkg/types"
)

const defaultTimeout = 60 * time.Second

// Loader fetches both raw sources and returns the merged record list.
type Loader struct {
	cfg     types.IngestConfig
	client  *http.Client
	limiter *httputil.HostLimiter
}

// NewLoader creates a Loader. A zero timeout uses 60s.
func NewLoader(cfg types.IngestConfig) *Loader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Loader{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		limiter: httputil.NewHostLimiter(cfg.RequestsPerSecond),
	}
}

// Load fetches the CSV export and the register dump concurrently, waits for
// both, and parses them. ClinicalTrials.gov records come first, then
// EudraCT records. A failure to read either source fails the whole load.
func (l *Loader) Load(ctx context.Context) ([]types.StudyRecord, error) {
	var ctgText, euText string

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := l.read(gCtx, l.cfg.CTGPath)
		if err != nil {
			return eris.Wrap(err, "ingest: read clinicaltrials.gov export")
		}
		ctgText = text
		return nil
	})
	g.Go(func() error {
		text, err := l.read(gCtx, l.cfg.EudraCTPath)
		if err != nil {
			return eris.Wrap(err, "ingest: read eudract dump")
		}
		euText = text
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ctg := ParseCTG(ctgText)
	eu := ParseEudraCT(euText, RegistryOptions{LinkBase: l.cfg.EudraCTLinkBase})

	zap.L().Info("ingested sources",
		zap.Int("clinical_trials", len(ctg)),
		zap.Int("eudract", len(eu)),
	)

	studies := make([]types.StudyRecord, 0, len(ctg)+len(eu))
	studies = append(studies, ctg...)
	studies = append(studies, eu...)
	return studies, nil
}

// read returns the contents of a local file or http(s) URL. An empty path
// means the source is not configured and reads as empty text.
func (l *Loader) read(ctx context.Context, path string) (string, error) {
	if path == "" {
		zap.L().Warn("source not configured, skipping")
		return "", nil
	}
	if isURL(path) {
		if err := l.limiter.Wait(ctx, path); err != nil {
			return "", err
		}
		return httputil.GetText(ctx, l.client, path, l.cfg.UserAgent, l.cfg.Token, l.cfg.MaxRetries)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "ingest: read %s", path)
	}
	return string(data), nil
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
