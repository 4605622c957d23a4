// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// Export is the document written by ExportYAML and ExportJSON.
type Export struct {
	Snapshot        SnapshotInfo                 `json:"snapshot" yaml:"snapshot"`
	Studies         []types.StudyRecord          `json:"studies" yaml:"studies"`
	Classifications []types.ClassificationResult `json:"classifications,omitempty" yaml:"classifications,omitempty"`
}

// ExportOptions controls an export.
type ExportOptions struct {
	// Path is the output file. Empty writes export.yaml or export.json in
	// the store directory.
	Path string

	// Classifications, when set, are included alongside the studies.
	Classifications []types.ClassificationResult
}

// ExportYAML writes the snapshot as YAML and returns the path written.
func (s *Store) ExportYAML(ctx context.Context, opts ExportOptions) (string, error) {
	doc, err := s.exportDoc(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", eris.Wrap(err, "store: marshal YAML")
	}
	return s.write(opts.Path, "export.yaml", data)
}

// ExportJSON writes the snapshot as indented JSON and returns the path
// written.
func (s *Store) ExportJSON(ctx context.Context, opts ExportOptions) (string, error) {
	doc, err := s.exportDoc(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "store: marshal JSON")
	}
	return s.write(opts.Path, "export.json", data)
}

func (s *Store) exportDoc(ctx context.Context, opts ExportOptions) (*Export, error) {
	info, err := s.Info(ctx)
	if err != nil {
		return nil, err
	}
	studies, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Export{
		Snapshot:        info,
		Studies:         studies,
		Classifications: opts.Classifications,
	}, nil
}

func (s *Store) write(path, defaultName string, data []byte) (string, error) {
	if path == "" {
		path = filepath.Join(s.dir, defaultName)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "store: write %s", path)
	}
	return path, nil
}
