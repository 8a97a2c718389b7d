// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 1000000

// ExportYAML writes the matching archived articles to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions, path string) (int, error) {
	articles, err := s.exportArticles(ctx, opts)
	if err != nil {
		return 0, err
	}

	data, err := yaml.Marshal(articles)
	if err != nil {
		return 0, fmt.Errorf("marshaling YAML: %w", err)
	}
	return len(articles), writeExport(path, data)
}

// ExportJSON writes the matching archived articles to path as JSON.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions, path string) (int, error) {
	articles, err := s.exportArticles(ctx, opts)
	if err != nil {
		return 0, err
	}

	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}
	return len(articles), writeExport(path, data)
}

func (s *Store) exportArticles(ctx context.Context, opts QueryOptions) ([]Article, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = exportLimit
	}
	articles, err := s.Search(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if articles == nil {
		articles = []Article{}
	}
	return articles, nil
}

func writeExport(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
