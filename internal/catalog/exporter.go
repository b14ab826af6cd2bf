// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package catalog exports the full book catalog to a newline-delimited JSON
// file suitable for vector store ingestion.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pickatale/bookrec"
)

// Exporter reads the catalog from the repository and writes one JSON object
// per line to a uniquely named temporary file.
type Exporter struct {
	repo   bookrec.CatalogRepository
	logger *slog.Logger
}

// ExporterOption configures Exporter behavior
type ExporterOption func(*Exporter)

// WithExporterLogger sets the logger for the exporter
func WithExporterLogger(logger *slog.Logger) ExporterOption {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// NewExporter creates a new Exporter instance
func NewExporter(repo bookrec.CatalogRepository, options ...ExporterOption) *Exporter {
	e := &Exporter{
		repo:   repo,
		logger: slog.Default(),
	}

	for _, opt := range options {
		opt(e)
	}

	return e
}

// Export writes every catalog entry as one self-contained JSON line and
// returns the file path. The file name carries a random suffix so concurrent
// invocations cannot collide. The caller owns deletion of the file once the
// upload has consumed it.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	entries, err := e.repo.ListCatalog(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list catalog: %w", err)
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("bookrec-catalog-%s.json", uuid.NewString()))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create catalog file: %w", err)
	}

	encoder := json.NewEncoder(file)
	for _, entry := range entries {
		if err := encoder.Encode(entry); err != nil {
			file.Close()
			os.Remove(path)
			return "", fmt.Errorf("failed to write catalog entry %s: %w", entry.BookID, err)
		}
	}

	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close catalog file: %w", err)
	}

	e.logger.Info("Exported catalog", "entries", len(entries), "path", path)
	return path, nil
}
