// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package postgres

import (
	"context"
	"time"

	"github.com/pickatale/bookrec"
	"github.com/pickatale/bookrec/internal/cache"
)

// CachedCatalogRepository wraps a CatalogRepository with a TTL cache on
// description lookups. Active users share much of the catalog, so a batch
// over several users hits the same descriptions repeatedly.
type CachedCatalogRepository struct {
	underlying       bookrec.CatalogRepository
	descriptionCache *cache.Cache[string, string]
}

// NewCachedCatalogRepository creates a new cached catalog repository.
func NewCachedCatalogRepository(underlying bookrec.CatalogRepository, cacheTTL time.Duration) *CachedCatalogRepository {
	return &CachedCatalogRepository{
		underlying:       underlying,
		descriptionCache: cache.New[string, string](cacheTTL),
	}
}

// GetBookDescription retrieves a description with caching. Lookup failures
// are not cached; a later retry may still succeed.
func (r *CachedCatalogRepository) GetBookDescription(ctx context.Context, bookID string) (string, error) {
	if cached, found := r.descriptionCache.Get(bookID); found {
		return cached, nil
	}

	description, err := r.underlying.GetBookDescription(ctx, bookID)
	if err != nil {
		return "", err
	}

	r.descriptionCache.Set(bookID, description)
	return description, nil
}

// ListCatalog passes through to the underlying repository. The full catalog
// is read once per run for the export, so caching it buys nothing.
func (r *CachedCatalogRepository) ListCatalog(ctx context.Context) ([]bookrec.CatalogEntry, error) {
	return r.underlying.ListCatalog(ctx)
}

// Close releases the cache's background resources.
func (r *CachedCatalogRepository) Close() {
	r.descriptionCache.Close()
}
