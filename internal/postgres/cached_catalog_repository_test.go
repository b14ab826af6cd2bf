// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pickatale/bookrec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCatalog struct {
	descriptionCalls int
	catalogCalls     int
	descriptions     map[string]string
}

func (c *countingCatalog) GetBookDescription(_ context.Context, bookID string) (string, error) {
	c.descriptionCalls++
	description, ok := c.descriptions[bookID]
	if !ok {
		return "", bookrec.ErrNotFound
	}
	return description, nil
}

func (c *countingCatalog) ListCatalog(context.Context) ([]bookrec.CatalogEntry, error) {
	c.catalogCalls++
	return nil, errors.New("not used in this test")
}

func TestCachedCatalogRepository_GetBookDescription(t *testing.T) {
	t.Run("second lookup hits the cache", func(t *testing.T) {
		underlying := &countingCatalog{descriptions: map[string]string{"book-1": "desc"}}
		repo := NewCachedCatalogRepository(underlying, time.Minute)
		defer repo.Close()

		first, err := repo.GetBookDescription(context.Background(), "book-1")
		require.NoError(t, err)
		second, err := repo.GetBookDescription(context.Background(), "book-1")
		require.NoError(t, err)

		assert.Equal(t, "desc", first)
		assert.Equal(t, "desc", second)
		assert.Equal(t, 1, underlying.descriptionCalls)
	})

	t.Run("failures are not cached", func(t *testing.T) {
		underlying := &countingCatalog{descriptions: map[string]string{}}
		repo := NewCachedCatalogRepository(underlying, time.Minute)
		defer repo.Close()

		_, err := repo.GetBookDescription(context.Background(), "book-x")
		assert.ErrorIs(t, err, bookrec.ErrNotFound)
		_, err = repo.GetBookDescription(context.Background(), "book-x")
		assert.ErrorIs(t, err, bookrec.ErrNotFound)

		assert.Equal(t, 2, underlying.descriptionCalls)
	})
}
