// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pickatale/bookrec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepository_GetBookDescription(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT DISTINCT rb.description`).
			WithArgs("book-42").
			WillReturnRows(pgxmock.NewRows([]string{"description"}).
				AddRow("An introduction to astrophysics."))

		repo, err := NewCatalogRepository(WithCatalogRepositoryDb(mock))
		require.NoError(t, err)

		description, err := repo.GetBookDescription(context.Background(), "book-42")
		assert.NoError(t, err)
		assert.Equal(t, "An introduction to astrophysics.", description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT DISTINCT rb.description`).
			WithArgs("book-missing").
			WillReturnError(pgx.ErrNoRows)

		repo, err := NewCatalogRepository(WithCatalogRepositoryDb(mock))
		require.NoError(t, err)

		description, err := repo.GetBookDescription(context.Background(), "book-missing")
		assert.ErrorIs(t, err, bookrec.ErrNotFound)
		assert.Empty(t, description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT DISTINCT rb.description`).
			WithArgs("book-42").
			WillReturnError(errors.New("timeout"))

		repo, err := NewCatalogRepository(WithCatalogRepositoryDb(mock))
		require.NoError(t, err)

		_, err = repo.GetBookDescription(context.Background(), "book-42")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, bookrec.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCatalogRepository_ListCatalog(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT DISTINCT rb.permanent_id, rb.title, rb.description`).
			WillReturnRows(pgxmock.NewRows([]string{"permanent_id", "title", "description"}).
				AddRow("book-1", "First", "First description").
				AddRow("book-2", "Second", "Second description"))

		repo, err := NewCatalogRepository(WithCatalogRepositoryDb(mock))
		require.NoError(t, err)

		entries, err := repo.ListCatalog(context.Background())
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, bookrec.CatalogEntry{BookID: "book-1", Title: "First", Description: "First description"}, entries[0])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT DISTINCT rb.permanent_id`).
			WillReturnError(errors.New("connection reset"))

		repo, err := NewCatalogRepository(WithCatalogRepositoryDb(mock))
		require.NoError(t, err)

		entries, err := repo.ListCatalog(context.Background())
		assert.Error(t, err)
		assert.Nil(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
