// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/pickatale/bookrec"
)

// GetBookDescription returns the production description for a book.
// Returns [bookrec.ErrNotFound] when the book has no production entry.
func (r *CatalogRepository) GetBookDescription(ctx context.Context, bookID string) (string, error) {
	query := `
		SELECT DISTINCT rb.description
		FROM regular_books rb
		JOIN published_books pb ON pb.published_book_id = rb.id
		JOIN published_book_environments pbe ON pbe.published_book_id = pb.id
		JOIN environments e ON e.id = pbe.environments_id
		WHERE e.name = 'production' AND rb.permanent_id = $1`

	row := r.options.Db.QueryRow(ctx, query, bookID)

	var description string
	err := row.Scan(&description)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", bookrec.ErrNotFound
	}
	if err != nil {
		r.options.Logger.Error("Failed to get book description", "error", err, "bookID", bookID)
		return "", err
	}
	return description, nil
}

// ListCatalog returns every book in the production catalog.
func (r *CatalogRepository) ListCatalog(ctx context.Context) ([]bookrec.CatalogEntry, error) {
	query := `
		SELECT DISTINCT rb.permanent_id, rb.title, rb.description
		FROM regular_books rb
		JOIN published_books pb ON pb.published_book_id = rb.id
		JOIN published_book_environments pbe ON pbe.published_book_id = pb.id
		JOIN environments e ON e.id = pbe.environments_id
		WHERE e.name = 'production'`

	rows, err := r.options.Db.Query(ctx, query)
	if err != nil {
		r.options.Logger.Error("Failed to list catalog", "error", err)
		return nil, err
	}
	defer rows.Close()

	var entries []bookrec.CatalogEntry
	for rows.Next() {
		var entry bookrec.CatalogEntry
		if err := rows.Scan(&entry.BookID, &entry.Title, &entry.Description); err != nil {
			r.options.Logger.Error("Failed to scan catalog entry", "error", err)
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
