// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package bookrec contains the domain types and boundary interfaces for the
// reading-history book recommendation pipeline.
package bookrec

import (
	"context"
	"time"
)

// ReadingRecord is one book from a user's reading history, most recent read
// first as returned by the warehouse.
type ReadingRecord struct {
	ReadAt       time.Time `json:"readAt"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	ISBN         string    `json:"isbn"`
	LanguageCode string    `json:"languageCode"`
	Genre        string    `json:"genre"`
	Publisher    string    `json:"publisher"`
	WordCount    int       `json:"wordCount"`
	Categories   []string  `json:"categories"`
	BookID       string    `json:"bookId"`
}

// CatalogEntry is one book in the full production catalog. The exporter
// serializes these one JSON object per line for vector store ingestion.
type CatalogEntry struct {
	BookID      string `json:"book_id"`
	Title       string `json:"book_title"`
	Description string `json:"book_description"`
}

// RecommendedBook is a single recommendation produced by the assistant.
// Citation markers from file_search results are stripped before use.
type RecommendedBook struct {
	BookID string `json:"book_id"`
	Title  string `json:"book_title"`
	Reason string `json:"reason"`
}

// ReadingRepository exposes the warehouse's reading-session data.
type ReadingRepository interface {
	// ListActiveUsers returns IDs of users with at least minSessions reading
	// sessions within the past lookbackDays days, most active first.
	ListActiveUsers(ctx context.Context, lookbackDays, minSessions int) ([]string, error)

	// ListUserReadBooks returns up to limit distinct books the user has read,
	// most recently read first.
	ListUserReadBooks(ctx context.Context, userID string, limit int) ([]ReadingRecord, error)
}

// CatalogRepository exposes the warehouse's book catalog.
type CatalogRepository interface {
	// GetBookDescription returns the production description for a book.
	// Returns ErrNotFound when the book has no production entry.
	GetBookDescription(ctx context.Context, bookID string) (string, error)

	// ListCatalog returns every book in the production catalog.
	ListCatalog(ctx context.Context) ([]CatalogEntry, error)
}
