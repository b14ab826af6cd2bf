// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package postgres

import (
	"context"
	"encoding/json"

	"github.com/pickatale/bookrec"
)

// ListActiveUsers returns IDs of users with at least minSessions reading
// sessions within the past lookbackDays days, most active first.
func (r *ReadingRepository) ListActiveUsers(ctx context.Context, lookbackDays, minSessions int) ([]string, error) {
	query := `
		SELECT user_id
		FROM reading_sessions
		WHERE event_time >= now() - make_interval(days => $1)
		GROUP BY user_id
		HAVING COUNT(*) >= $2
		ORDER BY COUNT(*) DESC`

	rows, err := r.options.Db.Query(ctx, query, lookbackDays, minSessions)
	if err != nil {
		r.options.Logger.Error("Failed to list active users", "error", err)
		return nil, err
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			r.options.Logger.Error("Failed to scan active user row", "error", err)
			return nil, err
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return userIDs, nil
}

// ListUserReadBooks returns up to limit distinct books the user has read,
// most recently read first. A book read several times counts once, at its
// most recent read.
func (r *ReadingRepository) ListUserReadBooks(ctx context.Context, userID string, limit int) ([]bookrec.ReadingRecord, error) {
	query := `
		WITH ranked_books AS (
			SELECT
				s.event_time,
				b.title,
				b.author,
				b.isbn,
				b.language_code,
				b.genre,
				b.publisher,
				b.word_count,
				b.default_categories,
				b.permanent_id,
				ROW_NUMBER() OVER (PARTITION BY b.permanent_id ORDER BY s.event_time DESC) AS rn
			FROM reading_sessions s
			JOIN books b ON s.book_permanent_id = b.permanent_id
			WHERE s.user_id = $1
		)
		SELECT event_time, title, author, isbn, language_code, genre,
			publisher, word_count, default_categories, permanent_id
		FROM ranked_books
		WHERE rn = 1
		ORDER BY event_time DESC
		LIMIT $2`

	rows, err := r.options.Db.Query(ctx, query, userID, limit)
	if err != nil {
		r.options.Logger.Error("Failed to list read books", "error", err, "userID", userID)
		return nil, err
	}
	defer rows.Close()

	var records []bookrec.ReadingRecord
	for rows.Next() {
		var record bookrec.ReadingRecord
		var rawCategories []byte
		err := rows.Scan(
			&record.ReadAt,
			&record.Title,
			&record.Author,
			&record.ISBN,
			&record.LanguageCode,
			&record.Genre,
			&record.Publisher,
			&record.WordCount,
			&rawCategories,
			&record.BookID,
		)
		if err != nil {
			r.options.Logger.Error("Failed to scan reading record", "error", err, "userID", userID)
			return nil, err
		}

		// The warehouse stores categories as a JSON array column. A bad or
		// empty value degrades to no categories rather than failing the scan.
		if len(rawCategories) > 0 {
			if err := json.Unmarshal(rawCategories, &record.Categories); err != nil {
				r.options.Logger.Warn("Ignoring malformed categories column",
					"error", err, "bookID", record.BookID)
				record.Categories = nil
			}
		}

		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
