// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package prompt holds the fixed prompt templates sent to the assistant and
// the placeholder rendering used to fill them.
package prompt

import "strings"

// Render substitutes every {name} placeholder with its value from values.
// Values are inserted verbatim. Placeholders without a value are left as-is;
// callers supply explicit fallbacks (see NoDescriptionFallback) instead of
// letting a raw placeholder through. Rendering an already-substituted string
// returns it unchanged.
func Render(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for name, value := range values {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// NoDescriptionFallback replaces a book description that could not be
// fetched. A documented degradation, never a silent one.
const NoDescriptionFallback = "No description available"

// AssistantInstruction configures the assistant at creation time.
const AssistantInstruction = `You are a children's book recommendation assistant for a digital library.
You are given a user's recent reading history. Analyze it to understand the user's interests,
then use the attached library catalog (file search) to find books the user may enjoy.

When asked for recommendations, call the recommend_books function with:
- recommendation_summary: the user's main interests, at most 3 topics
- recommended_books: exactly 3 books from the catalog, each with its book_id, book_title,
  and a short reason for the recommendation

Only recommend books that exist in the catalog. Return only the book_id, book_title and
reason for each book; do not invent metadata.`

// RecommendFunctionDescription describes the recommend_books tool.
const RecommendFunctionDescription = `Report the analysis of the user's reading history and recommend books from the library catalog.`

// RecommendSummaryDescription describes the recommendation_summary parameter.
const RecommendSummaryDescription = `A short summary of the user's reading interests, covering at most 3 topics.`

// ReadingHistoryRecord renders one book of reading history. Records are
// concatenated most-recent-read-first by the caller.
const ReadingHistoryRecord = `Reading time: {event_time}
Book title: {book_title}
Book description: {book_desc}

`

// InterestAnalysisPrompt asks for the free-text interest summary.
const InterestAnalysisPrompt = `Here is my recent reading history, most recent first:

{reading_history}
Analyze my reading interests and call the recommend_books function, filling
recommendation_summary with my main interests (at most 3 topics).`

// RecommendationPrompt asks for the structured book list backed by file search.
const RecommendationPrompt = `Here is my recent reading history, most recent first:

{reading_history}
Search the library catalog for books matching my interests and call the
recommend_books function with exactly 3 recommended books. For each book return
its book_id, book_title and the reason you chose it.`
