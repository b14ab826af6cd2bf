// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	t.Run("substitutes all named placeholders", func(t *testing.T) {
		out := Render(ReadingHistoryRecord, map[string]string{
			"event_time": "2025-03-10 09:00",
			"book_title": "The Science of Space",
			"book_desc":  "An introduction to astrophysics.",
		})
		assert.Contains(t, out, "Reading time: 2025-03-10 09:00")
		assert.Contains(t, out, "Book title: The Science of Space")
		assert.Contains(t, out, "Book description: An introduction to astrophysics.")
		assert.NotContains(t, out, "{")
	})

	t.Run("values are inserted verbatim", func(t *testing.T) {
		out := Render("X: {v}", map[string]string{"v": `a "quoted" {curly} value`})
		assert.Equal(t, `X: a "quoted" {curly} value`, out)
	})

	t.Run("idempotent on fully substituted input", func(t *testing.T) {
		values := map[string]string{"reading_history": "Reading time: yesterday\n"}
		once := Render(InterestAnalysisPrompt, values)
		twice := Render(once, values)
		assert.Equal(t, once, twice)
	})

	t.Run("missing value leaves placeholder for caller fallback", func(t *testing.T) {
		out := Render("desc: {book_desc}", map[string]string{})
		assert.Equal(t, "desc: {book_desc}", out)
	})
}
