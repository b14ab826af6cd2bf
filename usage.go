// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package bookrec

import "io"

// TokenUsage is a single measurement of tokens consumed by one completed
// assistant run, attributed to an operation label. CachedInput marks the
// prompt tokens as served from the platform's prompt cache, which is priced
// differently.
type TokenUsage struct {
	PromptTokens     int64  `json:"promptTokens"`
	CompletionTokens int64  `json:"completionTokens"`
	TotalTokens      int64  `json:"totalTokens"`
	Operation        string `json:"operation"`
	CachedInput      bool   `json:"cachedInput"`
}

// UserCostSummary aggregates every usage record attributed to one user.
//
// Invariant: TotalTokens == TotalPromptTokens + TotalCachedPromptTokens +
// TotalCompletionTokens at all times. TotalCost is strictly additive over the
// records; a record is never re-priced after insertion.
type UserCostSummary struct {
	UserID                  string       `json:"userId"`
	Records                 []TokenUsage `json:"records"`
	TotalPromptTokens       int64        `json:"totalPromptTokens"`
	TotalCachedPromptTokens int64        `json:"totalCachedPromptTokens"`
	TotalCompletionTokens   int64        `json:"totalCompletionTokens"`
	TotalTokens             int64        `json:"totalTokens"`
	TotalCost               float64      `json:"totalCost"`
}

// UsageLedger accumulates token usage and derived cost per user.
type UsageLedger interface {
	// RecordUsage appends usage to the user's record list and updates the
	// running totals, pricing the record with the ledger's configured model.
	RecordUsage(userID string, usage TokenUsage)

	// UserSummary returns the summary for a user, or ErrNotFound when no
	// usage has been recorded for them.
	UserSummary(userID string) (*UserCostSummary, error)

	// AllSummaries returns every tracked user's summary. Order is not
	// significant.
	AllSummaries() []*UserCostSummary

	// TotalCost returns the cost aggregated across all users.
	TotalCost() float64

	// TotalUsage returns token totals aggregated across all users.
	TotalUsage() TokenUsage

	// WriteSummary writes the human-readable cost report. It does not alter
	// ledger state.
	WriteSummary(w io.Writer) error
}
