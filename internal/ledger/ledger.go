// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package ledger implements the in-memory usage ledger that accumulates
// token counts and derived cost per user and per operation label.
package ledger

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/pickatale/bookrec"
	"github.com/pickatale/bookrec/internal/pricing"
)

// Ledger tracks token usage per user, pricing every record at insertion time
// with the pricing resolved for the configured model. It implements
// [bookrec.UsageLedger].
type Ledger struct {
	options *ledgerOptions

	mu      sync.Mutex
	model   string
	pricing pricing.ModelPricing
	users   map[string]*bookrec.UserCostSummary
}

type ledgerOptions struct {
	Logger *slog.Logger
}

var defaultLedgerOptions = ledgerOptions{
	Logger: slog.Default(),
}

// LedgerOption is an option for configuring a [Ledger].
type LedgerOption interface {
	apply(*ledgerOptions)
}

type funcLedgerOption struct {
	f func(*ledgerOptions)
}

func (flo *funcLedgerOption) apply(opts *ledgerOptions) {
	flo.f(opts)
}

// WithLedgerLogger returns a [LedgerOption] that uses the provided logger.
func WithLedgerLogger(logger *slog.Logger) LedgerOption {
	return &funcLedgerOption{f: func(opts *ledgerOptions) {
		opts.Logger = logger
	}}
}

// New creates a ledger pricing records for the given model. An unrecognized
// model falls back to the default model's pricing with a warning; the ledger
// still produces valid costs.
func New(model string, options ...LedgerOption) *Ledger {
	opts := defaultLedgerOptions
	for _, opt := range options {
		opt.apply(&opts)
	}

	prices, known := pricing.ForModel(model)
	if !known {
		opts.Logger.Warn("Unknown model, falling back to default pricing",
			"model", model,
			"defaultModel", pricing.DefaultModel)
	}

	return &Ledger{
		options: &opts,
		model:   model,
		pricing: prices,
		users:   make(map[string]*bookrec.UserCostSummary),
	}
}

// price computes the cost of one record. Pricing is fixed at construction,
// so the value is identical whether computed at insertion or report time.
func (l *Ledger) price(usage bookrec.TokenUsage) float64 {
	return l.pricing.Cost(usage.PromptTokens, usage.CompletionTokens, usage.CachedInput)
}

// RecordUsage appends usage to the user's record list and updates the
// running totals. Cached and non-cached prompt tokens are tracked separately.
func (l *Ledger) RecordUsage(userID string, usage bookrec.TokenUsage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	summary, ok := l.users[userID]
	if !ok {
		summary = &bookrec.UserCostSummary{UserID: userID}
		l.users[userID] = summary
	}

	summary.Records = append(summary.Records, usage)
	if usage.CachedInput {
		summary.TotalCachedPromptTokens += usage.PromptTokens
	} else {
		summary.TotalPromptTokens += usage.PromptTokens
	}
	summary.TotalCompletionTokens += usage.CompletionTokens
	summary.TotalTokens = summary.TotalPromptTokens + summary.TotalCachedPromptTokens + summary.TotalCompletionTokens
	summary.TotalCost += l.price(usage)

	l.options.Logger.Debug("Recorded usage",
		"userID", userID,
		"operation", usage.Operation,
		"promptTokens", usage.PromptTokens,
		"completionTokens", usage.CompletionTokens,
		"cachedInput", usage.CachedInput)
}

// UserSummary returns a copy of the user's summary, or
// [bookrec.ErrNotFound] when no usage has been recorded for them.
func (l *Ledger) UserSummary(userID string) (*bookrec.UserCostSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	summary, ok := l.users[userID]
	if !ok {
		return nil, bookrec.ErrNotFound
	}
	return copySummary(summary), nil
}

// AllSummaries returns a copy of every tracked user's summary. Order is not
// significant.
func (l *Ledger) AllSummaries() []*bookrec.UserCostSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	summaries := make([]*bookrec.UserCostSummary, 0, len(l.users))
	for _, summary := range l.users {
		summaries = append(summaries, copySummary(summary))
	}
	return summaries
}

// TotalCost returns the cost aggregated from the stored per-user totals.
func (l *Ledger) TotalCost() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total float64
	for _, summary := range l.users {
		total += summary.TotalCost
	}
	return total
}

// TotalUsage returns token totals aggregated from the stored per-user
// totals. PromptTokens includes the cached share, so PromptTokens plus
// CompletionTokens equals TotalTokens.
func (l *Ledger) TotalUsage() bookrec.TokenUsage {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total bookrec.TokenUsage
	for _, summary := range l.users {
		total.PromptTokens += summary.TotalPromptTokens + summary.TotalCachedPromptTokens
		total.CompletionTokens += summary.TotalCompletionTokens
		total.TotalTokens += summary.TotalTokens
	}
	return total
}

// WriteSummary writes the deterministic human-readable cost report: a
// per-user breakdown, a per-operation breakdown within each user, and a
// grand total block. Ledger state is not altered.
func (l *Ledger) WriteSummary(w io.Writer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	userIDs := make([]string, 0, len(l.users))
	for userID := range l.users {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	if _, err := fmt.Fprintf(w, "Token usage and cost summary (model: %s)\n", l.model); err != nil {
		return err
	}

	var grandPrompt, grandCached, grandCompletion, grandTotal int64
	var grandCost float64

	for _, userID := range userIDs {
		summary := l.users[userID]
		grandPrompt += summary.TotalPromptTokens
		grandCached += summary.TotalCachedPromptTokens
		grandCompletion += summary.TotalCompletionTokens
		grandTotal += summary.TotalTokens
		grandCost += summary.TotalCost

		_, err := fmt.Fprintf(w, "\nUser %s\n  Input tokens:        %d\n  Cached input tokens: %d\n  Output tokens:       %d\n  Total tokens:        %d\n  Cost:                $%.6f\n",
			userID,
			summary.TotalPromptTokens,
			summary.TotalCachedPromptTokens,
			summary.TotalCompletionTokens,
			summary.TotalTokens,
			summary.TotalCost)
		if err != nil {
			return err
		}

		for _, line := range l.operationLines(summary) {
			if _, err := fmt.Fprintf(w, "    %s\n", line); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "\nGrand total (%d users)\n  Input tokens:        %d\n  Cached input tokens: %d\n  Output tokens:       %d\n  Total tokens:        %d\n  Total cost:          $%.6f\n",
		len(userIDs), grandPrompt, grandCached, grandCompletion, grandTotal, grandCost)
	return err
}

// operationLines folds a user's records by operation label and renders one
// report line per label, sorted by label.
func (l *Ledger) operationLines(summary *bookrec.UserCostSummary) []string {
	type opTotals struct {
		tokens int64
		cost   float64
	}
	byOp := make(map[string]*opTotals)
	for _, record := range summary.Records {
		totals, ok := byOp[record.Operation]
		if !ok {
			totals = &opTotals{}
			byOp[record.Operation] = totals
		}
		totals.tokens += record.TotalTokens
		totals.cost += l.price(record)
	}

	labels := make([]string, 0, len(byOp))
	for label := range byOp {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	lines := make([]string, 0, len(labels))
	for _, label := range labels {
		totals := byOp[label]
		lines = append(lines, fmt.Sprintf("%s: %d tokens, $%.6f", label, totals.tokens, totals.cost))
	}
	return lines
}

func copySummary(summary *bookrec.UserCostSummary) *bookrec.UserCostSummary {
	out := *summary
	out.Records = make([]bookrec.TokenUsage, len(summary.Records))
	copy(out.Records, summary.Records)
	return &out
}
