// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package pricing holds the static per-token price table for the OpenAI
// models the pipeline may run against. Prices are published per million
// tokens; the constants here are already divided down to per-token USD.
// There is no external pricing feed, so new rates require a code change.
package pricing

// ModelPricing is the USD cost per single token for one model.
type ModelPricing struct {
	Input       float64
	CachedInput float64
	Output      float64
}

// DefaultModel is the model whose pricing is used when an unknown model
// identifier is looked up.
const DefaultModel = "gpt-4o"

const perMillion = 1e6

var models = map[string]ModelPricing{
	"gpt-4o": {
		Input:       2.50 / perMillion,
		CachedInput: 1.25 / perMillion,
		Output:      10.00 / perMillion,
	},
	"gpt-4o-mini": {
		Input:       0.15 / perMillion,
		CachedInput: 0.075 / perMillion,
		Output:      0.60 / perMillion,
	},
	"gpt-4.1": {
		Input:       2.00 / perMillion,
		CachedInput: 0.50 / perMillion,
		Output:      8.00 / perMillion,
	},
	"gpt-4.1-mini": {
		Input:       0.40 / perMillion,
		CachedInput: 0.10 / perMillion,
		Output:      1.60 / perMillion,
	},
	"gpt-4.1-nano": {
		Input:       0.10 / perMillion,
		CachedInput: 0.025 / perMillion,
		Output:      0.40 / perMillion,
	},
}

// ForModel returns the pricing for a model identifier. Unknown identifiers
// fall back to DefaultModel's pricing; the second return value reports
// whether the identifier was recognized so callers can warn.
func ForModel(model string) (ModelPricing, bool) {
	if p, ok := models[model]; ok {
		return p, true
	}
	return models[DefaultModel], false
}

// Cost prices one usage measurement. Cached prompt tokens are billed at the
// cached-input rate instead of the input rate.
func (p ModelPricing) Cost(promptTokens, completionTokens int64, cachedInput bool) float64 {
	inputRate := p.Input
	if cachedInput {
		inputRate = p.CachedInput
	}
	return float64(promptTokens)*inputRate + float64(completionTokens)*p.Output
}
