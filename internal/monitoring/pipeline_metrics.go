// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package monitoring

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments for one recommendation batch.
type PipelineMetrics struct {
	runsTotal        metric.Int64Counter
	runDuration      metric.Float64Histogram
	tokenUsageTotal  metric.Int64Counter
	userCostUSD      metric.Float64Gauge
	usersProcessed   metric.Int64Counter
	booksRecommended metric.Int64Counter
}

// NewPipelineMetrics registers the pipeline's instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"assistant_runs_total",
		metric.WithDescription("Assistant runs driven to a terminal state"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant_runs_total counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram(
		"assistant_run_duration_seconds",
		metric.WithDescription("Wall-clock time from run start to terminal state"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant_run_duration_seconds histogram: %w", err)
	}

	tokenUsageTotal, err := meter.Int64Counter(
		"token_usage_total",
		metric.WithDescription("Token usage by operation and direction"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token_usage_total counter: %w", err)
	}

	userCostUSD, err := meter.Float64Gauge(
		"user_cost_usd",
		metric.WithDescription("Accumulated cost per processed user"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user_cost_usd gauge: %w", err)
	}

	usersProcessed, err := meter.Int64Counter(
		"users_processed_total",
		metric.WithDescription("Users fully processed by the batch"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create users_processed_total counter: %w", err)
	}

	booksRecommended, err := meter.Int64Counter(
		"books_recommended_total",
		metric.WithDescription("Books recommended across all users"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create books_recommended_total counter: %w", err)
	}

	return &PipelineMetrics{
		runsTotal:        runsTotal,
		runDuration:      runDuration,
		tokenUsageTotal:  tokenUsageTotal,
		userCostUSD:      userCostUSD,
		usersProcessed:   usersProcessed,
		booksRecommended: booksRecommended,
	}, nil
}

// RecordRunDuration records one completed run and its duration.
func (m *PipelineMetrics) RecordRunDuration(ctx context.Context, operation string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("operation", operation))
	m.runsTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordTokenUsage records the token split of one usage record.
func (m *PipelineMetrics) RecordTokenUsage(ctx context.Context, operation string, promptTokens, completionTokens int64) {
	m.tokenUsageTotal.Add(ctx, promptTokens, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("direction", "input"),
	))
	m.tokenUsageTotal.Add(ctx, completionTokens, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("direction", "output"),
	))
}

// RecordUserProcessed records a fully processed user with their final cost
// and the number of books recommended to them.
func (m *PipelineMetrics) RecordUserProcessed(ctx context.Context, userID string, costUSD float64, recommendedBooks int) {
	userAttr := metric.WithAttributes(attribute.String("user_id", userID))
	m.usersProcessed.Add(ctx, 1)
	m.userCostUSD.Record(ctx, costUSD, userAttr)
	m.booksRecommended.Add(ctx, int64(recommendedBooks))
}
