// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package services contains the batch orchestrator driving the
// recommendation pipeline end to end.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pickatale/bookrec"
	"github.com/pickatale/bookrec/internal/assistant"
	"github.com/pickatale/bookrec/internal/catalog"
	"github.com/pickatale/bookrec/internal/monitoring"
	"github.com/pickatale/bookrec/internal/prompt"
)

// bookLinkBase prefixes a book ID to form the public library link printed
// with each recommendation.
const bookLinkBase = "https://app.pickatale.com/library/book/"

const (
	defaultLookbackDays = 14
	defaultMinSessions  = 5
	defaultHistoryLimit = 5
)

// Recommender runs one sequential batch: export the catalog, build the
// assistant, process the requested number of active users, tear down and
// print the cost summary. Teardown and the summary run regardless of how
// user processing ended.
type Recommender struct {
	readingRepo bookrec.ReadingRepository
	catalogRepo bookrec.CatalogRepository
	exporter    *catalog.Exporter
	lifecycle   *assistant.Lifecycle
	monitor     *assistant.Monitor
	platform    assistant.Platform
	ledger      bookrec.UsageLedger
	logger      *slog.Logger
	metrics     *monitoring.PipelineMetrics
	out         io.Writer

	lookbackDays int
	minSessions  int
	historyLimit int
}

// RecommenderOption configures Recommender behavior
type RecommenderOption func(*Recommender)

// WithRecommenderLogger sets the logger for the recommender
func WithRecommenderLogger(logger *slog.Logger) RecommenderOption {
	return func(r *Recommender) {
		r.logger = logger
	}
}

// WithRecommenderMetrics sets the metrics for the recommender
func WithRecommenderMetrics(metrics *monitoring.PipelineMetrics) RecommenderOption {
	return func(r *Recommender) {
		r.metrics = metrics
	}
}

// WithRecommenderOutput sets the writer the report is printed to
func WithRecommenderOutput(out io.Writer) RecommenderOption {
	return func(r *Recommender) {
		r.out = out
	}
}

// WithLookbackDays sets the active-user lookback window
func WithLookbackDays(days int) RecommenderOption {
	return func(r *Recommender) {
		r.lookbackDays = days
	}
}

// WithMinSessions sets the active-user session threshold
func WithMinSessions(sessions int) RecommenderOption {
	return func(r *Recommender) {
		r.minSessions = sessions
	}
}

// WithHistoryLimit caps how many read books feed each user's prompt
func WithHistoryLimit(limit int) RecommenderOption {
	return func(r *Recommender) {
		r.historyLimit = limit
	}
}

// NewRecommender creates a new Recommender instance
func NewRecommender(
	readingRepo bookrec.ReadingRepository,
	catalogRepo bookrec.CatalogRepository,
	exporter *catalog.Exporter,
	lifecycle *assistant.Lifecycle,
	monitor *assistant.Monitor,
	platform assistant.Platform,
	usageLedger bookrec.UsageLedger,
	options ...RecommenderOption,
) *Recommender {
	r := &Recommender{
		readingRepo:  readingRepo,
		catalogRepo:  catalogRepo,
		exporter:     exporter,
		lifecycle:    lifecycle,
		monitor:      monitor,
		platform:     platform,
		ledger:       usageLedger,
		logger:       slog.Default(),
		out:          os.Stdout,
		lookbackDays: defaultLookbackDays,
		minSessions:  defaultMinSessions,
		historyLimit: defaultHistoryLimit,
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// Run executes one batch for up to userCount users. The assistant and its
// vector store are deleted and the cost summary is printed before Run
// returns, whether user processing succeeded or not.
func (r *Recommender) Run(ctx context.Context, userCount int) error {
	if userCount < 1 {
		userCount = 1
	}

	catalogPath, err := r.exporter.Export(ctx)
	if err != nil {
		return fmt.Errorf("failed to export catalog: %w", err)
	}

	r.logger.Info("Starting recommendation batch", "userCount", userCount)
	assistantID, err := r.lifecycle.EnsureAssistant(ctx, catalogPath)
	// The upload has consumed the export either way; drop the temp file now.
	if removeErr := os.Remove(catalogPath); removeErr != nil {
		r.logger.Warn("Failed to remove catalog export", "path", catalogPath, "error", removeErr)
	}
	if err != nil {
		return err
	}

	defer func() {
		for _, warning := range r.lifecycle.DeleteAssistant(ctx, assistantID) {
			r.logger.Warn("Teardown warning", "assistantID", assistantID, "error", warning)
		}
		if err := r.ledger.WriteSummary(r.out); err != nil {
			r.logger.Error("Failed to write cost summary", "error", err)
		}
	}()

	return r.processUsers(ctx, assistantID, userCount)
}

func (r *Recommender) processUsers(ctx context.Context, assistantID string, userCount int) error {
	userIDs, err := r.readingRepo.ListActiveUsers(ctx, r.lookbackDays, r.minSessions)
	if err != nil {
		return fmt.Errorf("failed to list active users: %w", err)
	}
	if len(userIDs) == 0 {
		r.logger.Info("No active users in the lookback window",
			"lookbackDays", r.lookbackDays, "minSessions", r.minSessions)
		return nil
	}
	if len(userIDs) > userCount {
		userIDs = userIDs[:userCount]
	}

	for _, userID := range userIDs {
		if err := r.processUser(ctx, assistantID, userID); err != nil {
			return fmt.Errorf("failed to process user %s: %w", userID, err)
		}
	}
	return nil
}

func (r *Recommender) processUser(ctx context.Context, assistantID, userID string) error {
	records, err := r.readingRepo.ListUserReadBooks(ctx, userID, r.historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list read books: %w", err)
	}
	if len(records) == 0 {
		r.logger.Info("User has no reading history, skipping", "userID", userID)
		return nil
	}

	history := r.buildReadingHistory(ctx, records)

	analysis, err := r.runConversation(ctx, assistantID, userID,
		prompt.Render(prompt.InterestAnalysisPrompt, map[string]string{"reading_history": history}),
		assistant.ModeInterestAnalysis)
	if err != nil {
		return err
	}

	recommendation, err := r.runConversation(ctx, assistantID, userID,
		prompt.Render(prompt.RecommendationPrompt, map[string]string{"reading_history": history}),
		assistant.ModeRecommendation)
	if err != nil {
		return err
	}

	r.printUserReport(userID, analysis, recommendation)

	if r.metrics != nil {
		if summary, err := r.ledger.UserSummary(userID); err == nil {
			r.metrics.RecordUserProcessed(ctx, userID, summary.TotalCost, len(recommendation.Books))
		}
	}
	return nil
}

// buildReadingHistory renders the user's records most recent first. A book
// whose description cannot be fetched gets the fallback text and a warning;
// it never aborts the batch.
func (r *Recommender) buildReadingHistory(ctx context.Context, records []bookrec.ReadingRecord) string {
	var builder strings.Builder
	for _, record := range records {
		description, err := r.catalogRepo.GetBookDescription(ctx, record.BookID)
		if err != nil {
			r.logger.Warn("Failed to fetch book description",
				"bookID", record.BookID, "title", record.Title, "error", err)
			description = prompt.NoDescriptionFallback
		}
		builder.WriteString(prompt.Render(prompt.ReadingHistoryRecord, map[string]string{
			"event_time": record.ReadAt.Format(time.RFC3339),
			"book_title": record.Title,
			"book_desc":  description,
		}))
	}
	return builder.String()
}

// runConversation drives one thread/message/run round trip through the
// monitor. Recommendation runs force the file-search tool so the answer is
// grounded in the uploaded catalog.
func (r *Recommender) runConversation(ctx context.Context, assistantID, userID, message string, mode assistant.Mode) (*assistant.RunResult, error) {
	threadID, err := r.platform.CreateThread(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	if err := r.platform.PostUserMessage(ctx, threadID, message); err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}

	forceFileSearch := mode == assistant.ModeRecommendation
	runID, err := r.platform.StartRun(ctx, threadID, assistantID, forceFileSearch)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	r.logger.Debug("Started run", "userID", userID, "threadID", threadID, "runID", runID, "operation", mode.Label())
	return r.monitor.Await(ctx, userID, threadID, runID, mode, len(message))
}

func (r *Recommender) printUserReport(userID string, analysis, recommendation *assistant.RunResult) {
	fmt.Fprintf(r.out, "\nUser %s\n", userID)

	interests := analysis.Summary
	if interests == "" {
		interests = analysis.RawText
	}
	fmt.Fprintf(r.out, "Interests: %s\n", interests)

	if len(recommendation.Books) == 0 {
		if recommendation.RawText != "" {
			fmt.Fprintf(r.out, "Recommendations (unstructured):\n%s\n", recommendation.RawText)
		} else {
			fmt.Fprintln(r.out, "No recommendations produced.")
		}
		return
	}

	fmt.Fprintln(r.out, "Recommended books:")
	for _, book := range recommendation.Books {
		fmt.Fprintf(r.out, "  - %s\n    %s%s\n    %s\n", book.Title, bookLinkBase, book.BookID, book.Reason)
	}
}
