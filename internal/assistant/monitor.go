// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/pickatale/bookrec"
	"github.com/pickatale/bookrec/internal/monitoring"
)

// Mode selects which of the two conversations the monitor is driving.
type Mode int

const (
	// ModeInterestAnalysis expects a free-text interest summary.
	ModeInterestAnalysis Mode = iota
	// ModeRecommendation expects a structured book list.
	ModeRecommendation
)

// Label is the operation label usage records are filed under.
func (m Mode) Label() string {
	if m == ModeRecommendation {
		return "Book Recommendations"
	}
	return "Interest Analysis"
}

// estimatedCharsPerToken approximates tokens from text length when the
// platform omits usage statistics on a completed run.
const estimatedCharsPerToken = 4

// citationMarkers matches the footnote artifacts file_search injects into
// generated text, e.g. 【4:2†source】.
var citationMarkers = regexp.MustCompile(`【\d+:\d+†source】`)

// StripCitations removes file_search citation markers and surrounding
// whitespace.
func StripCitations(text string) string {
	return strings.TrimSpace(citationMarkers.ReplaceAllString(text, ""))
}

// RunResult is what a monitored run produced. Summary is set in interest
// mode, Books in recommendation mode; RawText carries the assistant's last
// message when only the degenerate fallback path yielded anything.
type RunResult struct {
	Summary string
	Books   []bookrec.RecommendedBook
	RawText string
}

// recommendArguments mirrors the recommend_books function-call payload.
type recommendArguments struct {
	RecommendationSummary string                    `json:"recommendation_summary"`
	RecommendedBooks      []bookrec.RecommendedBook `json:"recommended_books"`
}

// Monitor polls a started run to completion, dispatching the
// recommend_books round trip and recording token usage for completed runs.
type Monitor struct {
	platform     Platform
	ledger       bookrec.UsageLedger
	logger       *slog.Logger
	metrics      *monitoring.PipelineMetrics
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// MonitorOption configures Monitor behavior
type MonitorOption func(*Monitor)

// WithMonitorLogger sets the logger for the monitor
func WithMonitorLogger(logger *slog.Logger) MonitorOption {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// WithMonitorMetrics sets the metrics for the monitor
func WithMonitorMetrics(metrics *monitoring.PipelineMetrics) MonitorOption {
	return func(m *Monitor) {
		m.metrics = metrics
	}
}

// WithPollInterval sets the delay between status polls
func WithPollInterval(interval time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.pollInterval = interval
	}
}

// WithPollTimeout bounds the total wait for a terminal status
func WithPollTimeout(timeout time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.pollTimeout = timeout
	}
}

// NewMonitor creates a new Monitor instance
func NewMonitor(platform Platform, usageLedger bookrec.UsageLedger, options ...MonitorOption) *Monitor {
	m := &Monitor{
		platform:     platform,
		ledger:       usageLedger,
		logger:       slog.Default(),
		pollInterval: 2 * time.Second,
		pollTimeout:  10 * time.Minute,
	}

	for _, opt := range options {
		opt(m)
	}

	return m
}

// Await polls the run on the configured interval until it reaches a
// terminal state or the deadline passes. promptChars is the length of the
// user prompt, used only for the estimation fallback when the platform
// reports no usage.
//
// State machine: in_progress -> requires_action -> in_progress (after the
// tool outputs are resubmitted) -> completed | failed | cancelled. Exceeding
// the deadline surfaces bookrec.ErrRunTimeout so callers can tell a stalled
// platform from a genuine failure.
func (m *Monitor) Await(ctx context.Context, userID, threadID, runID string, mode Mode, promptChars int) (*RunResult, error) {
	start := time.Now()
	deadline := start.Add(m.pollTimeout)
	result := &RunResult{}

	for {
		state, err := m.platform.GetRun(ctx, threadID, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to poll run %s: %w", runID, err)
		}
		m.logger.Debug("Run status", "runID", runID, "status", state.Status)

		switch state.Status {
		case RunStatusCompleted:
			if err := m.recordUsage(ctx, userID, threadID, state, mode, promptChars); err != nil {
				return nil, err
			}
			if m.metrics != nil {
				m.metrics.RecordRunDuration(ctx, mode.Label(), time.Since(start))
			}
			return m.resolveResult(ctx, threadID, mode, result)

		case RunStatusFailed:
			return nil, fmt.Errorf("run %s: %w", runID, bookrec.ErrRunFailed)

		case RunStatusCancelled:
			return nil, fmt.Errorf("run %s: %w", runID, bookrec.ErrRunCancelled)

		case RunStatusRequiresAction:
			// Resubmission flips the run back to in_progress. The deadline
			// check below still applies: a run stuck in requires_action with
			// nothing to submit must time out, not spin.
			if err := m.handleRequiredAction(ctx, threadID, runID, state.ToolCalls, result); err != nil {
				return nil, err
			}
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("run %s did not finish within %s: %w", runID, m.pollTimeout, bookrec.ErrRunTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.pollInterval):
		}
	}
}

// handleRequiredAction parses every recommend_books call, captures its
// payload into result and acknowledges the calls in a single submission.
func (m *Monitor) handleRequiredAction(ctx context.Context, threadID, runID string, calls []ToolCall, result *RunResult) error {
	var outputs []ToolOutput

	for _, call := range calls {
		if call.Name != RecommendFunctionName {
			m.logger.Warn("Ignoring unexpected tool call", "name", call.Name, "runID", runID)
			continue
		}

		var args recommendArguments
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return fmt.Errorf("failed to parse %s arguments: %w", RecommendFunctionName, err)
		}

		result.Summary = StripCitations(args.RecommendationSummary)
		result.Books = result.Books[:0]
		for _, book := range args.RecommendedBooks {
			book.Title = StripCitations(book.Title)
			book.Reason = StripCitations(book.Reason)
			result.Books = append(result.Books, book)
		}

		echo, err := json.Marshal(recommendArguments{
			RecommendationSummary: result.Summary,
			RecommendedBooks:      result.Books,
		})
		if err != nil {
			return fmt.Errorf("failed to encode tool output: %w", err)
		}
		outputs = append(outputs, ToolOutput{ToolCallID: call.ID, Output: string(echo)})
	}

	if len(outputs) == 0 {
		return nil
	}
	if err := m.platform.SubmitToolOutputs(ctx, threadID, runID, outputs); err != nil {
		return fmt.Errorf("failed to submit tool outputs: %w", err)
	}
	return nil
}

// recordUsage files the run's token usage with the ledger. When the
// platform reports none, an approximation from character counts is recorded
// under a label with an "(Est.)" suffix.
func (m *Monitor) recordUsage(ctx context.Context, userID, threadID string, state *RunState, mode Mode, promptChars int) error {
	usage := bookrec.TokenUsage{Operation: mode.Label()}

	if state.Usage != nil {
		usage.PromptTokens = state.Usage.PromptTokens
		usage.CompletionTokens = state.Usage.CompletionTokens
		usage.TotalTokens = state.Usage.TotalTokens
	} else {
		message, err := m.platform.LatestAssistantMessage(ctx, threadID)
		if err != nil {
			m.logger.Warn("Could not fetch message for usage estimation", "error", err)
		}
		usage.Operation = mode.Label() + " (Est.)"
		usage.PromptTokens = int64(promptChars / estimatedCharsPerToken)
		usage.CompletionTokens = int64(len(message) / estimatedCharsPerToken)
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
		m.logger.Warn("Run reported no usage, recording estimate",
			"operation", usage.Operation,
			"promptTokens", usage.PromptTokens,
			"completionTokens", usage.CompletionTokens)
	}

	m.ledger.RecordUsage(userID, usage)
	if m.metrics != nil {
		m.metrics.RecordTokenUsage(ctx, usage.Operation, usage.PromptTokens, usage.CompletionTokens)
	}
	return nil
}

// resolveResult returns the mode's expected payload, falling back to the
// thread's latest assistant message when the function-call path never
// populated it.
func (m *Monitor) resolveResult(ctx context.Context, threadID string, mode Mode, result *RunResult) (*RunResult, error) {
	if mode == ModeInterestAnalysis && result.Summary != "" {
		return result, nil
	}
	if mode == ModeRecommendation && len(result.Books) > 0 {
		return result, nil
	}

	message, err := m.platform.LatestAssistantMessage(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("run completed without a %s call and the thread could not be read: %w", RecommendFunctionName, err)
	}
	message = StripCitations(message)
	result.RawText = message

	switch mode {
	case ModeRecommendation:
		if books := parseBooksFromText(message); len(books) > 0 {
			result.Books = books
			return result, nil
		}
		m.logger.Warn("Recommendation run produced no structured books, returning raw text")
	case ModeInterestAnalysis:
		result.Summary = message
	}
	return result, nil
}

// parseBooksFromText is the degraded last-resort extraction for runs that
// finished without invoking the function tool: it scans the message for
// book_id / title / reason lines. Best effort only.
func parseBooksFromText(text string) []bookrec.RecommendedBook {
	var books []bookrec.RecommendedBook
	var current *bookrec.RecommendedBook

	flush := func() {
		if current != nil && current.BookID != "" {
			books = append(books, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "-*• \t")
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, "book_id:"):
			flush()
			current = &bookrec.RecommendedBook{BookID: strings.TrimSpace(line[len("book_id:"):])}
		case strings.HasPrefix(lower, "book_title:"):
			if current != nil {
				current.Title = strings.TrimSpace(line[len("book_title:"):])
			}
		case strings.HasPrefix(lower, "title:"):
			if current != nil {
				current.Title = strings.TrimSpace(line[len("title:"):])
			}
		case strings.HasPrefix(lower, "reason:"):
			if current != nil {
				current.Reason = strings.TrimSpace(line[len("reason:"):])
			}
		}
	}
	flush()
	return books
}
