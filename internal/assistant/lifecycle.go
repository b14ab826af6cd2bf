// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pickatale/bookrec/internal/prompt"
)

const (
	assistantName   = "Book Recommender"
	vectorStoreName = "Library Vector Store"

	// RecommendFunctionName is the function tool the assistant calls to hand
	// back its analysis and recommendations.
	RecommendFunctionName = "recommend_books"
)

// Lifecycle creates and tears down the remote assistant and its vector
// store.
type Lifecycle struct {
	platform Platform
	model    string
	logger   *slog.Logger
}

// LifecycleOption configures Lifecycle behavior
type LifecycleOption func(*Lifecycle)

// WithLifecycleLogger sets the logger for the lifecycle manager
func WithLifecycleLogger(logger *slog.Logger) LifecycleOption {
	return func(l *Lifecycle) {
		l.logger = logger
	}
}

// NewLifecycle creates a new Lifecycle instance
func NewLifecycle(platform Platform, model string, options ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		platform: platform,
		model:    model,
		logger:   slog.Default(),
	}

	for _, opt := range options {
		opt(l)
	}

	return l
}

// CreateIndexWithFile creates a vector store, uploads the file at path and
// links it in. Any failure propagates: a partially built index leaves the
// assistant unusable, so the caller must treat errors as fatal.
func (l *Lifecycle) CreateIndexWithFile(ctx context.Context, path string) (string, error) {
	vectorStoreID, err := l.platform.CreateVectorStore(ctx, vectorStoreName)
	if err != nil {
		return "", err
	}

	fileID, err := l.platform.UploadFile(ctx, path)
	if err != nil {
		return "", err
	}

	if err := l.platform.LinkFileToVectorStore(ctx, vectorStoreID, fileID); err != nil {
		return "", err
	}

	l.logger.Info("Linked catalog file to vector store", "vectorStoreID", vectorStoreID, "fileID", fileID)
	return vectorStoreID, nil
}

// EnsureAssistant builds the vector store from the catalog file and creates
// the assistant bound to it, with file search and the recommend_books
// function tool. Returns the assistant ID.
func (l *Lifecycle) EnsureAssistant(ctx context.Context, catalogPath string) (string, error) {
	vectorStoreID, err := l.CreateIndexWithFile(ctx, catalogPath)
	if err != nil {
		return "", fmt.Errorf("failed to build catalog index: %w", err)
	}

	assistantID, err := l.platform.CreateAssistant(ctx, AssistantConfig{
		Name:          assistantName,
		Instructions:  prompt.AssistantInstruction,
		Model:         l.model,
		VectorStoreID: vectorStoreID,
		Function: FunctionTool{
			Name:        RecommendFunctionName,
			Description: prompt.RecommendFunctionDescription,
			Parameters:  recommendFunctionParameters(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create assistant: %w", err)
	}
	return assistantID, nil
}

// DeleteAssistant tears down the assistant and every linked vector store
// with its files. Teardown is best-effort cost hygiene: every step is
// guarded independently, and failures are collected and returned as
// warnings instead of raised, so one stuck resource never blocks the rest.
func (l *Lifecycle) DeleteAssistant(ctx context.Context, assistantID string) []error {
	var warnings []error

	vectorStoreIDs, err := l.platform.AssistantVectorStoreIDs(ctx, assistantID)
	if err != nil {
		warnings = append(warnings, err)
	}
	l.logger.Info("Deleting assistant", "assistantID", assistantID, "vectorStores", len(vectorStoreIDs))

	if err := l.platform.DeleteAssistant(ctx, assistantID); err != nil {
		warnings = append(warnings, err)
	}

	for _, vectorStoreID := range vectorStoreIDs {
		fileIDs, err := l.platform.ListVectorStoreFiles(ctx, vectorStoreID)
		if err != nil {
			warnings = append(warnings, err)
		}
		for _, fileID := range fileIDs {
			if err := l.platform.DeleteVectorStoreFile(ctx, vectorStoreID, fileID); err != nil {
				warnings = append(warnings, err)
			}
		}
		if err := l.platform.DeleteVectorStore(ctx, vectorStoreID); err != nil {
			warnings = append(warnings, err)
		}
	}

	return warnings
}

// recommendFunctionParameters is the JSON schema of the recommend_books
// function tool.
func recommendFunctionParameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recommendation_summary": map[string]any{
				"type":        "string",
				"description": prompt.RecommendSummaryDescription,
			},
			"recommended_books": map[string]any{
				"type":        "array",
				"description": "Recommended books: book_id, book_title and the reason for each.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"book_id":    map[string]any{"type": "string", "description": "book_id in the library catalog"},
						"book_title": map[string]any{"type": "string", "description": "book_title in the library catalog"},
						"reason":     map[string]any{"type": "string", "description": "Reason for the recommendation"},
					},
				},
			},
		},
		"required": []string{"recommendation_summary", "recommended_books"},
	}
}
