// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package assistant drives the hosted assistant platform: resource
// lifecycle (vector store, catalog file, assistant) and run monitoring.
package assistant

import "context"

// RunStatus is the monitor's view of a run. Every non-terminal remote status
// collapses to RunStatusInProgress.
type RunStatus string

const (
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCancelled      RunStatus = "cancelled"
)

// RunUsage is the token usage the platform reports for a completed run.
type RunUsage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// ToolCall is a function invocation the assistant requires the caller to
// execute before the run can proceed.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolOutput is the caller's response to one ToolCall.
type ToolOutput struct {
	ToolCallID string
	Output     string
}

// RunState is a snapshot of a run as reported by the platform.
type RunState struct {
	Status    RunStatus
	ToolCalls []ToolCall
	Usage     *RunUsage
}

// FunctionTool declares a callable function tool on the assistant.
// Parameters is a JSON schema object.
type FunctionTool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// AssistantConfig describes the assistant resource to create.
type AssistantConfig struct {
	Name          string
	Instructions  string
	Model         string
	VectorStoreID string
	Function      FunctionTool
}

// Platform is the hosted-assistant boundary. Implementations translate these
// operations to the remote API; everything above this interface is testable
// without the network.
type Platform interface {
	CreateVectorStore(ctx context.Context, name string) (string, error)
	UploadFile(ctx context.Context, path string) (string, error)
	LinkFileToVectorStore(ctx context.Context, vectorStoreID, fileID string) error

	CreateAssistant(ctx context.Context, cfg AssistantConfig) (string, error)
	AssistantVectorStoreIDs(ctx context.Context, assistantID string) ([]string, error)
	DeleteAssistant(ctx context.Context, assistantID string) error

	ListVectorStoreFiles(ctx context.Context, vectorStoreID string) ([]string, error)
	DeleteVectorStoreFile(ctx context.Context, vectorStoreID, fileID string) error
	DeleteVectorStore(ctx context.Context, vectorStoreID string) error

	CreateThread(ctx context.Context) (string, error)
	PostUserMessage(ctx context.Context, threadID, content string) error
	StartRun(ctx context.Context, threadID, assistantID string, forceFileSearch bool) (string, error)
	GetRun(ctx context.Context, threadID, runID string) (*RunState, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error
	LatestAssistantMessage(ctx context.Context, threadID string) (string, error)
}
