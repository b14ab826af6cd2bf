// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIPlatform implements [Platform] against the OpenAI Assistants API.
type OpenAIPlatform struct {
	client openai.Client
	logger *slog.Logger
}

// OpenAIPlatformOption configures OpenAIPlatform behavior
type OpenAIPlatformOption func(*OpenAIPlatform)

// WithOpenAIPlatformLogger sets the logger for the platform client
func WithOpenAIPlatformLogger(logger *slog.Logger) OpenAIPlatformOption {
	return func(p *OpenAIPlatform) {
		p.logger = logger
	}
}

// NewOpenAIPlatform creates a platform client authenticated with apiKey.
func NewOpenAIPlatform(apiKey string, options ...OpenAIPlatformOption) *OpenAIPlatform {
	p := &OpenAIPlatform{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		logger: slog.Default(),
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

func (p *OpenAIPlatform) CreateVectorStore(ctx context.Context, name string) (string, error) {
	store, err := p.client.VectorStores.New(ctx, openai.VectorStoreNewParams{
		Name: openai.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create vector store: %w", err)
	}
	p.logger.Info("Created vector store", "vectorStoreID", store.ID)
	return store.ID, nil
}

func (p *OpenAIPlatform) UploadFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for upload: %w", err)
	}
	defer file.Close()

	uploaded, err := p.client.Files.New(ctx, openai.FileNewParams{
		File:    file,
		Purpose: openai.FilePurposeAssistants,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	p.logger.Info("Uploaded file", "fileID", uploaded.ID)
	return uploaded.ID, nil
}

func (p *OpenAIPlatform) LinkFileToVectorStore(ctx context.Context, vectorStoreID, fileID string) error {
	_, err := p.client.VectorStores.Files.New(ctx, vectorStoreID, openai.VectorStoreFileNewParams{
		FileID: fileID,
	})
	if err != nil {
		return fmt.Errorf("failed to link file %s to vector store %s: %w", fileID, vectorStoreID, err)
	}
	return nil
}

func (p *OpenAIPlatform) CreateAssistant(ctx context.Context, cfg AssistantConfig) (string, error) {
	created, err := p.client.Beta.Assistants.New(ctx, openai.BetaAssistantNewParams{
		Model:        shared.ChatModel(cfg.Model),
		Name:         openai.String(cfg.Name),
		Instructions: openai.String(cfg.Instructions),
		Tools: []openai.AssistantToolUnionParam{
			{OfFileSearch: &openai.FileSearchToolParam{}},
			{OfFunction: &openai.FunctionToolParam{
				Function: shared.FunctionDefinitionParam{
					Name:        cfg.Function.Name,
					Description: openai.String(cfg.Function.Description),
					Parameters:  shared.FunctionParameters(cfg.Function.Parameters),
				},
			}},
		},
		ToolResources: openai.BetaAssistantNewParamsToolResources{
			FileSearch: openai.BetaAssistantNewParamsToolResourcesFileSearch{
				VectorStoreIDs: []string{cfg.VectorStoreID},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create assistant: %w", err)
	}
	p.logger.Info("Created assistant", "assistantID", created.ID, "model", cfg.Model)
	return created.ID, nil
}

func (p *OpenAIPlatform) AssistantVectorStoreIDs(ctx context.Context, assistantID string) ([]string, error) {
	a, err := p.client.Beta.Assistants.Get(ctx, assistantID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve assistant %s: %w", assistantID, err)
	}
	return a.ToolResources.FileSearch.VectorStoreIDs, nil
}

func (p *OpenAIPlatform) DeleteAssistant(ctx context.Context, assistantID string) error {
	if _, err := p.client.Beta.Assistants.Delete(ctx, assistantID); err != nil {
		return fmt.Errorf("failed to delete assistant %s: %w", assistantID, err)
	}
	return nil
}

func (p *OpenAIPlatform) ListVectorStoreFiles(ctx context.Context, vectorStoreID string) ([]string, error) {
	page, err := p.client.VectorStores.Files.List(ctx, vectorStoreID, openai.VectorStoreFileListParams{})
	if err != nil {
		return nil, fmt.Errorf("failed to list files of vector store %s: %w", vectorStoreID, err)
	}

	fileIDs := make([]string, 0, len(page.Data))
	for _, file := range page.Data {
		fileIDs = append(fileIDs, file.ID)
	}
	return fileIDs, nil
}

func (p *OpenAIPlatform) DeleteVectorStoreFile(ctx context.Context, vectorStoreID, fileID string) error {
	_, err := p.client.VectorStores.Files.Delete(ctx, vectorStoreID, fileID)
	if err != nil {
		return fmt.Errorf("failed to delete file %s from vector store %s: %w", fileID, vectorStoreID, err)
	}
	return nil
}

func (p *OpenAIPlatform) DeleteVectorStore(ctx context.Context, vectorStoreID string) error {
	if _, err := p.client.VectorStores.Delete(ctx, vectorStoreID); err != nil {
		return fmt.Errorf("failed to delete vector store %s: %w", vectorStoreID, err)
	}
	return nil
}

func (p *OpenAIPlatform) CreateThread(ctx context.Context) (string, error) {
	thread, err := p.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	p.logger.Debug("Created thread", "threadID", thread.ID)
	return thread.ID, nil
}

func (p *OpenAIPlatform) PostUserMessage(ctx context.Context, threadID, content string) error {
	_, err := p.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRoleUser,
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(content),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to post message to thread %s: %w", threadID, err)
	}
	return nil
}

func (p *OpenAIPlatform) StartRun(ctx context.Context, threadID, assistantID string, forceFileSearch bool) (string, error) {
	params := openai.BetaThreadRunNewParams{
		AssistantID: assistantID,
	}
	if forceFileSearch {
		params.ToolChoice = openai.AssistantToolChoiceOptionUnionParam{
			OfAssistantToolChoice: &openai.AssistantToolChoiceParam{
				Type: openai.AssistantToolChoiceTypeFileSearch,
			},
		}
	}

	run, err := p.client.Beta.Threads.Runs.New(ctx, threadID, params)
	if err != nil {
		return "", fmt.Errorf("failed to start run on thread %s: %w", threadID, err)
	}
	p.logger.Debug("Started run", "threadID", threadID, "runID", run.ID, "forceFileSearch", forceFileSearch)
	return run.ID, nil
}

func (p *OpenAIPlatform) GetRun(ctx context.Context, threadID, runID string) (*RunState, error) {
	run, err := p.client.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve run %s: %w", runID, err)
	}

	state := &RunState{Status: mapRunStatus(run.Status)}

	for _, call := range run.RequiredAction.SubmitToolOutputs.ToolCalls {
		state.ToolCalls = append(state.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}

	if run.Usage.TotalTokens > 0 {
		state.Usage = &RunUsage{
			PromptTokens:     run.Usage.PromptTokens,
			CompletionTokens: run.Usage.CompletionTokens,
			TotalTokens:      run.Usage.TotalTokens,
		}
	}

	return state, nil
}

func (p *OpenAIPlatform) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error {
	var params openai.BetaThreadRunSubmitToolOutputsParams
	for _, output := range outputs {
		params.ToolOutputs = append(params.ToolOutputs, openai.BetaThreadRunSubmitToolOutputsParamsToolOutput{
			ToolCallID: openai.String(output.ToolCallID),
			Output:     openai.String(output.Output),
		})
	}

	if _, err := p.client.Beta.Threads.Runs.SubmitToolOutputs(ctx, threadID, runID, params); err != nil {
		return fmt.Errorf("failed to submit tool outputs for run %s: %w", runID, err)
	}
	return nil
}

func (p *OpenAIPlatform) LatestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	page, err := p.client.Beta.Threads.Messages.List(ctx, threadID, openai.BetaThreadMessageListParams{
		Order: openai.BetaThreadMessageListParamsOrderDesc,
		Limit: openai.Int(10),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list messages of thread %s: %w", threadID, err)
	}

	for _, message := range page.Data {
		if message.Role != openai.MessageRoleAssistant {
			continue
		}
		var text strings.Builder
		for _, block := range message.Content {
			if block.Type == "text" {
				text.WriteString(block.Text.Value)
			}
		}
		return text.String(), nil
	}
	return "", nil
}

// mapRunStatus collapses the remote status set onto the monitor's states.
// Expired and incomplete runs count as failed; cancelling is still
// non-terminal.
func mapRunStatus(status openai.RunStatus) RunStatus {
	switch status {
	case openai.RunStatusCompleted:
		return RunStatusCompleted
	case openai.RunStatusRequiresAction:
		return RunStatusRequiresAction
	case openai.RunStatusFailed, openai.RunStatusExpired, openai.RunStatusIncomplete:
		return RunStatusFailed
	case openai.RunStatusCancelled:
		return RunStatusCancelled
	default:
		return RunStatusInProgress
	}
}
