// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package assistant

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockPlatform struct {
	mock.Mock
}

func (m *mockPlatform) CreateVectorStore(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *mockPlatform) UploadFile(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *mockPlatform) LinkFileToVectorStore(ctx context.Context, vectorStoreID, fileID string) error {
	args := m.Called(ctx, vectorStoreID, fileID)
	return args.Error(0)
}

func (m *mockPlatform) CreateAssistant(ctx context.Context, cfg AssistantConfig) (string, error) {
	args := m.Called(ctx, cfg)
	return args.String(0), args.Error(1)
}

func (m *mockPlatform) AssistantVectorStoreIDs(ctx context.Context, assistantID string) ([]string, error) {
	args := m.Called(ctx, assistantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockPlatform) DeleteAssistant(ctx context.Context, assistantID string) error {
	args := m.Called(ctx, assistantID)
	return args.Error(0)
}

func (m *mockPlatform) ListVectorStoreFiles(ctx context.Context, vectorStoreID string) ([]string, error) {
	args := m.Called(ctx, vectorStoreID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockPlatform) DeleteVectorStoreFile(ctx context.Context, vectorStoreID, fileID string) error {
	args := m.Called(ctx, vectorStoreID, fileID)
	return args.Error(0)
}

func (m *mockPlatform) DeleteVectorStore(ctx context.Context, vectorStoreID string) error {
	args := m.Called(ctx, vectorStoreID)
	return args.Error(0)
}

func (m *mockPlatform) CreateThread(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockPlatform) PostUserMessage(ctx context.Context, threadID, content string) error {
	args := m.Called(ctx, threadID, content)
	return args.Error(0)
}

func (m *mockPlatform) StartRun(ctx context.Context, threadID, assistantID string, forceFileSearch bool) (string, error) {
	args := m.Called(ctx, threadID, assistantID, forceFileSearch)
	return args.String(0), args.Error(1)
}

func (m *mockPlatform) GetRun(ctx context.Context, threadID, runID string) (*RunState, error) {
	args := m.Called(ctx, threadID, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RunState), args.Error(1)
}

func (m *mockPlatform) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error {
	args := m.Called(ctx, threadID, runID, outputs)
	return args.Error(0)
}

func (m *mockPlatform) LatestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	args := m.Called(ctx, threadID)
	return args.String(0), args.Error(1)
}
