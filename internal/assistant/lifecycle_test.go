// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLifecycle_EnsureAssistant(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		platform := &mockPlatform{}
		platform.On("CreateVectorStore", mock.Anything, vectorStoreName).Return("vs-1", nil)
		platform.On("UploadFile", mock.Anything, "/tmp/catalog.json").Return("file-1", nil)
		platform.On("LinkFileToVectorStore", mock.Anything, "vs-1", "file-1").Return(nil)
		platform.On("CreateAssistant", mock.Anything, mock.MatchedBy(func(cfg AssistantConfig) bool {
			return cfg.Model == "gpt-4o" &&
				cfg.VectorStoreID == "vs-1" &&
				cfg.Function.Name == RecommendFunctionName &&
				cfg.Instructions != ""
		})).Return("asst-1", nil)

		lifecycle := NewLifecycle(platform, "gpt-4o")
		assistantID, err := lifecycle.EnsureAssistant(context.Background(), "/tmp/catalog.json")
		require.NoError(t, err)
		assert.Equal(t, "asst-1", assistantID)
		platform.AssertExpectations(t)
	})

	t.Run("upload failure leaves assistant unusable", func(t *testing.T) {
		platform := &mockPlatform{}
		platform.On("CreateVectorStore", mock.Anything, mock.Anything).Return("vs-1", nil)
		platform.On("UploadFile", mock.Anything, mock.Anything).Return("", errors.New("payload too large"))

		lifecycle := NewLifecycle(platform, "gpt-4o")
		assistantID, err := lifecycle.EnsureAssistant(context.Background(), "/tmp/catalog.json")
		assert.Error(t, err)
		assert.Empty(t, assistantID)
		platform.AssertNotCalled(t, "CreateAssistant", mock.Anything, mock.Anything)
	})

	t.Run("link failure propagates", func(t *testing.T) {
		platform := &mockPlatform{}
		platform.On("CreateVectorStore", mock.Anything, mock.Anything).Return("vs-1", nil)
		platform.On("UploadFile", mock.Anything, mock.Anything).Return("file-1", nil)
		platform.On("LinkFileToVectorStore", mock.Anything, "vs-1", "file-1").Return(errors.New("quota exceeded"))

		lifecycle := NewLifecycle(platform, "gpt-4o")
		_, err := lifecycle.EnsureAssistant(context.Background(), "/tmp/catalog.json")
		assert.Error(t, err)
		platform.AssertNotCalled(t, "CreateAssistant", mock.Anything, mock.Anything)
	})
}

func TestLifecycle_DeleteAssistant(t *testing.T) {
	t.Run("clean teardown yields no warnings", func(t *testing.T) {
		platform := &mockPlatform{}
		platform.On("AssistantVectorStoreIDs", mock.Anything, "asst-1").Return([]string{"vs-1"}, nil)
		platform.On("DeleteAssistant", mock.Anything, "asst-1").Return(nil)
		platform.On("ListVectorStoreFiles", mock.Anything, "vs-1").Return([]string{"file-1", "file-2"}, nil)
		platform.On("DeleteVectorStoreFile", mock.Anything, "vs-1", "file-1").Return(nil)
		platform.On("DeleteVectorStoreFile", mock.Anything, "vs-1", "file-2").Return(nil)
		platform.On("DeleteVectorStore", mock.Anything, "vs-1").Return(nil)

		lifecycle := NewLifecycle(platform, "gpt-4o")
		warnings := lifecycle.DeleteAssistant(context.Background(), "asst-1")
		assert.Empty(t, warnings)
		platform.AssertExpectations(t)
	})

	t.Run("one stuck store does not stop the rest", func(t *testing.T) {
		platform := &mockPlatform{}
		platform.On("AssistantVectorStoreIDs", mock.Anything, "asst-1").Return([]string{"vs-1", "vs-2"}, nil)
		platform.On("DeleteAssistant", mock.Anything, "asst-1").Return(nil)
		platform.On("ListVectorStoreFiles", mock.Anything, "vs-1").Return(nil, errors.New("store gone"))
		platform.On("DeleteVectorStore", mock.Anything, "vs-1").Return(errors.New("store gone"))
		platform.On("ListVectorStoreFiles", mock.Anything, "vs-2").Return([]string{"file-1"}, nil)
		platform.On("DeleteVectorStoreFile", mock.Anything, "vs-2", "file-1").Return(nil)
		platform.On("DeleteVectorStore", mock.Anything, "vs-2").Return(nil)

		lifecycle := NewLifecycle(platform, "gpt-4o")
		warnings := lifecycle.DeleteAssistant(context.Background(), "asst-1")
		assert.Len(t, warnings, 2)
		platform.AssertExpectations(t)
	})

	t.Run("retrieval failure still attempts assistant deletion", func(t *testing.T) {
		platform := &mockPlatform{}
		platform.On("AssistantVectorStoreIDs", mock.Anything, "asst-1").Return(nil, errors.New("unauthorized"))
		platform.On("DeleteAssistant", mock.Anything, "asst-1").Return(nil)

		lifecycle := NewLifecycle(platform, "gpt-4o")
		warnings := lifecycle.DeleteAssistant(context.Background(), "asst-1")
		assert.Len(t, warnings, 1)
		platform.AssertExpectations(t)
	})
}
