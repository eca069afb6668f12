package mcp

import (
	"context"

	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/core/ports/driving"
)

// mockMemoryService is a mock implementation of driving.MemoryService.
type mockMemoryService struct {
	chunks         []domain.Chunk
	stats          *domain.MemoryStats
	err            error
	deletedSources []string
}

func (m *mockMemoryService) ChunkAndIndex(
	_ context.Context,
	_, _, _ string,
) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockMemoryService) DeleteSource(_ context.Context, sourceID string) error {
	if m.err != nil {
		return m.err
	}
	m.deletedSources = append(m.deletedSources, sourceID)
	return nil
}

func (m *mockMemoryService) Stats(_ context.Context) (*domain.MemoryStats, error) {
	return m.stats, m.err
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	response *domain.SearchResponse
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.response == nil {
		return &domain.SearchResponse{}, nil
	}
	return m.response, nil
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings []driving.Setting
	err      error
}

func (m *mockSettingsService) List() []driving.Setting {
	return m.settings
}

func (m *mockSettingsService) Get(_ string) (string, error) {
	return "", m.err
}

func (m *mockSettingsService) Set(_, _ string) error {
	return m.err
}

func (m *mockSettingsService) SetWeights(_, _ float64) error {
	return m.err
}
