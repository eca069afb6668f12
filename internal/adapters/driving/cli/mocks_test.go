package cli

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
	lastContent    string
	lastSourceID   string
	lastClass      string
	deletedSources []string
}

func (m *mockMemoryService) ChunkAndIndex(
	_ context.Context,
	content, sourceID, classification string,
) ([]domain.Chunk, error) {
	m.lastContent = content
	m.lastSourceID = sourceID
	m.lastClass = classification
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
	response  *domain.SearchResponse
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	m.lastQuery = query
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
	settings     []driving.Setting
	value        string
	err          error
	setKey       string
	setValue     string
	weightsPair  [2]float64
	weightsCalls int
}

func (m *mockSettingsService) List() []driving.Setting {
	return m.settings
}

func (m *mockSettingsService) Get(_ string) (string, error) {
	return m.value, m.err
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.setKey = key
	m.setValue = value
	return nil
}

func (m *mockSettingsService) SetWeights(keyword, semantic float64) error {
	if m.err != nil {
		return m.err
	}
	m.weightsPair = [2]float64{keyword, semantic}
	m.weightsCalls++
	return nil
}
