package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	status    domain.Status
	result    domain.IngestResult
	results   []domain.ScoredChunk
	err       error
	ingested  []domain.Source
	refreshed []domain.Source
	lastK     int
	cleared   int
}

func (m *mockCorpusService) Ingest(_ context.Context, source domain.Source) (domain.IngestResult, error) {
	m.ingested = append(m.ingested, source)
	return m.result, m.err
}

func (m *mockCorpusService) Refresh(_ context.Context, source domain.Source) (domain.IngestResult, error) {
	m.refreshed = append(m.refreshed, source)
	return m.result, m.err
}

func (m *mockCorpusService) Query(_ context.Context, _ string, k int) ([]domain.ScoredChunk, error) {
	m.lastK = k
	return m.results, m.err
}

func (m *mockCorpusService) Clear() {
	m.cleared++
	m.status = domain.EmptyStatus()
}

func (m *mockCorpusService) Status() domain.Status {
	return m.status
}
