package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// mockFetcher implements driven.WebFetcher for testing.
type mockFetcher struct {
	doc  *domain.RawDocument
	err  error
	urls []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (*domain.RawDocument, error) {
	m.urls = append(m.urls, url)
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}

// mockExtractor implements driven.Extractor for testing.
// Segments are looked up by source identifier.
type mockExtractor struct {
	mu       sync.Mutex
	segments map[string][]domain.Segment
	err      error
	calls    []string
}

func (m *mockExtractor) Extract(_ context.Context, source domain.Source) ([]domain.Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, source.Identifier)
	if m.err != nil {
		return nil, m.err
	}
	return m.segments[source.Identifier], nil
}

func (m *mockExtractor) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockEmbedder implements driven.EmbeddingService for testing.
// Every text maps to a vector whose first component is its length.
type mockEmbedder struct {
	embedErr error
	batchErr error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return []float32{float32(len(text)), 1}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i], _ = m.Embed(ctx, text)
	}
	return vectors, nil
}

func (m *mockEmbedder) Dimensions() int              { return 2 }
func (m *mockEmbedder) ModelName() string            { return "mock:test" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockBuilder implements driven.VectorIndexBuilder for testing.
type mockBuilder struct {
	err    error
	builds int
}

func (m *mockBuilder) Build(_ context.Context, chunks []domain.Chunk, _ [][]float32) (driven.VectorIndex, error) {
	m.builds++
	if m.err != nil {
		return nil, m.err
	}
	return &mockIndex{chunks: chunks}, nil
}

// mockIndex implements driven.VectorIndex, returning chunks in insertion order.
type mockIndex struct {
	chunks []domain.Chunk
}

func (m *mockIndex) Search(_ context.Context, _ []float32, k int) ([]domain.ScoredChunk, error) {
	if k > len(m.chunks) {
		k = len(m.chunks)
	}
	results := make([]domain.ScoredChunk, k)
	for i := 0; i < k; i++ {
		results[i] = domain.ScoredChunk{Chunk: m.chunks[i], Score: 1, Rank: i + 1}
	}
	return results, nil
}

func (m *mockIndex) Len() int        { return len(m.chunks) }
func (m *mockIndex) Dimensions() int { return 2 }
