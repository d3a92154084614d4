// Package cache memoises query embeddings in a bounded LRU.
package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService caches single-text embeddings from the wrapped service.
// Batch calls are passed through untouched.
type EmbeddingService struct {
	driven.EmbeddingService

	entries *lru.Cache[string, []float32]
	hits    atomic.Int64
	misses  atomic.Int64
}

// New wraps inner with an LRU of the given size.
func New(inner driven.EmbeddingService, size int) (*EmbeddingService, error) {
	entries, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &EmbeddingService{
		EmbeddingService: inner,
		entries:          entries,
	}, nil
}

// Embed returns a cached vector or computes and stores one.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := s.entries.Get(text); ok {
		s.hits.Add(1)
		return clone(vec), nil
	}
	s.misses.Add(1)

	vec, err := s.EmbeddingService.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.entries.Add(text, clone(vec))
	return vec, nil
}

// Purge drops every cached vector.
func (s *EmbeddingService) Purge() {
	s.entries.Purge()
}

// Len returns the number of cached vectors.
func (s *EmbeddingService) Len() int {
	return s.entries.Len()
}

// Stats returns cache hit and miss counts.
func (s *EmbeddingService) Stats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}

func clone(vec []float32) []float32 {
	return append([]float32(nil), vec...)
}
