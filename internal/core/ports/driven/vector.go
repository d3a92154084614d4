package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// VectorIndexBuilder constructs a searchable index for one corpus.
type VectorIndexBuilder interface {
	// Build indexes chunks and their vectors, which must be parallel slices.
	// An empty collection fails with domain.ErrEmptyCorpus.
	Build(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) (VectorIndex, error)
}

// VectorIndex is an immutable similarity index over a single corpus.
type VectorIndex interface {
	// Search returns up to k chunks ordered by decreasing similarity.
	// Ties keep insertion order. k <= 0 fails with domain.ErrInvalidArgument.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// Len returns the number of indexed chunks.
	Len() int

	// Dimensions returns the vector size shared by every indexed vector.
	Dimensions() int
}
