// Package memory provides an exact, in-memory vector index.
//
// Search is a brute-force cosine scan. Results are exact for any corpus the
// builder accepts; the builder rejects corpora above its configured ceiling.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure the adapters implement the interfaces.
var (
	_ driven.VectorIndexBuilder = (*Builder)(nil)
	_ driven.VectorIndex        = (*Index)(nil)
)

// Builder creates Index values.
type Builder struct {
	maxChunks int
}

// NewBuilder returns a builder that refuses corpora larger than maxChunks.
// A non-positive maxChunks selects domain.DefaultMaxChunks.
func NewBuilder(maxChunks int) *Builder {
	if maxChunks <= 0 {
		maxChunks = domain.DefaultMaxChunks
	}
	return &Builder{maxChunks: maxChunks}
}

// MaxChunks returns the corpus size ceiling.
func (b *Builder) MaxChunks() int {
	return b.maxChunks
}

// Build indexes chunks with their vectors. Vectors are normalised on the way
// in so search reduces to a dot product.
func (b *Builder) Build(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) (driven.VectorIndex, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%w: %d chunks but %d vectors", domain.ErrInvalidArgument, len(chunks), len(vectors))
	}
	if len(chunks) > b.maxChunks {
		return nil, fmt.Errorf("%w: %d chunks exceeds limit of %d", domain.ErrCorpusTooLarge, len(chunks), b.maxChunks)
	}

	dims := len(vectors[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: vectors have no dimensions", domain.ErrInvalidArgument)
	}

	idx := &Index{
		chunks:  make([]domain.Chunk, len(chunks)),
		vectors: make([][]float32, len(vectors)),
		dims:    dims,
	}
	copy(idx.chunks, chunks)

	for i, vec := range vectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(vec) != dims {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				domain.ErrInvalidArgument, i, len(vec), dims)
		}
		if !finite(vec) {
			return nil, fmt.Errorf("%w: vector %d has a non-finite component", domain.ErrInvalidArgument, i)
		}
		idx.vectors[i] = normalise(vec)
	}
	return idx, nil
}

// Index holds one corpus. It is never modified after Build and is safe
// for concurrent searches.
type Index struct {
	chunks  []domain.Chunk
	vectors [][]float32
	dims    int
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Dimensions returns the vector size.
func (idx *Index) Dimensions() int {
	return idx.dims
}

type hit struct {
	pos   int
	score float64
}

// Search returns the k chunks most similar to query by cosine similarity.
// A zero query vector scores every chunk 0 and so returns insertion order.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrInvalidArgument, len(query), idx.dims)
	}
	if !finite(query) {
		return nil, fmt.Errorf("%w: query has a non-finite component", domain.ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := normalise(query)
	hits := make([]hit, len(idx.vectors))
	for i, vec := range idx.vectors {
		hits[i] = hit{pos: i, score: dot(q, vec)}
	}

	// Stable sort keeps the first-indexed chunk ahead on ties.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].score > hits[b].score
	})

	if k > len(hits) {
		k = len(hits)
	}
	results := make([]domain.ScoredChunk, k)
	for i, h := range hits[:k] {
		results[i] = domain.ScoredChunk{
			Chunk: idx.chunks[h.pos],
			Score: h.score,
			Rank:  i + 1,
		}
	}
	return results, nil
}

// finite reports whether vec has no NaN or infinite components.
// A single NaN score would break the ordering of the whole result list.
func finite(vec []float32) bool {
	for _, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// normalise returns a unit-length copy of vec. Zero vectors stay zero.
func normalise(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	out := make([]float32, len(vec))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
