// Package local provides an in-process embedding service based on feature hashing.
//
// Each text is tokenised into lowercase words; every distinct word is hashed
// (FNV-1a) into one of a fixed number of buckets weighted by 1+ln(tf), and
// the vector is L2-normalised. It needs no model download or network access
// and is fully deterministic, which makes it the default backend.
package local

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "hash-384"
	DefaultDimensions = 384
	modelPrefix       = "hash-"
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// Config holds configuration for the local embedding service.
type Config struct {
	// Model is "hash-<dimensions>" (default: hash-384).
	Model string

	// Dimensions overrides the size encoded in the model name.
	Dimensions int
}

// EmbeddingService generates hashed bag-of-words embeddings.
type EmbeddingService struct {
	model      string
	dimensions int
}

// NewEmbeddingService creates a new local embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if cfg.Dimensions == 0 {
		dims, err := dimensionsFromModel(cfg.Model)
		if err != nil {
			return nil, err
		}
		cfg.Dimensions = dims
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidArgument)
	}

	return &EmbeddingService{
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// dimensionsFromModel parses "hash-<n>".
func dimensionsFromModel(model string) (int, error) {
	suffix, ok := strings.CutPrefix(model, modelPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: unknown local model %q (want %s<dimensions>)",
			domain.ErrInvalidArgument, model, modelPrefix)
	}
	dims, err := strconv.Atoi(suffix)
	if err != nil || dims <= 0 {
		return 0, fmt.Errorf("%w: invalid dimensions in local model %q", domain.ErrInvalidArgument, model)
	}
	return dims, nil
}

// Embed generates a vector embedding for the given text.
// Text without any word tokens maps to the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		counts[tok]++
	}

	// Accumulate in a fixed order so colliding buckets sum identically every time.
	tokens := make([]string, 0, len(counts))
	for tok := range counts {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	acc := make([]float64, s.dimensions)
	for _, tok := range tokens {
		acc[bucket(tok, s.dimensions)] += 1 + math.Log(float64(counts[tok]))
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, s.dimensions)
	if norm == 0 {
		return vec, nil
	}
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping always succeeds; there is nothing to reach.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

func bucket(token string, dims int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(dims))
}
