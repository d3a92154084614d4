// Package lazy defers construction of an embedding service until first use.
//
// Concurrent first callers share a single initialisation attempt. A failed
// attempt is not remembered: the next call tries again.
package lazy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Factory constructs the underlying service.
type Factory func(ctx context.Context) (driven.EmbeddingService, error)

// EmbeddingService wraps a Factory and initialises it exactly once.
type EmbeddingService struct {
	model      string
	dimensions int
	factory    Factory

	group singleflight.Group
	mu    sync.RWMutex
	svc   driven.EmbeddingService
}

// New returns a lazily initialised service. model and dimensions are
// reported until the real service exists.
func New(model string, dimensions int, factory Factory) *EmbeddingService {
	return &EmbeddingService{
		model:      model,
		dimensions: dimensions,
		factory:    factory,
	}
}

// Initialised reports whether the underlying service has been created.
func (s *EmbeddingService) Initialised() bool {
	return s.current() != nil
}

// Warm initialises the service eagerly.
func (s *EmbeddingService) Warm(ctx context.Context) error {
	_, err := s.get(ctx)
	return err
}

func (s *EmbeddingService) current() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.svc
}

func (s *EmbeddingService) get(ctx context.Context) (driven.EmbeddingService, error) {
	if svc := s.current(); svc != nil {
		return svc, nil
	}

	// The load outlives the context of the caller that started it.
	ch := s.group.DoChan("init", func() (any, error) {
		if svc := s.current(); svc != nil {
			return svc, nil
		}

		done := logger.Timed("embedding model load")
		svc, err := s.factory(context.WithoutCancel(ctx))
		done()
		if err != nil {
			if errors.Is(err, domain.ErrEmbeddingUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}

		s.mu.Lock()
		s.svc = svc
		s.mu.Unlock()
		logger.Info("Loaded embedding model %s", svc.ModelName())
		return svc, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(driven.EmbeddingService), nil
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	svc, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	return svc.Embed(ctx, text)
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	svc, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	return svc.EmbedBatch(ctx, texts)
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	if svc := s.current(); svc != nil {
		return svc.Dimensions()
	}
	return s.dimensions
}

// ModelName returns the configured model identifier.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping initialises the service if needed and checks it is reachable.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	svc, err := s.get(ctx)
	if err != nil {
		return err
	}
	return svc.Ping(ctx)
}

// Close releases the underlying service, if one was created.
func (s *EmbeddingService) Close() error {
	s.mu.Lock()
	svc := s.svc
	s.svc = nil
	s.mu.Unlock()

	if svc == nil {
		return nil
	}
	return svc.Close()
}
