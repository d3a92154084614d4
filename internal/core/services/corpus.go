package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure CorpusManager implements the interface.
var _ driving.CorpusService = (*CorpusManager)(nil)

// corpus is one built, queryable index and what it was built from.
type corpus struct {
	identifier string
	index      driven.VectorIndex
	ingestedAt time.Time
}

// CorpusManager owns the single active corpus.
type CorpusManager struct {
	extractor driven.Extractor
	splitter  driven.Splitter
	embedder  driven.EmbeddingService
	builder   driven.VectorIndexBuilder

	// ingestMu serialises ingestions so two builds never race to swap.
	ingestMu sync.Mutex

	mu     sync.RWMutex
	active *corpus

	now func() time.Time
}

// NewCorpusManager creates a manager with no active corpus.
func NewCorpusManager(
	extractor driven.Extractor,
	splitter driven.Splitter,
	embedder driven.EmbeddingService,
	builder driven.VectorIndexBuilder,
) *CorpusManager {
	return &CorpusManager{
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		builder:   builder,
		now:       time.Now,
	}
}

// Ingest builds a corpus from the source unless it is already loaded.
func (m *CorpusManager) Ingest(ctx context.Context, source domain.Source) (domain.IngestResult, error) {
	return m.ingest(ctx, source, false)
}

// Refresh rebuilds the corpus from the source even if it is already loaded.
func (m *CorpusManager) Refresh(ctx context.Context, source domain.Source) (domain.IngestResult, error) {
	return m.ingest(ctx, source, true)
}

func (m *CorpusManager) ingest(ctx context.Context, source domain.Source, force bool) (domain.IngestResult, error) {
	if err := source.Validate(); err != nil {
		return domain.IngestResult{}, err
	}

	m.ingestMu.Lock()
	defer m.ingestMu.Unlock()

	if !force {
		if current := m.current(); current != nil && current.identifier == source.Identifier {
			logger.Debug("source %s already loaded, reusing %d chunks", source.Identifier, current.index.Len())
			return domain.IngestResult{
				SourceIdentifier: current.identifier,
				Kind:             source.Kind,
				ChunkCount:       current.index.Len(),
				Reused:           true,
			}, nil
		}
	}

	logger.Section("Ingest " + source.Identifier)
	built, err := m.build(ctx, source)
	if err != nil {
		return domain.IngestResult{}, err
	}

	m.mu.Lock()
	m.active = built
	m.mu.Unlock()

	logger.Info("Stored %d chunks from %s", built.index.Len(), source.Identifier)
	return domain.IngestResult{
		SourceIdentifier: built.identifier,
		Kind:             source.Kind,
		ChunkCount:       built.index.Len(),
	}, nil
}

// build runs extract, split, embed and index without touching the active corpus.
func (m *CorpusManager) build(ctx context.Context, source domain.Source) (*corpus, error) {
	stop := logger.Timed("extract")
	segments, err := m.extractor.Extract(ctx, source)
	stop()
	if err != nil {
		return nil, err
	}

	stop = logger.Timed("split")
	chunks, err := m.splitter.Split(ctx, source.Identifier, segments)
	stop()
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyCorpus, source.Identifier)
	}
	logger.Debug("split %s into %d chunks (size %d, overlap %d)",
		source.Identifier, len(chunks), m.splitter.ChunkSize(), m.splitter.Overlap())

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	stop = logger.Timed("embed")
	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	stop()
	if err != nil {
		return nil, embeddingError(err)
	}

	stop = logger.Timed("index")
	index, err := m.builder.Build(ctx, chunks, vectors)
	stop()
	if err != nil {
		return nil, err
	}

	return &corpus{
		identifier: source.Identifier,
		index:      index,
		ingestedAt: m.now(),
	}, nil
}

// Query embeds text and returns the k most similar chunks.
func (m *CorpusManager) Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidArgument)
	}

	current := m.current()
	if current == nil {
		return nil, domain.ErrNoActiveCorpus
	}

	vector, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, embeddingError(err)
	}

	results, err := current.index.Search(ctx, vector, k)
	if err != nil {
		return nil, err
	}
	logger.Debug("query matched %d chunks in %s", len(results), current.identifier)
	return results, nil
}

// Clear discards the active corpus.
func (m *CorpusManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		logger.Debug("cleared corpus %s", m.active.identifier)
	}
	m.active = nil
}

// Status reports the active corpus.
func (m *CorpusManager) Status() domain.Status {
	current := m.current()
	if current == nil {
		return domain.EmptyStatus()
	}
	return domain.Status{
		State:            domain.CorpusReady,
		SourceIdentifier: current.identifier,
		ChunkCount:       current.index.Len(),
		Model:            m.embedder.ModelName(),
		IngestedAt:       current.ingestedAt,
	}
}

func (m *CorpusManager) current() *corpus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// embeddingError classifies a backend failure, keeping taxonomy errors as they are.
func embeddingError(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
}
