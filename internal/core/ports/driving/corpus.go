package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// CorpusService manages the single active corpus.
type CorpusService interface {
	// Ingest builds a corpus from the source and replaces the active one.
	// Ingesting the identifier that is already loaded returns the existing
	// chunk count without rebuilding. On failure the active corpus is untouched.
	Ingest(ctx context.Context, source domain.Source) (domain.IngestResult, error)

	// Refresh behaves like Ingest but always rebuilds, even for the loaded identifier.
	Refresh(ctx context.Context, source domain.Source) (domain.IngestResult, error)

	// Query returns up to k chunks most similar to text.
	Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error)

	// Clear discards the active corpus. Clearing an empty manager is a no-op.
	Clear()

	// Status reports the active corpus.
	Status() domain.Status
}
