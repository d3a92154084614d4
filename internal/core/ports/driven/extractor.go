package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// WebFetcher downloads a website source.
type WebFetcher interface {
	// Fetch retrieves the resource at url.
	// Transport failures, non-2xx responses and oversized bodies fail with
	// domain.ErrSourceUnavailable.
	Fetch(ctx context.Context, url string) (*domain.RawDocument, error)
}

// Extractor turns a source into ordered text segments.
type Extractor interface {
	// Extract reads or fetches the source and normalises it.
	// It never mutates shared state.
	Extract(ctx context.Context, source domain.Source) ([]domain.Segment, error)
}

// Splitter divides segments into overlapping chunks.
type Splitter interface {
	// Split chunks each segment independently. Positions restart at 0 per
	// segment; output is ordered by segment then position. Empty text yields
	// no chunks.
	Split(ctx context.Context, sourceID string, segments []domain.Segment) ([]domain.Chunk, error)

	// ChunkSize returns the configured maximum chunk length in characters.
	ChunkSize() int

	// Overlap returns the configured overlap in characters.
	Overlap() int
}
