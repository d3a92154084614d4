package domain

import (
	"fmt"
	"time"
)

// CorpusState is the lifecycle state of the single active corpus.
type CorpusState string

// Corpus states.
const (
	// CorpusEmpty means nothing has been ingested, or the corpus was cleared.
	CorpusEmpty CorpusState = "empty"

	// CorpusReady means a corpus is built and can be queried.
	CorpusReady CorpusState = "ready"
)

// String returns the string representation.
func (s CorpusState) String() string {
	return string(s)
}

// Status describes the active corpus.
type Status struct {
	// State is empty or ready.
	State CorpusState

	// SourceIdentifier names the loaded source. Empty when State is CorpusEmpty.
	SourceIdentifier string

	// ChunkCount is the number of indexed chunks.
	ChunkCount int

	// Model is the embedding model the corpus was built with.
	Model string

	// IngestedAt is when the corpus was built.
	IngestedAt time.Time
}

// IsReady returns true if a corpus can be queried.
func (s Status) IsReady() bool {
	return s.State == CorpusReady
}

// EmptyStatus returns the status of a manager with no corpus.
func EmptyStatus() Status {
	return Status{State: CorpusEmpty}
}

// IngestResult reports the outcome of an ingestion.
type IngestResult struct {
	// SourceIdentifier is the identifier that is now active.
	SourceIdentifier string

	// Kind is the kind of the ingested source.
	Kind SourceKind

	// ChunkCount is the number of chunks in the active corpus.
	ChunkCount int

	// Reused is true when the source was already loaded and nothing was rebuilt.
	Reused bool
}

// Summary returns the one-line message shown after an ingestion.
func (r IngestResult) Summary() string {
	switch {
	case r.Reused:
		return "Loaded: " + r.SourceIdentifier
	case r.Kind == SourceKindWebsite:
		return fmt.Sprintf("Stored %d chunks from website", r.ChunkCount)
	default:
		return fmt.Sprintf("Stored %d chunks from %s", r.ChunkCount, r.SourceIdentifier)
	}
}
