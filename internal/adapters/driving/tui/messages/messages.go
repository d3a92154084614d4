// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IngestCompleted carries the outcome of an ingestion back to the model.
type IngestCompleted struct {
	Input  string
	Result domain.IngestResult
	Err    error
}

// QueryCompleted carries retrieved chunks back to the model.
type QueryCompleted struct {
	Question string
	Results  []domain.ScoredChunk
	Err      error
}

// CorpusCleared signals the active corpus was discarded.
type CorpusCleared struct{}
