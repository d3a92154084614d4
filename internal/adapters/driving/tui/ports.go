// Package tui provides an interactive terminal user interface for sercha-rag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Corpus manages the active corpus.
	Corpus driving.CorpusService

	// TopK is the number of chunks retrieved per question.
	TopK int
}

// NewPorts creates a Ports aggregate.
func NewPorts(corpus driving.CorpusService, topK int) *Ports {
	return &Ports{Corpus: corpus, TopK: topK}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Corpus == nil {
		return ErrMissingCorpusService
	}
	return nil
}

// K returns the configured top k, falling back to the default.
func (p *Ports) K() int {
	if p.TopK <= 0 {
		return domain.DefaultTopK
	}
	return p.TopK
}
