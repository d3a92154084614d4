package mcp

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Corpus manages the active corpus.
	Corpus driving.CorpusService

	// TopK is the number of chunks a query returns when the caller gives none.
	TopK int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Corpus == nil {
		return ErrMissingCorpusService
	}
	return nil
}

func (p *Ports) topK() int {
	if p.TopK <= 0 {
		return domain.DefaultTopK
	}
	return p.TopK
}
