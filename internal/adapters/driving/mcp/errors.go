// Package mcp provides an MCP (Model Context Protocol) server adapter for sercha-rag.
// It lets AI assistants load a document or website and retrieve context from it.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ErrMissingCorpusService is returned when the corpus service is not provided.
var ErrMissingCorpusService = errors.New("mcp: corpus service is required")

// toolError prefixes err with the user-facing description of its category.
func toolError(err error) error {
	if msg := domain.Describe(err); msg != err.Error() {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return err
}
