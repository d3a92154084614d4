package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Source  string `json:"source" jsonschema:"file path or http(s) URL to load; with content, the document name"`
	Content string `json:"content,omitempty" jsonschema:"inline document text; when set, source only names it"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"rebuild even if this source is already loaded"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Source     string `json:"source"`
	ChunkCount int    `json:"chunk_count"`
	Reused     bool   `json:"reused"`
	Message    string `json:"message"`
}

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Question string `json:"question" jsonschema:"the question to retrieve context for"`
	K        int    `json:"k,omitempty" jsonschema:"number of chunks to return (default from settings)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Source string        `json:"source"`
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	Rank     int     `json:"rank"`
	Score    float64 `json:"score"`
	Position int     `json:"position"`
	Content  string  `json:"content"`
}

// ClearInput is the input schema for the clear tool.
type ClearInput struct{}

// StatusInput is the input schema for the status tool.
type StatusInput struct{}

// StatusOutput describes the active corpus.
type StatusOutput struct {
	State      string `json:"state"`
	Source     string `json:"source,omitempty"`
	ChunkCount int    `json:"chunk_count"`
	Model      string `json:"model,omitempty"`
	IngestedAt string `json:"ingested_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.sdk, &mcp.Tool{
		Name:        "ingest",
		Description: "Load a document or website as the active corpus, replacing any previous one",
	}, s.handleIngest)

	mcp.AddTool(s.sdk, &mcp.Tool{
		Name:        "query",
		Description: "Retrieve the chunks of the active corpus most relevant to a question",
	}, s.handleQuery)

	mcp.AddTool(s.sdk, &mcp.Tool{
		Name:        "clear",
		Description: "Discard the active corpus",
	}, s.handleClear)

	mcp.AddTool(s.sdk, &mcp.Tool{
		Name:        "status",
		Description: "Report which source is loaded and how many chunks it has",
	}, s.handleStatus)
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	source, err := resolveInput(input)
	if err != nil {
		return nil, IngestOutput{}, toolError(err)
	}

	ingest := s.ports.Corpus.Ingest
	if input.Refresh {
		ingest = s.ports.Corpus.Refresh
	}

	result, err := ingest(ctx, source)
	if err != nil {
		return nil, IngestOutput{}, toolError(err)
	}

	return nil, IngestOutput{
		Source:     result.SourceIdentifier,
		ChunkCount: result.ChunkCount,
		Reused:     result.Reused,
		Message:    result.Summary(),
	}, nil
}

func resolveInput(input IngestInput) (domain.Source, error) {
	if input.Content != "" {
		name := strings.TrimSpace(input.Source)
		if name == "" {
			name = "inline.txt"
		}
		return domain.NewDocumentSource(name, []byte(input.Content)), nil
	}
	return services.ResolveSource(input.Source)
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	k := input.K
	if k == 0 {
		k = s.ports.topK()
	}

	results, err := s.ports.Corpus.Query(ctx, input.Question, k)
	if err != nil {
		return nil, QueryOutput{}, toolError(err)
	}

	output := QueryOutput{
		Chunks: make([]ChunkOutput, len(results)),
		Count:  len(results),
	}
	// Name the source the results came from, not whatever is loaded now.
	if len(results) > 0 {
		output.Source = results[0].Chunk.SourceID
	} else {
		output.Source = s.ports.Corpus.Status().SourceIdentifier
	}
	for i := range results {
		output.Chunks[i] = ChunkOutput{
			Rank:     results[i].Rank,
			Score:    results[i].Score,
			Position: results[i].Chunk.Position,
			Content:  results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}

func (s *Server) handleClear(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ClearInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	s.ports.Corpus.Clear()
	return nil, statusOutput(s.ports.Corpus.Status()), nil
}

func (s *Server) handleStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return nil, statusOutput(s.ports.Corpus.Status()), nil
}

func statusOutput(status domain.Status) StatusOutput {
	out := StatusOutput{
		State:      status.State.String(),
		Source:     status.SourceIdentifier,
		ChunkCount: status.ChunkCount,
		Model:      status.Model,
	}
	if !status.IngestedAt.IsZero() {
		out.IngestedAt = status.IngestedAt.UTC().Format(time.RFC3339)
	}
	return out
}

