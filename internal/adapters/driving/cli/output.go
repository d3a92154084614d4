package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ingestJSON is the --json form of an ingestion result.
type ingestJSON struct {
	Source     string `json:"source"`
	Kind       string `json:"kind"`
	ChunkCount int    `json:"chunk_count"`
	Reused     bool   `json:"reused"`
	Message    string `json:"message"`
}

// chunkJSON is the --json form of a retrieved chunk.
type chunkJSON struct {
	Rank     int     `json:"rank"`
	Score    float64 `json:"score"`
	Position int     `json:"position"`
	Content  string  `json:"content"`
}

// queryJSON is the --json form of a query.
type queryJSON struct {
	Question string      `json:"question"`
	Source   string      `json:"source"`
	Chunks   []chunkJSON `json:"chunks"`
}

func newIngestJSON(result domain.IngestResult) ingestJSON {
	return ingestJSON{
		Source:     result.SourceIdentifier,
		Kind:       result.Kind.String(),
		ChunkCount: result.ChunkCount,
		Reused:     result.Reused,
		Message:    result.Summary(),
	}
}

func newQueryJSON(question, source string, results []domain.ScoredChunk) queryJSON {
	out := queryJSON{
		Question: question,
		Source:   source,
		Chunks:   make([]chunkJSON, len(results)),
	}
	for i := range results {
		out.Chunks[i] = chunkJSON{
			Rank:     results[i].Rank,
			Score:    results[i].Score,
			Position: results[i].Chunk.Position,
			Content:  results[i].Chunk.Content,
		}
	}
	return out
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// outputChunks prints retrieved chunks the way the interactive session lists them.
func outputChunks(cmd *cobra.Command, results []domain.ScoredChunk) {
	if len(results) == 0 {
		cmd.Println("No relevant chunks found.")
		return
	}

	cmd.Println("Retrieved Context")
	cmd.Println("=================")
	for i := range results {
		cmd.Println()
		cmd.Printf("Chunk %d (score %.3f)\n", i+1, results[i].Score)
		for _, line := range strings.Split(results[i].Chunk.Content, "\n") {
			cmd.Printf("  %s\n", line)
		}
	}
}
