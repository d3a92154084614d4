package domain

// Chunk is a bounded text segment, the unit that is embedded and retrieved.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// SourceID is the identifier of the source the chunk came from.
	SourceID string

	// Content is the text of this chunk.
	Content string

	// Position is the sequence number within its segment, starting at 0.
	Position int

	// Segment is the index of the originating segment within the source.
	Segment int

	// Metadata is copied from the originating segment.
	Metadata map[string]any
}

// ScoredChunk is a retrieved chunk with its similarity to the query.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity, higher is closer.
	Score float64

	// Rank is the 1-based position in the result list.
	Rank int
}
