// Package domain holds the retrieval types shared by every layer.
//
// A Source is read into RawDocument bytes, normalised into Segments, cut into
// Chunks and ranked as ScoredChunks. Status describes the one active corpus.
//
// Only the standard library may be imported here.
package domain
