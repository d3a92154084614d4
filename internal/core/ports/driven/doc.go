// Package driven declares what the core needs from infrastructure.
//
// Extraction goes through Extractor, which picks a Normaliser from a
// NormaliserRegistry and downloads websites with a WebFetcher. Splitter cuts
// segments into chunks, EmbeddingService turns them into vectors, and
// VectorIndexBuilder produces the VectorIndex queries run against.
// ConfigStore keeps settings between runs.
//
// Implementations live under internal/adapters and internal/normalisers and
// must not be imported from here.
package driven
