package domain

import "errors"

// Domain errors represent ingestion and retrieval failures.
// Callers match them with errors.Is; adapters wrap their causes beneath them.
var (
	// ErrSourceUnavailable indicates the source could not be read or fetched.
	// Nothing changes; the caller may try again or pick another source.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrUnsupportedSourceType indicates the source kind or content type cannot be ingested.
	ErrUnsupportedSourceType = errors.New("unsupported source type")

	// ErrEmbeddingUnavailable indicates the embedding backend failed or is unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmptyCorpus indicates a source produced no chunks.
	ErrEmptyCorpus = errors.New("source produced no chunks")

	// ErrInvalidArgument indicates a bad parameter or configuration value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoActiveCorpus indicates a query was made before anything was ingested.
	ErrNoActiveCorpus = errors.New("no active corpus")

	// ErrCorpusTooLarge indicates a source produced more chunks than the configured ceiling.
	ErrCorpusTooLarge = errors.New("corpus exceeds maximum size")
)

// Describe returns a message suitable for showing to a user.
// Unknown errors fall back to their own text.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSourceUnavailable):
		return "Could not read the source. Check the path or URL and try again."
	case errors.Is(err, ErrUnsupportedSourceType):
		return "This source type is not supported. Use a PDF, a text file, or an http(s) URL."
	case errors.Is(err, ErrEmbeddingUnavailable):
		return "The embedding model is unavailable. Check the model setting and that its backend is running."
	case errors.Is(err, ErrEmptyCorpus):
		return "No text could be extracted from the source."
	case errors.Is(err, ErrCorpusTooLarge):
		return "The source is too large to index. Raise max_chunks or use a smaller source."
	case errors.Is(err, ErrNoActiveCorpus):
		return "Upload a document or paste a website URL to begin."
	default:
		return err.Error()
	}
}
