package driven

import "context"

// EmbeddingService maps text to vectors of a fixed width.
// The same text must yield the same vector for the life of the service.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector width, known once the model has loaded.
	Dimensions() int

	// ModelName is the "<provider>:<model>" identifier shown in status output.
	ModelName() string

	// Ping checks the backend answers without embedding anything real.
	Ping(ctx context.Context) error

	Close() error
}
