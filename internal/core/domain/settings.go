package domain

import (
	"fmt"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// Default settings values.
const (
	DefaultChunkSize      = 500
	DefaultChunkOverlap   = 50
	DefaultTopK           = 3
	DefaultEmbeddingModel = "local:hash-384"
	DefaultMaxChunks      = 10000
	DefaultFetchTimeout   = 30 * time.Second
	DefaultMaxFetchBytes  = 10 << 20
	DefaultQueryCacheSize = 256
)

// AIProvider identifies an embedding backend.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderLocal is the in-process hashing embedder.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs without any network service.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local (in-process hashing)"
	case AIProviderOllama:
		return "Ollama (local server)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingModel is a parsed embedding model identifier such as "ollama:nomic-embed-text".
type EmbeddingModel struct {
	// Provider is the backend that serves the model.
	Provider AIProvider

	// Model is the provider-specific model name. Empty selects the provider default.
	Model string
}

// ParseEmbeddingModel parses a "<provider>:<model>" identifier.
// A bare provider name selects that provider's default model.
func ParseEmbeddingModel(identifier string) (EmbeddingModel, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return EmbeddingModel{}, fmt.Errorf("%w: embedding model identifier is empty", ErrInvalidArgument)
	}

	provider, model, _ := strings.Cut(identifier, ":")
	m := EmbeddingModel{
		Provider: AIProvider(strings.ToLower(provider)),
		Model:    strings.TrimSpace(model),
	}
	if !m.Provider.IsValid() {
		return EmbeddingModel{}, fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidArgument, provider)
	}
	return m, nil
}

// String returns the identifier form of the model.
func (m EmbeddingModel) String() string {
	if m.Model == "" {
		return m.Provider.String()
	}
	return m.Provider.String() + ":" + m.Model
}

// Settings holds the recognised configuration options.
// Struct tags carry validation rules checked when settings are resolved.
type Settings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int `validate:"gt=0"`

	// ChunkOverlap is the number of characters shared by adjacent chunks.
	ChunkOverlap int `validate:"gte=0,ltfield=ChunkSize"`

	// TopK is the default number of chunks a query returns.
	TopK int `validate:"gt=0"`

	// EmbeddingModel names the backend and model, e.g. "local:hash-384".
	EmbeddingModel string `validate:"required,embedding_model"`

	// EmbeddingBaseURL overrides the backend endpoint (Ollama, OpenAI-compatible APIs).
	EmbeddingBaseURL string `validate:"omitempty,url"`

	// EmbeddingAPIKey authenticates remote backends.
	EmbeddingAPIKey string

	// EmbeddingRateLimit caps backend requests per second. Zero means unlimited.
	EmbeddingRateLimit float64 `validate:"gte=0"`

	// QueryCacheSize is the number of query embeddings kept in memory. Zero disables the cache.
	QueryCacheSize int `validate:"gte=0"`

	// MaxChunks is the largest corpus that will be indexed.
	MaxChunks int `validate:"gt=0"`

	// FetchTimeout bounds website fetches.
	FetchTimeout time.Duration `validate:"gt=0"`

	// MaxFetchBytes bounds the size of fetched website bodies.
	MaxFetchBytes int64 `validate:"gt=0"`
}

// DefaultSettings returns settings with the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		ChunkSize:      DefaultChunkSize,
		ChunkOverlap:   DefaultChunkOverlap,
		TopK:           DefaultTopK,
		EmbeddingModel: DefaultEmbeddingModel,
		QueryCacheSize: DefaultQueryCacheSize,
		MaxChunks:      DefaultMaxChunks,
		FetchTimeout:   DefaultFetchTimeout,
		MaxFetchBytes:  DefaultMaxFetchBytes,
	}
}

// SettingEntry is one configuration key with its effective value.
type SettingEntry struct {
	// Key is the configuration key, e.g. "chunk_size".
	Key string

	// Value is the effective value rendered as text.
	Value string

	// IsDefault is true when the value was not set in the configuration file.
	IsDefault bool
}
