// Package app wires the driven adapters to the core services.
package app

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/fetch/web"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/vectorindex/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// Factory builds services for the CLI once its flags are parsed.
type Factory struct{}

// NewFactory creates a factory.
func NewFactory() *Factory {
	return &Factory{}
}

// SettingsService opens the TOML config in configDir ("" for ~/.sercha-rag).
func (f *Factory) SettingsService(configDir string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(store), nil
}

// CorpusService wires a corpus manager for settings.
func (f *Factory) CorpusService(settings domain.Settings) (driving.CorpusService, error) {
	return NewCorpusManager(settings)
}

// CheckEmbedding pings the embedding backend settings select.
func (f *Factory) CheckEmbedding(ctx context.Context, settings domain.Settings) error {
	return ai.ValidateEmbeddingConfig(ctx, settings)
}

// NewCorpusManager assembles extract, split, embed and index for settings.
func NewCorpusManager(settings domain.Settings) (*services.CorpusManager, error) {
	splitter, err := chunker.New(
		chunker.WithChunkSize(settings.ChunkSize),
		chunker.WithOverlap(settings.ChunkOverlap),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := ai.NewEmbedder(settings)
	if err != nil {
		return nil, err
	}

	fetcher := web.New(web.Config{
		Timeout:  settings.FetchTimeout,
		MaxBytes: settings.MaxFetchBytes,
	})
	extractor := services.NewExtractor(normalisers.NewDefaultRegistry(), fetcher)

	return services.NewCorpusManager(extractor, splitter, embedder, memory.NewBuilder(settings.MaxChunks)), nil
}
