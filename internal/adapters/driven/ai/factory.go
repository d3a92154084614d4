// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/cache"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/lazy"
	localembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// NewEmbedder returns the embedding service used by the corpus manager.
// The backend is created on first use and, when configured, query
// embeddings are cached.
func NewEmbedder(settings domain.Settings) (driven.EmbeddingService, error) {
	model, err := domain.ParseEmbeddingModel(settings.EmbeddingModel)
	if err != nil {
		return nil, err
	}
	if model.Provider.RequiresAPIKey() && settings.EmbeddingAPIKey == "" {
		return nil, fmt.Errorf("%w: %s requires an API key (set OPENAI_API_KEY)",
			domain.ErrInvalidArgument, model.Provider.Description())
	}

	var svc driven.EmbeddingService = lazy.New(model.String(), expectedDimensions(model),
		func(ctx context.Context) (driven.EmbeddingService, error) {
			return CreateAndValidateEmbeddingService(ctx, settings)
		})

	if settings.QueryCacheSize > 0 {
		cached, err := cache.New(svc, settings.QueryCacheSize)
		if err != nil {
			return nil, err
		}
		svc = cached
	}
	return svc, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(
	ctx context.Context,
	settings domain.Settings,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig creates a service for settings and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings domain.Settings) error {
	svc, err := CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	return svc.Close()
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
func CreateEmbeddingService(settings domain.Settings) (driven.EmbeddingService, error) {
	model, err := domain.ParseEmbeddingModel(settings.EmbeddingModel)
	if err != nil {
		return nil, err
	}

	switch model.Provider {
	case domain.AIProviderLocal:
		return localembed.NewEmbeddingService(localembed.Config{Model: model.Model})

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:           settings.EmbeddingBaseURL,
			Model:             model.Model,
			RequestsPerSecond: settings.EmbeddingRateLimit,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            settings.EmbeddingAPIKey,
			BaseURL:           settings.EmbeddingBaseURL,
			Model:             model.Model,
			RequestsPerSecond: settings.EmbeddingRateLimit,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", model.Provider)
	}
}

// expectedDimensions is reported before the backend has been created.
func expectedDimensions(model domain.EmbeddingModel) int {
	switch model.Provider {
	case domain.AIProviderLocal:
		if model.Model == "" {
			return localembed.DefaultDimensions
		}
		svc, err := localembed.NewEmbeddingService(localembed.Config{Model: model.Model})
		if err != nil {
			return 0
		}
		return svc.Dimensions()
	case domain.AIProviderOllama:
		return ollamaembed.DimensionsFor(model.Model)
	case domain.AIProviderOpenAI:
		return openaiembed.DimensionsFor(model.Model)
	default:
		return 0
	}
}
