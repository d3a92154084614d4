package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func noEnv(string) (string, bool) { return "", false }

func newSettingsService(t *testing.T) (*SettingsService, *memory.ConfigStore) {
	t.Helper()
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)
	svc.SetEnvLookup(noEnv)
	return svc, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	svc, _ := newSettingsService(t)

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	svc, store := newSettingsService(t)
	require.NoError(t, store.Set(KeyChunkSize, int64(800)))
	require.NoError(t, store.Set(KeyChunkOverlap, int64(100)))
	require.NoError(t, store.Set(KeyTopK, int64(5)))
	require.NoError(t, store.Set(KeyEmbeddingModel, "ollama:nomic-embed-text"))
	require.NoError(t, store.Set(KeyEmbedRateLimit, 2.5))
	require.NoError(t, store.Set(KeyFetchTimeout, "5s"))

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, 800, settings.ChunkSize)
	assert.Equal(t, 100, settings.ChunkOverlap)
	assert.Equal(t, 5, settings.TopK)
	assert.Equal(t, "ollama:nomic-embed-text", settings.EmbeddingModel)
	assert.InDelta(t, 2.5, settings.EmbeddingRateLimit, 1e-9)
	assert.Equal(t, 5*time.Second, settings.FetchTimeout)
}

func TestSettingsService_Get_UnparsableValuesKeepDefaults(t *testing.T) {
	svc, store := newSettingsService(t)
	require.NoError(t, store.Set(KeyChunkSize, "lots"))
	require.NoError(t, store.Set(KeyFetchTimeout, "soon"))

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultChunkSize, settings.ChunkSize)
	assert.Equal(t, domain.DefaultFetchTimeout, settings.FetchTimeout)
}

func TestSettingsService_Get_InvalidCombination(t *testing.T) {
	svc, store := newSettingsService(t)
	require.NoError(t, store.Set(KeyChunkSize, int64(40)))
	require.NoError(t, store.Set(KeyChunkOverlap, int64(40)))

	_, err := svc.Get()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "chunk_overlap must be less than chunk_size")
}

func TestSettingsService_Get_Environment(t *testing.T) {
	env := map[string]string{
		"OPENAI_API_KEY": "sk-env",
		"OLLAMA_HOST":    "gpu-box:11434",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	t.Run("openai key from environment", func(t *testing.T) {
		svc, store := newSettingsService(t)
		svc.SetEnvLookup(lookup)
		require.NoError(t, store.Set(KeyEmbeddingModel, "openai:text-embedding-3-small"))

		settings, err := svc.Get()
		require.NoError(t, err)
		assert.Equal(t, "sk-env", settings.EmbeddingAPIKey)
	})

	t.Run("config key wins over environment", func(t *testing.T) {
		svc, store := newSettingsService(t)
		svc.SetEnvLookup(lookup)
		require.NoError(t, store.Set(KeyEmbeddingModel, "openai"))
		require.NoError(t, store.Set(KeyEmbedAPIKey, "sk-file"))

		settings, err := svc.Get()
		require.NoError(t, err)
		assert.Equal(t, "sk-file", settings.EmbeddingAPIKey)
	})

	t.Run("ollama host from environment", func(t *testing.T) {
		svc, store := newSettingsService(t)
		svc.SetEnvLookup(lookup)
		require.NoError(t, store.Set(KeyEmbeddingModel, "ollama"))

		settings, err := svc.Get()
		require.NoError(t, err)
		assert.Equal(t, "http://gpu-box:11434", settings.EmbeddingBaseURL)
	})

	t.Run("local ignores environment", func(t *testing.T) {
		svc, _ := newSettingsService(t)
		svc.SetEnvLookup(lookup)

		settings, err := svc.Get()
		require.NoError(t, err)
		assert.Empty(t, settings.EmbeddingAPIKey)
		assert.Empty(t, settings.EmbeddingBaseURL)
	})
}

func TestSettingsService_Validate(t *testing.T) {
	svc, _ := newSettingsService(t)

	tests := []struct {
		name    string
		mutate  func(*domain.Settings)
		wantMsg string
	}{
		{"zero chunk size", func(s *domain.Settings) { s.ChunkSize = 0 }, "chunk_size must be greater than 0"},
		{"negative overlap", func(s *domain.Settings) { s.ChunkOverlap = -1 }, "chunk_overlap must be at least 0"},
		{"overlap too large", func(s *domain.Settings) { s.ChunkOverlap = 500 }, "chunk_overlap must be less than chunk_size"},
		{"zero top k", func(s *domain.Settings) { s.TopK = 0 }, "top_k must be greater than 0"},
		{"empty model", func(s *domain.Settings) { s.EmbeddingModel = "" }, "embedding_model_identifier is required"},
		{"unknown model", func(s *domain.Settings) { s.EmbeddingModel = "bert:base" }, "embedding_model_identifier \"bert:base\""},
		{"bad base url", func(s *domain.Settings) { s.EmbeddingBaseURL = "not a url" }, "embedding.base_url must be a URL"},
		{"negative rate", func(s *domain.Settings) { s.EmbeddingRateLimit = -1 }, "embedding.rate_limit must be at least 0"},
		{"zero max chunks", func(s *domain.Settings) { s.MaxChunks = 0 }, "max_chunks must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := domain.DefaultSettings()
			tt.mutate(&settings)

			err := svc.Validate(settings)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	assert.NoError(t, svc.Validate(domain.DefaultSettings()))
}

func TestSettingsService_Set(t *testing.T) {
	svc, store := newSettingsService(t)

	require.NoError(t, svc.Set(KeyChunkSize, "1000"))
	require.NoError(t, svc.Set("CHUNK_OVERLAP", " 200 "))
	require.NoError(t, svc.Set(KeyFetchTimeout, "1m"))
	require.NoError(t, svc.Set(KeyEmbedRateLimit, "0.5"))

	raw, ok := store.Get(KeyChunkSize)
	require.True(t, ok)
	assert.Equal(t, int64(1000), raw)

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, 1000, settings.ChunkSize)
	assert.Equal(t, 200, settings.ChunkOverlap)
	assert.Equal(t, time.Minute, settings.FetchTimeout)
	assert.InDelta(t, 0.5, settings.EmbeddingRateLimit, 1e-9)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	svc, store := newSettingsService(t)

	tests := []struct {
		key, value string
	}{
		{"colour", "blue"},
		{KeyChunkSize, "big"},
		{KeyChunkSize, "-5"},
		{KeyChunkOverlap, "500"},
		{KeyFetchTimeout, "forever"},
		{KeyEmbeddingModel, "bert"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := svc.Set(tt.key, tt.value)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
	assert.Empty(t, store.Keys())
}

func TestSettingsService_List(t *testing.T) {
	svc, store := newSettingsService(t)
	require.NoError(t, store.Set(KeyTopK, int64(7)))
	require.NoError(t, store.Set(KeyEmbedAPIKey, "sk-secret"))

	entries, err := svc.List()
	require.NoError(t, err)
	require.Len(t, entries, len(svc.Keys()))

	byKey := make(map[string]domain.SettingEntry, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e
	}
	assert.Equal(t, "7", byKey[KeyTopK].Value)
	assert.False(t, byKey[KeyTopK].IsDefault)
	assert.Equal(t, "500", byKey[KeyChunkSize].Value)
	assert.True(t, byKey[KeyChunkSize].IsDefault)
	assert.Equal(t, "********", byKey[KeyEmbedAPIKey].Value)
	assert.Equal(t, "30s", byKey[KeyFetchTimeout].Value)
	assert.Equal(t, "local:hash-384", byKey[KeyEmbeddingModel].Value)
}

func TestSettingsService_Keys(t *testing.T) {
	svc, _ := newSettingsService(t)

	keys := svc.Keys()

	assert.Equal(t, KeyChunkSize, keys[0])
	assert.Contains(t, keys, KeyEmbeddingModel)
	assert.Contains(t, keys, KeyFetchMaxBytes)
}

func TestSettingsService_Reset(t *testing.T) {
	svc, store := newSettingsService(t)
	require.NoError(t, svc.Set(KeyTopK, "9"))

	require.NoError(t, svc.Reset("TOP_K"))

	_, stored := store.Get(KeyTopK)
	assert.False(t, stored)
	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTopK, settings.TopK)

	assert.ErrorIs(t, svc.Reset("colour"), domain.ErrInvalidArgument)
}
