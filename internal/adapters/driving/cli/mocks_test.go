package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

// mockCorpusService implements driving.CorpusService for testing.
type mockCorpusService struct {
	ingested  []domain.Source
	refreshed []domain.Source
	queries   []string
	k         int
	cleared   int

	ingestErr error
	queryErr  error
	results   []domain.ScoredChunk
}

func (m *mockCorpusService) Ingest(_ context.Context, source domain.Source) (domain.IngestResult, error) {
	m.ingested = append(m.ingested, source)
	if m.ingestErr != nil {
		return domain.IngestResult{}, m.ingestErr
	}
	return domain.IngestResult{SourceIdentifier: source.Identifier, Kind: source.Kind, ChunkCount: 4}, nil
}

func (m *mockCorpusService) Refresh(_ context.Context, source domain.Source) (domain.IngestResult, error) {
	m.refreshed = append(m.refreshed, source)
	if m.ingestErr != nil {
		return domain.IngestResult{}, m.ingestErr
	}
	return domain.IngestResult{SourceIdentifier: source.Identifier, Kind: source.Kind, ChunkCount: 4}, nil
}

func (m *mockCorpusService) Query(_ context.Context, text string, k int) ([]domain.ScoredChunk, error) {
	m.queries = append(m.queries, text)
	m.k = k
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.results, nil
}

func (m *mockCorpusService) Clear() { m.cleared++ }

func (m *mockCorpusService) Status() domain.Status { return domain.EmptyStatus() }

// mockFactory implements ServiceFactory, recording the settings it was given.
type mockFactory struct {
	settings   driving.SettingsService
	corpus     driving.CorpusService
	configPath string
	resolved   *domain.Settings
	checkErr   error
	checked    int
}

func (f *mockFactory) SettingsService(configPath string) (driving.SettingsService, error) {
	f.configPath = configPath
	return f.settings, nil
}

func (f *mockFactory) CorpusService(settings domain.Settings) (driving.CorpusService, error) {
	f.resolved = &settings
	return f.corpus, nil
}

func (f *mockFactory) CheckEmbedding(_ context.Context, settings domain.Settings) error {
	f.resolved = &settings
	f.checked++
	return f.checkErr
}

func testChunks() []domain.ScoredChunk {
	return []domain.ScoredChunk{
		{Chunk: domain.Chunk{Content: "Cherries are red.", Position: 3}, Score: 0.577, Rank: 1},
		{Chunk: domain.Chunk{Content: "are yellow.", Position: 2}, Score: 0.354, Rank: 2},
	}
}

// setupTestServices installs an in-memory settings service and a mock corpus.
func setupTestServices(t *testing.T) (*mockCorpusService, *services.SettingsService) {
	t.Helper()

	settings := services.NewSettingsService(memory.NewConfigStore())
	settings.SetEnvLookup(func(string) (string, bool) { return "", false })
	corpus := &mockCorpusService{results: testChunks()}

	settingsService = settings
	corpusService = corpus
	t.Cleanup(func() {
		settingsService = nil
		corpusService = nil
		factory = nil
	})
	return corpus, settings
}

// setupFactory installs a factory so services are built from resolved settings.
func setupFactory(t *testing.T) (*mockFactory, *mockCorpusService) {
	t.Helper()

	settings := services.NewSettingsService(memory.NewConfigStore())
	settings.SetEnvLookup(func(string) (string, bool) { return "", false })
	corpus := &mockCorpusService{results: testChunks()}
	f := &mockFactory{settings: settings, corpus: corpus}

	settingsService = nil
	corpusService = nil
	SetServiceFactory(f)
	t.Cleanup(func() {
		settingsService = nil
		corpusService = nil
		factory = nil
	})
	return f, corpus
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default so tests do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
