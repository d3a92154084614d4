// Package cli provides the cobra command tree for sercha-rag.
// It is a driving adapter: commands resolve sources and call the core
// through the driving ports.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// ServiceFactory builds the core services once global flags are known.
type ServiceFactory interface {
	// SettingsService opens the configuration at configPath ("" for the default location).
	SettingsService(configPath string) (driving.SettingsService, error)

	// CorpusService wires a corpus manager for the resolved settings.
	CorpusService(settings domain.Settings) (driving.CorpusService, error)

	// CheckEmbedding builds the configured embedding backend and pings it.
	CheckEmbedding(ctx context.Context, settings domain.Settings) error
}

var (
	factory         ServiceFactory
	settingsService driving.SettingsService
	corpusService   driving.CorpusService
)

// Global flags.
var (
	verbose      bool
	configPath   string
	chunkSize    int
	chunkOverlap int
	topK         int
	modelID      string
)

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Retrieve relevant context from a document or website",
	Long: `sercha-rag loads one document (PDF or text) or website at a time, splits it
into overlapping chunks, embeds them and returns the chunks most relevant to
a question. The retrieved context is meant to be handed to a language model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&configPath, "config", "", "config file directory (default ~/.sercha-rag)")
	flags.IntVar(&chunkSize, "chunk-size", domain.DefaultChunkSize, "maximum chunk length in characters")
	flags.IntVar(&chunkOverlap, "chunk-overlap", domain.DefaultChunkOverlap, "characters shared by adjacent chunks")
	flags.IntVar(&topK, "top-k", domain.DefaultTopK, "number of chunks to retrieve")
	flags.StringVar(&modelID, "model", domain.DefaultEmbeddingModel, "embedding model as provider:model")
}

// SetServiceFactory sets the factory used to build services on demand.
func SetServiceFactory(f ServiceFactory) {
	factory = f
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and prints a readable error on failure.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Debug("command failed: %v", err)
		rootCmd.PrintErrln("Error:", domain.Describe(err))
	}
	return err
}

// getSettingsService returns the settings service, opening it on first use.
func getSettingsService() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}
	if factory == nil {
		return nil, errors.New("settings service not configured")
	}

	svc, err := factory.SettingsService(configPath)
	if err != nil {
		return nil, err
	}
	settingsService = svc
	return svc, nil
}

// resolveSettings overlays explicitly set flags on the stored configuration.
func resolveSettings(cmd *cobra.Command) (domain.Settings, error) {
	svc, err := getSettingsService()
	if err != nil {
		return domain.Settings{}, err
	}

	settings, err := svc.Get()
	if err != nil {
		return domain.Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("chunk-size") {
		settings.ChunkSize = chunkSize
	}
	if flags.Changed("chunk-overlap") {
		settings.ChunkOverlap = chunkOverlap
	}
	if flags.Changed("top-k") {
		settings.TopK = topK
	}
	if flags.Changed("model") {
		settings.EmbeddingModel = modelID
	}

	if err := svc.Validate(settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// getCorpusService returns the corpus service, wiring it on first use.
func getCorpusService(cmd *cobra.Command) (driving.CorpusService, error) {
	if corpusService != nil {
		return corpusService, nil
	}
	if factory == nil {
		return nil, errors.New("corpus service not configured")
	}

	settings, err := resolveSettings(cmd)
	if err != nil {
		return nil, err
	}

	svc, err := factory.CorpusService(settings)
	if err != nil {
		return nil, err
	}
	corpusService = svc
	return svc, nil
}
