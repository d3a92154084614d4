package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

var (
	querySource string
	queryK      int
	queryAsJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Retrieve the chunks most relevant to a question",
	Long: `Loads the source, then returns the chunks whose embeddings are most similar
to the question, best match first.

Examples:
  sercha-rag query "What color are cherries?" --source fruit.txt
  sercha-rag query "pricing" -s https://example.com -k 5 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&querySource, "source", "s", "", "document path or website URL")
	queryCmd.Flags().IntVarP(&queryK, "count", "k", 0, "number of chunks to return (default: top_k setting)")
	queryCmd.Flags().BoolVar(&queryAsJSON, "json", false, "output results as JSON")
	_ = queryCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	k := queryK
	if cmd.Flags().Changed("count") {
		if k <= 0 {
			return fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
		}
	} else {
		settings, err := resolveSettings(cmd)
		if err != nil {
			return err
		}
		k = settings.TopK
	}

	corpus, err := getCorpusService(cmd)
	if err != nil {
		return err
	}

	source, err := services.ResolveSource(querySource)
	if err != nil {
		return err
	}

	result, err := corpus.Ingest(cmd.Context(), source)
	if err != nil {
		return err
	}

	results, err := corpus.Query(cmd.Context(), args[0], k)
	if err != nil {
		return err
	}

	if queryAsJSON {
		return outputJSON(cmd, newQueryJSON(args[0], result.SourceIdentifier, results))
	}
	outputChunks(cmd, results)
	return nil
}
