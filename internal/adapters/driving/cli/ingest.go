package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

var ingestAsJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file|url]",
	Short: "Load a document or website",
	Long: `Extracts text from a PDF, a text file or a website, splits it into chunks
and embeds them. Prints how many chunks were stored.

Examples:
  sercha-rag ingest report.pdf
  sercha-rag ingest https://example.com/article --chunk-size 800`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestAsJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	corpus, err := getCorpusService(cmd)
	if err != nil {
		return err
	}

	source, err := services.ResolveSource(args[0])
	if err != nil {
		return err
	}

	result, err := corpus.Ingest(cmd.Context(), source)
	if err != nil {
		return err
	}

	if ingestAsJSON {
		return outputJSON(cmd, newIngestJSON(result))
	}
	cmd.Println(result.Summary())
	return nil
}
