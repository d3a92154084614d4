package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var configAsJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the settings stored in ~/.sercha-rag/config.toml.

Command-line flags override stored values for a single run.`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every setting with its effective value",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a setting",
	Long: `Validate and store a setting.

Examples:
  sercha-rag config set chunk_size 800
  sercha-rag config set embedding_model_identifier ollama:nomic-embed-text
  sercha-rag config set embedding.base_url http://localhost:11434`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a stored setting so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and ping the embedding backend",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	configListCmd.Flags().BoolVar(&configAsJSON, "json", false, "output settings as JSON")
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}

	entries, err := svc.List()
	if err != nil {
		return fmt.Errorf("failed to list settings: %w", err)
	}

	if configAsJSON {
		values := make(map[string]string, len(entries))
		for _, e := range entries {
			values[e.Key] = e.Value
		}
		return outputJSON(cmd, values)
	}

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Key))
	}
	for _, e := range entries {
		cmd.Printf("%-*s = %s%s\n", width, e.Key, displayValue(e.Value), defaultMarker(e))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}

	entries, err := svc.List()
	if err != nil {
		return fmt.Errorf("failed to list settings: %w", err)
	}

	key := strings.ToLower(strings.TrimSpace(args[0]))
	for _, e := range entries {
		if e.Key == key {
			cmd.Println(displayValue(e.Value))
			return nil
		}
	}
	return fmt.Errorf("%w: unknown setting %q (known: %s)",
		domain.ErrInvalidArgument, args[0], strings.Join(svc.Keys(), ", "))
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}

	if err := svc.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Saved %s\n", strings.ToLower(strings.TrimSpace(args[0])))
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}

	if err := svc.Reset(args[0]); err != nil {
		return err
	}
	cmd.Printf("Removed %s\n", strings.ToLower(strings.TrimSpace(args[0])))
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if factory == nil {
		return errors.New("embedding check not configured")
	}

	if err := factory.CheckEmbedding(cmd.Context(), settings); err != nil {
		return err
	}
	cmd.Printf("Settings are valid and %s is reachable\n", settings.EmbeddingModel)
	return nil
}

func displayValue(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func defaultMarker(e domain.SettingEntry) string {
	if e.IsDefault {
		return "  (default)"
	}
	return ""
}
