package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ResolveSource turns user input into a source. URLs become website sources;
// anything else, including file:// URIs, is read from disk as a document
// named by its base filename.
func ResolveSource(input string) (domain.Source, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.Source{}, fmt.Errorf("%w: no file or URL given", domain.ErrInvalidArgument)
	}

	if domain.LooksLikeURL(input) {
		return domain.NewWebsiteSource(input), nil
	}

	path := ExpandHome(strings.TrimPrefix(input, "file://"))
	info, err := os.Stat(path)
	if err != nil {
		return domain.Source{}, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		return domain.Source{}, fmt.Errorf("%w: %s is a directory", domain.ErrUnsupportedSourceType, input)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return domain.Source{}, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	return domain.NewDocumentSource(filepath.Base(path), payload), nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
