package services

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// extensionMIMETypes covers text formats the platform MIME table may lack.
var extensionMIMETypes = map[string]string{
	".txt":      "text/plain; charset=utf-8",
	".text":     "text/plain; charset=utf-8",
	".md":       "text/markdown; charset=utf-8",
	".markdown": "text/markdown; charset=utf-8",
	".csv":      "text/csv; charset=utf-8",
	".htm":      "text/html; charset=utf-8",
	".html":     "text/html; charset=utf-8",
	".pdf":      "application/pdf",
}

// genericMIMETypes are detections too vague to beat a file extension.
var genericMIMETypes = map[string]bool{
	"application/octet-stream": true,
	"text/plain":               true,
}

// Extractor turns sources into text segments.
type Extractor struct {
	registry driven.NormaliserRegistry
	fetcher  driven.WebFetcher
}

// NewExtractor creates an extractor. fetcher may be nil, in which case
// website sources are rejected.
func NewExtractor(registry driven.NormaliserRegistry, fetcher driven.WebFetcher) *Extractor {
	return &Extractor{registry: registry, fetcher: fetcher}
}

// Extract reads or fetches the source and normalises it.
func (e *Extractor) Extract(ctx context.Context, source domain.Source) ([]domain.Segment, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}

	raw, err := e.rawDocument(ctx, source)
	if err != nil {
		return nil, err
	}

	result, err := e.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, err
	}
	logger.Debug("extracted %d characters from %s (%s)", len(result.Segment.Text), raw.URI, raw.MIMEType)

	return []domain.Segment{result.Segment}, nil
}

func (e *Extractor) rawDocument(ctx context.Context, source domain.Source) (*domain.RawDocument, error) {
	switch source.Kind {
	case domain.SourceKindWebsite:
		if e.fetcher == nil {
			return nil, fmt.Errorf("%w: website sources are disabled", domain.ErrUnsupportedSourceType)
		}
		return e.fetcher.Fetch(ctx, source.Identifier)

	case domain.SourceKindDocument:
		mimeType := source.MIMEType
		if mimeType == "" {
			mimeType = DetectMIMEType(source.Identifier, source.Payload)
		}
		return &domain.RawDocument{
			URI:      source.Identifier,
			MIMEType: mimeType,
			Content:  source.Payload,
		}, nil

	default:
		return nil, fmt.Errorf("%w: kind %q", domain.ErrUnsupportedSourceType, source.Kind)
	}
}

// DetectMIMEType sniffs content and falls back to the file extension when
// the content alone is inconclusive.
func DetectMIMEType(name string, content []byte) string {
	detected := mimetype.Detect(content).String()
	base, _, _ := strings.Cut(detected, ";")

	if genericMIMETypes[base] {
		ext := strings.ToLower(filepath.Ext(name))
		if byExt, ok := extensionMIMETypes[ext]; ok {
			return byExt
		}
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return detected
}
