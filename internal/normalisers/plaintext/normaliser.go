// Package plaintext provides the fallback Normaliser for textual documents.
//
// Bytes are decoded leniently: a byte-order mark or charset parameter
// selects the encoding, and anything still invalid as UTF-8 is dropped.
package plaintext

import (
	"context"
	"mime"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
// "text/*" matches any textual type without a dedicated normaliser.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/*",
		"text/markdown",
		"text/csv",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise decodes the document as text. It never fails on malformed bytes.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidArgument
	}

	metadata := domain.CopyMetadata(raw.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata[domain.MetaSource] = raw.URI
	metadata[domain.MetaMIMEType] = raw.MIMEType
	if _, ok := metadata[domain.MetaTitle]; !ok {
		metadata[domain.MetaTitle] = extractTitle(raw.URI)
	}

	return &driven.NormaliseResult{
		Segment: domain.Segment{
			Text:     Decode(raw.Content, charsetOf(raw.MIMEType)),
			Metadata: metadata,
		},
	}, nil
}

// Decode converts content to valid UTF-8. A BOM wins over charset; an empty
// or unknown charset means UTF-8. Invalid sequences are removed.
func Decode(content []byte, charset string) string {
	var fallback transform.Transformer = transform.Nop
	if charset != "" && !strings.EqualFold(charset, "utf-8") {
		if enc, err := htmlindex.Get(charset); err == nil {
			fallback = enc.NewDecoder()
		}
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(fallback), content)
	if err != nil {
		decoded = content
	}
	return strings.ToValidUTF8(string(decoded), "")
}

func charsetOf(mimeType string) string {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// extractTitle extracts a human-readable title from a URI.
func extractTitle(uri string) string {
	filename := filepath.Base(uri)
	if filename == "." || filename == "/" {
		return ""
	}

	// Remove common extensions for cleaner title
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
