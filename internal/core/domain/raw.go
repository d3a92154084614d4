package domain

// RawDocument represents bytes awaiting normalisation.
// Both uploaded documents and fetched web pages become a RawDocument.
type RawDocument struct {
	// URI is the original location (file name or URL).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata carries provenance collected before normalisation.
	Metadata map[string]any
}

// Segment is normalised text with provenance metadata.
// A source yields one or more segments; each is chunked independently.
type Segment struct {
	// Text is the extracted plain text.
	Text string

	// Metadata describes where the text came from (source, title, language, ...).
	Metadata map[string]any
}

// CopyMetadata returns a shallow copy of a metadata map.
func CopyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Well-known segment metadata keys.
const (
	MetaSource      = "source"
	MetaTitle       = "title"
	MetaMIMEType    = "mime_type"
	MetaLanguage    = "language"
	MetaDescription = "description"
	MetaPages       = "pages"
)
