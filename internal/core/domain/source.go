package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// SourceKind identifies how a source's content is obtained.
type SourceKind string

// Available source kinds.
const (
	// SourceKindDocument is an uploaded file whose bytes travel with the source.
	SourceKindDocument SourceKind = "document"

	// SourceKindWebsite is a URL fetched at ingestion time.
	SourceKindWebsite SourceKind = "website"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	return k == SourceKindDocument || k == SourceKindWebsite
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// Source is a caller's request to ingest one document or website.
// It only lives for the duration of an ingestion.
type Source struct {
	// Kind is document or website.
	Kind SourceKind

	// Identifier is the filename or URL. The active corpus is keyed by it.
	Identifier string

	// Payload holds the document bytes. Empty for websites.
	Payload []byte

	// MIMEType is the caller-declared content type, if known.
	// When empty the extractor detects it.
	MIMEType string
}

// NewDocumentSource creates a document source from a name and its bytes.
func NewDocumentSource(identifier string, payload []byte) Source {
	return Source{
		Kind:       SourceKindDocument,
		Identifier: identifier,
		Payload:    payload,
	}
}

// NewWebsiteSource creates a website source for the given URL.
func NewWebsiteSource(rawURL string) Source {
	return Source{
		Kind:       SourceKindWebsite,
		Identifier: strings.TrimSpace(rawURL),
	}
}

// Validate checks the source before any extraction work is done.
func (s Source) Validate() error {
	if strings.TrimSpace(s.Identifier) == "" {
		return fmt.Errorf("%w: source identifier is empty", ErrInvalidArgument)
	}

	switch s.Kind {
	case SourceKindDocument:
		return nil
	case SourceKindWebsite:
		u, err := url.Parse(s.Identifier)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: scheme %q", ErrUnsupportedSourceType, u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("%w: url has no host", ErrInvalidArgument)
		}
		return nil
	default:
		return fmt.Errorf("%w: kind %q", ErrUnsupportedSourceType, s.Kind)
	}
}

// LooksLikeURL reports whether an identifier typed by a user names a website.
func LooksLikeURL(identifier string) bool {
	lower := strings.ToLower(strings.TrimSpace(identifier))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
