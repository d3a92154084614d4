// Package markdown provides a Normaliser that reduces Markdown to its prose.
package markdown

import (
	"context"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	headingRe    = regexp.MustCompile(`^#{1,6}\s+`)
	fenceRe      = regexp.MustCompile("^\\s*(```|~~~)")
	ruleRe       = regexp.MustCompile(`^\s*([-*_]\s*){3,}$`)
	listRe       = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s+`)
	quoteRe      = regexp.MustCompile(`^\s*>\s?`)
	imageRe      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	refLinkRe    = regexp.MustCompile(`^\s*\[[^\]]+\]:\s+\S+`)
	tagRe        = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	emphasisRe   = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	italicRe     = regexp.MustCompile(`(^|[^\w*])[*_]([^*_\s][^*_]*?)[*_]`)
	codeSpanRe   = regexp.MustCompile("`([^`]*)`")
	strikeRe     = regexp.MustCompile(`~~(.+?)~~`)
	frontTitleRe = regexp.MustCompile(`^title:\s*["']?(.*?)["']?\s*$`)
)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise strips Markdown syntax, keeping headings, list items and code
// as plain lines. The title is the front matter title or the first H1.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidArgument
	}

	var charset string
	if _, params, err := mime.ParseMediaType(raw.MIMEType); err == nil {
		charset = params["charset"]
	}
	doc := parse(plaintext.Decode(raw.Content, charset))

	metadata := domain.CopyMetadata(raw.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata[domain.MetaSource] = raw.URI
	metadata[domain.MetaMIMEType] = raw.MIMEType
	if _, ok := metadata[domain.MetaTitle]; !ok {
		metadata[domain.MetaTitle] = doc.titleOr(raw.URI)
	}

	return &driven.NormaliseResult{
		Segment: domain.Segment{Text: doc.text, Metadata: metadata},
	}, nil
}

type document struct {
	title string
	text  string
}

func (d document) titleOr(uri string) string {
	if d.title != "" {
		return d.title
	}
	name := strings.TrimSuffix(filepath.Base(uri), filepath.Ext(uri))
	if name == "." || name == "/" {
		return ""
	}
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

func parse(source string) document {
	var (
		doc     document
		out     []string
		inFence bool
		inFront bool
	)

	for lineNo, line := range strings.Split(source, "\n") {
		line = strings.TrimRight(line, " \t\r")

		switch {
		case lineNo == 0 && line == "---":
			inFront = true
			continue
		case inFront:
			if line == "---" || line == "..." {
				inFront = false
			} else if m := frontTitleRe.FindStringSubmatch(line); m != nil && doc.title == "" {
				doc.title = strings.TrimSpace(m[1])
			}
			continue
		case fenceRe.MatchString(line):
			inFence = !inFence
			continue
		case inFence:
			if strings.TrimSpace(line) != "" {
				out = append(out, line)
			}
			continue
		}

		if ruleRe.MatchString(line) || refLinkRe.MatchString(line) {
			continue
		}

		if loc := headingRe.FindStringIndex(line); loc != nil {
			level := strings.Count(line[:loc[1]], "#")
			line = strings.TrimRight(line[loc[1]:], " #")
			if level == 1 && doc.title == "" {
				doc.title = inline(line)
			}
		}
		line = quoteRe.ReplaceAllString(line, "")
		line = listRe.ReplaceAllString(line, "")

		if text := inline(line); text != "" {
			out = append(out, text)
		}
	}

	doc.text = strings.Join(out, "\n")
	return doc
}

// inline removes span-level syntax from one line.
func inline(line string) string {
	line = imageRe.ReplaceAllString(line, "")
	line = linkRe.ReplaceAllString(line, "$1")
	line = tagRe.ReplaceAllString(line, "")
	line = codeSpanRe.ReplaceAllString(line, "$1")
	line = emphasisRe.ReplaceAllString(line, "$2")
	line = strikeRe.ReplaceAllString(line, "$1")
	line = italicRe.ReplaceAllString(line, "$1$2")
	return strings.Join(strings.Fields(line), " ")
}
