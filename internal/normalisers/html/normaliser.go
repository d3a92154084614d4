package html

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Normaliser)(nil)

type Normaliser struct{}

func New() *Normaliser {
	return &Normaliser{}
}

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority ranks above plaintext so pages are never read as raw markup.
func (n *Normaliser) Priority() int {
	return 50
}

func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidArgument
	}

	text, err := decode(raw.Content, raw.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrUnsupportedSourceType, raw.URI, err)
	}
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrUnsupportedSourceType, raw.URI, err)
	}
	p := readPage(doc)

	metadata := domain.CopyMetadata(raw.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata[domain.MetaSource] = raw.URI
	metadata[domain.MetaMIMEType] = raw.MIMEType
	metadata[domain.MetaTitle] = p.titleOr(raw.URI)
	if p.lang != "" {
		metadata[domain.MetaLanguage] = p.lang
	}
	if p.description != "" {
		metadata[domain.MetaDescription] = p.description
	}

	return &driven.NormaliseResult{
		Segment: domain.Segment{Text: p.text, Metadata: metadata},
	}, nil
}

// decode returns content as UTF-8, honouring a BOM, the Content-Type charset or a <meta> charset.
func decode(content []byte, contentType string) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	enc, name, _ := charset.DetermineEncoding(content, contentType)
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(content), enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("transcode from %s: %w", name, err)
	}
	return string(decoded), nil
}

// page is what the normaliser keeps from a parsed document.
type page struct {
	title       string
	lang        string
	description string
	text        string
}

// Elements whose content is never visible text. Title and meta are read for metadata.
var skipped = map[atom.Atom]bool{
	atom.Head: true, atom.Title: true, atom.Meta: true, atom.Script: true,
	atom.Style: true, atom.Noscript: true, atom.Svg: true, atom.Template: true,
	atom.Iframe: true, atom.Object: true,
}

// Elements that start and end a line.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Tr: true, atom.Table: true, atom.Blockquote: true, atom.Pre: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Nav: true, atom.Main: true, atom.Aside: true, atom.Ul: true, atom.Ol: true,
	atom.Dl: true, atom.Dt: true, atom.Dd: true, atom.Figure: true, atom.Figcaption: true,
}

func readPage(doc *html.Node) page {
	var p page
	var body strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			body.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipped[n.DataAtom] {
				p.collect(n)
				return
			}
			switch n.DataAtom {
			case atom.Html:
				p.lang = strings.TrimSpace(attr(n, "lang"))
			case atom.Td, atom.Th:
				body.WriteByte(' ')
			}
			if blocks[n.DataAtom] {
				body.WriteByte('\n')
				defer body.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	p.text = tidy(body.String())
	return p
}

// collect picks the title and description out of a skipped subtree.
func (p *page) collect(n *html.Node) {
	switch n.DataAtom {
	case atom.Title:
		if p.title == "" && n.Namespace == "" {
			p.title = strings.TrimSpace(textOf(n))
		}
		return
	case atom.Meta:
		if strings.EqualFold(attr(n, "name"), "description") {
			p.description = strings.TrimSpace(attr(n, "content"))
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			p.collect(c)
		}
	}
}

func (p page) titleOr(uri string) string {
	if p.title != "" {
		return p.title
	}
	if u, err := url.Parse(uri); err == nil && u.Host != "" {
		if strings.Trim(u.Path, "/") == "" {
			return u.Host
		}
		uri = u.Path
	}
	name := path.Base(strings.TrimSuffix(uri, "/"))
	name = strings.TrimSuffix(name, path.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// tidy collapses runs of spaces and drops blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
