package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

type fakeNormaliser struct {
	name     string
	mimes    []string
	priority int
}

func (f *fakeNormaliser) SupportedMIMETypes() []string { return f.mimes }
func (f *fakeNormaliser) Priority() int                { return f.priority }
func (f *fakeNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Segment: domain.Segment{Text: f.name + ":" + string(raw.Content)}}, nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeNormaliser{name: "low", mimes: []string{"text/plain"}, priority: 1})
	r.Register(&fakeNormaliser{name: "high", mimes: []string{"text/plain"}, priority: 90})
	r.Register(&fakeNormaliser{name: "mid", mimes: []string{"text/plain"}, priority: 50})

	result, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/plain", Content: []byte("x")})

	require.NoError(t, err)
	assert.Equal(t, "high:x", result.Segment.Text)
}

func TestRegistry_IgnoresParametersAndCase(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeNormaliser{name: "html", mimes: []string{"text/html"}, priority: 50})

	assert.True(t, r.Supports("Text/HTML; charset=UTF-8"))
	assert.True(t, r.Supports("text/html;charset=utf-8"))
}

func TestRegistry_Wildcard(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeNormaliser{name: "any", mimes: []string{"text/*"}, priority: 5})
	r.Register(&fakeNormaliser{name: "html", mimes: []string{"text/html"}, priority: 50})

	result, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/x-go", Content: []byte("y")})
	require.NoError(t, err)
	assert.Equal(t, "any:y", result.Segment.Text)

	result, err = r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/html", Content: []byte("z")})
	require.NoError(t, err)
	assert.Equal(t, "html:z", result.Segment.Text)

	assert.False(t, r.Supports("image/png"))
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "x.zip", MIMEType: "application/zip"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedSourceType)

	_, err = r.Normalise(context.Background(), &domain.RawDocument{URI: "x"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedSourceType)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	for _, mt := range []string{"text/plain", "text/markdown", "text/x-markdown", "text/html", "application/pdf", "application/json"} {
		assert.True(t, r.Supports(mt), mt)
	}
	types := r.SupportedMIMETypes()
	assert.Contains(t, types, "application/pdf")
	assert.IsIncreasing(t, types)
}

func TestNewDefaultRegistry_HTMLBeatsPlaintext(t *testing.T) {
	r := NewDefaultRegistry()

	result, err := r.Normalise(context.Background(), &domain.RawDocument{
		URI:      "page.html",
		MIMEType: "text/html",
		Content:  []byte("<p>Hello</p>"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello", result.Segment.Text)
}

func TestNewDefaultRegistry_MarkdownBeatsPlaintext(t *testing.T) {
	r := NewDefaultRegistry()

	result, err := r.Normalise(context.Background(), &domain.RawDocument{
		URI:      "notes.md",
		MIMEType: "text/markdown; charset=utf-8",
		Content:  []byte("# Notes\n\n**Cherries** are red."),
	})

	require.NoError(t, err)
	assert.Equal(t, "Notes\nCherries are red.", result.Segment.Text)
	assert.Equal(t, "Notes", result.Segment.Metadata[domain.MetaTitle])
}

func TestBaseMIMEType(t *testing.T) {
	assert.Equal(t, "text/plain", BaseMIMEType("text/plain; charset=utf-8"))
	assert.Equal(t, "application/pdf", BaseMIMEType("Application/PDF"))
	assert.Equal(t, "", BaseMIMEType(""))
	assert.Equal(t, "text/plain", BaseMIMEType("text/plain; bad=\""))
}
