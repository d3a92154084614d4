package chunker

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func mustNew(t *testing.T, opts ...Option) *Splitter {
	t.Helper()
	s, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := mustNew(t)
		if s.ChunkSize() != 500 {
			t.Errorf("expected chunkSize 500, got %d", s.ChunkSize())
		}
		if s.Overlap() != 50 {
			t.Errorf("expected overlap 50, got %d", s.Overlap())
		}
	})

	t.Run("custom values", func(t *testing.T) {
		s := mustNew(t, WithChunkSize(20), WithOverlap(5))
		if s.ChunkSize() != 20 || s.Overlap() != 5 {
			t.Errorf("expected 20/5, got %d/%d", s.ChunkSize(), s.Overlap())
		}
	})

	invalid := []struct {
		name string
		opts []Option
	}{
		{"zero chunk size", []Option{WithChunkSize(0)}},
		{"negative chunk size", []Option{WithChunkSize(-10)}},
		{"negative overlap", []Option{WithOverlap(-1)}},
		{"overlap equals size", []Option{WithChunkSize(100), WithOverlap(100)}},
		{"overlap exceeds size", []Option{WithChunkSize(100), WithOverlap(150)}},
		{"no separators", []Option{WithSeparators()}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestSplitText_SentenceExample(t *testing.T) {
	s := mustNew(t, WithChunkSize(20), WithOverlap(5))

	got := s.SplitText("Apples are red. Bananas are yellow. Cherries are red.")

	want := []string{
		"Apples are red.",
		"red. Bananas are",
		"are yellow.",
		"Cherries are red.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected chunks:\n got  %q\n want %q", got, want)
	}
}

func TestSplitText_Empty(t *testing.T) {
	s := mustNew(t)

	for _, text := range []string{"", "   ", "\n\n\n"} {
		if got := s.SplitText(text); len(got) != 0 {
			t.Errorf("expected no chunks for %q, got %q", text, got)
		}
	}
}

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	s := mustNew(t)

	got := s.SplitText("  Short document.  ")

	if !reflect.DeepEqual(got, []string{"Short document."}) {
		t.Errorf("unexpected chunks: %q", got)
	}
}

func TestSplitText_PrefersParagraphBoundaries(t *testing.T) {
	s := mustNew(t, WithChunkSize(40), WithOverlap(0))

	got := s.SplitText("First paragraph here.\n\nSecond paragraph here.")

	want := []string{"First paragraph here.", "Second paragraph here."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected chunks: %q", got)
	}
}

func TestSplitText_OversizedAtomicUnit(t *testing.T) {
	s := mustNew(t, WithChunkSize(10), WithOverlap(2), WithSeparators(" "))

	got := s.SplitText("a supercalifragilisticexpialidocious word")

	want := []string{"a", "supercalifragilisticexpialidocious", "word"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected chunks: %q", got)
	}
}

func TestSplitText_LongWordFallsBackToCharacters(t *testing.T) {
	s := mustNew(t, WithChunkSize(10), WithOverlap(2))

	got := s.SplitText("supercalifragilisticexpialidocious")

	for _, c := range got {
		if n := utf8.RuneCountInString(c); n > 10 {
			t.Errorf("chunk %q has %d characters", c, n)
		}
	}
	if got[0] != "supercalif" {
		t.Errorf("unexpected first chunk %q", got[0])
	}
}

func TestSplitText_CountsRunesNotBytes(t *testing.T) {
	s := mustNew(t, WithChunkSize(5), WithOverlap(0))

	got := s.SplitText("äöü äöü")

	want := []string{"äöü", "äöü"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected chunks: %q", got)
	}
}

// numberedText builds text of unique tokens so overlaps can be located exactly.
func numberedText(words int) string {
	var b strings.Builder
	for i := 0; i < words; i++ {
		switch {
		case i > 0 && i%37 == 0:
			b.WriteString("\n\n")
		case i > 0 && i%11 == 0:
			b.WriteString("\n")
		case i > 0:
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "w%04d", i)
	}
	return b.String()
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func TestSplitText_Properties(t *testing.T) {
	configs := []struct{ size, overlap int }{
		{20, 5},
		{50, 10},
		{100, 0},
		{500, 50},
	}
	text := numberedText(400)

	for _, cfg := range configs {
		t.Run(fmt.Sprintf("size=%d overlap=%d", cfg.size, cfg.overlap), func(t *testing.T) {
			s := mustNew(t, WithChunkSize(cfg.size), WithOverlap(cfg.overlap))
			chunks := s.SplitText(text)
			if len(chunks) == 0 {
				t.Fatal("expected chunks")
			}

			// Size bound.
			for i, c := range chunks {
				if n := utf8.RuneCountInString(c); n > cfg.size {
					t.Errorf("chunk %d has %d characters, limit %d", i, n, cfg.size)
				}
			}

			// Coverage: removing each chunk's overlap with its predecessor
			// reconstructs the text, ignoring whitespace.
			rebuilt := stripSpace(chunks[0])
			for i := 1; i < len(chunks); i++ {
				next := stripSpace(chunks[i])
				shared := 0
				for k := len(next); k > 0; k-- {
					if strings.HasSuffix(rebuilt, next[:k]) {
						shared = k
						break
					}
				}
				if cfg.overlap == 0 && shared > 0 {
					t.Errorf("chunk %d overlaps predecessor by %d characters with overlap disabled", i, shared)
				}
				if shared > cfg.overlap {
					t.Errorf("chunk %d overlaps predecessor by %d characters, limit %d", i, shared, cfg.overlap)
				}
				rebuilt += next[shared:]
			}
			if rebuilt != stripSpace(text) {
				t.Error("chunks do not reconstruct the original text")
			}
		})
	}
}

func TestSplitText_Deterministic(t *testing.T) {
	s := mustNew(t, WithChunkSize(30), WithOverlap(8))
	text := numberedText(120)

	if !reflect.DeepEqual(s.SplitText(text), s.SplitText(text)) {
		t.Error("expected identical chunks for identical input")
	}
}

func TestSplit_Segments(t *testing.T) {
	s := mustNew(t, WithChunkSize(20), WithOverlap(5))
	segments := []domain.Segment{
		{Text: "Apples are red. Bananas are yellow.", Metadata: map[string]any{"source": "https://a.example"}},
		{Text: ""},
		{Text: "Cherries are red.", Metadata: map[string]any{"source": "https://b.example"}},
	}

	chunks, err := s.Split(context.Background(), "site", segments)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d: %+v", len(chunks), chunks)
	}

	wantPositions := []int{0, 1, 2, 0}
	wantSegments := []int{0, 0, 0, 2}
	for i, c := range chunks {
		if c.Position != wantPositions[i] {
			t.Errorf("chunk %d: expected position %d, got %d", i, wantPositions[i], c.Position)
		}
		if c.Segment != wantSegments[i] {
			t.Errorf("chunk %d: expected segment %d, got %d", i, wantSegments[i], c.Segment)
		}
		if c.SourceID != "site" {
			t.Errorf("chunk %d: expected source id 'site', got %q", i, c.SourceID)
		}
		if c.ID == "" {
			t.Errorf("chunk %d: expected an id", i)
		}
	}
	if chunks[3].Metadata["source"] != "https://b.example" {
		t.Errorf("expected segment metadata on chunk, got %v", chunks[3].Metadata)
	}

	// Metadata is copied, not shared.
	chunks[0].Metadata["source"] = "changed"
	if segments[0].Metadata["source"] != "https://a.example" {
		t.Error("chunk metadata must not alias segment metadata")
	}
}

func TestSplit_NoSegments(t *testing.T) {
	s := mustNew(t)

	chunks, err := s.Split(context.Background(), "a.txt", nil)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestSplit_CancelledContext(t *testing.T) {
	s := mustNew(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Split(ctx, "a.txt", []domain.Segment{{Text: "hello"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
