// Package chunker provides a recursive character text splitter.
//
// Text is split on the largest boundary present (paragraph, line, word,
// character) and the pieces are merged greedily into windows no longer than
// the chunk size. Adjacent windows share trailing pieces totalling at most
// the overlap. Lengths are counted in runes.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Splitter implements the interface.
var _ driven.Splitter = (*Splitter)(nil)

// DefaultSeparators are tried in order: paragraph, line, word, character.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter splits segments into overlapping chunks.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk length in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

// WithSeparators replaces the separator hierarchy. Without a trailing ""
// entry, a piece that cannot be split further is emitted as an oversized chunk.
func WithSeparators(separators ...string) Option {
	return func(s *Splitter) {
		s.separators = append([]string(nil), separators...)
	}
}

// New creates a splitter. It fails with domain.ErrInvalidArgument unless
// chunk size is positive and 0 <= overlap < chunk size.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize:  domain.DefaultChunkSize,
		overlap:    domain.DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidArgument, s.chunkSize)
	}
	if s.overlap < 0 || s.overlap >= s.chunkSize {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d",
			domain.ErrInvalidArgument, s.chunkSize, s.overlap)
	}
	if len(s.separators) == 0 {
		return nil, fmt.Errorf("%w: at least one separator is required", domain.ErrInvalidArgument)
	}

	return s, nil
}

// ChunkSize returns the configured maximum chunk length.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split chunks each segment independently. Chunks carry a copy of their
// segment's metadata; positions restart at 0 for every segment.
func (s *Splitter) Split(ctx context.Context, sourceID string, segments []domain.Segment) ([]domain.Chunk, error) {
	var chunks []domain.Chunk

	for segIdx, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for pos, text := range s.SplitText(seg.Text) {
			chunks = append(chunks, domain.Chunk{
				ID:       uuid.New().String(),
				SourceID: sourceID,
				Content:  text,
				Position: pos,
				Segment:  segIdx,
				Metadata: domain.CopyMetadata(seg.Metadata),
			})
		}
	}

	return chunks, nil
}

// SplitText splits a single text into chunk contents.
// Empty or whitespace-only text yields nil.
func (s *Splitter) SplitText(text string) []string {
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	var (
		result []string
		good   []string
	)
	for _, piece := range splitKeepingSeparator(text, separator) {
		if runeLen(piece) <= s.chunkSize {
			good = append(good, piece)
			continue
		}

		if len(good) > 0 {
			result = append(result, s.merge(good)...)
			good = nil
		}
		if len(remaining) == 0 {
			// Nothing finer to split on: keep the piece whole rather than lose text.
			if trimmed := strings.TrimSpace(piece); trimmed != "" {
				logger.Debug("chunker: emitting oversized chunk of %d characters", runeLen(trimmed))
				result = append(result, trimmed)
			}
			continue
		}
		result = append(result, s.split(piece, remaining)...)
	}
	if len(good) > 0 {
		result = append(result, s.merge(good)...)
	}

	return result
}

// merge combines small pieces into windows of at most chunkSize characters.
// After each window the leading pieces are dropped until no more than
// overlap characters remain, and those carry into the next window.
func (s *Splitter) merge(pieces []string) []string {
	var (
		windows []string
		current []string
		total   int
	)

	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > s.chunkSize && len(current) > 0 {
			if w := strings.TrimSpace(strings.Join(current, "")); w != "" {
				windows = append(windows, w)
			}
			for total > s.overlap || (total+n > s.chunkSize && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}

	if w := strings.TrimSpace(strings.Join(current, "")); w != "" {
		windows = append(windows, w)
	}
	return windows
}

// splitKeepingSeparator splits text on sep and re-attaches the separator to
// the start of each following piece so no characters are lost. An empty
// separator splits into individual characters. Empty pieces are dropped.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		pieces := make([]string, 0, len(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, sep)
	pieces := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
