package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func sampleChunks() []domain.ScoredChunk {
	return []domain.ScoredChunk{
		{Chunk: domain.Chunk{Content: "Cherries are red."}, Score: 0.577, Rank: 1},
		{Chunk: domain.Chunk{Content: "are yellow."}, Score: 0.354, Rank: 2},
		{Chunk: domain.Chunk{Content: "Apples are red."}, Score: 0.289, Rank: 3},
	}
}

func TestNewChunkList(t *testing.T) {
	list := NewChunkList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
	assert.True(t, list.IsEmpty())
	assert.Nil(t, list.Init())
	assert.Contains(t, list.View(), "No chunks retrieved yet.")
}

func TestChunkList_SetChunksExpandsFirst(t *testing.T) {
	list := NewChunkList(nil)

	list.SetChunks(sampleChunks())

	assert.Equal(t, 3, list.Count())
	assert.Equal(t, 0, list.Selected())
	assert.True(t, list.Expanded(0))
	assert.False(t, list.Expanded(1))
	assert.False(t, list.Expanded(2))
	assert.False(t, list.Expanded(3))
}

func TestChunkList_Navigation(t *testing.T) {
	list := NewChunkList(nil)
	list.SetChunks(sampleChunks())

	list.MoveUp()
	assert.Equal(t, 0, list.Selected())

	list.Update(tea.KeyMsg{Type: tea.KeyDown})
	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, list.Selected())

	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, list.Selected())
}

func TestChunkList_Toggle(t *testing.T) {
	list := NewChunkList(nil)
	list.SetChunks(sampleChunks())

	list.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.False(t, list.Expanded(0))

	list.MoveDown()
	list.Toggle()
	assert.True(t, list.Expanded(1))
}

func TestChunkList_ToggleEmpty(t *testing.T) {
	list := NewChunkList(nil)

	list.Toggle()

	assert.True(t, list.IsEmpty())
}

func TestChunkList_View(t *testing.T) {
	list := NewChunkList(nil)
	list.SetDimensions(80, 20)
	list.SetChunks(sampleChunks())

	view := list.View()

	assert.Contains(t, view, "Retrieved Context (3)")
	assert.Contains(t, view, "Chunk 1")
	assert.Contains(t, view, "Chunk 3")
	assert.Contains(t, view, "Cherries are red.")
	assert.NotContains(t, view, "Apples are red.")
	assert.Contains(t, view, "score 0.577")
}

func TestChunkList_ViewScrollsToSelection(t *testing.T) {
	chunks := make([]domain.ScoredChunk, 30)
	for i := range chunks {
		chunks[i] = domain.ScoredChunk{Chunk: domain.Chunk{Content: "text"}, Rank: i + 1}
	}
	list := NewChunkList(nil)
	list.SetDimensions(80, 6)
	list.SetChunks(chunks)

	for i := 0; i < 29; i++ {
		list.MoveDown()
	}
	view := list.View()

	assert.Contains(t, view, "Chunk 30")
	assert.False(t, strings.Contains(view, "Chunk 1 "), "first chunk should have scrolled out")
}

func TestChunkList_SetDimensionsClamps(t *testing.T) {
	list := NewChunkList(nil)

	list.SetDimensions(40, 1)

	assert.Equal(t, 3, list.height)
	assert.Equal(t, 2, list.viewport.Height)
}
