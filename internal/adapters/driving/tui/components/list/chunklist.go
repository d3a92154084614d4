// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ChunkList displays retrieved chunks as collapsible sections in a scrolling viewport.
// The first chunk starts expanded.
type ChunkList struct {
	chunks   []domain.ScoredChunk
	expanded []bool
	selected int
	styles   *styles.Styles
	viewport viewport.Model
	width    int
	height   int
}

// NewChunkList creates an empty chunk list.
func NewChunkList(s *styles.Styles) *ChunkList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ChunkList{
		styles:   s,
		viewport: viewport.New(80, 10),
		width:    80,
		height:   10,
	}
}

// Init initialises the chunk list.
func (c *ChunkList) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys.
func (c *ChunkList) Update(msg tea.Msg) (*ChunkList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			c.MoveUp()
		case "down", "j":
			c.MoveDown()
		case " ", "enter":
			c.Toggle()
		case "pgup":
			c.viewport.HalfViewUp()
		case "pgdown":
			c.viewport.HalfViewDown()
		}
	}
	return c, nil
}

// View renders the visible part of the list.
func (c *ChunkList) View() string {
	if len(c.chunks) == 0 {
		return c.styles.Muted.Render("No chunks retrieved yet.")
	}

	content, selectedLine := c.render()
	c.viewport.SetContent(content)
	c.scrollTo(selectedLine)

	header := c.styles.Label.Render(fmt.Sprintf("Retrieved Context (%d)", len(c.chunks)))
	return lipgloss.JoinVertical(lipgloss.Left, header, c.viewport.View())
}

// render lays out every chunk and reports the line of the selected header.
func (c *ChunkList) render() (string, int) {
	lines := make([]string, 0, len(c.chunks)*3)
	selectedLine := 0

	for i := range c.chunks {
		if i == c.selected {
			selectedLine = len(lines)
		}
		lines = append(lines, c.renderHeader(i))
		if c.expanded[i] {
			body := c.styles.ChunkBody.Width(c.width).Render(c.chunks[i].Chunk.Content)
			lines = append(lines, strings.Split(body, "\n")...)
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n"), selectedLine
}

func (c *ChunkList) renderHeader(i int) string {
	marker := "▸"
	if c.expanded[i] {
		marker = "▾"
	}
	title := fmt.Sprintf("%s Chunk %d", marker, i+1)
	score := fmt.Sprintf("score %.3f", c.chunks[i].Score)

	if i == c.selected {
		return c.styles.SelectedChunkHeader.Render(title + "  " + score)
	}
	return c.styles.ChunkHeader.Render(title) + "  " + c.styles.Muted.Render(score)
}

// scrollTo keeps line inside the viewport.
func (c *ChunkList) scrollTo(line int) {
	switch {
	case line < c.viewport.YOffset:
		c.viewport.SetYOffset(line)
	case line >= c.viewport.YOffset+c.viewport.Height:
		c.viewport.SetYOffset(line - c.viewport.Height + 1)
	}
}

// SetChunks replaces the list, expanding only the first chunk.
func (c *ChunkList) SetChunks(chunks []domain.ScoredChunk) {
	c.chunks = chunks
	c.expanded = make([]bool, len(chunks))
	if len(chunks) > 0 {
		c.expanded[0] = true
	}
	c.selected = 0
	c.viewport.GotoTop()
}

// Chunks returns the current chunks.
func (c *ChunkList) Chunks() []domain.ScoredChunk {
	return c.chunks
}

// Selected returns the index of the selected chunk.
func (c *ChunkList) Selected() int {
	return c.selected
}

// Expanded reports whether chunk i is expanded.
func (c *ChunkList) Expanded(i int) bool {
	return i >= 0 && i < len(c.expanded) && c.expanded[i]
}

// Toggle expands or collapses the selected chunk.
func (c *ChunkList) Toggle() {
	if len(c.chunks) == 0 {
		return
	}
	c.expanded[c.selected] = !c.expanded[c.selected]
}

// MoveUp moves selection up.
func (c *ChunkList) MoveUp() {
	if c.selected > 0 {
		c.selected--
	}
}

// MoveDown moves selection down.
func (c *ChunkList) MoveDown() {
	if c.selected < len(c.chunks)-1 {
		c.selected++
	}
}

// SetDimensions sets the component dimensions.
func (c *ChunkList) SetDimensions(width, height int) {
	if height < 3 {
		height = 3
	}
	c.width = width
	c.height = height
	c.viewport.Width = width
	c.viewport.Height = height - 1
}

// Count returns the number of chunks.
func (c *ChunkList) Count() int {
	return len(c.chunks)
}

// IsEmpty returns whether the list is empty.
func (c *ChunkList) IsEmpty() bool {
	return len(c.chunks) == 0
}
