// Package session provides the single-screen retrieval view: load a source,
// ask a question, browse the retrieved chunks.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

// Focus identifies which part of the view receives keys.
type Focus int

const (
	FocusSource Focus = iota
	FocusQuestion
	FocusResults
)

// reserved is the number of rows used by everything except the chunk list.
const reserved = 14

// View is the retrieval session: source field, question field, chunk list and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	help      help.Model
	source    *input.Field
	question  *input.Field
	list      *list.ChunkList
	statusbar *status.Bar

	corpus driving.CorpusService
	topK   int
	ctx    context.Context

	focus    Focus
	busy     bool
	showHelp bool
	width    int
	height   int
}

// NewView creates a session view. topK is the number of chunks retrieved per question.
func NewView(s *styles.Styles, km *keymap.KeyMap, corpus driving.CorpusService, topK int) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:    s,
		keymap:    km,
		help:      help.New(),
		source:    input.NewField(s, "Document or website", "path/to/file.pdf or https://..."),
		question:  input.NewField(s, "Question", "Ask a question about the loaded source"),
		list:      list.NewChunkList(s),
		statusbar: status.NewBar(s, km),
		corpus:    corpus,
		topK:      topK,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
	v.source.Focus()
	v.syncStatus()
	return v
}

// WithContext sets the context used for ingestion and queries.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.source.Init()
}

// Update handles messages for the session view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.IngestCompleted:
		return v, v.handleIngestCompleted(msg)

	case messages.QueryCompleted:
		return v, v.handleQueryCompleted(msg)

	case messages.CorpusCleared:
		v.busy = false
		v.list.SetChunks(nil)
		v.statusbar.Idle("Data cleared")
		return v, v.setFocus(FocusSource)
	}

	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Help):
		v.showHelp = !v.showHelp
		return v, nil
	case keymap.Matches(key, v.keymap.Clear):
		return v, v.clear()
	case keymap.Matches(key, v.keymap.NextField):
		return v, v.setFocus((v.focus + 1) % v.focusCount())
	}

	if v.focus == FocusResults {
		v.list, _ = v.list.Update(msg)
		return v, nil
	}

	if keymap.Matches(key, v.keymap.Submit) {
		if v.busy {
			return v, nil
		}
		if v.focus == FocusSource {
			return v, v.submitSource()
		}
		return v, v.submitQuestion()
	}

	var cmd tea.Cmd
	if v.focus == FocusSource {
		v.source, cmd = v.source.Update(msg)
	} else {
		v.question, cmd = v.question.Update(msg)
	}
	return v, cmd
}

// focusCount excludes the results while there are none.
func (v *View) focusCount() Focus {
	if v.list.IsEmpty() {
		return FocusResults
	}
	return FocusResults + 1
}

func (v *View) setFocus(f Focus) tea.Cmd {
	v.focus = f
	v.source.Blur()
	v.question.Blur()
	v.statusbar.SetBrowsing(f == FocusResults)

	switch f {
	case FocusSource:
		return v.source.Focus()
	case FocusQuestion:
		return v.question.Focus()
	case FocusResults:
	}
	return nil
}

func (v *View) submitSource() tea.Cmd {
	raw := strings.TrimSpace(v.source.Value())
	if raw == "" {
		return nil
	}

	v.busy = true
	spin := v.statusbar.Working("Loading " + raw + "...")
	return tea.Batch(spin, v.ingest(raw))
}

func (v *View) ingest(raw string) tea.Cmd {
	corpus, ctx := v.corpus, v.ctx
	return func() tea.Msg {
		source, err := services.ResolveSource(raw)
		if err != nil {
			return messages.IngestCompleted{Input: raw, Err: err}
		}
		result, err := corpus.Ingest(ctx, source)
		return messages.IngestCompleted{Input: raw, Result: result, Err: err}
	}
}

func (v *View) submitQuestion() tea.Cmd {
	question := strings.TrimSpace(v.question.Value())
	if question == "" {
		return nil
	}
	if !v.corpus.Status().IsReady() {
		v.statusbar.Fail(domain.Describe(domain.ErrNoActiveCorpus))
		return nil
	}

	v.busy = true
	spin := v.statusbar.Working("Retrieving context...")

	corpus, ctx, k := v.corpus, v.ctx, v.topK
	return tea.Batch(spin, func() tea.Msg {
		results, err := corpus.Query(ctx, question, k)
		return messages.QueryCompleted{Question: question, Results: results, Err: err}
	})
}

func (v *View) clear() tea.Cmd {
	corpus := v.corpus
	return func() tea.Msg {
		corpus.Clear()
		return messages.CorpusCleared{}
	}
}

func (v *View) handleIngestCompleted(msg messages.IngestCompleted) tea.Cmd {
	v.busy = false
	if msg.Err != nil {
		v.statusbar.Fail(domain.Describe(msg.Err))
		return nil
	}

	if !msg.Result.Reused {
		v.list.SetChunks(nil)
	}
	v.statusbar.Ready(msg.Result.Summary())
	return v.setFocus(FocusQuestion)
}

func (v *View) handleQueryCompleted(msg messages.QueryCompleted) tea.Cmd {
	v.busy = false
	if msg.Err != nil {
		v.statusbar.Fail(domain.Describe(msg.Err))
		return nil
	}

	v.list.SetChunks(msg.Results)
	if len(msg.Results) == 0 {
		v.syncStatus()
		return nil
	}
	v.statusbar.Ready(fmt.Sprintf("Retrieved %d chunks from %s", len(msg.Results), v.corpus.Status().SourceIdentifier))
	return v.setFocus(FocusResults)
}

// syncStatus shows what is currently loaded.
func (v *View) syncStatus() {
	if v.corpus == nil {
		return
	}
	if st := v.corpus.Status(); st.IsReady() {
		v.statusbar.Ready(fmt.Sprintf("Loaded: %s (%d chunks)", st.SourceIdentifier, st.ChunkCount))
		return
	}
	v.statusbar.Idle("")
}

// View renders the session view.
func (v *View) View() string {
	sections := []string{
		v.styles.Title.Render("sercha-rag"),
		v.styles.Muted.Render("Upload a document or paste a website URL, then ask a question."),
		"",
		v.source.View(),
		v.question.View(),
		"",
		v.list.View(),
	}

	if v.showHelp {
		sections = append(sections, "", v.help.FullHelpView(v.keymap.FullHelp()))
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height

	v.source.SetWidth(width)
	v.question.SetWidth(width)
	v.list.SetDimensions(width, height-reserved)
	v.statusbar.SetWidth(width)
	v.help.Width = width
}

// Focus returns which part of the view has focus.
func (v *View) Focus() Focus {
	return v.focus
}

// Busy reports whether an ingestion or query is running.
func (v *View) Busy() bool {
	return v.busy
}

// SetSource sets the source field.
func (v *View) SetSource(value string) {
	v.source.SetValue(value)
}

// SetQuestion sets the question field.
func (v *View) SetQuestion(value string) {
	v.question.SetValue(value)
}

// Chunks returns the retrieved chunks on screen.
func (v *View) Chunks() []domain.ScoredChunk {
	return v.list.Chunks()
}

// StatusMessage returns the status bar text.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// StatusState returns the status bar state.
func (v *View) StatusState() status.State {
	return v.statusbar.State()
}
