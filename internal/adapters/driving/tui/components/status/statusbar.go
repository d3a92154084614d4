// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
)

// State represents what the session is doing, for display.
type State string

const (
	StateIdle    State = "idle"
	StateWorking State = "working"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Bar displays the session state and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	spinner  spinner.Model
	state    State
	message  string
	browsing bool
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Label

	return &Bar{
		styles:  s,
		keymap:  km,
		spinner: sp,
		state:   StateIdle,
		width:   80,
	}
}

// Init initialises the status bar.
func (b *Bar) Init() tea.Cmd {
	return nil
}

// Update advances the spinner while work is in progress.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok || b.state != StateWorking {
		return b, nil
	}
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(msg)
	return b, cmd
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateWorking:
		return b.spinner.View() + " " + b.styles.Normal.Render(b.message)
	case StateError:
		return b.styles.Error.Render(fmt.Sprintf("Error: %s", b.message))
	case StateReady:
		return b.styles.Success.Render(b.message)
	case StateIdle:
	}
	if b.message != "" {
		return b.styles.Muted.Render(b.message)
	}
	return b.styles.Muted.Render("No data loaded")
}

func (b *Bar) renderRight() string {
	var bindings []key.Binding
	if b.browsing {
		bindings = b.keymap.ResultsHelp()
	} else {
		bindings = b.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Help.Render(strings.Join(hints, " | "))
}

// Working shows the spinner with message and returns the command that animates it.
func (b *Bar) Working(message string) tea.Cmd {
	b.state = StateWorking
	b.message = message
	return b.spinner.Tick
}

// Ready shows a success message.
func (b *Bar) Ready(message string) {
	b.state = StateReady
	b.message = message
}

// Fail shows an error message.
func (b *Bar) Fail(message string) {
	b.state = StateError
	b.message = message
}

// Idle shows a neutral message. An empty message shows the default.
func (b *Bar) Idle(message string) {
	b.state = StateIdle
	b.message = message
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetBrowsing switches the hints between input and result navigation.
func (b *Bar) SetBrowsing(browsing bool) {
	b.browsing = browsing
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}
