// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is the palette. Each colour has a light and a dark terminal variant.
type Theme struct {
	Primary    lipgloss.AdaptiveColor
	Secondary  lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Success    lipgloss.AdaptiveColor
	Warning    lipgloss.AdaptiveColor
	Error      lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor
	Bar        lipgloss.AdaptiveColor
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func DefaultTheme() *Theme {
	return &Theme{
		Primary:    adaptive("#6D28D9", "#7C3AED"),
		Secondary:  adaptive("#0E7490", "#06B6D4"),
		Foreground: adaptive("#1E1E2E", "#CDD6F4"),
		Muted:      adaptive("#6C6F85", "#6C7086"),
		Success:    adaptive("#40A02B", "#A6E3A1"),
		Warning:    adaptive("#DF8E1D", "#F9E2AF"),
		Error:      adaptive("#D20F39", "#F38BA8"),
		Border:     adaptive("#BCC0CC", "#45475A"),
		Bar:        adaptive("#E6E9EF", "#181825"),
	}
}

// Styles are the rendered roles the session view draws with.
type Styles struct {
	theme *Theme

	Title  lipgloss.Style
	Label  lipgloss.Style
	Normal lipgloss.Style
	Muted  lipgloss.Style

	// FocusedField and BlurredField frame the source and question inputs.
	FocusedField lipgloss.Style
	BlurredField lipgloss.Style

	// Chunk rows: a header per result, the body when expanded.
	ChunkHeader         lipgloss.Style
	SelectedChunkHeader lipgloss.Style
	ChunkBody           lipgloss.Style

	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	StatusBar lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles builds styles from theme, or from DefaultTheme when theme is nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.TerminalColor) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	field := lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).Padding(0, 1)

	return &Styles{
		theme: theme,

		Title:  fg(theme.Primary).Bold(true),
		Label:  fg(theme.Secondary).Bold(true),
		Normal: fg(theme.Foreground),
		Muted:  fg(theme.Muted),

		FocusedField: field.BorderForeground(theme.Primary),
		BlurredField: field.BorderForeground(theme.Border),

		ChunkHeader:         fg(theme.Secondary),
		SelectedChunkHeader: fg(theme.Foreground).Background(theme.Primary).Bold(true),
		ChunkBody:           fg(theme.Foreground).PaddingLeft(4),

		Success:   fg(theme.Success),
		Warning:   fg(theme.Warning),
		Error:     fg(theme.Error),
		StatusBar: fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Help:      fg(theme.Muted),
	}
}

func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

func (s *Styles) Theme() *Theme {
	return s.theme
}
