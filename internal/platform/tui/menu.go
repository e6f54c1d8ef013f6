package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-pong/internal/registry"
)

// MenuKeyMap defines the key bindings for the mode picker.
type MenuKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Fewer   key.Binding
	More    key.Binding
	Select  key.Binding
	Results key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k MenuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Fewer, k.More, k.Select, k.Results, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k MenuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultMenuKeyMap returns default key bindings.
func DefaultMenuKeyMap() MenuKeyMap {
	return MenuKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "w"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "s"),
			key.WithHelp("↓/j", "down"),
		),
		Fewer: key.NewBinding(
			key.WithKeys("left", "h", "a"),
			key.WithHelp("←", "fewer players"),
		),
		More: key.NewBinding(
			key.WithKeys("right", "l", "d"),
			key.WithHelp("→", "more players"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "play"),
		),
		Results: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "results"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// MenuModel is the Bubble Tea model for the mode picker.
type MenuModel struct {
	modes       []registry.ModeInfo
	cursor      int
	players     int
	width       int
	height      int
	keys        MenuKeyMap
	help        help.Model
	quitting    bool
	selected    *registry.ModeInfo
	openResults bool
}

// NewMenuModel creates a new menu model with the given default player count.
func NewMenuModel(players, width, height int) MenuModel {
	if players < 2 || players > 4 {
		players = 2
	}
	return MenuModel{
		modes:   registry.List(),
		players: players,
		width:   width,
		height:  height,
		keys:    DefaultMenuKeyMap(),
		help:    help.New(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.modes)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Fewer):
		if m.players > 2 {
			m.players--
		}

	case key.Matches(msg, m.keys.More):
		if m.players < 4 {
			m.players++
		}

	case key.Matches(msg, m.keys.Select):
		if len(m.modes) > 0 {
			selected := m.modes[m.cursor]
			m.selected = &selected
			return m, tea.Quit
		}

	case key.Matches(msg, m.keys.Results):
		m.openResults = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("  P O N G  "), m.width, 11))
	b.WriteString("\n\n")

	players := fmt.Sprintf("< %d players >", m.players)
	b.WriteString(centerText(players, m.width, len(players)))
	b.WriteString("\n\n")

	for i, mode := range m.modes {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-10s", cursor, mode.Title)
		b.WriteString(centerText(line, m.width, len(line)))
		b.WriteString("\n")
		if i == m.cursor {
			b.WriteString(centerText(dimStyle.Render(mode.Description), m.width, len(mode.Description)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	b.WriteString("\n")
	return b.String()
}

// centerText pads text so that a visible width of n sits centered in width.
func centerText(text string, width, n int) string {
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	Mode        string
	Players     int
	WantResults bool
	Quit        bool
}

// RunMenu runs the mode picker and returns the selection.
func RunMenu(players, width, height int) (MenuResult, error) {
	p := tea.NewProgram(
		NewMenuModel(players, width, height),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Quit: true}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Quit: true}, nil
	}

	result := MenuResult{Players: m.players}
	switch {
	case m.openResults:
		result.WantResults = true
	case m.selected != nil:
		result.Mode = m.selected.ID
	default:
		result.Quit = true
	}
	return result, nil
}
