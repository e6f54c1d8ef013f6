package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-pong/internal/registry"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

const maxResults = 100

// ResultsKeyMap defines the key bindings for the match history.
type ResultsKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextMode key.Binding
	PrevMode key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ResultsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextMode, k.PrevMode, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ResultsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultResultsKeyMap returns default key bindings.
func DefaultResultsKeyMap() ResultsKeyMap {
	return ResultsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		NextMode: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next mode"),
		),
		PrevMode: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev mode"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "back"),
		),
	}
}

// ResultsModel shows recent matches, filtered by mode.
type ResultsModel struct {
	modes   []string // "" is every mode
	cursor  int
	store   *storage.Store
	records []storage.MatchRecord
	stats   map[string]storage.ModeStats
	table   table.Model
	help    help.Model
	keys    ResultsKeyMap
	width   int
	height  int
	err     error
	done    bool
}

// NewResultsModel creates a results view over store.
func NewResultsModel(store *storage.Store, width, height int) ResultsModel {
	modes := []string{""}
	for _, info := range registry.List() {
		modes = append(modes, info.ID)
	}
	m := ResultsModel{
		modes:  modes,
		store:  store,
		keys:   DefaultResultsKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

func (m *ResultsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "When", Width: 14},
		{Title: "Mode", Width: 10},
		{Title: "Scores", Width: 14},
		{Title: "Winner", Width: 7},
		{Title: "Length", Width: 8},
		{Title: "End", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-9, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m *ResultsModel) load() {
	m.records, m.err = nil, nil
	if m.store != nil {
		m.records, m.err = m.store.RecentMatches(m.modes[m.cursor], maxResults)
		if m.err == nil {
			m.stats, m.err = m.store.AllModeStats()
		}
	}
	m.table.SetRows(ResultRows(m.records))
	m.table.GotoTop()
}

// ResultRows formats match records as table rows.
func ResultRows(records []storage.MatchRecord) []table.Row {
	rows := make([]table.Row, len(records))
	for i, r := range records {
		scores := make([]string, 0, len(r.Scores()))
		for _, s := range r.Scores() {
			scores = append(scores, fmt.Sprint(s))
		}
		winner := "-"
		if r.Winner >= 0 {
			winner = fmt.Sprintf("P%d", r.Winner+1)
		}
		rows[i] = table.Row{
			r.Started().Format("Jan 02 15:04"),
			r.Mode,
			strings.Join(scores, " : "),
			winner,
			r.Duration().Round(time.Second).String(),
			r.EndReason,
		}
	}
	return rows
}

// Init initializes the results model.
func (m ResultsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results view.
func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.done = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextMode):
			m.cursor = (m.cursor + 1) % len(m.modes)
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.PrevMode):
			m.cursor = (m.cursor + len(m.modes) - 1) % len(m.modes)
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.table.SetRows(ResultRows(m.records))
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the results.
func (m ResultsModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	mode := m.modes[m.cursor]
	title := "MATCH HISTORY - all modes"
	if mode != "" {
		title = "MATCH HISTORY - " + mode
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.summary(mode)))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	switch {
	case m.err != nil:
		b.WriteString(boxStyle.Render("Could not read history: " + m.err.Error()))
	case len(m.records) == 0:
		b.WriteString(boxStyle.Render(dimStyle.Italic(true).Render("No matches recorded yet.")))
	default:
		b.WriteString(boxStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m ResultsModel) summary(mode string) string {
	var matches, completed int
	for id, s := range m.stats {
		if mode == "" || id == mode {
			matches += s.Matches
			completed += s.Completed
		}
	}
	return fmt.Sprintf("%d matches, %d played to the limit", matches, completed)
}

// RunResults runs the match history screen.
func RunResults(store *storage.Store, width, height int) error {
	p := tea.NewProgram(
		NewResultsModel(store, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
