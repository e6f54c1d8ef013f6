package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/multiplayer"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

// MatchOptions configures a MatchModel.
type MatchOptions struct {
	Runtime core.RuntimeConfig
	Seats   Seats
	Own     int            // Highlighted slot, -1 for none
	Store   *storage.Store // Finished master matches are saved here when set
	Logger  *log.Logger

	// Disconnected is closed when the network link drops. Clients only.
	Disconnected <-chan struct{}
}

type disconnectedMsg struct{}

// MatchModel drives a multiplayer.Loop from Bubble Tea ticks and draws it.
// The same model serves local hot-seat, hosting and joining; only the
// loop role and the seats differ.
type MatchModel struct {
	loop   *multiplayer.Loop
	cfg    config.MatchConfig
	opts   MatchOptions
	keys   KeyMap
	help   help.Model
	held   *Held
	screen *core.Screen
	logger *log.Logger

	last          time.Time
	lastBroadcast time.Time
	finished      bool // Result handled
	lost          bool
	quitting      bool
}

// NewMatchModel creates a model for a loop that has not started yet.
func NewMatchModel(loop *multiplayer.Loop, cfg config.MatchConfig, opts MatchOptions) MatchModel {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runtime.ScreenW <= 0 || opts.Runtime.ScreenH <= 0 {
		def := core.DefaultConfig()
		opts.Runtime.ScreenW, opts.Runtime.ScreenH = def.ScreenW, def.ScreenH
	}
	h := help.New()
	h.Width = opts.Runtime.ScreenW
	return MatchModel{
		loop:   loop,
		cfg:    cfg,
		opts:   opts,
		keys:   DefaultKeyMap(),
		help:   h,
		held:   NewHeld(0),
		screen: core.NewScreen(opts.Runtime.ScreenW, opts.Runtime.ScreenH-1),
		logger: opts.Logger.WithPrefix("tui"),
	}
}

// Init starts the loop and the tick stream.
func (m MatchModel) Init() tea.Cmd {
	m.loop.Start(time.Now())
	return tea.Batch(tickCmd(m.opts.Runtime.FPS), m.waitDisconnect())
}

func (m MatchModel) waitDisconnect() tea.Cmd {
	if m.opts.Disconnected == nil {
		return nil
	}
	ch := m.opts.Disconnected
	return func() tea.Msg {
		<-ch
		return disconnectedMsg{}
	}
}

// Update handles messages and updates the model state.
func (m MatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.opts.Runtime.ScreenW = msg.Width
		m.opts.Runtime.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height-1)
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))

	case disconnectedMsg:
		m.lost = true
		m.logger.Warn("connection to master lost")
		m.finish()
		return m, nil
	}
	return m, nil
}

func (m MatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	slot, action := m.keys.Action(msg, m.opts.Seats)
	switch action {
	case core.ActionQuit:
		m.finish()
		m.quitting = true
		return m, tea.Quit
	case core.ActionPause:
		// Clients cannot pause the master's match
		if m.loop.Role() == multiplayer.RoleMaster {
			m.loop.TogglePause()
			m.held.Release()
		}
	case core.ActionNone:
	default:
		m.held.Press(slot, action, time.Now())
	}
	return m, nil
}

func (m MatchModel) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	dt := m.opts.Runtime.FrameInterval()
	if !m.last.IsZero() {
		dt = now.Sub(m.last)
	}
	m.last = now

	m.loop.Frame(now, dt, m.held.Frame(now))
	if m.loop.Role() == multiplayer.RoleMaster && now.Sub(m.lastBroadcast) >= m.cfg.Network.BroadcastInterval() {
		m.loop.Broadcast(now)
		m.lastBroadcast = now
	}

	if m.loop.Done() && !m.finished {
		// Final state reaches peers before the result is saved
		m.loop.Broadcast(now)
		m.finish()
	}
	return m, tickCmd(m.opts.Runtime.FPS)
}

// finish stops the loop and records the result once.
func (m *MatchModel) finish() {
	if m.finished {
		return
	}
	m.finished = true
	m.loop.Stop()

	master := m.loop.Master()
	if master == nil {
		return
	}
	res := master.Result()
	m.logger.Info("match finished", "id", res.MatchID, "scores", res.Scores, "winner", res.Winner, "reason", res.Reason)
	if m.opts.Store == nil {
		return
	}
	if _, err := m.opts.Store.SaveMatchResult(res); err != nil {
		m.logger.Warn("could not save match", "err", err)
	}
}

// Scene builds the scene for the current frame.
func (m MatchModel) Scene() Scene {
	var sc Scene
	if master := m.loop.Master(); master != nil {
		sc = SceneFromState(m.cfg, master.Sim().Snapshot(), m.opts.Own)
	} else {
		sc = SceneFromView(m.cfg, m.loop.Client().View())
	}
	switch {
	case m.lost:
		sc.Status = "connection lost  q to leave"
	case m.finished && sc.Status == "":
		sc.Status = "match over  q to leave"
	}
	return sc
}

// View renders the current state to a string for display.
func (m MatchModel) View() string {
	if m.quitting {
		return ""
	}
	DrawScene(m.screen, m.Scene())
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// Finished reports whether the match result has been handled.
func (m MatchModel) Finished() bool {
	return m.finished
}

// RunMatch runs a match in the terminal until the player quits.
func RunMatch(loop *multiplayer.Loop, cfg config.MatchConfig, opts MatchOptions) error {
	model := NewMatchModel(loop, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	// The program may exit on a signal before the model saw a quit key
	loop.Stop()
	return err
}
