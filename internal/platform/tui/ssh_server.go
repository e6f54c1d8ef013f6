package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/metrics"
	"github.com/vovakirdan/tui-pong/internal/netcode"
)

// SSHServerConfig holds configuration for the spectator SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.pong/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// FPS is the spectator redraw rate.
	FPS int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		FPS:         30,
	}
}

// SnapshotSource returns the latest encoded master snapshot, nil before the first.
type SnapshotSource func() []byte

// SSHServer lets anyone with an SSH client watch the hosted match.
type SSHServer struct {
	config SSHServerConfig
	match  config.MatchConfig
	source SnapshotSource
	server *ssh.Server
	logger *log.Logger
}

// NewSSHServer creates a spectator server over the given snapshot source.
func NewSSHServer(cfg SSHServerConfig, match config.MatchConfig, source SnapshotSource, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.Default()
	}
	srv := &SSHServer{
		config: cfg,
		match:  match,
		source: source,
		logger: logger.WithPrefix("ssh"),
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".pong", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	srv.server = server
	return srv, nil
}

// teaHandler creates a spectator program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}
	rt := core.RuntimeConfig{
		ScreenW: pty.Window.Width,
		ScreenH: pty.Window.Height,
		FPS:     s.config.FPS,
	}
	return NewSpectatorModel(s.match, s.source, rt), []tea.ProgramOption{tea.WithAltScreen()}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("spectator joined",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		metrics.ConnectionOpened()
		next(sshSession)
		metrics.ConnectionClosed()
		s.logger.Info("spectator left",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH spectator server", "address", s.config.Address)

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down SSH server")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SpectatorModel draws the latest master snapshot. It never sends anything.
type SpectatorModel struct {
	match   config.MatchConfig
	source  SnapshotSource
	runtime core.RuntimeConfig
	screen  *core.Screen
	scene   Scene
	synced  bool
	quit    bool
}

// NewSpectatorModel creates a spectator view.
func NewSpectatorModel(match config.MatchConfig, source SnapshotSource, rt core.RuntimeConfig) SpectatorModel {
	return SpectatorModel{
		match:   match,
		source:  source,
		runtime: rt,
		screen:  core.NewScreen(rt.ScreenW, rt.ScreenH),
		scene:   baseScene(match, match.Players),
	}
}

// Init starts the redraw ticks.
func (m SpectatorModel) Init() tea.Cmd {
	return tickCmd(m.runtime.FPS)
}

// Update handles messages.
func (m SpectatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.runtime.ScreenW = msg.Width
		m.runtime.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
	case TickMsg:
		m.refresh()
		return m, tickCmd(m.runtime.FPS)
	}
	return m, nil
}

func (m *SpectatorModel) refresh() {
	if m.source == nil {
		return
	}
	data := m.source()
	if data == nil {
		return
	}
	snap, err := netcode.DecodeSnapshot(data)
	if err != nil {
		return
	}
	m.scene = SceneFromSnapshot(m.match, snap)
	m.synced = true
}

// View renders the arena.
func (m SpectatorModel) View() string {
	if m.quit {
		return ""
	}
	sc := m.scene
	if !m.synced {
		sc.Status = "waiting for the match to start..."
	} else {
		sc.Status = "q to leave"
	}
	DrawScene(m.screen, sc)
	return RenderScreen(m.screen)
}
