package main

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/multiplayer"
	"github.com/vovakirdan/tui-pong/internal/platform/tui"
	"github.com/vovakirdan/tui-pong/internal/registry"
	"github.com/vovakirdan/tui-pong/internal/transport"
)

const dialTimeout = 5 * time.Second

var flagSlot int

var joinCmd = &cobra.Command{
	Use:   "join <addr>",
	Short: "Join a hosted match",
	Long: `Connect to a 'pong host' process and play the given slot.
Your paddle moves locally; the host owns the ball and scores.
Use --slot -1 to watch without playing.

Controls:
  Arrows or WASD  - Move
  Space/Enter/E   - Serve
  Q/Ctrl+C        - Leave

Examples:
  pong join localhost:7777
  pong join 192.168.1.20:7777 --slot 2
  pong join localhost:7777 --slot -1`,
	Args: cobra.ExactArgs(1),
	RunE: runJoin,
}

func init() {
	joinCmd.Flags().IntVar(&flagSlot, "slot", 1, "Slot to play (0-3), -1 to spectate")
}

func runJoin(cmd *cobra.Command, args []string) error {
	cfg, err := loadMatchConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := tuiLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithTimeout(cmd.Context(), dialTimeout)
	defer cancel()
	conn, err := transport.Dial(ctx, args[0], flagSlot)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Geometry and mode come from the host
	cfg.Players = conn.Players
	if conn.Mode != "" && registry.Exists(conn.Mode) {
		mode, err := registry.Create(conn.Mode)
		if err != nil {
			return err
		}
		cfg.Mode = mode.ID()
		mode.Configure(&cfg)
	}
	logger.Info("joined match", "addr", args[0], "slot", conn.Slot, "players", conn.Players, "mode", cfg.Mode)

	if conn.Slot == multiplayer.SpectatorSlot {
		return spectate(conn, cfg, logger)
	}

	client, err := multiplayer.NewClient(cfg, conn.Slot, conn, logger)
	if err != nil {
		return err
	}
	go listen(conn, client.Deliver, logger)

	loop := multiplayer.NewClientLoop(client, logger)
	return tui.RunMatch(loop, cfg, tui.MatchOptions{
		Runtime:      runtimeConfig(),
		Seats:        tui.SoloSeats(conn.Slot),
		Own:          conn.Slot,
		Logger:       logger,
		Disconnected: conn.Done(),
	})
}

func listen(conn *transport.Conn, deliver func([]byte), logger *log.Logger) {
	if err := conn.Listen(deliver); err != nil {
		logger.Debug("listen ended", "err", err)
	}
}

// spectate draws the host's snapshots as they arrive.
func spectate(conn *transport.Conn, cfg config.MatchConfig, logger *log.Logger) error {
	var latest atomic.Pointer[[]byte]
	go listen(conn, func(data []byte) { latest.Store(&data) }, logger)

	source := func() []byte {
		if p := latest.Load(); p != nil {
			return *p
		}
		return nil
	}
	p := tea.NewProgram(
		tui.NewSpectatorModel(cfg, source, runtimeConfig()),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
