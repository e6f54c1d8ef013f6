package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/multiplayer"
	"github.com/vovakirdan/tui-pong/internal/platform/tui"
	"github.com/vovakirdan/tui-pong/internal/storage"
	"github.com/vovakirdan/tui-pong/internal/transport"
)

const (
	hostSlot      = 0
	finalFlush    = 250 * time.Millisecond
	shutdownGrace = 5 * time.Second
)

var (
	flagAddr     string
	flagHeadless bool
	flagSSHAddr  string
	flagHostKey  string
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Host a match for remote players",
	Long: `Host the authoritative match. Remote players join with 'pong join'.

By default the host plays slot 0 from this terminal. With --headless the
host only relays: every slot is open to remote players and logs go to stderr.

With --ssh, spectators can watch the match with any SSH client:
  ssh localhost -p 23234

HTTP routes on --addr:
  /ws        websocket for players (?slot=N) and spectators (?slot=-1)
  /seats     taken slots
  /snapshot  latest snapshot
  /healthz   liveness
  /metrics   Prometheus metrics

Examples:
  pong host
  pong host --players 4 --addr :7777
  pong host --headless --ssh :23234`,
	Args: cobra.NoArgs,
	RunE: runHost,
}

func init() {
	hostCmd.Flags().StringVar(&flagAddr, "addr", ":7777", "Websocket listen address (host:port)")
	hostCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Relay only, no local player or screen")
	hostCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH spectator address, e.g. :23234 (disabled when empty)")
	hostCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key (auto-generated if not specified)")
}

func runHost(cmd *cobra.Command, _ []string) error {
	cfg, err := loadMatchConfig(cmd)
	if err != nil {
		return err
	}

	var logger *log.Logger
	if flagHeadless {
		logger, err = newLogger(os.Stderr)
	} else {
		var closeLog func()
		logger, closeLog, err = tuiLogger()
		if err == nil {
			defer closeLog()
		}
	}
	if err != nil {
		return err
	}

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	// The server needs the master as its deliverer and the master needs the
	// server as its broadcaster; srv is set before the loop starts.
	var srv *transport.Server
	master, match, err := newMaster(cfg, multiplayer.BroadcastFunc(func(data []byte) {
		srv.Broadcast(data)
	}), logger)
	if err != nil {
		return err
	}
	srv = transport.NewServer(match, master, master.LastSnapshot, logger)
	if !flagHeadless {
		if err := srv.Reserve(hostSlot); err != nil {
			return err
		}
	}

	ln, err := net.Listen("tcp", flagAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", flagAddr, err)
	}
	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "err", err)
		}
	}()
	logger.Info("hosting match", "addr", ln.Addr().String(), "mode", match.Mode, "players", match.Players)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagSSHAddr != "" {
		sshCfg := tui.DefaultSSHServerConfig()
		sshCfg.Address = flagSSHAddr
		sshCfg.HostKeyPath = flagHostKey
		sshSrv, err := tui.NewSSHServer(sshCfg, match, master.LastSnapshot, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := sshSrv.ListenAndServe(ctx); err != nil {
				logger.Error("ssh server stopped", "err", err)
			}
		}()
	}

	loop := multiplayer.NewMasterLoop(master, logger)
	if flagHeadless {
		err = runHeadless(ctx, loop, store, logger)
	} else {
		rt := runtimeConfig()
		err = tui.RunMatch(loop, match, tui.MatchOptions{
			Runtime: rt,
			Seats:   tui.SoloSeats(hostSlot),
			Own:     hostSlot,
			Store:   store,
			Logger:  logger,
		})
	}

	// Let write pumps flush the final snapshot
	time.Sleep(finalFlush)
	srv.Close()
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("http shutdown", "err", serr)
	}
	return err
}

// runHeadless drives the loop on this goroutine until the match ends or a signal arrives.
func runHeadless(ctx context.Context, loop *multiplayer.Loop, store *storage.Store, logger *log.Logger) error {
	err := loop.Run(ctx, nil)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	res := loop.Master().Result()
	logger.Info("match finished", "id", res.MatchID, "scores", res.Scores, "winner", res.Winner, "reason", res.Reason)
	if store != nil {
		if _, serr := store.SaveMatchResult(res); serr != nil {
			logger.Warn("could not save match", "err", serr)
		}
	}
	return err
}
