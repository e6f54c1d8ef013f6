package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/modes"
	"github.com/vovakirdan/tui-pong/internal/multiplayer"
	"github.com/vovakirdan/tui-pong/internal/sim"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

const defaultLogPath = "~/.pong/pong.log"

// newLogger builds the root logger at the --log-level level.
func newLogger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "pong",
		Level:           level,
	}), nil
}

// tuiLogger logs to a file while the alternate screen owns the terminal.
func tuiLogger() (*log.Logger, func(), error) {
	path := flagLogFile
	if path == "" {
		path = defaultLogPath
	}
	path, err := expandHome(path)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	logger, err := newLogger(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return logger, func() { f.Close() }, nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// loadMatchConfig merges, in order: config file, preset, .env and
// environment, then explicit flags.
func loadMatchConfig(cmd *cobra.Command) (config.MatchConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagPreset != "" {
		preset, err := config.ParsePreset(flagPreset)
		if err != nil {
			return cfg, err
		}
		config.ApplyPreset(&cfg, preset)
	}
	if err := config.ApplyEnv(&cfg, flagEnvFile); err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("players") {
		cfg.Players = flagPlayers
	}
	if flagMode != "" {
		cfg.Mode = flagMode
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// termSize returns the terminal size, or the default screen when stdout is not a terminal.
func termSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	def := core.DefaultConfig()
	return def.ScreenW, def.ScreenH
}

func runtimeConfig() core.RuntimeConfig {
	w, h := termSize()
	return core.RuntimeConfig{
		ScreenW: w,
		ScreenH: h,
		FPS:     flagFPS,
		Seed:    flagSeed,
	}
}

// openStore opens the history database. Matches still run without it.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open match history", "path", flagDBPath, "err", err)
		return nil
	}
	return store
}

// newMaster builds the configured mode's simulation and wraps it in a master.
// The returned config carries the mode's adjustments.
func newMaster(cfg config.MatchConfig, out multiplayer.Broadcaster, logger *log.Logger) (*multiplayer.Master, config.MatchConfig, error) {
	s, mode, err := modes.Setup(cfg.Mode, cfg, sim.Options{Seed: flagSeed, Logger: logger})
	if err != nil {
		return nil, cfg, err
	}
	m := multiplayer.NewMaster(s, out, logger)
	m.SetRules(mode)
	logger.Info("match ready", "mode", mode.ID(), "players", s.Config().Players, "score_limit", s.Config().ScoreLimit)
	return m, s.Config(), nil
}
