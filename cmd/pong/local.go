package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/multiplayer"
	"github.com/vovakirdan/tui-pong/internal/platform/tui"
)

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Play a hot-seat match on this terminal",
	Long: `Play on one keyboard. Without --mode a menu picks the mode and player count.

Controls:
  Arrows, Space/Enter  - Player 1 move / serve
  WASD, E              - Player 2 move / serve
  P/Esc                - Pause
  Q/Ctrl+C             - Quit

Players 3 and 4 have no keys in a local match; their paddles stay put.

Examples:
  pong local
  pong local --mode powerups --preset frantic`,
	Args: cobra.NoArgs,
	RunE: runLocal,
}

func runLocal(cmd *cobra.Command, _ []string) error {
	cfg, err := loadMatchConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := tuiLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	pick := !cmd.Flags().Changed("mode")
	for {
		rt := runtimeConfig()
		if pick {
			choice, err := tui.RunMenu(cfg.Players, rt.ScreenW, rt.ScreenH)
			if err != nil {
				return err
			}
			if choice.Quit {
				return nil
			}
			if choice.WantResults {
				if err := tui.RunResults(store, rt.ScreenW, rt.ScreenH); err != nil {
					return err
				}
				continue
			}
			cfg.Mode = choice.Mode
			cfg.Players = choice.Players
		}

		master, match, err := newMaster(cfg, nil, logger)
		if err != nil {
			return err
		}
		loop := multiplayer.NewMasterLoop(master, logger)
		if err := tui.RunMatch(loop, match, tui.MatchOptions{
			Runtime: rt,
			Seats:   tui.HotSeat(),
			Own:     -1,
			Store:   store,
			Logger:  logger,
		}); err != nil {
			return err
		}
		if !pick {
			return nil
		}
	}
}
