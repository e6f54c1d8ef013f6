// pong is a terminal Pong for two to four players. One process owns the
// authoritative match; others join it over websockets or watch over SSH.
//
// Usage:
//
//	pong local               - Hot-seat match on this terminal
//	pong host                - Host a match and play slot 0
//	pong host --headless     - Host a match without a local player
//	pong join <addr>         - Join a hosted match
//	pong results             - Browse finished matches
//	pong config              - Print the effective match configuration
//	pong modes               - List game modes
//
// Global flags:
//
//	--config <path>   - Match config YAML
//	--preset <name>   - casual, standard or frantic
//	--mode <id>       - Game mode
//	--players <n>     - 2, 3 or 4
//	--seed <value>    - RNG seed for reproducible matches
//	--fps <rate>      - Terminal redraw rate
//	--db <path>       - Match history database (default: ~/.pong/history.db)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import modes to register them
	_ "github.com/vovakirdan/tui-pong/internal/modes"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagPreset   string
	flagMode     string
	flagPlayers  int
	flagSeed     int64
	flagFPS      int
	flagDBPath   string
	flagEnvFile  string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pong",
	Short: "Pong for two to four players in your terminal",
	Long: `Pong for two to four players in your terminal.

One process hosts the authoritative match. Players on the same terminal
share the keyboard; remote players join over websockets and predict their
own paddle locally. Anyone with an SSH client can watch a hosted match.

Examples:
  pong local
  pong local --mode classic --players 2
  pong host --addr :7777 --ssh :23234
  pong join localhost:7777 --slot 1
  pong results`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to match config YAML")
	pf.StringVar(&flagPreset, "preset", "", "Config preset: casual, standard, frantic")
	pf.StringVar(&flagMode, "mode", "", "Game mode id (see 'pong modes')")
	pf.IntVar(&flagPlayers, "players", 2, "Number of players (2-4)")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	pf.IntVar(&flagFPS, "fps", 60, "Terminal redraw rate")
	pf.StringVar(&flagDBPath, "db", storage.DefaultPath, "Path to match history database")
	pf.StringVar(&flagEnvFile, "env", ".env", "Optional .env file with PONG_* overrides")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&flagLogFile, "log-file", "", "Log file for terminal sessions (default: ~/.pong/pong.log)")

	rootCmd.AddCommand(localCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modesCmd)
}
