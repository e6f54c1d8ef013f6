package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective match configuration",
	Long: `Print the match configuration after merging the config file, --preset,
the .env file, PONG_* environment variables and flags. The output is valid
YAML for --config.

Search order for the config file:
  --config path, ~/.pong/configs/match.yaml, ./configs/match.yaml, built-in defaults

Examples:
  pong config
  pong config --preset frantic --players 4 > match.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadMatchConfig(cmd)
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
