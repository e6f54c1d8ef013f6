package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/config"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, k := range []string{config.EnvPlayers, config.EnvMode, config.EnvTickRate, config.EnvBroadcastRate, config.EnvScoreLimit} {
		t.Setenv(k, "")
	}

	saved := []string{flagConfig, flagEnvFile, flagPreset, flagMode}
	flagConfig = ""
	flagEnvFile = filepath.Join(dir, "missing.env")
	flagPreset = ""
	flagMode = ""
	t.Cleanup(func() {
		flagConfig, flagEnvFile, flagPreset, flagMode = saved[0], saved[1], saved[2], saved[3]
	})
}

func TestLoadMatchConfigPrecedence(t *testing.T) {
	isolateConfig(t)
	t.Setenv(config.EnvPlayers, "3")
	flagMode = "classic"

	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&flagPlayers, "players", 2, "")

	cfg, err := loadMatchConfig(cmd)
	if err != nil {
		t.Fatalf("loadMatchConfig() error = %v", err)
	}
	if cfg.Players != 3 {
		t.Errorf("players = %d, expected 3 from the environment", cfg.Players)
	}
	if cfg.Mode != "classic" {
		t.Errorf("mode = %q, expected classic", cfg.Mode)
	}

	if err := cmd.Flags().Set("players", "4"); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadMatchConfig(cmd)
	if err != nil {
		t.Fatalf("loadMatchConfig() error = %v", err)
	}
	if cfg.Players != 4 {
		t.Errorf("players = %d, expected the flag to win", cfg.Players)
	}
}

func TestLoadMatchConfigRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		preset string
		env    string
	}{
		{"unknown preset", "nightmare", ""},
		{"players out of range", "", "9"},
		{"players not a number", "", "two"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolateConfig(t)
			flagPreset = tc.preset
			t.Setenv(config.EnvPlayers, tc.env)

			cmd := &cobra.Command{}
			cmd.Flags().IntVar(&flagPlayers, "players", 2, "")
			if _, err := loadMatchConfig(cmd); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/pong")
	tests := []struct {
		in       string
		expected string
	}{
		{"~/.pong/pong.log", "/home/pong/.pong/pong.log"},
		{"/var/log/pong.log", "/var/log/pong.log"},
		{"pong.log", "pong.log"},
	}
	for _, tc := range tests {
		got, err := expandHome(tc.in)
		if err != nil {
			t.Errorf("expandHome(%q) error = %v", tc.in, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("expandHome(%q) = %q, expected %q", tc.in, got, tc.expected)
		}
	}
}
