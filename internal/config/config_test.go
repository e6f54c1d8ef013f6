package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	var cfg MatchConfig
	if err := yaml.Unmarshal(DefaultYAML(), &cfg); err != nil {
		t.Fatalf("embedded yaml failed to parse: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultMatchConfig()) {
		t.Errorf("embedded defaults differ from DefaultMatchConfig():\n got %+v\nwant %+v", cfg, DefaultMatchConfig())
	}
}

func TestLoadFallsBackToEmbedded(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Ball.BaseSpeed != 12 || cfg.Ball.MaxSpeed != 24 {
		t.Errorf("Load() ball speeds = %v/%v, expected 12/24", cfg.Ball.BaseSpeed, cfg.Ball.MaxSpeed)
	}
}

func TestLoadCustomPathPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.yaml")
	data := []byte("players: 4\nball:\n  max_speed: 30\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Players != 4 {
		t.Errorf("Players = %d, expected 4", cfg.Players)
	}
	if cfg.Ball.MaxSpeed != 30 {
		t.Errorf("Ball.MaxSpeed = %v, expected 30", cfg.Ball.MaxSpeed)
	}
	if cfg.Ball.BaseSpeed != 12 {
		t.Errorf("Ball.BaseSpeed = %v, expected default 12", cfg.Ball.BaseSpeed)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of missing file should fail")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("players: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error = %v, expected ErrInvalidConfig", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MatchConfig)
		valid  bool
	}{
		{"defaults", func(*MatchConfig) {}, true},
		{"three players", func(c *MatchConfig) { c.Players = 3 }, true},
		{"one player", func(c *MatchConfig) { c.Players = 1 }, false},
		{"five players", func(c *MatchConfig) { c.Players = 5 }, false},
		{"max below base", func(c *MatchConfig) { c.Ball.MaxSpeed = 5 }, false},
		{"zero range", func(c *MatchConfig) { c.Paddle.Range = 0 }, false},
		{"brake above one", func(c *MatchConfig) { c.Paddle.BrakeFactor = 1.5 }, false},
		{"decay of one", func(c *MatchConfig) { c.Spin.DecayFactor = 1 }, false},
		{"spawn window inverted", func(c *MatchConfig) { c.Powerups.MaxSpawnSeconds = 1 }, false},
		{"unknown powerup", func(c *MatchConfig) { c.Powerups.Types = []string{"laser"} }, false},
		{"zero tick rate", func(c *MatchConfig) { c.Loop.TickRate = 0 }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultMatchConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.valid && err != nil {
				t.Errorf("Validate() error = %v, expected nil", err)
			}
			if !tc.valid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, expected ErrInvalidConfig", err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "PONG_PLAYERS=3\nPONG_MODE=classic\nPONG_BROADCAST_RATE=20\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	// Process environment wins over the file
	t.Setenv(EnvPlayers, "4")
	t.Setenv(EnvMode, "")
	t.Setenv(EnvTickRate, "")
	t.Setenv(EnvBroadcastRate, "")
	t.Setenv(EnvScoreLimit, "")

	cfg := DefaultMatchConfig()
	if err := ApplyEnv(&cfg, envFile); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.Players != 4 {
		t.Errorf("Players = %d, expected 4 from process env", cfg.Players)
	}
	if cfg.Mode != "classic" {
		t.Errorf("Mode = %q, expected classic from file", cfg.Mode)
	}
	if cfg.Network.BroadcastRateHz != 20 {
		t.Errorf("BroadcastRateHz = %v, expected 20", cfg.Network.BroadcastRateHz)
	}
}

func TestApplyEnvMissingFileAndBadValue(t *testing.T) {
	t.Setenv(EnvPlayers, "")
	t.Setenv(EnvTickRate, "fast")

	cfg := DefaultMatchConfig()
	err := ApplyEnv(&cfg, filepath.Join(t.TempDir(), "absent.env"))
	if err == nil {
		t.Error("ApplyEnv() should reject a non-numeric tick rate")
	}
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name     string
		preset   Preset
		baseWant float64
	}{
		{"casual", PresetCasual, 9},
		{"standard", PresetStandard, 12},
		{"frantic", PresetFrantic, 15},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultMatchConfig()
			ApplyPreset(&cfg, tc.preset)
			if cfg.Ball.BaseSpeed != tc.baseWant {
				t.Errorf("BaseSpeed = %v, expected %v", cfg.Ball.BaseSpeed, tc.baseWant)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %s produced invalid config: %v", tc.preset, err)
			}
		})
	}

	if p, err := ParsePreset(""); err != nil || p != PresetStandard {
		t.Errorf("ParsePreset(\"\") = %v, %v; expected standard", p, err)
	}
	if _, err := ParsePreset("insane"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ParsePreset(insane) error = %v, expected ErrInvalidConfig", err)
	}
}

func TestIntervals(t *testing.T) {
	cfg := DefaultMatchConfig()
	if got := cfg.Network.SilenceTimeout(); got != 500*time.Millisecond {
		t.Errorf("SilenceTimeout() = %v, expected 500ms", got)
	}
	if got := cfg.Loop.MaxFrameDelta(); got != 50*time.Millisecond {
		t.Errorf("MaxFrameDelta() = %v, expected 50ms", got)
	}
	if got := cfg.Spin.ActivationDelay(); got != 150*time.Millisecond {
		t.Errorf("ActivationDelay() = %v, expected 150ms", got)
	}
	cfg.Network.BroadcastRateHz = 0
	if got := cfg.Network.BroadcastInterval(); got != time.Second/60 {
		t.Errorf("BroadcastInterval() with zero rate = %v, expected 1/60s", got)
	}
}
