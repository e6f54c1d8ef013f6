package config

import "fmt"

// Preset represents a named tuning of the ball and paddle physics.
type Preset string

const (
	PresetCasual   Preset = "casual"
	PresetStandard Preset = "standard"
	PresetFrantic  Preset = "frantic"
)

// Presets lists the known presets in display order.
var Presets = []Preset{PresetCasual, PresetStandard, PresetFrantic}

// ParsePreset validates a preset name. Empty means standard.
func ParsePreset(name string) (Preset, error) {
	if name == "" {
		return PresetStandard, nil
	}
	for _, p := range Presets {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
}

// ApplyPreset modifies the config based on a preset.
// Standard leaves the loaded values untouched.
func ApplyPreset(cfg *MatchConfig, preset Preset) {
	switch preset {
	case PresetCasual:
		cfg.Ball.BaseSpeed = 9
		cfg.Ball.MaxSpeed = 16
		cfg.Ball.IncrementPercent = 5
		cfg.Spin.MagnusCoefficient = 0.03
		cfg.Paddle.HalfLength = 1.3
		cfg.Powerups.MinSpawnSeconds = 10
		cfg.Powerups.MaxSpawnSeconds = 20
	case PresetFrantic:
		cfg.Ball.BaseSpeed = 15
		cfg.Ball.MaxSpeed = 32
		cfg.Ball.IncrementPercent = 15
		cfg.Spin.MagnusCoefficient = 0.08
		cfg.Paddle.HalfLength = 0.8
		cfg.Powerups.MinSpawnSeconds = 4
		cfg.Powerups.MaxSpawnSeconds = 8
	}
}
