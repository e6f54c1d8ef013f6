package config

import (
	_ "embed"
)

//go:embed defaults/match.yaml
var defaultMatchYAML []byte

// DefaultMatchConfig returns the default match configuration.
// It mirrors defaults/match.yaml and is used when the embedded file cannot be parsed.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Mode:       "powerups",
		Players:    2,
		ScoreLimit: 7,
		Arena: ArenaConfig{
			HalfWidth:      6.0,
			PaddleDistance: 9.0,
			GoalMargin:     1.0,
		},
		Paddle: PaddleConfig{
			Range:           5.0,
			Impulse:         2.0,
			MaxVelocity:     13.0,
			BrakeFactor:     0.85,
			StopEpsilon:     0.05,
			BoundaryEpsilon: 0.01,
			HalfLength:      1.0,
			Thickness:       0.3,
			Mass:            1.0,
			Deflection:      0.35,
		},
		Ball: BallConfig{
			Radius:           0.25,
			BaseSpeed:        12.0,
			MaxSpeed:         24.0,
			IncrementPercent: 10,
			ServeSpreadDeg:   30,
			Mass:             1.0,
		},
		Spin: SpinConfig{
			TransferFactor:    0.5,
			MagnusCoefficient: 0.05,
			DecayFactor:       0.985,
			WallFriction:      0.7,
			ActivationDelayMs: 150,
			MinMagnitude:      0.05,
			ZeroThreshold:     0.001,
		},
		Powerups: PowerupConfig{
			Enabled:         true,
			Types:           []string{"split", "boost", "stretch", "shrink"},
			MinSpawnSeconds: 8,
			MaxSpawnSeconds: 15,
			DriftSpeed:      2.5,
			Height:          0.5,
			BoundsRadius:    12.0,
			Size:            0.6,
			GrowSeconds:     0.3,
			CollectSeconds:  0.4,
			VisualSpin:      3.0,
			EffectSeconds:   8,
			BoostFactor:     1.3,
			StretchFactor:   1.5,
			ShrinkFactor:    0.6,
		},
		Network: NetworkConfig{
			ReportRateHz:     60,
			ReportEpsilon:    0.001,
			SilenceTimeoutMs: 500,
			BroadcastRateHz:  30,
			InboxSize:        64,
			ClientRateLimit:  120,
			ClientBurst:      30,
		},
		Loop: LoopConfig{
			TickRate:        60,
			MaxFrameDeltaMs: 50,
		},
	}
}

// DefaultYAML returns the embedded default match YAML.
func DefaultYAML() []byte {
	return defaultMatchYAML
}
