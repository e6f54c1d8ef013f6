// Package config provides YAML-based match configuration loading, presets and
// validation. A MatchConfig is built once per match and treated as immutable by
// every component that receives it.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid match config")

// MatchConfig contains every tunable of a match.
type MatchConfig struct {
	Mode       string        `yaml:"mode"`        // Game mode id (see registry)
	Players    int           `yaml:"players"`     // 2, 3 or 4
	ScoreLimit int           `yaml:"score_limit"` // 0 = endless
	Arena      ArenaConfig   `yaml:"arena"`
	Paddle     PaddleConfig  `yaml:"paddle"`
	Ball       BallConfig    `yaml:"ball"`
	Spin       SpinConfig    `yaml:"spin"`
	Powerups   PowerupConfig `yaml:"powerups"`
	Network    NetworkConfig `yaml:"network"`
	Loop       LoopConfig    `yaml:"loop"`
}

// ArenaConfig defines the playfield geometry on the X/Z plane.
type ArenaConfig struct {
	HalfWidth      float64 `yaml:"half_width"`      // Side wall distance from center (2 players)
	PaddleDistance float64 `yaml:"paddle_distance"` // Paddle line distance from center
	GoalMargin     float64 `yaml:"goal_margin"`     // Extra distance behind the paddle line before a goal counts
}

// PaddleConfig defines paddle motion parameters.
type PaddleConfig struct {
	Range           float64 `yaml:"range"`            // Max displacement from origin along the axis
	Impulse         float64 `yaml:"impulse"`          // Impulse applied per tick while input is held
	MaxVelocity     float64 `yaml:"max_velocity"`     // Axis velocity clamp
	BrakeFactor     float64 `yaml:"brake_factor"`     // Velocity scale per tick without input
	StopEpsilon     float64 `yaml:"stop_epsilon"`     // Speeds below this snap to zero while braking
	BoundaryEpsilon float64 `yaml:"boundary_epsilon"` // Width of the boundary band
	HalfLength      float64 `yaml:"half_length"`      // Half the paddle length along its axis
	Thickness       float64 `yaml:"thickness"`        // Paddle depth along its normal
	Mass            float64 `yaml:"mass"`
	Deflection      float64 `yaml:"deflection"` // Lateral deflection per unit of off-center hit
}

// BallConfig defines ball speed parameters.
type BallConfig struct {
	Radius           float64 `yaml:"radius"`
	BaseSpeed        float64 `yaml:"base_speed"`
	MaxSpeed         float64 `yaml:"max_speed"`
	IncrementPercent float64 `yaml:"increment_percent"` // Speed gain per rally hit, percent of base
	ServeSpreadDeg   float64 `yaml:"serve_spread_deg"`  // Max random serve angle off the serving axis
	Mass             float64 `yaml:"mass"`
}

// SpinConfig defines spin transfer and Magnus deflection parameters.
type SpinConfig struct {
	TransferFactor    float64 `yaml:"transfer_factor"`
	MagnusCoefficient float64 `yaml:"magnus_coefficient"`
	DecayFactor       float64 `yaml:"decay_factor"`  // Spin scale per tick
	WallFriction      float64 `yaml:"wall_friction"` // Spin scale on wall contact
	ActivationDelayMs int     `yaml:"activation_delay_ms"`
	MinMagnitude      float64 `yaml:"min_magnitude"`  // Below this no Magnus force is applied
	ZeroThreshold     float64 `yaml:"zero_threshold"` // Below this spin snaps to zero
}

// ActivationDelay returns the spin activation delay.
func (s SpinConfig) ActivationDelay() time.Duration {
	return time.Duration(s.ActivationDelayMs) * time.Millisecond
}

// PowerupConfig defines power-up spawning, drift and effects.
type PowerupConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Types           []string `yaml:"types"` // Enabled type names: split, boost, stretch, shrink
	MinSpawnSeconds float64  `yaml:"min_spawn_seconds"`
	MaxSpawnSeconds float64  `yaml:"max_spawn_seconds"`
	DriftSpeed      float64  `yaml:"drift_speed"`
	Height          float64  `yaml:"height"` // Fixed drift plane height
	BoundsRadius    float64  `yaml:"bounds_radius"`
	Size            float64  `yaml:"size"` // Half extent of the pickup volume
	GrowSeconds     float64  `yaml:"grow_seconds"`
	CollectSeconds  float64  `yaml:"collect_seconds"`
	VisualSpin      float64  `yaml:"visual_spin"` // Radians per second, visual only
	EffectSeconds   float64  `yaml:"effect_seconds"`
	BoostFactor     float64  `yaml:"boost_factor"`
	StretchFactor   float64  `yaml:"stretch_factor"`
	ShrinkFactor    float64  `yaml:"shrink_factor"`
}

// NetworkConfig defines codec and transport parameters.
type NetworkConfig struct {
	ReportRateHz     float64 `yaml:"report_rate_hz"`    // Candidate upload cadence for paddle reports
	ReportEpsilon    float64 `yaml:"report_epsilon"`    // Change threshold for delta suppression
	SilenceTimeoutMs int     `yaml:"silence_timeout_ms"` // Max time between transmitted reports
	BroadcastRateHz  float64 `yaml:"broadcast_rate_hz"` // Master snapshot broadcast cadence
	InboxSize        int     `yaml:"inbox_size"`        // Bounded inbound queue length
	ClientRateLimit  float64 `yaml:"client_rate_limit"` // Inbound messages per second per connection
	ClientBurst      int     `yaml:"client_burst"`
}

// SilenceTimeout returns the max silence between transmitted reports.
func (n NetworkConfig) SilenceTimeout() time.Duration {
	return time.Duration(n.SilenceTimeoutMs) * time.Millisecond
}

// BroadcastInterval returns the snapshot broadcast period.
func (n NetworkConfig) BroadcastInterval() time.Duration {
	return hzToInterval(n.BroadcastRateHz)
}

// LoopConfig defines the frame loop parameters.
type LoopConfig struct {
	TickRate        int `yaml:"tick_rate"`
	MaxFrameDeltaMs int `yaml:"max_frame_delta_ms"` // Frame dt clamp to survive hitches
}

// MaxFrameDelta returns the frame dt clamp.
func (l LoopConfig) MaxFrameDelta() time.Duration {
	return time.Duration(l.MaxFrameDeltaMs) * time.Millisecond
}

// FrameInterval returns the nominal frame period.
func (l LoopConfig) FrameInterval() time.Duration {
	return hzToInterval(float64(l.TickRate))
}

func hzToInterval(hz float64) time.Duration {
	if hz <= 0 {
		return time.Second / 60
	}
	return time.Duration(float64(time.Second) / hz)
}

// Validate checks the configuration for values the simulation cannot work with.
func (c MatchConfig) Validate() error {
	switch {
	case c.Players < 2 || c.Players > 4:
		return fmt.Errorf("%w: players must be 2-4, got %d", ErrInvalidConfig, c.Players)
	case c.Ball.BaseSpeed <= 0:
		return fmt.Errorf("%w: ball.base_speed must be positive", ErrInvalidConfig)
	case c.Ball.MaxSpeed < c.Ball.BaseSpeed:
		return fmt.Errorf("%w: ball.max_speed %.3f below base_speed %.3f", ErrInvalidConfig, c.Ball.MaxSpeed, c.Ball.BaseSpeed)
	case c.Paddle.Range <= 0 || c.Paddle.MaxVelocity <= 0:
		return fmt.Errorf("%w: paddle.range and paddle.max_velocity must be positive", ErrInvalidConfig)
	case c.Paddle.BrakeFactor < 0 || c.Paddle.BrakeFactor > 1:
		return fmt.Errorf("%w: paddle.brake_factor must be in [0, 1]", ErrInvalidConfig)
	case c.Spin.DecayFactor < 0 || c.Spin.DecayFactor >= 1:
		return fmt.Errorf("%w: spin.decay_factor must be in [0, 1)", ErrInvalidConfig)
	case c.Arena.PaddleDistance <= 0:
		return fmt.Errorf("%w: arena.paddle_distance must be positive", ErrInvalidConfig)
	case c.Powerups.MaxSpawnSeconds < c.Powerups.MinSpawnSeconds:
		return fmt.Errorf("%w: powerups.max_spawn_seconds below min_spawn_seconds", ErrInvalidConfig)
	case c.Loop.TickRate <= 0:
		return fmt.Errorf("%w: loop.tick_rate must be positive", ErrInvalidConfig)
	}
	for _, name := range c.Powerups.Types {
		if !isKnownPowerup(name) {
			return fmt.Errorf("%w: unknown power-up type %q", ErrInvalidConfig, name)
		}
	}
	return nil
}

// PowerupNames lists the power-up type names in wire id order.
var PowerupNames = []string{"split", "boost", "stretch", "shrink"}

func isKnownPowerup(name string) bool {
	for _, n := range PowerupNames {
		if n == name {
			return true
		}
	}
	return false
}
