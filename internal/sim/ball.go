package sim

import (
	"math"
	"time"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/physics"
)

// BallEffects owns the ball's target speed and spin.
type BallEffects struct {
	ball config.BallConfig
	spin config.SpinConfig

	hits       int
	speed      float64
	multiplier float64
	spinVec    core.Vec3
	spinAt     time.Duration
}

// NewBallEffects creates a ball effects engine at base speed.
func NewBallEffects(ball config.BallConfig, spin config.SpinConfig) *BallEffects {
	e := &BallEffects{ball: ball, spin: spin, multiplier: 1}
	e.Reset()
	return e
}

// Reset returns rally, speed and spin to their serve values.
// The speed multiplier is kept; effects own it.
func (e *BallEffects) Reset() {
	e.hits = 0
	e.speed = e.ball.BaseSpeed
	e.spinVec = core.Vec3{}
	e.spinAt = 0
}

// Hits returns the rally hit count.
func (e *BallEffects) Hits() int { return e.hits }

// Spin returns the accumulated spin vector.
func (e *BallEffects) Spin() core.Vec3 { return e.spinVec }

// RallySpeed returns the rally target speed without multipliers.
func (e *BallEffects) RallySpeed() float64 { return e.speed }

// Speed returns the current target speed, always within [base, max].
func (e *BallEffects) Speed() float64 {
	return core.ClampF(e.speed*e.multiplier, e.ball.BaseSpeed, e.ball.MaxSpeed)
}

// SetSpeedMultiplier scales the target speed. Values below 1 are treated as 1.
func (e *BallEffects) SetSpeedMultiplier(m float64) {
	if m < 1 {
		m = 1
	}
	e.multiplier = m
}

// RegisterHit records a paddle contact: the rally grows and the paddle's
// velocity is transferred into spin.
func (e *BallEffects) RegisterHit(paddleVel core.Vec3, now time.Duration) {
	e.hits++
	base := e.ball.BaseSpeed
	e.speed = math.Min(base+base*e.ball.IncrementPercent/100*float64(e.hits), e.ball.MaxSpeed)

	if !paddleVel.IsZero() {
		e.spinVec = e.spinVec.Add(paddleVel.Scale(e.spin.TransferFactor))
		e.spinAt = now
	}
}

// WallContact damps spin after touching a wall.
func (e *BallEffects) WallContact() {
	e.spinVec = e.spinVec.Scale(e.spin.WallFriction)
	e.snapSpin()
}

// Step applies Magnus deflection, decays spin and renormalizes the ball to
// the target speed. A nil body is a no-op.
func (e *BallEffects) Step(b physics.Body, now time.Duration, dt float64) {
	if b == nil {
		return
	}

	if e.magnusActive(now) {
		if j, ok := e.magnusImpulse(b.LinearVelocity(), dt); ok {
			b.ApplyImpulse(j)
		}
	}

	e.spinVec = e.spinVec.Scale(e.spin.DecayFactor)
	e.snapSpin()

	v := b.LinearVelocity().Flatten()
	if v.IsZero() {
		return
	}
	b.SetLinearVelocity(v.Normalize().Scale(e.Speed()))
}

func (e *BallEffects) magnusActive(now time.Duration) bool {
	if e.spinVec.Len() <= e.spin.MinMagnitude {
		return false
	}
	return now-e.spinAt >= e.spin.ActivationDelay()
}

// magnusImpulse computes (spin × v)·coef redirected into the play plane,
// perpendicular to the planar velocity, scaled by dt.
func (e *BallEffects) magnusImpulse(v core.Vec3, dt float64) (core.Vec3, bool) {
	flat := v.Flatten()
	speed := flat.Len()
	if speed == 0 {
		return core.Vec3{}, false
	}
	force := e.spinVec.Cross(v).Scale(e.spin.MagnusCoefficient)
	perp := core.Planar(flat.Z/speed, -flat.X/speed)
	lateral := force.Flatten().Dot(perp) + force.Y
	if lateral == 0 {
		return core.Vec3{}, false
	}
	return perp.Scale(lateral * dt), true
}

func (e *BallEffects) snapSpin() {
	if e.spinVec.Len() < e.spin.ZeroThreshold {
		e.spinVec = core.Vec3{}
	}
}
