package sim

import (
	"math"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/physics"
)

// Paddle is the per-slot paddle state.
type Paddle struct {
	Index        int
	Axis         Axis
	Body         physics.Body
	HalfLength   float64 // Current half length, changed by stretch/shrink
	Displacement float64 // Signed distance from origin along the axis
	AxisVelocity float64
	AtBoundary   bool // Set while inside the boundary band

	// ClientAuthoritative paddles follow remote reports instead of input.
	ClientAuthoritative bool
	reportedVel         core.Vec3
}

// Position returns the paddle position, or its origin when no body is attached.
func (p *Paddle) Position() core.Vec3 {
	if p.Body == nil {
		return p.Axis.Origin
	}
	return p.Body.Position()
}

// Velocity returns the paddle velocity, or zero when no body is attached.
// Client-authoritative paddles report the last velocity they were sent.
func (p *Paddle) Velocity() core.Vec3 {
	if p.ClientAuthoritative {
		return p.reportedVel
	}
	if p.Body == nil {
		return core.Vec3{}
	}
	return p.Body.LinearVelocity()
}

// PaddleController advances paddles from discrete directional input.
type PaddleController struct {
	cfg config.PaddleConfig
}

// NewPaddleController creates a controller for the given tunables.
func NewPaddleController(cfg config.PaddleConfig) *PaddleController {
	return &PaddleController{cfg: cfg}
}

// Step advances one paddle by one tick. Positions are integrated by the
// backend afterwards; Step only sets velocity and clamps position.
// A paddle without a body is left untouched.
func (c *PaddleController) Step(p *Paddle, dir core.Direction, dt float64) {
	if p == nil || p.Body == nil {
		return
	}
	b := p.Body
	axis := p.Axis.Dir
	rng := c.cfg.Range

	pos := b.Position()
	disp := p.Axis.Displacement(pos)

	vel := b.LinearVelocity()
	along := vel.Dot(axis)
	perp := vel.Sub(axis.Scale(along))

	want := dir.Float()
	impulse := axis.Scale(c.cfg.Impulse * want)

	if math.Abs(disp) >= rng-c.cfg.BoundaryEpsilon {
		side := core.Sign(disp)
		clamped := core.ClampF(disp, -rng, rng)
		if clamped != disp {
			b.SetPosition(pos.Add(axis.Scale(clamped - disp)))
			disp = clamped
		}

		if !p.AtBoundary {
			// Entry tick: stop dead, no impulse
			p.AtBoundary = true
			b.SetLinearVelocity(perp)
		} else if want != 0 && want == -side {
			if along*want < 0 {
				b.SetLinearVelocity(perp)
			}
			b.ApplyImpulse(impulse)
		} else if want != 0 {
			b.SetLinearVelocity(perp)
		} else {
			// Braking, but never drift further out
			along *= c.cfg.BrakeFactor
			if along*side > 0 || math.Abs(along) < c.cfg.StopEpsilon {
				along = 0
			}
			b.SetLinearVelocity(perp.Add(axis.Scale(along)))
		}
	} else {
		p.AtBoundary = false
		if want == 0 {
			along *= c.cfg.BrakeFactor
			if math.Abs(along) < c.cfg.StopEpsilon {
				along = 0
			}
			b.SetLinearVelocity(perp.Add(axis.Scale(along)))
		} else {
			if along*want < 0 {
				// Hard reversal
				b.SetLinearVelocity(perp)
			}
			b.ApplyImpulse(impulse)
		}
	}

	along = c.limit(b.LinearVelocity().Dot(axis), disp, dt)
	b.SetLinearVelocity(perp.Add(axis.Scale(along)))

	p.Displacement = disp
	p.AxisVelocity = along
}

// limit clamps axis velocity to the max and so that one tick of integration
// cannot carry the paddle past either boundary.
func (c *PaddleController) limit(along, disp, dt float64) float64 {
	along = core.ClampF(along, -c.cfg.MaxVelocity, c.cfg.MaxVelocity)
	if dt <= 0 {
		return along
	}
	rng := c.cfg.Range
	if disp+along*dt > rng {
		along = (rng - disp) / dt
	}
	if disp+along*dt < -rng {
		along = (-rng - disp) / dt
	}
	return along
}

// Follow snaps a paddle to a reported position and velocity, projected onto its axis.
// The body is held still; the reported velocity is kept for spin transfer.
func (c *PaddleController) Follow(p *Paddle, pos, vel core.Vec3) {
	if p == nil || p.Body == nil {
		return
	}
	disp := core.ClampF(p.Axis.Displacement(pos), -c.cfg.Range, c.cfg.Range)
	along := vel.Dot(p.Axis.Dir)
	p.Body.SetPosition(p.Axis.At(disp))
	p.Body.SetLinearVelocity(core.Vec3{})
	p.reportedVel = p.Axis.Dir.Scale(along)
	p.Displacement = disp
	p.AxisVelocity = along
	p.AtBoundary = math.Abs(disp) >= c.cfg.Range-c.cfg.BoundaryEpsilon
}
