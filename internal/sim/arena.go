package sim

import (
	"math"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/physics"
)

// Arena holds the fixed playfield geometry for one player count.
type Arena struct {
	cfg        config.ArenaConfig
	players    int
	axes       []Axis
	radius     float64
	thickness  float64
	deflection float64
}

// NewArena builds the geometry for cfg.Players slots.
func NewArena(cfg config.MatchConfig) *Arena {
	a := &Arena{
		cfg:        cfg.Arena,
		players:    cfg.Players,
		radius:     cfg.Ball.Radius,
		thickness:  cfg.Paddle.Thickness,
		deflection: cfg.Paddle.Deflection,
	}
	for i := 0; i < cfg.Players; i++ {
		a.axes = append(a.axes, SlotAxis(i, cfg.Players, cfg.Arena.PaddleDistance))
	}
	return a
}

// Axis returns the axis of a slot.
func (a *Arena) Axis(slot int) Axis {
	return a.axes[slot]
}

// Players returns the slot count.
func (a *Arena) Players() int {
	return a.players
}

// HasSideWalls reports whether the arena is closed at x = ±HalfWidth.
// Only the two-player layout has side walls; other layouts are bounded by goal lines.
func (a *Arena) HasSideWalls() bool {
	return a.players == 2
}

// HalfWidth returns the side wall distance.
func (a *Arena) HalfWidth() float64 {
	return a.cfg.HalfWidth
}

// BounceWalls reflects a ball off the side walls. It reports whether a wall was touched.
func (a *Arena) BounceWalls(b physics.Body) bool {
	if b == nil || !a.HasSideWalls() {
		return false
	}
	pos, vel := b.Position(), b.LinearVelocity()
	limit := a.cfg.HalfWidth - a.radius
	switch {
	case pos.X > limit && vel.X > 0:
		pos.X = limit
		vel.X = -vel.X
	case pos.X < -limit && vel.X < 0:
		pos.X = -limit
		vel.X = -vel.X
	default:
		return false
	}
	b.SetPosition(pos)
	b.SetLinearVelocity(vel)
	return true
}

// GoalCrossed returns the slot whose goal line pos has passed, or -1.
func (a *Arena) GoalCrossed(pos core.Vec3) int {
	line := a.cfg.PaddleDistance + a.cfg.GoalMargin
	best, bestDepth := -1, 0.0
	for i, ax := range a.axes {
		depth := pos.Flatten().Dot(ax.Normal) - line
		if depth > 0 && (best < 0 || depth > bestDepth) {
			best, bestDepth = i, depth
		}
	}
	return best
}

// PaddleHit resolves a ball against one paddle box. The ball is swept from
// prev, its position before the last step, so fast balls cannot skip over
// the box. On contact the ball is reflected about the paddle normal, pushed
// in front of the face and bent sideways by how far off center it struck.
func (a *Arena) PaddleHit(b physics.Body, p *Paddle, prev core.Vec3) bool {
	if b == nil || p == nil {
		return false
	}
	pos, vel := b.Position(), b.LinearVelocity()
	n, dir := p.Axis.Normal, p.Axis.Dir
	if vel.Dot(n) <= 0 {
		return false
	}
	center := p.Position()
	rel := pos.Sub(center).Flatten()
	relPrev := prev.Sub(center).Flatten()
	half := a.thickness / 2
	reach := half + a.radius
	w, wPrev := rel.Dot(n), relPrev.Dot(n)
	if w < -reach || wPrev > reach {
		return false
	}

	// Lateral offset where the ball entered the band.
	at := rel
	if wPrev < -reach && w != wPrev {
		t := (-reach - wPrev) / (w - wPrev)
		at = relPrev.Add(rel.Sub(relPrev).Scale(t))
	}
	u := at.Dot(dir)
	if math.Abs(u) > p.HalfLength+a.radius {
		return false
	}

	speed := vel.Flatten().Len()
	out := vel.Sub(n.Scale(2 * vel.Dot(n))).Flatten()
	offset := 0.0
	if p.HalfLength > 0 {
		offset = core.ClampF(u/p.HalfLength, -1, 1)
	}
	out = out.Add(dir.Scale(offset * a.deflection * speed))
	if speed > 0 {
		out = out.Normalize().Scale(speed)
	}
	b.SetPosition(pos.Sub(n.Scale(w + reach)))
	b.SetLinearVelocity(out)
	return true
}
