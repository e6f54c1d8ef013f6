package physics

import (
	"errors"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// ErrDisposed is returned when a body is disposed twice.
var ErrDisposed = errors.New("physics: body already disposed")

// KinematicBody is a point mass integrated by World.
// It has no collision response; the simulation resolves contacts itself.
type KinematicBody struct {
	world    *World
	pos      core.Vec3
	vel      core.Vec3
	mass     float64
	disposed bool
}

// LinearVelocity returns the current velocity.
func (b *KinematicBody) LinearVelocity() core.Vec3 { return b.vel }

// SetLinearVelocity replaces the velocity.
func (b *KinematicBody) SetLinearVelocity(v core.Vec3) { b.vel = v }

// ApplyImpulse changes velocity by j / mass.
func (b *KinematicBody) ApplyImpulse(j core.Vec3) {
	b.vel = b.vel.Add(j.Scale(1 / b.mass))
}

// Position returns the absolute position.
func (b *KinematicBody) Position() core.Vec3 { return b.pos }

// SetPosition teleports the body.
func (b *KinematicBody) SetPosition(p core.Vec3) { b.pos = p }

// Mass returns the body mass.
func (b *KinematicBody) Mass() float64 { return b.mass }

// Disposed reports whether the body was released.
func (b *KinematicBody) Disposed() bool { return b.disposed }

// Dispose removes the body from its world.
func (b *KinematicBody) Dispose() error {
	if b.disposed {
		return ErrDisposed
	}
	b.disposed = true
	if b.world != nil {
		b.world.remove(b)
	}
	return nil
}

// World integrates kinematic bodies with explicit Euler steps.
// Given the same inputs it produces bit-identical results.
type World struct {
	bodies []*KinematicBody
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{}
}

// CreateBody adds a body at pos. Non-positive masses are treated as 1.
func (w *World) CreateBody(pos core.Vec3, mass float64) *KinematicBody {
	if mass <= 0 {
		mass = 1
	}
	b := &KinematicBody{world: w, pos: pos, mass: mass}
	w.bodies = append(w.bodies, b)
	return b
}

// Spawn implements Spawner.
func (w *World) Spawn(pos core.Vec3, mass float64) Body {
	return w.CreateBody(pos, mass)
}

// Step advances every body by dt seconds.
func (w *World) Step(dt float64) {
	for _, b := range w.bodies {
		b.pos = b.pos.Add(b.vel.Scale(dt))
	}
}

// Len returns the number of live bodies.
func (w *World) Len() int {
	return len(w.bodies)
}

func (w *World) remove(b *KinematicBody) {
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return
		}
	}
}
