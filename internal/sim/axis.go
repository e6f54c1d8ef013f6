// Package sim implements the authoritative match simulation: paddle motion,
// ball effects, the power-up lifecycle and the tick that ties them together.
package sim

import (
	"math"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// Axis describes where a paddle lives and how it moves.
type Axis struct {
	Dir    core.Vec3 // Unit movement axis
	Normal core.Vec3 // Unit outward normal, pointing at the goal this paddle defends
	Origin core.Vec3 // Paddle center at zero displacement
}

// SlotAxis returns the movement axis of a slot for the given player count.
//
// Two players share the X axis at z = ±distance. Three players sit on the
// sides of a triangle, their axes spaced 120° around Y. Four players put
// slots 0 and 1 on X and slots 2 and 3 on Z.
func SlotAxis(slot, players int, distance float64) Axis {
	var dir, normal core.Vec3
	switch players {
	case 3:
		theta := float64(slot) * 2 * math.Pi / 3
		dir = core.V3(1, 0, 0).RotateY(theta)
		normal = core.V3(0, 0, 1).RotateY(theta)
	case 4:
		switch slot {
		case 0:
			dir, normal = core.V3(1, 0, 0), core.V3(0, 0, 1)
		case 1:
			dir, normal = core.V3(1, 0, 0), core.V3(0, 0, -1)
		case 2:
			dir, normal = core.V3(0, 0, 1), core.V3(1, 0, 0)
		default:
			dir, normal = core.V3(0, 0, 1), core.V3(-1, 0, 0)
		}
	default:
		dir = core.V3(1, 0, 0)
		if slot%2 == 0 {
			normal = core.V3(0, 0, 1)
		} else {
			normal = core.V3(0, 0, -1)
		}
	}
	return Axis{Dir: dir, Normal: normal, Origin: normal.Scale(distance)}
}

// Displacement returns how far pos sits from the origin along the axis.
func (a Axis) Displacement(pos core.Vec3) float64 {
	return pos.Sub(a.Origin).Dot(a.Dir)
}

// At returns the point at the given displacement.
func (a Axis) At(disp float64) core.Vec3 {
	return a.Origin.Add(a.Dir.Scale(disp))
}
