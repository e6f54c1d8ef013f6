// Package physics defines the rigid-body capability the simulation depends on
// and a deterministic kinematic world that implements it.
package physics

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// Body is a handle to one rigid body owned by a physics backend.
type Body interface {
	LinearVelocity() core.Vec3
	SetLinearVelocity(v core.Vec3)
	ApplyImpulse(j core.Vec3)
	Position() core.Vec3
	SetPosition(p core.Vec3)
}

// Disposer is implemented by bodies that hold backend resources.
type Disposer interface {
	Dispose() error
}

// Spawner creates bodies on demand.
type Spawner interface {
	Spawn(pos core.Vec3, mass float64) Body
}

// Backend creates bodies and integrates them once per tick.
type Backend interface {
	Spawner
	Step(dt float64)
}

// SafeDispose releases a body if it supports disposal.
// Errors and panics from the backend are logged at debug level and swallowed.
func SafeDispose(b Body, logger *log.Logger) {
	if b == nil {
		return
	}
	d, ok := b.(Disposer)
	if !ok {
		return
	}
	Guard(logger, "dispose", func() {
		if err := d.Dispose(); err != nil {
			debugf(logger, "physics: dispose failed: %v", err)
		}
	})
}

// Guard runs fn and converts a panic into a debug log line.
// It reports whether fn completed normally.
func Guard(logger *log.Logger, op string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			debugf(logger, "physics: %s recovered: %v", op, r)
			ok = false
		}
	}()
	fn()
	return true
}

func debugf(logger *log.Logger, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Debug(fmt.Sprintf(format, args...))
}
