package sim

import (
	"math/rand"
	"testing"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/physics"
)

type hookCounter struct {
	pickups    int
	terminated int
	lastPaddle int
	lastType   PowerupType
}

func (h *hookCounter) hooks() PowerupHooks {
	return PowerupHooks{
		OnPickup: func(t PowerupType, paddle int) {
			h.pickups++
			h.lastType = t
			h.lastPaddle = paddle
		},
		OnTerminated: func(t PowerupType) {
			h.terminated++
			h.lastType = t
		},
	}
}

func newTestManager(cfg config.PowerupConfig) (*physics.World, *PowerupManager, *hookCounter) {
	w := physics.NewWorld()
	h := &hookCounter{lastPaddle: -1}
	m := NewPowerupManager(cfg, w, rand.New(rand.NewSource(7)), h.hooks(), nil)
	return w, m, h
}

func run(w *physics.World, m *PowerupManager, seconds float64, vols []PaddleVolume) {
	ticks := int(seconds / tickDT)
	for i := 0; i < ticks; i++ {
		w.Step(tickDT)
		m.Update(tickDT, vols)
	}
}

var farPaddle = []PaddleVolume{{Index: 1, Center: core.Planar(0, 10), HalfX: 1, HalfZ: 0.15}}

func TestPowerupPickupLifecycle(t *testing.T) {
	cfg := config.DefaultMatchConfig().Powerups
	w, m, h := newTestManager(cfg)

	p := m.Spawn(PowerupBoost)
	if p.Phase != PhaseSpawning || p.Body != nil {
		t.Fatalf("new entity phase=%v body=%v, expected spawning without body", p.Phase, p.Body)
	}

	run(w, m, 0.5, farPaddle)
	if p.Phase != PhaseDrifting || p.Body == nil {
		t.Fatalf("after grow phase=%v body=%v, expected drifting with body", p.Phase, p.Body)
	}
	if p.Position.Y != cfg.Height {
		t.Errorf("drift height = %v, expected %v", p.Position.Y, cfg.Height)
	}

	// Move a paddle onto the entity
	paddle := []PaddleVolume{{Index: 1, Center: p.Position.Flatten(), HalfX: 1, HalfZ: 0.15}}
	w.Step(tickDT)
	m.Update(tickDT, paddle)

	if h.pickups != 1 || h.lastPaddle != 1 || h.lastType != PowerupBoost {
		t.Fatalf("pickups=%d paddle=%d type=%v, expected one boost pickup by paddle 1", h.pickups, h.lastPaddle, h.lastType)
	}
	if p.Phase != PhaseCollecting || p.Body != nil || p.Target != 1 {
		t.Fatalf("after pickup phase=%v body=%v target=%d", p.Phase, p.Body, p.Target)
	}
	if w.Len() != 0 {
		t.Errorf("world has %d bodies, expected the drift body released", w.Len())
	}

	run(w, m, cfg.CollectSeconds+0.1, paddle)

	if p.Phase != PhaseRemoved {
		t.Errorf("phase after collect = %v, expected removed", p.Phase)
	}
	if p.Scale != 0 || p.CollectProgress != 1 {
		t.Errorf("scale=%v progress=%v, expected 0 and 1", p.Scale, p.CollectProgress)
	}
	if h.pickups != 1 || h.terminated != 0 {
		t.Errorf("pickups=%d terminated=%d, expected 1 and 0", h.pickups, h.terminated)
	}
	if m.InFlight() != 0 {
		t.Errorf("InFlight() = %d, expected 0", m.InFlight())
	}
}

func TestPowerupCollectMovesTowardPaddle(t *testing.T) {
	cfg := config.DefaultMatchConfig().Powerups
	cfg.GrowSeconds = 0
	w, m, _ := newTestManager(cfg)

	p := m.Spawn(PowerupStretch)
	paddle := []PaddleVolume{{Index: 0, Center: core.Planar(0.5, 0), HalfX: 1, HalfZ: 0.15}}
	m.Update(tickDT, paddle)
	if p.Phase != PhaseCollecting {
		t.Fatalf("phase = %v, expected collecting", p.Phase)
	}

	// The paddle keeps moving; the entity follows its current position
	moved := []PaddleVolume{{Index: 0, Center: core.Planar(3, 0), HalfX: 1, HalfZ: 0.15}}
	run(w, m, cfg.CollectSeconds/2, moved)
	if p.Position.X <= 0 || p.Position.X >= 3 {
		t.Errorf("mid-collect x = %v, expected between start and paddle", p.Position.X)
	}
	if p.Scale <= 0 || p.Scale >= 1 {
		t.Errorf("mid-collect scale = %v, expected in (0, 1)", p.Scale)
	}
}

func TestPowerupOutOfBounds(t *testing.T) {
	cfg := config.DefaultMatchConfig().Powerups
	w, m, h := newTestManager(cfg)

	p := m.Spawn(PowerupSplit)
	run(w, m, cfg.GrowSeconds+cfg.BoundsRadius/cfg.DriftSpeed+0.5, nil)

	if p.Phase != PhaseRemoved {
		t.Fatalf("phase = %v, expected removed", p.Phase)
	}
	if h.terminated != 1 || h.pickups != 0 {
		t.Errorf("terminated=%d pickups=%d, expected 1 and 0", h.terminated, h.pickups)
	}
	if h.lastType != PowerupSplit {
		t.Errorf("terminated type = %v, expected split", h.lastType)
	}
	if w.Len() != 0 {
		t.Errorf("world has %d bodies after removal, expected 0", w.Len())
	}
}

func TestPowerupSpawnPolicy(t *testing.T) {
	base := config.DefaultMatchConfig().Powerups
	base.MinSpawnSeconds = 1
	base.MaxSpawnSeconds = 1
	base.BoundsRadius = 100

	t.Run("single in flight", func(t *testing.T) {
		w, m, _ := newTestManager(base)
		run(w, m, 3.5, farPaddle)
		if m.InFlight() != 1 {
			t.Errorf("InFlight() = %d, expected 1", m.InFlight())
		}
	})

	t.Run("blocked type", func(t *testing.T) {
		w, m, _ := newTestManager(base)
		m.SetEnabledTypes([]PowerupType{PowerupBoost})
		m.SetTypeBlocked(PowerupBoost, true)
		run(w, m, 3.5, farPaddle)
		if m.InFlight() != 0 {
			t.Fatalf("InFlight() = %d with the only type blocked", m.InFlight())
		}

		m.SetTypeBlocked(PowerupBoost, false)
		run(w, m, 1.5, farPaddle)
		v, ok := m.Primary()
		if !ok || v.Type != PowerupBoost {
			t.Errorf("Primary() = %+v, %v; expected a boost", v, ok)
		}
	})

	t.Run("paused", func(t *testing.T) {
		w, m, _ := newTestManager(base)
		m.SetSpawningPaused(true)
		run(w, m, 3.5, farPaddle)
		if m.InFlight() != 0 {
			t.Errorf("InFlight() = %d while paused", m.InFlight())
		}
		m.SetSpawningPaused(false)
		if m.TimeUntilSpawn() != 1 {
			t.Errorf("TimeUntilSpawn() after resume = %v, expected a fresh 1s", m.TimeUntilSpawn())
		}
	})

	t.Run("no enabled types", func(t *testing.T) {
		w, m, _ := newTestManager(base)
		m.SetEnabledTypes(nil)
		run(w, m, 3.5, farPaddle)
		if m.InFlight() != 0 {
			t.Errorf("InFlight() = %d with nothing enabled", m.InFlight())
		}
	})
}

func TestPowerupClearReleasesBodies(t *testing.T) {
	cfg := config.DefaultMatchConfig().Powerups
	cfg.GrowSeconds = 0
	w, m, h := newTestManager(cfg)

	m.Spawn(PowerupBoost)
	m.Spawn(PowerupShrink)
	if w.Len() != 2 {
		t.Fatalf("world has %d bodies, expected 2", w.Len())
	}

	m.Clear()
	if w.Len() != 0 || m.InFlight() != 0 {
		t.Errorf("after Clear bodies=%d inflight=%d, expected 0 and 0", w.Len(), m.InFlight())
	}
	if h.terminated != 0 {
		t.Errorf("Clear fired %d terminated callbacks, expected none", h.terminated)
	}
}

func TestPowerupKinematicWithoutSpawner(t *testing.T) {
	cfg := config.DefaultMatchConfig().Powerups
	cfg.GrowSeconds = 0
	m := NewPowerupManager(cfg, nil, rand.New(rand.NewSource(3)), PowerupHooks{}, nil)

	p := m.Spawn(PowerupBoost)
	m.Update(1, nil)
	if got := p.Position.Flatten().Len(); got < cfg.DriftSpeed-1e-9 || got > cfg.DriftSpeed+1e-9 {
		t.Errorf("kinematic drift distance = %v, expected %v", got, cfg.DriftSpeed)
	}
}

func TestParsePowerupType(t *testing.T) {
	for i, name := range config.PowerupNames {
		got, ok := ParsePowerupType(name)
		if !ok || int(got) != i {
			t.Errorf("ParsePowerupType(%q) = %v, %v", name, got, ok)
		}
		if got.String() != name {
			t.Errorf("String() = %q, expected %q", got.String(), name)
		}
	}
	if _, ok := ParsePowerupType("laser"); ok {
		t.Error("ParsePowerupType(laser) should fail")
	}
}
