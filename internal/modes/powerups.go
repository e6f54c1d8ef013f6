package modes

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/sim"
)

type effect struct {
	typ    sim.PowerupType
	paddle int
	until  time.Duration
}

// Powerups applies pickup effects for a limited time. A type stays blocked
// from spawning while its effect runs.
type Powerups struct {
	logger *log.Logger
	sim    *sim.Simulation
	cfg    config.PowerupConfig
	base   float64 // Configured paddle half length
	active []effect
}

// NewPowerups creates the power-up mode. logger may be nil.
func NewPowerups(logger *log.Logger) *Powerups {
	if logger == nil {
		logger = log.Default()
	}
	return &Powerups{logger: logger.WithPrefix("powerups")}
}

func (*Powerups) ID() string    { return PowerupsID }
func (*Powerups) Title() string { return "Power-ups" }
func (*Powerups) Description() string {
	return "Split balls, boosts and paddle resizes drift through the arena."
}

// Configure enables power-ups. An empty type list enables every type.
func (*Powerups) Configure(cfg *config.MatchConfig) {
	cfg.Powerups.Enabled = true
	if len(cfg.Powerups.Types) == 0 {
		cfg.Powerups.Types = append([]string(nil), config.PowerupNames...)
	}
}

// Attach installs the pickup hooks.
func (p *Powerups) Attach(s *sim.Simulation) {
	cfg := s.Config()
	p.sim = s
	p.cfg = cfg.Powerups
	p.base = cfg.Paddle.HalfLength
	p.active = nil
	s.SetPowerupHooks(sim.PowerupHooks{
		OnPickup:     p.onPickup,
		OnTerminated: p.onTerminated,
	})
}

// Active returns the types whose effects are running.
func (p *Powerups) Active() []sim.PowerupType {
	out := make([]sim.PowerupType, 0, len(p.active))
	for _, e := range p.active {
		out = append(out, e.typ)
	}
	return out
}

// Update expires finished effects. A new round or the end of the match
// clears everything.
func (p *Powerups) Update(s *sim.Simulation, events []sim.Event) {
	for _, e := range events {
		switch e.(type) {
		case sim.RoundResetEvent, sim.MatchEndedEvent:
			p.clear()
		}
	}

	now := s.Elapsed()
	kept := p.active[:0]
	changed := false
	for _, e := range p.active {
		// The split ball may be gone before its time is up
		if now >= e.until || (e.typ == sim.PowerupSplit && !s.SplitActive()) {
			p.revert(e)
			changed = true
			continue
		}
		kept = append(kept, e)
	}
	p.active = kept
	if changed {
		p.resize()
	}
}

func (p *Powerups) onPickup(t sim.PowerupType, paddle int) {
	if p.sim == nil {
		return
	}
	if !p.apply(t) {
		p.logger.Debug("pickup had no effect", "type", t, "paddle", paddle)
		return
	}
	p.sim.Powerups().SetTypeBlocked(t, true)
	p.active = append(p.active, effect{
		typ:    t,
		paddle: paddle,
		until:  p.sim.Elapsed() + time.Duration(p.cfg.EffectSeconds*float64(time.Second)),
	})
	p.resize()
	p.logger.Debug("effect started", "type", t, "paddle", paddle)
}

func (p *Powerups) onTerminated(t sim.PowerupType) {
	p.logger.Debug("power-up left the arena", "type", t)
}

func (p *Powerups) apply(t sim.PowerupType) bool {
	switch t {
	case sim.PowerupSplit:
		return p.sim.EnableSplit()
	case sim.PowerupBoost:
		p.sim.Effects().SetSpeedMultiplier(p.cfg.BoostFactor)
	case sim.PowerupStretch, sim.PowerupShrink:
		// resize handles both
	default:
		return false
	}
	return true
}

func (p *Powerups) revert(e effect) {
	switch e.typ {
	case sim.PowerupSplit:
		p.sim.DisableSplit()
	case sim.PowerupBoost:
		p.sim.Effects().SetSpeedMultiplier(1)
	}
	p.sim.Powerups().SetTypeBlocked(e.typ, false)
	p.logger.Debug("effect ended", "type", e.typ, "paddle", e.paddle)
}

func (p *Powerups) clear() {
	for _, e := range p.active {
		p.revert(e)
	}
	p.active = p.active[:0]
	p.resize()
}

// resize recomputes every paddle length from the running effects.
// Stretch grows the picker, shrink hits everyone else.
func (p *Powerups) resize() {
	if p.sim == nil {
		return
	}
	for slot := 0; slot < p.sim.Players(); slot++ {
		half := p.base
		for _, e := range p.active {
			switch {
			case e.typ == sim.PowerupStretch && e.paddle == slot:
				half *= p.cfg.StretchFactor
			case e.typ == sim.PowerupShrink && e.paddle != slot:
				half *= p.cfg.ShrinkFactor
			}
		}
		p.sim.SetPaddleHalfLength(slot, half)
	}
}
