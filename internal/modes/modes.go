// Package modes holds the built-in game modes. Importing it registers them.
package modes

import (
	"fmt"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/registry"
	"github.com/vovakirdan/tui-pong/internal/sim"
)

// Mode identifiers.
const (
	ClassicID  = "classic"
	PowerupsID = "powerups"
)

func init() {
	registry.Register(ClassicID, func() registry.Mode { return NewClassic() })
	registry.Register(PowerupsID, func() registry.Mode { return NewPowerups(nil) })
}

// Setup creates the named mode, lets it adjust cfg and builds the simulation
// with the mode attached.
func Setup(id string, cfg config.MatchConfig, opts sim.Options) (*sim.Simulation, registry.Mode, error) {
	m, err := registry.Create(id)
	if err != nil {
		return nil, nil, err
	}
	cfg.Mode = m.ID()
	m.Configure(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("mode %s: %w", id, err)
	}
	s := sim.New(cfg, opts)
	m.Attach(s)
	return s, m, nil
}

// Classic is plain Pong without power-ups.
type Classic struct{}

// NewClassic creates the classic mode.
func NewClassic() *Classic { return &Classic{} }

func (*Classic) ID() string    { return ClassicID }
func (*Classic) Title() string { return "Classic" }
func (*Classic) Description() string { return "Ball, paddles and spin. Nothing else." }

// Configure turns power-ups off.
func (*Classic) Configure(cfg *config.MatchConfig) {
	cfg.Powerups.Enabled = false
}

func (*Classic) Attach(*sim.Simulation) {}
func (*Classic) Update(*sim.Simulation, []sim.Event) {}
