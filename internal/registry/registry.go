// Package registry provides a global registry for game modes.
// Modes register themselves in init() functions, allowing the CLI to
// discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/sim"
)

// Mode is the game-mode logic surrounding the simulation. It decides what
// power-up pickups do and how long their effects last.
type Mode interface {
	// ID returns a unique identifier for this mode (e.g., "classic").
	// Used for CLI flags, config files and match history.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Description is a one-line summary shown by `pong modes`.
	Description() string

	// Configure adjusts the match config before the simulation is built.
	Configure(cfg *config.MatchConfig)

	// Attach wires the mode into a freshly built simulation.
	Attach(s *sim.Simulation)

	// Update runs after every master frame with the events emitted during it.
	Update(s *sim.Simulation, events []sim.Event)
}

// ModeInfo contains metadata about a registered mode.
type ModeInfo struct {
	ID          string
	Title       string
	Description string
}

// Factory is a function that creates a new instance of a mode.
type Factory func() Mode

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]ModeInfo)
	mu        sync.RWMutex
)

// Register adds a mode factory to the registry.
// Panics if a mode with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: mode %q already registered", id))
	}
	factories[id] = f

	m := f()
	infos[id] = ModeInfo{ID: id, Title: m.Title(), Description: m.Description()}
}

// List returns information about all registered modes, sorted by ID.
func List() []ModeInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ModeInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a new mode by its ID.
// Returns an error if the mode ID is not registered.
func Create(id string) (Mode, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown mode %q", id)
	}
	return f(), nil
}

// Exists checks if a mode with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
