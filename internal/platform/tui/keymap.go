package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// KeyMap defines the match key bindings. The primary group is the arrow
// keys, the alternate group is WASD; a lone player can use either.
type KeyMap struct {
	Left     key.Binding
	Right    key.Binding
	Serve    key.Binding
	AltLeft  key.Binding
	AltRight key.Binding
	AltServe key.Binding
	Pause    key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Serve, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Serve},
		{k.AltLeft, k.AltRight, k.AltServe},
		{k.Pause, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "up"),
			key.WithHelp("←/↑", "move"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "down"),
			key.WithHelp("→/↓", "move"),
		),
		Serve: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "serve"),
		),
		AltLeft: key.NewBinding(
			key.WithKeys("a", "w"),
			key.WithHelp("a/w", "move"),
		),
		AltRight: key.NewBinding(
			key.WithKeys("d", "s"),
			key.WithHelp("d/s", "move"),
		),
		AltServe: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "serve"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p", "pause"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Seats maps key groups to slots. -1 disables a group.
type Seats struct {
	Primary int
	Alt     int
}

// SoloSeats gives both key groups to one slot.
func SoloSeats(slot int) Seats { return Seats{Primary: slot, Alt: slot} }

// HotSeat gives the arrows to slot 0 and WASD to slot 1.
func HotSeat() Seats { return Seats{Primary: 0, Alt: 1} }

// Action translates a key to a slot and action. Pause and Quit are
// global and come back with slot -1. Unmapped keys return ActionNone.
func (k KeyMap) Action(msg tea.KeyMsg, seats Seats) (int, core.Action) {
	switch {
	case key.Matches(msg, k.Quit):
		return -1, core.ActionQuit
	case key.Matches(msg, k.Pause):
		return -1, core.ActionPause
	}

	groups := []struct {
		slot             int
		left, right, srv key.Binding
	}{
		{seats.Primary, k.Left, k.Right, k.Serve},
		{seats.Alt, k.AltLeft, k.AltRight, k.AltServe},
	}
	for _, g := range groups {
		if g.slot < 0 {
			continue
		}
		switch {
		case key.Matches(msg, g.left):
			return g.slot, core.ActionLeft
		case key.Matches(msg, g.right):
			return g.slot, core.ActionRight
		case key.Matches(msg, g.srv):
			return g.slot, core.ActionServe
		}
	}
	return -1, core.ActionNone
}

// holdWindow is how long a movement key counts as held after a press.
// It bridges the gap between the first press and the terminal's key repeat.
const holdWindow = 150 * time.Millisecond

type heldKey struct {
	slot   int
	action core.Action
}

// Held turns key presses into held actions. Terminals report presses and
// auto-repeats but never releases, so movement stays held for a short
// window after each press. Serve is one-shot.
type Held struct {
	window time.Duration
	until  map[heldKey]time.Time
}

// NewHeld creates a tracker. A non-positive window uses the default.
func NewHeld(window time.Duration) *Held {
	if window <= 0 {
		window = holdWindow
	}
	return &Held{window: window, until: make(map[heldKey]time.Time)}
}

// Press records a key press at now. Pressing one direction releases the other.
func (h *Held) Press(slot int, a core.Action, now time.Time) {
	switch a {
	case core.ActionLeft:
		delete(h.until, heldKey{slot, core.ActionRight})
	case core.ActionRight:
		delete(h.until, heldKey{slot, core.ActionLeft})
	}
	h.until[heldKey{slot, a}] = now.Add(h.window)
}

// Frame returns the input held at now and forgets expired and one-shot actions.
func (h *Held) Frame(now time.Time) core.MultiInputFrame {
	frame := core.NewMultiInputFrame()
	for k, until := range h.until {
		if now.After(until) {
			delete(h.until, k)
			continue
		}
		frame.Press(k.slot, k.action)
		if k.action == core.ActionServe {
			delete(h.until, k)
		}
	}
	return frame
}

// Release forgets everything held.
func (h *Held) Release() {
	clear(h.until)
}
