package core

// Action represents a semantic input action, abstracted from physical key presses.
type Action int

const (
	ActionNone  Action = iota
	ActionLeft         // Move paddle towards the negative end of its axis
	ActionRight        // Move paddle towards the positive end of its axis
	ActionServe        // Release the ball when this player is serving
	ActionPause        // Toggle pause
	ActionQuit         // Leave the match
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionServe:
		return "Serve"
	case ActionPause:
		return "Pause"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Direction is a discrete movement request along a paddle axis: -1, 0 or +1.
type Direction int

const (
	DirNegative Direction = -1
	DirNone     Direction = 0
	DirPositive Direction = 1
)

// Float returns the direction as a float multiplier.
func (d Direction) Float() float64 {
	return float64(d)
}

// InputFrame represents the input state for a single player during one tick.
type InputFrame struct {
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Direction folds Left/Right into a discrete direction. Both pressed cancel out.
func (f InputFrame) Direction() Direction {
	var d Direction
	if f.Has(ActionLeft) {
		d--
	}
	if f.Has(ActionRight) {
		d++
	}
	return d
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	return clone
}

// MultiInputFrame contains the input of every locally controlled paddle for one tick,
// keyed by paddle slot.
type MultiInputFrame struct {
	BySlot map[int]InputFrame
}

// NewMultiInputFrame creates an empty multi-input frame.
func NewMultiInputFrame() MultiInputFrame {
	return MultiInputFrame{
		BySlot: make(map[int]InputFrame),
	}
}

// Slot returns the input frame for a paddle slot.
// Returns an empty frame if the slot has no input.
func (m MultiInputFrame) Slot(slot int) InputFrame {
	if m.BySlot == nil {
		return NewInputFrame()
	}
	if frame, ok := m.BySlot[slot]; ok {
		return frame
	}
	return NewInputFrame()
}

// SetSlot sets the input frame for a paddle slot.
func (m *MultiInputFrame) SetSlot(slot int, frame InputFrame) {
	if m.BySlot == nil {
		m.BySlot = make(map[int]InputFrame)
	}
	m.BySlot[slot] = frame
}

// Press marks a single action for a slot.
func (m *MultiInputFrame) Press(slot int, a Action) {
	frame := m.Slot(slot)
	frame.Set(a)
	m.SetSlot(slot, frame)
}

// Clear resets all slot inputs for the next frame.
func (m *MultiInputFrame) Clear() {
	for slot := range m.BySlot {
		frame := m.BySlot[slot]
		frame.Clear()
		m.BySlot[slot] = frame
	}
}

// Clone creates a deep copy of this multi-input frame.
func (m MultiInputFrame) Clone() MultiInputFrame {
	clone := NewMultiInputFrame()
	for slot, frame := range m.BySlot {
		clone.BySlot[slot] = frame.Clone()
	}
	return clone
}
