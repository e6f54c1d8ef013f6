package sim

// Event is emitted by the simulation during a tick and drained by the host.
type Event interface {
	simEvent()
}

// ScoredEvent is emitted when the ball crosses a goal line.
type ScoredEvent struct {
	Conceded int   // Slot whose goal was crossed
	Scores   []int // Scores after the goal
}

func (ScoredEvent) simEvent() {}

// PickupEvent is emitted when a paddle picks up a power-up.
type PickupEvent struct {
	Type   PowerupType
	Paddle int
}

func (PickupEvent) simEvent() {}

// TerminatedEvent is emitted when a power-up leaves the arena untouched.
type TerminatedEvent struct {
	Type PowerupType
}

func (TerminatedEvent) simEvent() {}

// RoundResetEvent is emitted whenever the ball is reset for a new serve.
type RoundResetEvent struct {
	Round   int
	Serving int
}

func (RoundResetEvent) simEvent() {}

// ServedEvent is emitted when the ball is released.
type ServedEvent struct {
	Serving int
}

func (ServedEvent) simEvent() {}

// MatchEndedEvent is emitted once when a player reaches the score limit or the match is stopped.
type MatchEndedEvent struct {
	Winner int // -1 when stopped without a winner
	Scores []int
}

func (MatchEndedEvent) simEvent() {}
