package sim

import (
	"time"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// MatchPhase is the simulation lifecycle phase.
type MatchPhase int

const (
	MatchIdle MatchPhase = iota
	MatchRunning
	MatchPaused
	MatchEnded
)

func (p MatchPhase) String() string {
	switch p {
	case MatchIdle:
		return "idle"
	case MatchRunning:
		return "running"
	case MatchPaused:
		return "paused"
	case MatchEnded:
		return "ended"
	default:
		return "?"
	}
}

// BallState is a copy of the ball.
type BallState struct {
	Position core.Vec3
	Velocity core.Vec3
	Spin     core.Vec3
	Speed    float64 // Current target speed
	Hits     int     // Rally hits since the last serve
}

// PaddleState is a copy of one paddle.
type PaddleState struct {
	Index               int
	Position            core.Vec3
	Velocity            core.Vec3
	AxisVelocity        float64
	Displacement        float64
	AtBoundary          bool
	Axis                core.Vec3
	Normal              core.Vec3
	Origin              core.Vec3
	HalfLength          float64
	ClientAuthoritative bool
}

// GameState is a read-only copy of the whole simulation.
type GameState struct {
	Phase           MatchPhase
	Running         bool
	WaitingForServe bool
	ServingPlayer   int // -1 when none
	Players         int
	Ball            BallState
	Paddles         []PaddleState
	Powerups        map[int]PowerupView
	Split           *core.Vec3 // Split ball position, nil when inactive
	Scores          []int
	Winner          int // -1 until the match ends with a winner
	Round           int
	Tick            int
	Elapsed         time.Duration
}

// Powerup returns the oldest live power-up, if any.
func (s GameState) Powerup() (PowerupView, bool) {
	var (
		best  PowerupView
		found bool
	)
	for _, p := range s.Powerups {
		if p.Phase == PhaseRemoved {
			continue
		}
		if !found || p.ID < best.ID {
			best, found = p, true
		}
	}
	return best, found
}

// Snapshot returns a deep copy of the current state.
func (s *Simulation) Snapshot() GameState {
	st := GameState{
		Phase:           s.phase,
		Running:         s.phase == MatchRunning,
		WaitingForServe: s.waitingForServe,
		ServingPlayer:   s.serving,
		Players:         len(s.paddles),
		Powerups:        make(map[int]PowerupView),
		Scores:          append([]int(nil), s.scores...),
		Winner:          s.winner,
		Round:           s.round,
		Tick:            s.ticks,
		Elapsed:         s.clock,
	}

	st.Ball = BallState{
		Speed: s.effects.Speed(),
		Hits:  s.effects.Hits(),
		Spin:  s.effects.Spin(),
	}
	if s.ball != nil {
		s.guard("snapshot ball", func() {
			st.Ball.Position = s.ball.Position()
			st.Ball.Velocity = s.ball.LinearVelocity()
		})
	}

	for _, p := range s.paddles {
		pos, vel := p.Axis.Origin, core.Vec3{}
		s.guard("snapshot paddle", func() { pos, vel = p.Position(), p.Velocity() })
		st.Paddles = append(st.Paddles, PaddleState{
			Index:               p.Index,
			Position:            pos,
			Velocity:            vel,
			AxisVelocity:        p.AxisVelocity,
			Displacement:        p.Displacement,
			AtBoundary:          p.AtBoundary,
			Axis:                p.Axis.Dir,
			Normal:              p.Axis.Normal,
			Origin:              p.Axis.Origin,
			HalfLength:          p.HalfLength,
			ClientAuthoritative: p.ClientAuthoritative,
		})
	}

	for _, v := range s.powerups.Views() {
		st.Powerups[v.ID] = v
	}

	if s.split != nil {
		pos := s.bodyPosition(s.split)
		st.Split = &pos
	}
	return st
}
