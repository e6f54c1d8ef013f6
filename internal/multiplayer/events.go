package multiplayer

import (
	"time"

	"github.com/vovakirdan/tui-pong/internal/sim"
)

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted  MatchEndReason = iota // Score limit reached
	MatchEndReasonCancelled                        // Host stopped the match
	MatchEndReasonDisconnect                       // Link to the master was lost
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "completed"
	case MatchEndReasonCancelled:
		return "cancelled"
	case MatchEndReasonDisconnect:
		return "disconnected"
	default:
		return "unknown"
	}
}

// MatchResult contains the outcome of a match run by a master.
type MatchResult struct {
	MatchID  MatchID
	Mode     string
	Players  int
	Scores   []int
	Winner   int // -1 when nobody reached the score limit
	Reason   MatchEndReason
	Started  time.Time
	Duration time.Duration
	Ticks    int
}

// resultFrom builds a result from the final state.
func resultFrom(id MatchID, started time.Time, st sim.GameState, mode string) MatchResult {
	reason := MatchEndReasonCancelled
	if st.Winner >= 0 {
		reason = MatchEndReasonCompleted
	}
	return MatchResult{
		MatchID:  id,
		Mode:     mode,
		Players:  st.Players,
		Scores:   append([]int(nil), st.Scores...),
		Winner:   st.Winner,
		Reason:   reason,
		Started:  started,
		Duration: st.Elapsed,
		Ticks:    st.Tick,
	}
}
