package netcode

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/sim"
)

// ErrMalformedSnapshot is returned for snapshots missing required fields.
var ErrMalformedSnapshot = errors.New("netcode: malformed snapshot")

// Pair is a planar (x, z) position encoded as a two-element array.
type Pair [2]float64

// PairOf rounds a vector onto the wire.
func PairOf(v core.Vec3) Pair {
	return Pair{Round3(v.X), Round3(v.Z)}
}

// Vec returns the pair as a planar vector.
func (p Pair) Vec() core.Vec3 {
	return core.Planar(p[0], p[1])
}

// Power-up state flags.
const (
	FlagSpawning   = 0
	FlagDrifting   = 1
	FlagCollecting = 2
)

// PowerupSummary is the single power-up carried by a snapshot.
type PowerupSummary struct {
	T int     `json:"t"` // Type id
	X float64 `json:"x"`
	Z float64 `json:"z"`
	S int     `json:"s"` // State flag
	P int     `json:"p"` // Collecting paddle index, -1 otherwise
}

// Snapshot is one broadcast of the master's state.
type Snapshot struct {
	B   Pair            `json:"b"`
	PD  []*Pair         `json:"pd"` // nil entries are client-authoritative paddles
	SB  *Pair           `json:"sb,omitempty"`
	PU  *PowerupSummary `json:"pu,omitempty"`
	Seq uint64          `json:"seq"`
}

// BuildSnapshot projects a game state onto the wire format.
// Client-authoritative paddles become null and trailing nulls are trimmed.
func BuildSnapshot(st sim.GameState, seq uint64) Snapshot {
	snap := Snapshot{
		B:   PairOf(st.Ball.Position),
		PD:  make([]*Pair, len(st.Paddles)),
		Seq: seq,
	}
	for i, p := range st.Paddles {
		if p.ClientAuthoritative {
			continue
		}
		pair := PairOf(p.Position)
		snap.PD[i] = &pair
	}
	snap.PD = trimNulls(snap.PD)

	if st.Split != nil {
		pair := PairOf(*st.Split)
		snap.SB = &pair
	}
	if pu, ok := st.Powerup(); ok {
		snap.PU = &PowerupSummary{
			T: int(pu.Type),
			X: Round3(pu.Position.X),
			Z: Round3(pu.Position.Z),
			S: stateFlag(pu.Phase),
			P: -1,
		}
		if pu.Phase == sim.PhaseCollecting {
			snap.PU.P = pu.Target
		}
	}
	return snap
}

func trimNulls(pd []*Pair) []*Pair {
	n := len(pd)
	for n > 0 && pd[n-1] == nil {
		n--
	}
	return pd[:n]
}

func stateFlag(p sim.PowerupPhase) int {
	switch p {
	case sim.PhaseSpawning:
		return FlagSpawning
	case sim.PhaseCollecting:
		return FlagCollecting
	default:
		return FlagDrifting
	}
}

// PhaseOf maps a state flag back to a phase.
func PhaseOf(flag int) sim.PowerupPhase {
	switch flag {
	case FlagSpawning:
		return sim.PhaseSpawning
	case FlagCollecting:
		return sim.PhaseCollecting
	default:
		return sim.PhaseDrifting
	}
}

// EncodeSnapshot serializes a snapshot.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	if s.PD == nil {
		s.PD = []*Pair{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("netcode: encode snapshot: %w", err)
	}
	return data, nil
}

type wireSnapshot struct {
	B   *Pair           `json:"b"`
	PD  []*Pair         `json:"pd"`
	SB  *Pair           `json:"sb"`
	PU  *PowerupSummary `json:"pu"`
	Seq *uint64         `json:"seq"`
}

// DecodeSnapshot parses a snapshot. Missing ball or sequence fields yield ErrMalformedSnapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if w.B == nil || w.Seq == nil {
		return Snapshot{}, fmt.Errorf("%w: missing b or seq", ErrMalformedSnapshot)
	}
	return Snapshot{B: *w.B, PD: w.PD, SB: w.SB, PU: w.PU, Seq: *w.Seq}, nil
}
