package tui

import (
	"fmt"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/multiplayer"
	"github.com/vovakirdan/tui-pong/internal/netcode"
	"github.com/vovakirdan/tui-pong/internal/sim"
)

// ScenePaddle is one paddle to draw.
type ScenePaddle struct {
	Slot       int
	Position   core.Vec3
	Dir        core.Vec3 // Movement axis
	HalfLength float64
	Own        bool
	Known      bool
}

// SceneItem is a power-up to draw.
type SceneItem struct {
	Glyph    rune
	Position core.Vec3
}

// Scene is everything the renderer needs, independent of where it came from.
type Scene struct {
	Players   int
	Extent    float64 // Half size of the drawn square in world units
	HalfWidth float64 // Side wall distance, 0 when the arena has no side walls
	Ball      core.Vec3
	Split     *core.Vec3
	Paddles   []ScenePaddle
	Powerup   *SceneItem
	Scores    []int // Nil when unknown
	Header    string
	Status    string
}

func baseScene(cfg config.MatchConfig, players int) Scene {
	sc := Scene{
		Players: players,
		Extent:  cfg.Arena.PaddleDistance + cfg.Arena.GoalMargin,
	}
	if players == 2 {
		sc.HalfWidth = cfg.Arena.HalfWidth
	}
	if sc.Extent <= 0 {
		sc.Extent = 1
	}
	return sc
}

// SceneFromState builds a scene from the authoritative simulation.
// own is the highlighted slot, -1 for none.
func SceneFromState(cfg config.MatchConfig, st sim.GameState, own int) Scene {
	sc := baseScene(cfg, st.Players)
	sc.Ball = st.Ball.Position
	sc.Split = st.Split
	sc.Scores = st.Scores
	for _, p := range st.Paddles {
		sc.Paddles = append(sc.Paddles, ScenePaddle{
			Slot:       p.Index,
			Position:   p.Position,
			Dir:        p.Axis,
			HalfLength: p.HalfLength,
			Own:        p.Index == own,
			Known:      true,
		})
	}
	if v, ok := st.Powerup(); ok {
		sc.Powerup = &SceneItem{Glyph: v.Type.Glyph(), Position: v.Position}
	}

	switch {
	case st.Phase == sim.MatchEnded && st.Winner >= 0:
		sc.Status = fmt.Sprintf("P%d wins!  q to leave", st.Winner+1)
	case st.Phase == sim.MatchEnded:
		sc.Status = "match over"
	case st.Phase == sim.MatchPaused:
		sc.Status = "PAUSED"
	case st.WaitingForServe && st.ServingPlayer >= 0:
		sc.Status = fmt.Sprintf("P%d to serve", st.ServingPlayer+1)
	}
	return sc
}

// SceneFromView builds a scene from a client's predicted view.
func SceneFromView(cfg config.MatchConfig, v multiplayer.ClientView) Scene {
	sc := baseScene(cfg, v.Players)
	sc.Ball = v.Ball
	sc.Split = v.Split
	for i, p := range v.Paddles {
		axis := sim.SlotAxis(i, v.Players, cfg.Arena.PaddleDistance)
		sc.Paddles = append(sc.Paddles, ScenePaddle{
			Slot:       i,
			Position:   p.Position,
			Dir:        axis.Dir,
			HalfLength: cfg.Paddle.HalfLength,
			Own:        p.Own,
			Known:      p.Known || p.Own,
		})
	}
	sc.Powerup = summaryItem(v.Powerup, cfg.Powerups.Height)
	sc.Header = fmt.Sprintf("P%d  seq %d", v.Slot+1, v.Seq)
	if v.Lost > 0 {
		sc.Header += fmt.Sprintf("  lost %d", v.Lost)
	}
	if !v.Synced {
		sc.Status = "waiting for master..."
	}
	return sc
}

// SceneFromSnapshot builds a spectator scene from a raw master snapshot.
// Paddles missing from the snapshot are drawn at their origin as unknown.
func SceneFromSnapshot(cfg config.MatchConfig, snap netcode.Snapshot) Scene {
	sc := baseScene(cfg, cfg.Players)
	sc.Ball = snap.B.Vec()
	if snap.SB != nil {
		split := snap.SB.Vec()
		sc.Split = &split
	}
	for i := 0; i < cfg.Players; i++ {
		axis := sim.SlotAxis(i, cfg.Players, cfg.Arena.PaddleDistance)
		p := ScenePaddle{Slot: i, Dir: axis.Dir, HalfLength: cfg.Paddle.HalfLength, Position: axis.Origin}
		if i < len(snap.PD) && snap.PD[i] != nil {
			p.Position = snap.PD[i].Vec()
			p.Known = true
		}
		sc.Paddles = append(sc.Paddles, p)
	}
	sc.Powerup = summaryItem(snap.PU, cfg.Powerups.Height)
	sc.Header = fmt.Sprintf("spectating  seq %d", snap.Seq)
	return sc
}

func summaryItem(pu *netcode.PowerupSummary, height float64) *SceneItem {
	if pu == nil {
		return nil
	}
	t := sim.PowerupType(pu.T)
	return &SceneItem{Glyph: t.Glyph(), Position: core.V3(pu.X, height, pu.Z)}
}
