package multiplayer

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/metrics"
	"github.com/vovakirdan/tui-pong/internal/netcode"
	"github.com/vovakirdan/tui-pong/internal/sim"
)

// Rules is game-mode logic run by the master after every frame.
type Rules interface {
	Update(s *sim.Simulation, events []sim.Event)
}

type inboundReport struct {
	slot int
	data []byte
}

// Master is the authoritative strategy. It folds client reports into the
// simulation and streams snapshots to every peer.
type Master struct {
	sim     *sim.Simulation
	out     Broadcaster
	logger  *log.Logger
	reports *Inbox[inboundReport]
	seq     netcode.Sequencer
	rules   Rules

	id      MatchID
	started time.Time

	pendingRound bool
	events       []sim.Event
	last         atomic.Pointer[[]byte]
}

// NewMaster wraps a simulation. out may be nil for local-only matches.
func NewMaster(s *sim.Simulation, out Broadcaster, logger *log.Logger) *Master {
	if logger == nil {
		logger = log.Default()
	}
	return &Master{
		sim:     s,
		out:     out,
		logger:  logger.WithPrefix("master"),
		reports: NewInbox[inboundReport](s.Config().Network.InboxSize),
	}
}

// SetRules installs game-mode logic. Call before the loop starts.
func (m *Master) SetRules(r Rules) { m.rules = r }

// Sim returns the owned simulation. Only the loop goroutine may use it.
func (m *Master) Sim() *sim.Simulation { return m.sim }

// ID returns the match id, set when the loop starts.
func (m *Master) ID() MatchID { return m.id }

// Deliver queues a raw report from slot. Safe for concurrent use.
func (m *Master) Deliver(slot int, data []byte) {
	if slot < 0 {
		metrics.RecordDropped(metrics.DropSpectator)
		return
	}
	if m.reports.Push(inboundReport{slot: slot, data: data}) {
		metrics.RecordDropped(metrics.DropInboxFull)
	}
}

// LastSnapshot returns the most recently broadcast payload, nil before the first.
// Safe for concurrent use.
func (m *Master) LastSnapshot() []byte {
	if p := m.last.Load(); p != nil {
		return *p
	}
	return nil
}

// DrainEvents returns simulation events collected since the last call.
func (m *Master) DrainEvents() []sim.Event {
	out := m.events
	m.events = nil
	return out
}

// Result summarises the match so far.
func (m *Master) Result() MatchResult {
	st := m.sim.Snapshot()
	return resultFrom(m.id, m.started, st, m.sim.Config().Mode)
}

func (m *Master) start(now time.Time) {
	m.id = NewMatchID(now)
	m.started = now
	m.sim.Start()
}

func (m *Master) stop() {
	m.sim.Stop()
	m.collectEvents()
}

func (m *Master) setPaused(paused bool) {
	if paused {
		m.sim.Pause()
	} else {
		m.sim.Resume()
	}
}

func (m *Master) ended() bool {
	return m.sim.Phase() == sim.MatchEnded
}

func (m *Master) frame(_ time.Time, dt float64, input core.MultiInputFrame) {
	m.reports.Drain(m.applyReport)
	m.sim.Tick(dt, input)
	m.collectEvents()
}

func (m *Master) runRules(events []sim.Event) {
	if m.rules != nil {
		m.rules.Update(m.sim, events)
	}
}

func (m *Master) applyReport(r inboundReport) {
	rep, err := netcode.DecodeReport(r.data)
	if err != nil {
		m.logger.Debug("dropping report", "slot", r.slot, "err", err)
		metrics.RecordDropped(metrics.DropMalformed)
		return
	}
	if !m.sim.ApplyPaddleReport(r.slot, rep.Pos.Vec(), rep.Vel.Vec(), rep.Serve) {
		m.logger.Debug("dropping report for unknown slot", "slot", r.slot)
		metrics.RecordDropped(metrics.DropMalformed)
		return
	}
	metrics.RecordReportAccepted()
}

func (m *Master) collectEvents() {
	fresh := m.sim.DrainEvents()
	for _, e := range fresh {
		switch ev := e.(type) {
		case sim.RoundResetEvent:
			m.pendingRound = true
		case sim.ScoredEvent:
			metrics.RecordGoal()
		case sim.PickupEvent:
			metrics.RecordPowerup(ev.Type.String(), "pickup")
		case sim.TerminatedEvent:
			metrics.RecordPowerup(ev.Type.String(), "terminated")
		}
		m.events = append(m.events, e)
	}
	m.runRules(fresh)
}

// urgent reports whether a new round must reach clients before the next broadcast tick.
func (m *Master) urgent() bool {
	return m.pendingRound
}

func (m *Master) broadcast(time.Time) error {
	m.pendingRound = false
	snap := netcode.BuildSnapshot(m.sim.Snapshot(), m.seq.Next())
	data, err := netcode.EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("master: encode snapshot: %w", err)
	}
	m.last.Store(&data)
	if m.out != nil {
		m.out.Broadcast(data)
	}
	metrics.RecordSnapshot(len(data))
	return nil
}
