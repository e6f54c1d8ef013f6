package multiplayer

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/metrics"
	"github.com/vovakirdan/tui-pong/internal/netcode"
	"github.com/vovakirdan/tui-pong/internal/physics"
	"github.com/vovakirdan/tui-pong/internal/sim"
)

// PaddleView is what a client knows about one paddle.
type PaddleView struct {
	Position core.Vec3
	Known    bool // False until a snapshot carried this slot
	Own      bool
}

// ClientView is the client's render state: its own predicted paddle plus
// the latest master snapshot.
type ClientView struct {
	Slot    int
	Players int
	Synced  bool // At least one snapshot applied
	Ball    core.Vec3
	Paddles []PaddleView
	Split   *core.Vec3
	Powerup *netcode.PowerupSummary
	Seq     uint64
	Lost    uint64
	Stale   uint64
}

// Client is the prediction strategy. It runs the paddle controller against a
// local kinematic body and never lets snapshots overwrite that paddle.
type Client struct {
	cfg    config.MatchConfig
	slot   int
	out    Sender
	logger *log.Logger

	ctrl     *sim.PaddleController
	world    *physics.World
	paddle   *sim.Paddle
	throttle *netcode.ReportThrottle

	snapshots *Inbox[[]byte]
	tracker   netcode.SeqTracker

	servePending bool
	view         ClientView
}

// NewClient creates a client playing slot.
func NewClient(cfg config.MatchConfig, slot int, out Sender, logger *log.Logger) (*Client, error) {
	if slot < 0 || slot >= cfg.Players {
		return nil, fmt.Errorf("client: slot %d out of range for %d players", slot, cfg.Players)
	}
	if logger == nil {
		logger = log.Default()
	}
	c := &Client{
		cfg:       cfg,
		slot:      slot,
		out:       out,
		logger:    logger.WithPrefix("client"),
		ctrl:      sim.NewPaddleController(cfg.Paddle),
		world:     physics.NewWorld(),
		throttle:  netcode.NewReportThrottle(cfg.Network),
		snapshots: NewInbox[[]byte](1),
	}
	ax := sim.SlotAxis(slot, cfg.Players, cfg.Arena.PaddleDistance)
	c.paddle = &sim.Paddle{
		Index:      slot,
		Axis:       ax,
		Body:       c.world.CreateBody(ax.Origin, cfg.Paddle.Mass),
		HalfLength: cfg.Paddle.HalfLength,
	}
	c.view = ClientView{
		Slot:    slot,
		Players: cfg.Players,
		Paddles: make([]PaddleView, cfg.Players),
	}
	for i := range c.view.Paddles {
		c.view.Paddles[i].Position = sim.SlotAxis(i, cfg.Players, cfg.Arena.PaddleDistance).Origin
	}
	c.view.Paddles[slot].Own = true
	c.view.Paddles[slot].Known = true
	c.view.Paddles[slot].Position = ax.Origin
	return c, nil
}

// Slot returns the slot this client plays.
func (c *Client) Slot() int { return c.slot }

// Deliver queues a raw snapshot. Only the newest queued snapshot survives.
// Safe for concurrent use.
func (c *Client) Deliver(data []byte) {
	c.snapshots.Push(data)
}

// View returns a copy of the render state.
func (c *Client) View() ClientView {
	v := c.view
	v.Paddles = append([]PaddleView(nil), c.view.Paddles...)
	if c.view.Split != nil {
		s := *c.view.Split
		v.Split = &s
	}
	if c.view.Powerup != nil {
		pu := *c.view.Powerup
		v.Powerup = &pu
	}
	return v
}

// Paddle returns the locally predicted paddle.
func (c *Client) Paddle() *sim.Paddle { return c.paddle }

func (c *Client) start(time.Time) {}

func (c *Client) stop() {
	if c.paddle.Body != nil {
		physics.SafeDispose(c.paddle.Body, c.logger)
		c.paddle.Body = nil
	}
}

func (c *Client) setPaused(paused bool) {
	if !paused {
		c.throttle.Reset()
	}
}

func (c *Client) ended() bool { return false }

func (c *Client) urgent() bool { return false }

func (c *Client) broadcast(time.Time) error { return nil }

func (c *Client) frame(now time.Time, dt float64, input core.MultiInputFrame) {
	if data, ok := c.snapshots.Latest(); ok {
		c.applySnapshot(data)
	}
	if c.paddle.Body == nil {
		return
	}

	own := input.Slot(c.slot)
	c.paddle.Axis = sim.SlotAxis(c.slot, c.cfg.Players, c.cfg.Arena.PaddleDistance)
	c.ctrl.Step(c.paddle, own.Direction(), dt)
	c.world.Step(dt)
	c.view.Paddles[c.slot].Position = c.paddle.Position()

	if own.Has(core.ActionServe) {
		c.servePending = true
	}
	c.report(now)
}

func (c *Client) report(now time.Time) {
	rep := netcode.NewPaddleReport(c.paddle.Position(), c.paddle.Velocity(), c.servePending)
	rep, ok := c.throttle.Offer(now, rep)
	if !ok || c.out == nil {
		return
	}
	data, err := netcode.EncodeReport(rep)
	if err != nil {
		c.logger.Debug("encode report", "err", err)
		return
	}
	if err := c.out.Send(data); err != nil {
		c.logger.Debug("send report", "err", err)
		return
	}
	metrics.RecordReportSent()
	if rep.Serve {
		c.servePending = false
	}
}

func (c *Client) applySnapshot(data []byte) {
	snap, err := netcode.DecodeSnapshot(data)
	if err != nil {
		c.logger.Debug("dropping snapshot", "err", err)
		metrics.RecordDropped(metrics.DropMalformed)
		return
	}
	fresh, gap := c.tracker.Observe(snap.Seq)
	metrics.RecordSeqGap(gap)
	c.view.Seq = c.tracker.Last()
	c.view.Lost = c.tracker.Lost()
	c.view.Stale = c.tracker.Stale()
	if !fresh {
		return
	}

	c.view.Synced = true
	c.view.Ball = snap.B.Vec()
	for i, p := range snap.PD {
		if i >= len(c.view.Paddles) {
			break
		}
		if i == c.slot || p == nil {
			continue
		}
		c.view.Paddles[i].Position = p.Vec()
		c.view.Paddles[i].Known = true
	}
	c.view.Split = nil
	if snap.SB != nil {
		v := snap.SB.Vec()
		c.view.Split = &v
	}
	c.view.Powerup = nil
	if snap.PU != nil {
		pu := *snap.PU
		c.view.Powerup = &pu
	}
}
