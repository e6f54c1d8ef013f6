package multiplayer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/metrics"
)

// strategy is the role-specific half of a Loop.
type strategy interface {
	start(now time.Time)
	stop()
	setPaused(paused bool)
	frame(now time.Time, dt float64, input core.MultiInputFrame)
	broadcast(now time.Time) error
	urgent() bool
	ended() bool
}

// InputSource returns the input for the next frame.
type InputSource func() core.MultiInputFrame

// Loop drives one strategy from a single goroutine. Frame and Broadcast must
// be called from the same goroutine; Start and Stop are idempotent.
type Loop struct {
	role   Role
	cfg    config.MatchConfig
	logger *log.Logger

	master *Master
	client *Client
	impl   strategy

	running atomic.Bool
	stopped atomic.Bool
	paused  bool
}

// NewMasterLoop creates a loop running the master strategy.
func NewMasterLoop(m *Master, logger *log.Logger) *Loop {
	l := newLoop(RoleMaster, m.sim.Config(), logger)
	l.master = m
	l.impl = m
	return l
}

// NewClientLoop creates a loop running the client strategy.
func NewClientLoop(c *Client, logger *log.Logger) *Loop {
	l := newLoop(RoleClient, c.cfg, logger)
	l.client = c
	l.impl = c
	return l
}

func newLoop(role Role, cfg config.MatchConfig, logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.Default()
	}
	return &Loop{
		role:   role,
		cfg:    cfg,
		logger: logger.WithPrefix("loop"),
	}
}

// Role returns the loop role.
func (l *Loop) Role() Role { return l.role }

// Master returns the master strategy, nil for clients.
func (l *Loop) Master() *Master { return l.master }

// Client returns the client strategy, nil for masters.
func (l *Loop) Client() *Client { return l.client }

// Running reports whether the loop has started and not stopped.
func (l *Loop) Running() bool { return l.running.Load() }

// Paused reports whether the loop is paused.
func (l *Loop) Paused() bool { return l.paused }

// Start begins the match. It returns false if the loop already started or was stopped.
func (l *Loop) Start(now time.Time) bool {
	if l.stopped.Load() || !l.running.CompareAndSwap(false, true) {
		return false
	}
	l.impl.start(now)
	l.logger.Info("loop started", "role", l.role)
	return true
}

// Stop ends the match and releases proxies the loop owns. Only the first call has any effect.
func (l *Loop) Stop() bool {
	if !l.stopped.CompareAndSwap(false, true) {
		return false
	}
	l.running.Store(false)
	l.impl.stop()
	l.logger.Info("loop stopped", "role", l.role)
	return true
}

// SetPaused pauses or resumes the loop. Resuming resets the power-up spawn
// timer on masters and the report throttle on clients.
func (l *Loop) SetPaused(paused bool) {
	if !l.Running() || l.paused == paused {
		return
	}
	l.paused = paused
	l.impl.setPaused(paused)
}

// TogglePause flips the paused state.
func (l *Loop) TogglePause() {
	l.SetPaused(!l.paused)
}

// Done reports whether the match has ended on its own or the loop was stopped.
func (l *Loop) Done() bool {
	return l.stopped.Load() || l.impl.ended()
}

// Frame advances one render/physics tick. dt is clamped to the configured max frame delta.
func (l *Loop) Frame(now time.Time, dt time.Duration, input core.MultiInputFrame) {
	if !l.Running() || dt <= 0 {
		return
	}
	if limit := l.cfg.Loop.MaxFrameDelta(); limit > 0 && dt > limit {
		dt = limit
	}
	if l.paused {
		return
	}

	begin := time.Now()
	l.impl.frame(now, dt.Seconds(), input)
	metrics.RecordTick(time.Since(begin))

	if l.impl.urgent() {
		l.Broadcast(now)
	}
}

// Broadcast sends the current state to peers. It is a no-op for clients.
func (l *Loop) Broadcast(now time.Time) {
	if !l.Running() && !l.Done() {
		return // not started yet
	}
	if err := l.impl.broadcast(now); err != nil {
		l.logger.Warn("broadcast failed", "err", err)
	}
}

// Run drives the loop until ctx is cancelled or the match ends.
// Frames run at the configured tick rate; masters additionally broadcast at
// the configured network rate. The loop is started if needed and always stopped on return.
func (l *Loop) Run(ctx context.Context, input InputSource) error {
	l.Start(time.Now())
	defer l.Stop()

	frames := time.NewTicker(l.cfg.Loop.FrameInterval())
	defer frames.Stop()

	var broadcasts <-chan time.Time
	if l.role == RoleMaster {
		t := time.NewTicker(l.cfg.Network.BroadcastInterval())
		defer t.Stop()
		broadcasts = t.C
	}

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case now := <-frames.C:
			var in core.MultiInputFrame
			if input != nil {
				in = input()
			} else {
				in = core.NewMultiInputFrame()
			}
			l.Frame(now, now.Sub(last), in)
			last = now
			if l.impl.ended() {
				// Final state reaches peers before the loop exits
				l.Broadcast(now)
				return nil
			}

		case now := <-broadcasts:
			l.Broadcast(now)
		}
	}
}
