package sim

import (
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/physics"
)

// splitAngle is how far the split ball veers off the main ball's heading.
const splitAngle = 25 * math.Pi / 180

// Options configures a Simulation. Zero values pick sensible defaults.
type Options struct {
	Backend physics.Backend // Defaults to a fresh physics.World
	Seed    int64
	Logger  *log.Logger
	Hooks   PowerupHooks // Forwarded power-up callbacks for game-mode logic
}

// Simulation is the authoritative match state. It is not safe for concurrent
// use; exactly one goroutine drives Tick.
type Simulation struct {
	cfg     config.MatchConfig
	backend physics.Backend
	logger  *log.Logger
	rng     *rand.Rand
	hooks   PowerupHooks

	arena    *Arena
	ctrl     *PaddleController
	effects  *BallEffects
	powerups *PowerupManager
	paddles  []*Paddle
	ball     physics.Body
	split    physics.Body

	phase           MatchPhase
	waitingForServe bool
	serveRequested  bool
	serving         int
	scores          []int
	winner          int
	round           int
	ticks           int
	clock           time.Duration

	events []Event
}

// New creates a simulation in the idle phase with the ball waiting at center.
func New(cfg config.MatchConfig, opts Options) *Simulation {
	if opts.Backend == nil {
		opts.Backend = physics.NewWorld()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	s := &Simulation{
		cfg:     cfg,
		backend: opts.Backend,
		logger:  opts.Logger.WithPrefix("sim"),
		rng:     rand.New(rand.NewSource(opts.Seed)),
		hooks:   opts.Hooks,
		arena:   NewArena(cfg),
		ctrl:    NewPaddleController(cfg.Paddle),
		effects: NewBallEffects(cfg.Ball, cfg.Spin),
		scores:  make([]int, cfg.Players),
		winner:  -1,
		serving: -1,
	}

	s.powerups = NewPowerupManager(cfg.Powerups, s.backend, s.rng, PowerupHooks{
		OnPickup:     s.onPickup,
		OnTerminated: s.onTerminated,
	}, s.logger)
	if !cfg.Powerups.Enabled {
		s.powerups.SetEnabledTypes(nil)
	}

	for i := 0; i < cfg.Players; i++ {
		ax := s.arena.Axis(i)
		s.paddles = append(s.paddles, &Paddle{
			Index:      i,
			Axis:       ax,
			Body:       s.backend.Spawn(ax.Origin, cfg.Paddle.Mass),
			HalfLength: cfg.Paddle.HalfLength,
		})
	}
	s.ball = s.backend.Spawn(core.Vec3{}, cfg.Ball.Mass)
	s.waitingForServe = true
	return s
}

// Config returns the match configuration.
func (s *Simulation) Config() config.MatchConfig { return s.cfg }

// Arena returns the playfield geometry.
func (s *Simulation) Arena() *Arena { return s.arena }

// Powerups returns the power-up manager.
func (s *Simulation) Powerups() *PowerupManager { return s.powerups }

// Effects returns the ball effects engine.
func (s *Simulation) Effects() *BallEffects { return s.effects }

// Phase returns the lifecycle phase.
func (s *Simulation) Phase() MatchPhase { return s.phase }

// Players returns the number of paddle slots.
func (s *Simulation) Players() int { return len(s.paddles) }

// Elapsed returns simulated time since the match started.
func (s *Simulation) Elapsed() time.Duration { return s.clock }

// Scores returns a copy of the scores.
func (s *Simulation) Scores() []int { return append([]int(nil), s.scores...) }

// SetPowerupHooks replaces the forwarded power-up callbacks.
func (s *Simulation) SetPowerupHooks(h PowerupHooks) { s.hooks = h }

// Start moves an idle match to running with slot 0 serving. Repeated calls are no-ops.
func (s *Simulation) Start() {
	if s.phase != MatchIdle {
		return
	}
	s.phase = MatchRunning
	s.logger.Info("match started", "players", len(s.paddles), "mode", s.cfg.Mode)
	s.ResetBall(0)
}

// Stop ends the match and releases the split ball. Repeated calls are no-ops.
func (s *Simulation) Stop() {
	if s.phase == MatchEnded {
		return
	}
	s.phase = MatchEnded
	s.disposeSplit()
	s.powerups.SetSpawningPaused(true)
	s.emit(MatchEndedEvent{Winner: s.winner, Scores: s.Scores()})
	s.logger.Info("match stopped", "winner", s.winner)
}

// Pause freezes a running match.
func (s *Simulation) Pause() {
	if s.phase != MatchRunning {
		return
	}
	s.phase = MatchPaused
	s.powerups.SetSpawningPaused(true)
}

// Resume continues a paused match. The spawn timer is drawn afresh.
func (s *Simulation) Resume() {
	if s.phase != MatchPaused {
		return
	}
	s.phase = MatchRunning
	s.powerups.SetSpawningPaused(false)
}

// TogglePause switches between running and paused.
func (s *Simulation) TogglePause() {
	switch s.phase {
	case MatchRunning:
		s.Pause()
	case MatchPaused:
		s.Resume()
	}
}

// ResetBall centers the ball and waits for the given slot to serve.
// Spin, rally, power-ups, the split ball and client authority are cleared.
// Out-of-range slots mean no one serves and the ball launches on the next tick.
func (s *Simulation) ResetBall(serving int) {
	if serving < 0 || serving >= len(s.paddles) {
		serving = -1
	}
	s.serving = serving
	s.waitingForServe = true
	s.serveRequested = false
	s.effects.Reset()
	s.powerups.Clear()
	s.disposeSplit()
	for _, p := range s.paddles {
		p.ClientAuthoritative = false
	}
	if s.ball != nil {
		s.guard("reset ball", func() {
			s.ball.SetPosition(core.Vec3{})
			s.ball.SetLinearVelocity(core.Vec3{})
		})
	}
	s.round++
	s.emit(RoundResetEvent{Round: s.round, Serving: serving})
}

// ApplyPaddleReport folds a remote paddle report into the match. The first
// report flips the paddle to client authority until the round ends.
// Out-of-range slots are ignored.
func (s *Simulation) ApplyPaddleReport(slot int, pos, vel core.Vec3, serve bool) bool {
	if slot < 0 || slot >= len(s.paddles) {
		return false
	}
	p := s.paddles[slot]
	if !p.ClientAuthoritative {
		s.logger.Debug("paddle now client-authoritative", "slot", slot)
	}
	p.ClientAuthoritative = true
	s.guard("follow", func() { s.ctrl.Follow(p, pos, vel) })
	if serve && s.waitingForServe && s.serving == slot {
		s.serveRequested = true
	}
	return true
}

// ClientAuthoritative reports whether a slot follows remote reports.
func (s *Simulation) ClientAuthoritative(slot int) bool {
	return slot >= 0 && slot < len(s.paddles) && s.paddles[slot].ClientAuthoritative
}

// SetPaddleHalfLength resizes a paddle. Used by stretch and shrink effects.
func (s *Simulation) SetPaddleHalfLength(slot int, half float64) {
	if slot < 0 || slot >= len(s.paddles) || half <= 0 {
		return
	}
	s.paddles[slot].HalfLength = half
}

// SplitActive reports whether the split ball is in play.
func (s *Simulation) SplitActive() bool {
	return s.split != nil
}

// EnableSplit launches a second, non-scoring ball from the main ball.
// It does nothing while the ball waits for a serve or a split is already active.
func (s *Simulation) EnableSplit() bool {
	if s.split != nil || s.waitingForServe || s.ball == nil {
		return false
	}
	var body physics.Body
	ok := s.guard("split", func() {
		vel := s.ball.LinearVelocity().RotateY(splitAngle)
		body = s.backend.Spawn(s.ball.Position(), s.cfg.Ball.Mass)
		if body != nil {
			body.SetLinearVelocity(vel)
		}
	})
	if !ok {
		physics.SafeDispose(body, s.logger)
		return false
	}
	if body == nil {
		return false
	}
	s.split = body
	return true
}

// DisableSplit removes the split ball.
func (s *Simulation) DisableSplit() {
	s.disposeSplit()
}

// DrainEvents returns and clears the events emitted since the last call.
func (s *Simulation) DrainEvents() []Event {
	out := s.events
	s.events = nil
	return out
}

// Tick advances a running match by dt seconds, clamped to the configured max frame delta.
// Each slot's direction is read from input; client-authoritative slots are skipped.
func (s *Simulation) Tick(dt float64, input core.MultiInputFrame) {
	if s.phase != MatchRunning || dt <= 0 {
		return
	}
	if limit := s.cfg.Loop.MaxFrameDelta().Seconds(); limit > 0 && dt > limit {
		dt = limit
	}
	s.clock += time.Duration(dt * float64(time.Second))
	s.ticks++

	if s.waitingForServe && s.serveReady(input) {
		s.serve()
	}

	for _, p := range s.paddles {
		if p.ClientAuthoritative {
			continue
		}
		dir := input.Slot(p.Index).Direction()
		s.guard("paddle", func() { s.ctrl.Step(p, dir, dt) })
	}

	ballPrev, splitPrev := s.bodyPosition(s.ball), s.bodyPosition(s.split)
	s.guard("step", func() { s.backend.Step(dt) })

	if !s.waitingForServe {
		s.guard("collide", func() { s.collide(s.ball, ballPrev, true) })
		s.guard("collide split", func() { s.collide(s.split, splitPrev, false) })
		s.guard("effects", func() { s.effects.Step(s.ball, s.clock, dt) })
		s.guard("renormalize split", s.renormalizeSplit)
	}

	vols := make([]PaddleVolume, 0, len(s.paddles))
	for _, p := range s.paddles {
		s.guard("paddle volume", func() {
			vols = append(vols, p.Volume(s.cfg.Paddle.Thickness))
		})
	}
	s.powerups.Update(dt, vols)

	s.checkGoals()
}

func (s *Simulation) serveReady(input core.MultiInputFrame) bool {
	if s.serving < 0 {
		return true
	}
	if s.serveRequested {
		return true
	}
	if s.paddles[s.serving].ClientAuthoritative {
		return false
	}
	in := input.Slot(s.serving)
	return in.Has(core.ActionServe) || in.Direction() != core.DirNone
}

// serve releases the ball away from the serving paddle at a random angle.
func (s *Simulation) serve() {
	s.waitingForServe = false
	s.serveRequested = false
	if s.ball == nil {
		return
	}
	var heading core.Vec3
	if s.serving >= 0 {
		heading = s.paddles[s.serving].Axis.Normal.Scale(-1)
	} else {
		heading = s.arena.Axis(s.rng.Intn(len(s.paddles))).Normal.Scale(-1)
	}
	spread := s.cfg.Ball.ServeSpreadDeg * math.Pi / 180
	angle := (s.rng.Float64()*2 - 1) * spread
	launch := heading.RotateY(angle).Scale(s.effects.Speed())
	s.guard("serve", func() { s.ball.SetLinearVelocity(launch) })
	s.emit(ServedEvent{Serving: s.serving})
}

// collide resolves walls and paddles for one ball. Only the main ball feeds
// the rally and spin.
func (s *Simulation) collide(b physics.Body, prev core.Vec3, main bool) {
	if b == nil {
		return
	}
	if s.arena.BounceWalls(b) && main {
		s.effects.WallContact()
	}
	for _, p := range s.paddles {
		if !s.arena.PaddleHit(b, p, prev) {
			continue
		}
		if main {
			s.effects.RegisterHit(p.Velocity(), s.clock)
		}
		break
	}
}

func (s *Simulation) renormalizeSplit() {
	if s.split == nil {
		return
	}
	v := s.split.LinearVelocity().Flatten()
	if v.IsZero() {
		return
	}
	s.split.SetLinearVelocity(v.Normalize().Scale(s.effects.Speed()))
}

func (s *Simulation) checkGoals() {
	if s.split != nil && s.arena.GoalCrossed(s.bodyPosition(s.split)) >= 0 {
		s.disposeSplit()
	}
	if s.ball == nil || s.waitingForServe {
		return
	}
	conceded := -1
	s.guard("goal", func() { conceded = s.arena.GoalCrossed(s.ball.Position()) })
	if conceded < 0 {
		return
	}

	for i := range s.scores {
		if i != conceded {
			s.scores[i]++
		}
	}
	s.logger.Info("goal", "conceded", conceded, "scores", s.scores)
	s.emit(ScoredEvent{Conceded: conceded, Scores: s.Scores()})

	if w := s.leader(); w >= 0 && s.cfg.ScoreLimit > 0 && s.scores[w] >= s.cfg.ScoreLimit {
		s.winner = w
		s.Stop()
		return
	}
	s.ResetBall(conceded)
}

// leader returns the slot with the highest score, lowest index on ties.
func (s *Simulation) leader() int {
	best := -1
	for i, sc := range s.scores {
		if best < 0 || sc > s.scores[best] {
			best = i
		}
	}
	return best
}

// guard runs one body operation, logging and swallowing a backend panic.
func (s *Simulation) guard(op string, fn func()) bool {
	return physics.Guard(s.logger, op, fn)
}

// bodyPosition reads a body position, zero for a missing or failing body.
func (s *Simulation) bodyPosition(b physics.Body) core.Vec3 {
	var pos core.Vec3
	if b != nil {
		s.guard("position", func() { pos = b.Position() })
	}
	return pos
}

func (s *Simulation) disposeSplit() {
	if s.split == nil {
		return
	}
	physics.SafeDispose(s.split, s.logger)
	s.split = nil
}

func (s *Simulation) onPickup(t PowerupType, paddle int) {
	s.emit(PickupEvent{Type: t, Paddle: paddle})
	if s.hooks.OnPickup != nil {
		s.hooks.OnPickup(t, paddle)
	}
}

func (s *Simulation) onTerminated(t PowerupType) {
	s.emit(TerminatedEvent{Type: t})
	if s.hooks.OnTerminated != nil {
		s.hooks.OnTerminated(t)
	}
}

func (s *Simulation) emit(e Event) {
	s.events = append(s.events, e)
}
