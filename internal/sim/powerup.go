package sim

import (
	"math"
	"math/rand"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/solarlune/resolv"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/physics"
)

// PowerupType is the closed set of power-up kinds. Values are wire ids.
type PowerupType int

const (
	PowerupSplit   PowerupType = iota // Ghost second ball
	PowerupBoost                      // Faster ball
	PowerupStretch                    // Longer paddle
	PowerupShrink                     // Shorter paddles for everyone else
	PowerupCount                      // Sentinel for counting types
)

// String returns the config name of the type.
func (t PowerupType) String() string {
	if t >= 0 && t < PowerupCount {
		return config.PowerupNames[t]
	}
	return "?"
}

// Glyph returns the display character for a power-up type.
func (t PowerupType) Glyph() rune {
	switch t {
	case PowerupSplit:
		return 'Y'
	case PowerupBoost:
		return '»'
	case PowerupStretch:
		return '+'
	case PowerupShrink:
		return '-'
	default:
		return '?'
	}
}

// ParsePowerupType maps a config name to a type.
func ParsePowerupType(name string) (PowerupType, bool) {
	for i, n := range config.PowerupNames {
		if n == name {
			return PowerupType(i), true
		}
	}
	return 0, false
}

// PowerupPhase is the lifecycle phase of one entity.
type PowerupPhase int

const (
	PhaseSpawning PowerupPhase = iota
	PhaseDrifting
	PhaseCollecting
	PhaseRemoved
)

func (p PowerupPhase) String() string {
	switch p {
	case PhaseSpawning:
		return "spawning"
	case PhaseDrifting:
		return "drifting"
	case PhaseCollecting:
		return "collecting"
	case PhaseRemoved:
		return "removed"
	default:
		return "?"
	}
}

// PowerupHooks receive lifecycle callbacks. Nil hooks are skipped.
type PowerupHooks struct {
	OnPickup     func(t PowerupType, paddle int)
	OnTerminated func(t PowerupType)
}

// Powerup is one spawned entity.
type Powerup struct {
	ID    int
	Type  PowerupType
	Phase PowerupPhase

	// Body is held only while drifting.
	Body  physics.Body
	Drift core.Vec3

	Position        core.Vec3
	SpawnProgress   float64
	CollectProgress float64
	Scale           float64
	Rotation        float64
	Target          int // Collecting paddle index, -1 otherwise

	collectFrom core.Vec3
	grow        *gween.Tween
	collect     *gween.Tween
	obj         *resolv.Object
}

// PowerupView is a read-only copy of an entity.
type PowerupView struct {
	ID       int
	Type     PowerupType
	Phase    PowerupPhase
	Position core.Vec3
	Scale    float64
	Rotation float64
	Target   int
}

func (p *Powerup) view() PowerupView {
	return PowerupView{
		ID:       p.ID,
		Type:     p.Type,
		Phase:    p.Phase,
		Position: p.Position,
		Scale:    p.Scale,
		Rotation: p.Rotation,
		Target:   p.Target,
	}
}

// PaddleVolume is the axis-aligned pickup volume of one paddle on the X/Z plane.
type PaddleVolume struct {
	Index        int
	Center       core.Vec3
	HalfX, HalfZ float64
}

// Volume returns the paddle's axis-aligned bounds for a given thickness.
func (p *Paddle) Volume(thickness float64) PaddleVolume {
	d, n := p.Axis.Dir, p.Axis.Normal
	half := thickness / 2
	return PaddleVolume{
		Index:  p.Index,
		Center: p.Position(),
		HalfX:  math.Abs(d.X)*p.HalfLength + math.Abs(n.X)*half,
		HalfZ:  math.Abs(d.Z)*p.HalfLength + math.Abs(n.Z)*half,
	}
}

func (v PaddleVolume) overlaps(c core.Vec3, half float64) bool {
	return math.Abs(c.X-v.Center.X) <= v.HalfX+half &&
		math.Abs(c.Z-v.Center.Z) <= v.HalfZ+half
}

const (
	tagPaddle  = "paddle"
	tagPowerup = "powerup"
)

// PowerupManager runs the spawn timer and every entity's lifecycle.
type PowerupManager struct {
	cfg     config.PowerupConfig
	spawner physics.Spawner
	hooks   PowerupHooks
	rng     *rand.Rand
	logger  *log.Logger

	space      *resolv.Space
	offset     float64 // Shifts world coordinates into the non-negative space grid
	paddleObjs map[int]*resolv.Object
	volumes    map[int]PaddleVolume

	entities map[int]*Powerup
	nextID   int
	enabled  [PowerupCount]bool
	blocked  [PowerupCount]bool
	paused   bool
	timer    float64
}

// NewPowerupManager creates a manager. A nil spawner makes drifting entities
// move kinematically without a backend body.
func NewPowerupManager(cfg config.PowerupConfig, spawner physics.Spawner, rng *rand.Rand, hooks PowerupHooks, logger *log.Logger) *PowerupManager {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if logger == nil {
		logger = log.Default()
	}
	offset := cfg.BoundsRadius + 2*cfg.Size + 2
	size := int(math.Ceil(2 * offset))
	m := &PowerupManager{
		cfg:        cfg,
		spawner:    spawner,
		hooks:      hooks,
		rng:        rng,
		logger:     logger.WithPrefix("powerups"),
		space:      resolv.NewSpace(size, size, 1, 1),
		offset:     offset,
		paddleObjs: make(map[int]*resolv.Object),
		volumes:    make(map[int]PaddleVolume),
		entities:   make(map[int]*Powerup),
	}
	var types []PowerupType
	for _, name := range cfg.Types {
		if t, ok := ParsePowerupType(name); ok {
			types = append(types, t)
		}
	}
	m.SetEnabledTypes(types)
	m.ResetTimer()
	return m
}

// SetHooks replaces the lifecycle callbacks.
func (m *PowerupManager) SetHooks(h PowerupHooks) {
	m.hooks = h
}

// SetEnabledTypes replaces the set of spawnable types.
func (m *PowerupManager) SetEnabledTypes(types []PowerupType) {
	m.enabled = [PowerupCount]bool{}
	for _, t := range types {
		if t >= 0 && t < PowerupCount {
			m.enabled[t] = true
		}
	}
}

// SetTypeBlocked temporarily suppresses spawning of one type.
func (m *PowerupManager) SetTypeBlocked(t PowerupType, blocked bool) {
	if t >= 0 && t < PowerupCount {
		m.blocked[t] = blocked
	}
}

// TypeBlocked reports whether a type is currently suppressed.
func (m *PowerupManager) TypeBlocked(t PowerupType) bool {
	return t >= 0 && t < PowerupCount && m.blocked[t]
}

// SetSpawningPaused stops or resumes the spawn timer. Resuming reschedules it.
func (m *PowerupManager) SetSpawningPaused(paused bool) {
	if m.paused && !paused {
		m.ResetTimer()
	}
	m.paused = paused
}

// ResetTimer draws a fresh spawn delay from [min, max] seconds.
func (m *PowerupManager) ResetTimer() {
	lo, hi := m.cfg.MinSpawnSeconds, m.cfg.MaxSpawnSeconds
	m.timer = lo + m.rng.Float64()*(hi-lo)
}

// TimeUntilSpawn returns the remaining spawn delay in seconds.
func (m *PowerupManager) TimeUntilSpawn() float64 {
	return m.timer
}

// Spawn forces a new entity of the given type regardless of timer and policy.
func (m *PowerupManager) Spawn(t PowerupType) *Powerup {
	m.nextID++
	angle := m.rng.Float64() * 2 * math.Pi
	p := &Powerup{
		ID:       m.nextID,
		Type:     t,
		Phase:    PhaseSpawning,
		Drift:    core.Planar(math.Cos(angle), math.Sin(angle)).Scale(m.cfg.DriftSpeed),
		Position: core.V3(0, m.cfg.Height, 0),
		Target:   -1,
	}
	if m.cfg.GrowSeconds > 0 {
		p.grow = gween.New(0, 1, float32(m.cfg.GrowSeconds), ease.Linear)
	} else {
		m.startDrift(p)
	}

	size := 2 * m.cfg.Size
	p.obj = resolv.NewObject(0, 0, size, size, tagPowerup)
	p.obj.SetShape(resolv.NewRectangle(0, 0, size, size))
	p.obj.Data = p.ID
	m.placeObject(p.obj, p.Position, m.cfg.Size, m.cfg.Size)
	m.space.Add(p.obj)

	m.entities[p.ID] = p
	m.logger.Debug("spawned", "id", p.ID, "type", t)
	return p
}

// InFlight returns the number of entities not yet removed.
func (m *PowerupManager) InFlight() int {
	n := 0
	for _, p := range m.entities {
		if p.Phase != PhaseRemoved {
			n++
		}
	}
	return n
}

// Views returns copies of all live entities ordered by id.
func (m *PowerupManager) Views() []PowerupView {
	out := make([]PowerupView, 0, len(m.entities))
	for _, p := range m.sorted() {
		out = append(out, p.view())
	}
	return out
}

// Primary returns the oldest live entity, if any.
func (m *PowerupManager) Primary() (PowerupView, bool) {
	for _, p := range m.sorted() {
		if p.Phase != PhaseRemoved {
			return p.view(), true
		}
	}
	return PowerupView{}, false
}

// Clear drops every entity without callbacks and reschedules the timer.
func (m *PowerupManager) Clear() {
	for _, p := range m.entities {
		m.release(p)
		p.Phase = PhaseRemoved
	}
	m.entities = make(map[int]*Powerup)
	m.ResetTimer()
}

// Update advances the spawn timer and all entities by dt seconds.
// Physics bodies must already have been integrated for this tick.
func (m *PowerupManager) Update(dt float64, paddles []PaddleVolume) {
	m.syncPaddles(paddles)
	m.tickTimer(dt)

	for _, p := range m.sorted() {
		switch p.Phase {
		case PhaseSpawning:
			m.updateSpawning(p, dt)
		case PhaseDrifting:
			m.updateDrifting(p, dt)
		case PhaseCollecting:
			m.updateCollecting(p, dt)
			continue
		}
		if p.Phase == PhaseRemoved {
			continue
		}
		if m.checkPickup(p) {
			continue
		}
		if p.Position.Flatten().Len() > m.cfg.BoundsRadius {
			m.release(p)
			p.Phase = PhaseRemoved
			m.logger.Debug("out of bounds", "id", p.ID, "type", p.Type)
			if m.hooks.OnTerminated != nil {
				m.hooks.OnTerminated(p.Type)
			}
		}
	}

	for id, p := range m.entities {
		if p.Phase == PhaseRemoved {
			delete(m.entities, id)
		}
	}
}

func (m *PowerupManager) tickTimer(dt float64) {
	if m.paused {
		return
	}
	m.timer -= dt
	if m.timer > 0 {
		return
	}
	m.ResetTimer()
	if m.InFlight() > 0 {
		return
	}
	var candidates []PowerupType
	for t := PowerupType(0); t < PowerupCount; t++ {
		if m.enabled[t] && !m.blocked[t] {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return
	}
	m.Spawn(candidates[m.rng.Intn(len(candidates))])
}

func (m *PowerupManager) updateSpawning(p *Powerup, dt float64) {
	v, done := p.grow.Update(float32(dt))
	p.SpawnProgress = float64(v)
	p.Scale = p.SpawnProgress
	if done {
		m.startDrift(p)
	}
}

func (m *PowerupManager) startDrift(p *Powerup) {
	p.Phase = PhaseDrifting
	p.SpawnProgress = 1
	p.Scale = 1
	p.grow = nil
	if m.spawner != nil {
		p.Body = m.spawner.Spawn(p.Position, 1)
		if p.Body != nil {
			p.Body.SetLinearVelocity(p.Drift)
		}
	}
}

func (m *PowerupManager) updateDrifting(p *Powerup, dt float64) {
	if p.Body == nil {
		p.Position = p.Position.Add(p.Drift.Scale(dt))
	} else {
		physics.Guard(m.logger, "drift", func() {
			v := p.Body.LinearVelocity()
			if v.Y != 0 {
				v.Y = 0
				p.Body.SetLinearVelocity(v)
			}
			pos := p.Body.Position()
			if pos.Y != m.cfg.Height {
				pos.Y = m.cfg.Height
				p.Body.SetPosition(pos)
			}
			p.Position = pos
		})
	}
	p.Rotation = math.Mod(p.Rotation+m.cfg.VisualSpin*dt, 2*math.Pi)
}

func (m *PowerupManager) updateCollecting(p *Powerup, dt float64) {
	progress := 1.0
	done := true
	if p.collect != nil {
		v, finished := p.collect.Update(float32(dt))
		progress, done = float64(v), finished
	}
	target := p.collectFrom
	if vol, ok := m.volumes[p.Target]; ok {
		target = vol.Center
		target.Y = p.collectFrom.Y
	}
	p.CollectProgress = progress
	p.Position = core.Lerp(p.collectFrom, target, progress)
	p.Scale = 1 - progress
	if done {
		p.CollectProgress = 1
		p.Scale = 0
		p.Phase = PhaseRemoved
	}
}

// checkPickup tests the entity against every paddle and starts collecting on
// the lowest intersecting index.
func (m *PowerupManager) checkPickup(p *Powerup) bool {
	m.placeObject(p.obj, p.Position, m.cfg.Size, m.cfg.Size)
	hit := p.obj.Check(0, 0, tagPaddle)
	if hit == nil {
		return false
	}
	best := -1
	for _, o := range hit.Objects {
		idx, ok := o.Data.(int)
		if !ok {
			continue
		}
		vol, ok := m.volumes[idx]
		if !ok || !vol.overlaps(p.Position, m.cfg.Size) {
			continue
		}
		if best < 0 || idx < best {
			best = idx
		}
	}
	if best < 0 {
		return false
	}

	m.release(p)
	p.Phase = PhaseCollecting
	p.Target = best
	p.collectFrom = p.Position
	p.Scale = 1
	if m.cfg.CollectSeconds > 0 {
		p.collect = gween.New(0, 1, float32(m.cfg.CollectSeconds), smoothstepEase)
	}
	m.logger.Debug("picked up", "id", p.ID, "type", p.Type, "paddle", best)
	if m.hooks.OnPickup != nil {
		m.hooks.OnPickup(p.Type, best)
	}
	return true
}

// release hands the body back to the backend and leaves the collision space.
func (m *PowerupManager) release(p *Powerup) {
	if p.Body != nil {
		physics.SafeDispose(p.Body, m.logger)
		p.Body = nil
	}
	if p.obj != nil {
		m.space.Remove(p.obj)
		p.obj = nil
	}
}

func (m *PowerupManager) syncPaddles(paddles []PaddleVolume) {
	seen := make(map[int]bool, len(paddles))
	for _, v := range paddles {
		seen[v.Index] = true
		m.volumes[v.Index] = v
		obj, ok := m.paddleObjs[v.Index]
		if !ok {
			obj = resolv.NewObject(0, 0, 2*v.HalfX, 2*v.HalfZ, tagPaddle)
			obj.Data = v.Index
			m.paddleObjs[v.Index] = obj
			m.space.Add(obj)
		}
		if obj.W != 2*v.HalfX || obj.H != 2*v.HalfZ {
			obj.SetShape(resolv.NewRectangle(0, 0, 2*v.HalfX, 2*v.HalfZ))
		}
		m.placeObject(obj, v.Center, v.HalfX, v.HalfZ)
	}
	for idx, obj := range m.paddleObjs {
		if !seen[idx] {
			m.space.Remove(obj)
			delete(m.paddleObjs, idx)
			delete(m.volumes, idx)
		}
	}
}

func (m *PowerupManager) placeObject(obj *resolv.Object, c core.Vec3, hx, hz float64) {
	if obj == nil {
		return
	}
	obj.X = c.X - hx + m.offset
	obj.Y = c.Z - hz + m.offset
	obj.W = 2 * hx
	obj.H = 2 * hz
	obj.Update()
}

func (m *PowerupManager) sorted() []*Powerup {
	out := make([]*Powerup, 0, len(m.entities))
	for _, p := range m.entities {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func smoothstepEase(t, b, c, d float32) float32 {
	return b + c*float32(core.Smoothstep(float64(t/d)))
}
