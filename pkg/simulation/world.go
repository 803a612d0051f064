package simulation

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
	"github.com/tochemey/goakt/v3/log"
)

// Rule identifies one of the three flocking rules.
type Rule int

const (
	RuleAvoid Rule = iota
	RuleAlign
	RuleCohesion
)

func (r Rule) String() string {
	switch r {
	case RuleAvoid:
		return "avoid"
	case RuleAlign:
		return "align"
	case RuleCohesion:
		return "cohesion"
	default:
		return "unknown"
	}
}

// CursorMode selects how the pointer interacts with the flock.
type CursorMode int

const (
	CursorNone CursorMode = iota
	// CursorRepel puts an attractant obstacle under the cursor that boids flee.
	CursorRepel
	// CursorAttract pulls every boid toward the cursor.
	CursorAttract
)

func (m CursorMode) String() string {
	switch m {
	case CursorNone:
		return "none"
	case CursorRepel:
		return "repel"
	case CursorAttract:
		return "attract"
	default:
		return "unknown"
	}
}

// CursorAway is the position reported when the pointer is not over the field.
var CursorAway = geometry.Vector2D{X: -1000, Y: -1000}

// Cursor is the last known pointer state.
type Cursor struct {
	Pos  geometry.Vector2D
	Mode CursorMode
}

type ruleState struct {
	enabled  bool
	distance uint
}

// Swarm is the authoritative simulation state: boids, obstacles, field and rules.
//
// Every exported method takes the same lock, and Step holds it for a whole
// tick, so configuration calls from a UI goroutine only ever land between two
// steps of a running Stepper.
type Swarm struct {
	mu sync.Mutex

	boids     []Boid
	obstacles []Obstacle

	width, height int

	rules        [3]ruleState
	deadAngle    bool
	cosDeadAngle float64
	speed        float64

	cursor Cursor

	wallsEnabled    bool
	predatorEnabled bool
	debugVectors    bool

	steps uint64

	rng    *rand.Rand
	logger log.Logger
}

// Option configures a Swarm at construction.
type Option func(*Swarm)

// WithLogger sets the logger used for lifecycle and rejected-input messages.
func WithLogger(l log.Logger) Option {
	return func(s *Swarm) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRand replaces the pseudo-random source used for placement.
func WithRand(r *rand.Rand) Option {
	return func(s *Swarm) {
		if r != nil {
			s.rng = r
		}
	}
}

// NewRand returns a PCG source seeded with seed, or with the clock when seed is 0.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// New creates a swarm from cfg. A nil cfg means DefaultConfig().
func New(cfg *Config, opts ...Option) *Swarm {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	c.Normalize()

	s := &Swarm{
		width:  c.WorldWidth,
		height: c.WorldHeight,
		speed:  c.Speed,
		cursor: Cursor{Pos: CursorAway, Mode: CursorNone},
		logger: log.DiscardLogger,
	}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		s.rng = NewRand(c.Seed)
	}

	s.rules[RuleAvoid] = ruleState{enabled: c.Avoid, distance: c.AvoidDistance}
	s.rules[RuleAlign] = ruleState{enabled: c.Align, distance: c.AlignDistance}
	s.rules[RuleCohesion] = ruleState{enabled: c.Cohesion, distance: c.CohesionDistance}
	s.deadAngle = c.DeadAngleEnabled
	s.setDeadAngle(c.DeadAngle)
	s.debugVectors = c.DebugVectors

	s.setNumBoids(c.NumBoids)
	if c.Walls {
		s.setWallsEnabled(true)
	}
	if c.Predator {
		s.setPredatorEnabled(true)
	}

	s.logger.Infof("swarm ready: %d boids on %dx%d, speed %.1f", len(s.boids), s.width, s.height, s.speed)
	return s
}

// Step advances the simulation by exactly one tick.
func (s *Swarm) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step()
}

// Steps returns how many ticks have run since creation.
func (s *Swarm) Steps() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}

// ---------------------------------------------------------------------
// Population
// ---------------------------------------------------------------------

// SetNumBoids grows or truncates the flock. Counts outside [MinBoids, MaxBoids]
// are replaced by DefaultNumBoids. Truncation keeps the oldest boids.
func (s *Swarm) SetNumBoids(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setNumBoids(n)
}

func (s *Swarm) setNumBoids(n int) {
	if clamped := clampNumBoids(n); clamped != n {
		s.logger.Debugf("boid count %d out of range, using %d", n, clamped)
		n = clamped
	}
	if n < len(s.boids) {
		clear(s.boids[n:])
		s.boids = s.boids[:n]
		return
	}
	for len(s.boids) < n {
		s.boids = append(s.boids, s.randomBoid())
	}
}

func (s *Swarm) randomBoid() Boid {
	return Boid{
		Pos: s.randomPos(),
		Vel: s.randomHeading(s.speed),
	}
}

func (s *Swarm) randomPos() geometry.Vector2D {
	return geometry.Vector2D{
		X: s.rng.Float64() * float64(s.width),
		Y: s.rng.Float64() * float64(s.height),
	}
}

func (s *Swarm) randomHeading(mag float64) geometry.Vector2D {
	v := geometry.NewVectorPolar(mag, s.rng.Float64()*2*math.Pi)
	if v.IsNull() {
		v = geometry.Vector2D{X: mag}
	}
	return v
}

// NumBoids returns the flock size.
func (s *Swarm) NumBoids() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.boids)
}

// ---------------------------------------------------------------------
// Field
// ---------------------------------------------------------------------

// SetSizes is an alias of Resize kept for callers that set width and height together.
func (s *Swarm) SetSizes(width, height int) { s.Resize(width, height) }

// Resize changes the field. Same dimensions are a no-op; non-positive ones are
// ignored. Walls, when enabled, are rebuilt around the new perimeter.
func (s *Swarm) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width <= 0 || height <= 0 {
		s.logger.Debugf("ignoring resize to %dx%d", width, height)
		return
	}
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	if s.wallsEnabled {
		s.removeKind(ObstacleWall)
		s.buildWalls()
	}
	s.logger.Infof("field resized to %dx%d", width, height)
}

// Sizes returns the field width and height.
func (s *Swarm) Sizes() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// ---------------------------------------------------------------------
// Rules
// ---------------------------------------------------------------------

// SetRuleEnabled toggles one flocking rule.
func (s *Swarm) SetRuleEnabled(r Rule, enabled bool) {
	if r < RuleAvoid || r > RuleCohesion {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r].enabled = enabled
}

// RuleEnabled reports whether a rule is active.
func (s *Swarm) RuleEnabled(r Rule) bool {
	if r < RuleAvoid || r > RuleCohesion {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules[r].enabled
}

// SetRuleDistance sets the reach of a rule, clamped to that rule's own bounds.
//
// The distances are expected to satisfy avoid < align < cohesion. This is not
// enforced: a neighbor is classified by the first enabled rule whose distance
// it is under, in the order avoid, align, cohesion, so an avoid distance above
// the align distance hides the align band entirely, and nothing beyond the
// cohesion distance is ever considered.
func (s *Swarm) SetRuleDistance(r Rule, d uint) {
	lo, hi, ok := ruleBounds(r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r].distance = clampUint(d, lo, hi)
	a, l, c := s.rules[RuleAvoid].distance, s.rules[RuleAlign].distance, s.rules[RuleCohesion].distance
	if !(a < l && l < c) {
		s.logger.Warnf("rule distances out of order: avoid=%d align=%d cohesion=%d", a, l, c)
	}
}

// RuleDistance returns the current reach of a rule.
func (s *Swarm) RuleDistance(r Rule) uint {
	if _, _, ok := ruleBounds(r); !ok {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules[r].distance
}

func ruleBounds(r Rule) (lo, hi uint, ok bool) {
	switch r {
	case RuleAvoid:
		return MinAvoidDistance, MaxAvoidDistance, true
	case RuleAlign:
		return MinAlignDistance, MaxAlignDistance, true
	case RuleCohesion:
		return MinCohesionDistance, MaxCohesionDistance, true
	}
	return 0, 0, false
}

// SetDeadAngleEnabled toggles the field-of-view restriction.
func (s *Swarm) SetDeadAngleEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadAngle = enabled
}

// DeadAngleEnabled reports whether the field-of-view restriction is active.
func (s *Swarm) DeadAngleEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadAngle
}

// SetDeadAngle sets the width in degrees of the blind cone behind each boid.
// Values above 360 are clamped.
func (s *Swarm) SetDeadAngle(degrees uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setDeadAngle(degrees)
}

func (s *Swarm) setDeadAngle(degrees uint) {
	degrees = min(degrees, MaxDeadAngle)
	half := float64(degrees) / 2 * math.Pi / 180
	s.cosDeadAngle = math.Cos(math.Pi - half)
}

// DeadAngle returns the blind cone width in degrees.
func (s *Swarm) DeadAngle() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	rad := (math.Pi - math.Acos(s.cosDeadAngle)) * 2
	return uint(math.Round(rad * 180 / math.Pi))
}

// SetSpeed sets the boid cruise speed, clamped to [MinSpeed, MaxSpeed].
func (s *Swarm) SetSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = clampSpeed(speed)
}

// Speed returns the boid cruise speed.
func (s *Swarm) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// SetDebugVectors turns per-rule vector capture on or off. Turning it off
// leaves the last captured vectors on each boid.
func (s *Swarm) SetDebugVectors(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugVectors = enabled
}

// DebugVectors reports whether per-rule vectors are captured.
func (s *Swarm) DebugVectors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debugVectors
}

// ---------------------------------------------------------------------
// Cursor
// ---------------------------------------------------------------------

// SetCursorPos records the pointer position. Use CursorAway when the pointer
// leaves the field. In repel mode the attractant follows a valid cursor.
func (s *Swarm) SetCursorPos(pos geometry.Vector2D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Pos = pos
	if s.cursor.Mode != CursorRepel || !s.cursorValid() {
		return
	}
	if i := s.singletonIndex(ObstacleAttractant); i >= 0 {
		s.obstacles[i] = NewPointObstacle(ObstacleAttractant, pos)
	}
}

// SetCursorMode switches the pointer interaction. Leaving repel mode removes
// the attractant; entering it installs one under the cursor, or somewhere
// random when the cursor is away.
func (s *Swarm) SetCursorMode(mode CursorMode) {
	if mode < CursorNone || mode > CursorAttract {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == s.cursor.Mode {
		return
	}
	if s.cursor.Mode == CursorRepel {
		s.removeKind(ObstacleAttractant)
	}
	s.cursor.Mode = mode
	if mode == CursorRepel {
		pos := s.cursor.Pos
		if !s.cursorValid() {
			pos = s.randomPos()
		}
		s.addObstacle(pos, ObstacleAttractant)
	}
}

// Cursor returns the pointer state.
func (s *Swarm) Cursor() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Swarm) cursorValid() bool {
	p := s.cursor.Pos
	return p.X >= 0 && p.Y >= 0 && p.X < float64(s.width) && p.Y < float64(s.height)
}
