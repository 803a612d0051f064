package simulation

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// RuleVectors holds the per-rule contributions computed during the last step.
// It only exists for display and is never read back by the algorithm.
type RuleVectors struct {
	Avoid    geometry.Vector2D
	Align    geometry.Vector2D
	Cohesion geometry.Vector2D
	Obstacle geometry.Vector2D
}

// Boid is a single flocking agent.
type Boid struct {
	Pos geometry.Vector2D
	Vel geometry.Vector2D

	// Proximity is 1 when a neighbor sits on top of the boid and 0 when none is
	// closer than proximityDistance. Renderers use it to tint crowded boids.
	Proximity float64

	// Debug is nil until debug capture is enabled on the swarm.
	Debug *RuleVectors
}

// UpdatePhysics applies the velocity to the boid position
func (b *Boid) UpdatePhysics() {
	b.Pos = b.Pos.Add(b.Vel)
}

// DistanceSquaredTo gives squared magnitude of the vector from this Boid and the other
func (b *Boid) DistanceSquaredTo(other *Boid) float64 {
	return b.Pos.DistanceSquaredTo(other.Pos)
}

// clone returns a copy that shares no memory with b.
func (b Boid) clone() Boid {
	if b.Debug != nil {
		d := *b.Debug
		b.Debug = &d
	}
	return b
}

// ObstacleKind tags the obstacle variants.
type ObstacleKind int

const (
	// ObstacleFieldPoint is a point placed by the user inside the field.
	ObstacleFieldPoint ObstacleKind = iota
	// ObstacleWall is one point of the ring surrounding the field.
	ObstacleWall
	// ObstacleAttractant follows the cursor in repel mode (the "scary mouse").
	ObstacleAttractant
	// ObstaclePredator hunts the flock.
	ObstaclePredator
)

func (k ObstacleKind) String() string {
	switch k {
	case ObstacleFieldPoint:
		return "field"
	case ObstacleWall:
		return "wall"
	case ObstacleAttractant:
		return "attractant"
	case ObstaclePredator:
		return "predator"
	default:
		return fmt.Sprintf("ObstacleKind(%d)", int(k))
	}
}

// singleton reports whether at most one obstacle of this kind may exist, at index 0.
func (k ObstacleKind) singleton() bool {
	return k == ObstacleAttractant || k == ObstaclePredator
}

// Obstacle is something boids steer away from.
// The set of implementations is closed: PointObstacle and Predator.
type Obstacle interface {
	Kind() ObstacleKind
	Position() geometry.Vector2D
	// AvoidRadiusSq is the squared distance under which boids react.
	AvoidRadiusSq() float64

	isObstacle()
}

// PointObstacle is a static point: field obstacle, wall or attractant.
type PointObstacle struct {
	kind ObstacleKind
	Pos  geometry.Vector2D
}

// NewPointObstacle creates a point obstacle. A predator kind is not a point
// obstacle; it is downgraded to a field point.
func NewPointObstacle(kind ObstacleKind, pos geometry.Vector2D) PointObstacle {
	if kind == ObstaclePredator {
		kind = ObstacleFieldPoint
	}
	return PointObstacle{kind: kind, Pos: pos}
}

func (p PointObstacle) Kind() ObstacleKind { return p.kind }
func (p PointObstacle) Position() geometry.Vector2D { return p.Pos }
func (p PointObstacle) isObstacle() {}

func (p PointObstacle) AvoidRadiusSq() float64 {
	if p.kind == ObstacleAttractant {
		return AttractantAvoidRadius * AttractantAvoidRadius
	}
	return ObstacleAvoidRadius * ObstacleAvoidRadius
}

// Predator is the hunting obstacle. Unlike points it moves on its own.
type Predator struct {
	Pos geometry.Vector2D
	Vel geometry.Vector2D
}

func (p Predator) Kind() ObstacleKind { return ObstaclePredator }
func (p Predator) Position() geometry.Vector2D { return p.Pos }
func (p Predator) AvoidRadiusSq() float64 { return PredatorAvoidRadius * PredatorAvoidRadius }
func (p Predator) isObstacle() {}

var (
	_ Obstacle = PointObstacle{}
	_ Obstacle = Predator{}
)
