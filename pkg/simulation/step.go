package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// Predator tuning.
const (
	predatorSteer        = 0.5
	predatorHuntFactor   = 1.2
	predatorSearchFactor = 0.8

	// obstacleSoftening divides the distance to an obstacle before it is used
	// as a repulsion denominator.
	obstacleSoftening = 4.0
)

func (s *Swarm) ruleSet() ruleSet {
	return ruleSet{
		avoid:        s.rules[RuleAvoid].enabled,
		align:        s.rules[RuleAlign].enabled,
		cohesion:     s.rules[RuleCohesion].enabled,
		avoidDist:    float64(s.rules[RuleAvoid].distance),
		alignDist:    float64(s.rules[RuleAlign].distance),
		cohesionDist: float64(s.rules[RuleCohesion].distance),
		deadAngle:    s.deadAngle,
		cosDeadAngle: s.cosDeadAngle,
	}
}

// step runs one tick. The caller holds s.mu.
//
// Boids are updated in place and in index order, so boid i already sees the
// new state of boids 0..i-1. This is what the flock has always done and the
// resulting motion depends on it.
func (s *Swarm) step() {
	s.movePredator()

	r := s.ruleSet()
	w, h := float64(s.width), float64(s.height)
	pull := s.cursor.Mode == CursorAttract && s.cursorValid()

	for i := range s.boids {
		b := &s.boids[i]
		n := scanNeighbors(s.boids, i, &r)
		b.Proximity = proximity(n.Nearest)

		vel := b.Vel.Add(n.Avoid).Add(n.Align).Add(n.Cohesion)
		if pull {
			vel = vel.Add(s.cursor.Pos.Sub(b.Pos).Normalize())
		}
		b.Vel = steer(b.Vel, vel, s.speed)

		away := avoidObstacles(b.Pos, s.obstacles)
		if !away.IsNull() {
			b.Vel = steer(b.Vel, b.Vel.Add(away), s.speed)
		}

		b.UpdatePhysics()
		b.Pos = b.Pos.Wrap(w, h)

		if s.debugVectors {
			if b.Debug == nil {
				b.Debug = &RuleVectors{}
			}
			*b.Debug = RuleVectors{Avoid: n.Avoid, Align: n.Align, Cohesion: n.Cohesion, Obstacle: away}
		}
	}
	s.steps++
}

// steer sets next to magnitude mag. A null result keeps the previous heading.
func steer(prev, next geometry.Vector2D, mag float64) geometry.Vector2D {
	if next.IsNull() {
		return prev.SetMag(mag)
	}
	return next.SetMag(mag)
}

// avoidObstacles sums the repulsion of every obstacle whose avoid radius contains pos.
func avoidObstacles(pos geometry.Vector2D, obstacles []Obstacle) geometry.Vector2D {
	var away geometry.Vector2D
	for _, o := range obstacles {
		d := pos.Sub(o.Position())
		distSq := d.LenSqr()
		if distSq >= o.AvoidRadiusSq() {
			continue
		}
		away = away.Add(d.Quo(math.Sqrt(distSq) / obstacleSoftening))
	}
	return away
}

// movePredator steers the predator toward the boids within cohesion distance
// of it, or lets it cruise slower when it sees none.
func (s *Swarm) movePredator() {
	i := s.singletonIndex(ObstaclePredator)
	if i < 0 {
		return
	}
	p := s.obstacles[i].(Predator)

	reach := float64(s.rules[RuleCohesion].distance)
	reachSq := reach * reach
	var center geometry.Vector2D
	seen := 0
	for j := range s.boids {
		if p.Pos.DistanceSquaredTo(s.boids[j].Pos) < reachSq {
			center = center.Add(s.boids[j].Pos)
			seen++
		}
	}

	if seen > 0 {
		desired := center.Quo(float64(seen)).Sub(p.Pos).SetMag(predatorSteer)
		p.Vel = steer(p.Vel, p.Vel.Add(desired), s.speed*predatorHuntFactor)
	} else {
		p.Vel = steer(p.Vel, p.Vel, s.speed*predatorSearchFactor)
	}
	p.Pos = p.Pos.Add(p.Vel).Wrap(float64(s.width), float64(s.height))
	s.obstacles[i] = p
}
