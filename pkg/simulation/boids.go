package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// Fixed magnitudes applied to the combined rule vectors.
const (
	alignMagnitude    = 3.5
	cohesionMagnitude = 0.5

	// proximityDistance is the neighbor distance at which Proximity reaches 0.
	proximityDistance = 30.0
)

// ruleSet is the rule configuration read once per step.
type ruleSet struct {
	avoid, align, cohesion bool

	avoidDist, alignDist, cohesionDist float64

	deadAngle    bool
	cosDeadAngle float64
}

// neighborhood is what one boid perceives of the rest of the flock.
type neighborhood struct {
	Avoid    geometry.Vector2D
	Align    geometry.Vector2D
	Cohesion geometry.Vector2D

	NumAvoid, NumAlign, NumCohesion int

	// nearest visible neighbor distance, capped at proximityDistance
	Nearest float64
}

// scanNeighbors classifies every other boid relative to flock[i].
//
// A neighbor counts for at most one rule: the first enabled one, in the order
// avoid, align, cohesion, whose distance it is strictly under. Neighbors at or
// beyond the cohesion distance, or inside the blind cone when the dead angle is
// on, are ignored. The returned align and cohesion vectors are already scaled
// to their fixed magnitudes.
func scanNeighbors(flock []Boid, i int, r *ruleSet) neighborhood {
	me := &flock[i]
	n := neighborhood{Nearest: proximityDistance}
	cohesionSq := r.cohesionDist * r.cohesionDist

	var center geometry.Vector2D
	for j := range flock {
		if j == i {
			continue
		}
		other := &flock[j]

		toOther := other.Pos.Sub(me.Pos)
		distSq := toOther.LenSqr()
		if distSq >= cohesionSq {
			continue
		}
		// A NaN cosine (co-located boids) is never below the threshold, so they stay visible.
		if r.deadAngle && me.Vel.CosAngle(toOther) < r.cosDeadAngle {
			continue
		}

		dist := math.Sqrt(distSq)
		n.Nearest = min(n.Nearest, dist)

		switch {
		case r.avoid && dist < r.avoidDist:
			n.Avoid = n.Avoid.Add(me.Pos.Sub(other.Pos).Quo(dist))
			n.NumAvoid++
		case r.align && dist < r.alignDist:
			n.Align = n.Align.Add(other.Vel.Quo(dist))
			n.NumAlign++
		case r.cohesion && dist < r.cohesionDist:
			center = center.Add(other.Pos)
			n.NumCohesion++
		}
	}

	if !n.Align.IsNull() {
		n.Align = n.Align.SetMag(alignMagnitude)
	}
	if n.NumCohesion > 0 {
		n.Cohesion = center.Quo(float64(n.NumCohesion)).Sub(me.Pos).SetMag(cohesionMagnitude)
	}
	return n
}

// proximity maps the nearest neighbor distance to [0,1].
func proximity(nearest float64) float64 {
	return 1 - min(nearest, proximityDistance)/proximityDistance
}
