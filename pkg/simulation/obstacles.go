package simulation

import (
	"slices"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// Singleton obstacles (attractant, predator) always sit at the front of the
// collection; point obstacles follow.

// AddObstacle adds an obstacle of the given kind at pos and reports whether
// the collection changed.
//
// Attractant and predator are singletons inserted at index 0; adding one that
// already exists does nothing. Adding a predator purges walls and field points
// and enables predator mode. Field points and walls are rejected while a
// predator is active, or when another point obstacle lies within WallSpacing.
// Walls are only accepted while walls are enabled.
func (s *Swarm) AddObstacle(pos geometry.Vector2D, kind ObstacleKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addObstacle(pos, kind)
}

func (s *Swarm) addObstacle(pos geometry.Vector2D, kind ObstacleKind) bool {
	switch kind {
	case ObstaclePredator:
		if s.singletonIndex(ObstaclePredator) >= 0 {
			return false
		}
		s.removeKind(ObstacleWall, ObstacleFieldPoint)
		s.wallsEnabled = false
		s.predatorEnabled = true
		s.obstacles = slices.Insert(s.obstacles, 0, Obstacle(Predator{Pos: pos, Vel: s.randomHeading(s.speed)}))
		return true

	case ObstacleAttractant:
		if s.singletonIndex(ObstacleAttractant) >= 0 {
			return false
		}
		s.obstacles = slices.Insert(s.obstacles, 0, Obstacle(NewPointObstacle(kind, pos)))
		return true

	case ObstacleFieldPoint, ObstacleWall:
		if kind == ObstacleWall && !s.wallsEnabled {
			s.logger.Debugf("wall at %v rejected: walls disabled", pos)
			return false
		}
		if s.predatorEnabled {
			s.logger.Debugf("%s obstacle at %v rejected: predator active", kind, pos)
			return false
		}
		if s.pointNear(pos, WallSpacing) {
			return false
		}
		s.obstacles = append(s.obstacles, NewPointObstacle(kind, pos))
		return true
	}
	return false
}

// pointNear reports whether a non-singleton obstacle lies strictly within r of pos.
func (s *Swarm) pointNear(pos geometry.Vector2D, r float64) bool {
	for _, o := range s.obstacles[s.singletonCount():] {
		if o.Position().DistanceSquaredTo(pos) < r*r {
			return true
		}
	}
	return false
}

// RemoveObstacleAt removes the most recently added field point within
// ObstacleRadius of pos. Walls and singletons are never removed this way.
func (s *Swarm) RemoveObstacleAt(pos geometry.Vector2D) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.obstacles) - 1; i >= 0; i-- {
		o := s.obstacles[i]
		if o.Kind() != ObstacleFieldPoint {
			continue
		}
		if o.Position().DistanceSquaredTo(pos) <= ObstacleRadius*ObstacleRadius {
			s.obstacles = slices.Delete(s.obstacles, i, i+1)
			return true
		}
	}
	return false
}

// SetWallsEnabled builds or removes the ring of wall points around the field.
// Enabling is ignored while a predator is active.
func (s *Swarm) SetWallsEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setWallsEnabled(enabled)
}

func (s *Swarm) setWallsEnabled(enabled bool) {
	if enabled == s.wallsEnabled {
		return
	}
	if enabled && s.predatorEnabled {
		s.logger.Debug("walls not enabled: predator active")
		return
	}
	s.wallsEnabled = enabled
	if enabled {
		s.buildWalls()
	} else {
		s.removeKind(ObstacleWall)
	}
	s.logger.Infof("walls enabled: %t", enabled)
}

// WallsEnabled reports whether the wall ring is present.
func (s *Swarm) WallsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallsEnabled
}

// buildWalls lays wall points WallSpacing apart on a rectangle one spacing
// outside the field, corners included once.
func (s *Swarm) buildWalls() {
	left, top := -WallSpacing, -WallSpacing
	right := float64(s.width) + WallSpacing
	bottom := float64(s.height) + WallSpacing

	for x := left; x <= right; x += WallSpacing {
		s.addObstacle(geometry.Vector2D{X: x, Y: top}, ObstacleWall)
		s.addObstacle(geometry.Vector2D{X: x, Y: bottom}, ObstacleWall)
	}
	for y := top + WallSpacing; y < bottom; y += WallSpacing {
		s.addObstacle(geometry.Vector2D{X: left, Y: y}, ObstacleWall)
		s.addObstacle(geometry.Vector2D{X: right, Y: y}, ObstacleWall)
	}
}

// SetPredatorEnabled adds a predator at a random position, or removes it.
func (s *Swarm) SetPredatorEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPredatorEnabled(enabled)
}

func (s *Swarm) setPredatorEnabled(enabled bool) {
	if enabled {
		if s.addObstacle(s.randomPos(), ObstaclePredator) {
			s.logger.Info("predator released")
		}
		return
	}
	if !s.predatorEnabled {
		return
	}
	s.removeKind(ObstaclePredator)
	s.predatorEnabled = false
	s.logger.Info("predator removed")
}

// PredatorEnabled reports whether a predator is hunting.
func (s *Swarm) PredatorEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.predatorEnabled
}

// NumObstacles returns the obstacle count, walls included.
func (s *Swarm) NumObstacles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.obstacles)
}

// Obstacle returns the obstacle at index i.
func (s *Swarm) Obstacle(i int) (Obstacle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.obstacles) {
		return nil, false
	}
	return s.obstacles[i], true
}

// ObstacleByKind returns the first obstacle of the given kind.
func (s *Swarm) ObstacleByKind(kind ObstacleKind) (Obstacle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.obstacles {
		if o.Kind() == kind {
			return o, true
		}
	}
	return nil, false
}

// singletonCount is the length of the singleton prefix.
func (s *Swarm) singletonCount() int {
	n := 0
	for n < len(s.obstacles) && s.obstacles[n].Kind().singleton() {
		n++
	}
	return n
}

// singletonIndex finds a singleton kind in the prefix, or returns -1.
func (s *Swarm) singletonIndex(kind ObstacleKind) int {
	for i := range s.singletonCount() {
		if s.obstacles[i].Kind() == kind {
			return i
		}
	}
	return -1
}

func (s *Swarm) removeKind(kinds ...ObstacleKind) {
	s.obstacles = slices.DeleteFunc(s.obstacles, func(o Obstacle) bool {
		return slices.Contains(kinds, o.Kind())
	})
}
