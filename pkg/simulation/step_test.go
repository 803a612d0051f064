package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

const tolerance = 1e-9

// newTestSwarm builds a seeded swarm with every steering rule disabled.
func newTestSwarm(t *testing.T, width, height int) *Swarm {
	t.Helper()
	cfg := DefaultConfig()
	cfg.WorldWidth, cfg.WorldHeight = width, height
	cfg.NumBoids = 2
	cfg.Avoid, cfg.Align, cfg.Cohesion = false, false, false
	cfg.Seed = 42
	return New(cfg)
}

func TestStep_WrapScenario(t *testing.T) {
	s := newTestSwarm(t, 100, 100)
	s.boids = []Boid{
		{Pos: geometry.Vector2D{X: 99, Y: 50}, Vel: geometry.Vector2D{X: 5, Y: 0}},
		{Pos: geometry.Vector2D{X: 10, Y: 10}, Vel: geometry.Vector2D{X: 0, Y: 5}},
	}

	s.Step()

	a, ok := s.Boid(0)
	require.True(t, ok)
	assert.InDelta(t, 4, a.Pos.X, tolerance)
	assert.InDelta(t, 50, a.Pos.Y, tolerance)
	assert.InDelta(t, s.Speed(), a.Vel.Len(), tolerance)
	assert.Equal(t, uint64(1), s.Steps())
}

func TestStep_EmptyFlock(t *testing.T) {
	s := newTestSwarm(t, 100, 100)
	s.boids = nil

	assert.NotPanics(t, func() {
		s.Step()
		s.Step()
	})
	assert.Equal(t, 0, s.NumBoids())
}

func TestStep_InertialMotion(t *testing.T) {
	s := newTestSwarm(t, 300, 200)
	s.boids = []Boid{
		{Pos: geometry.Vector2D{X: 10, Y: 10}, Vel: geometry.Vector2D{X: 3, Y: 4}},
		{Pos: geometry.Vector2D{X: 250, Y: 150}, Vel: geometry.Vector2D{X: -5, Y: 0}},
	}
	start := append([]Boid(nil), s.boids...)

	const steps = 70
	for range steps {
		s.Step()
	}

	for i, b0 := range start {
		b, _ := s.Boid(i)
		want := b0.Pos.Add(b0.Vel.Mul(steps)).Wrap(300, 200)
		assert.InDelta(t, want.X, b.Pos.X, 1e-6, "boid %d x", i)
		assert.InDelta(t, want.Y, b.Pos.Y, 1e-6, "boid %d y", i)
		assert.True(t, b.Vel.Eq(b0.Vel), "boid %d velocity changed: %v", i, b.Vel)
	}
}

func TestStep_SpeedAndBoundsInvariant(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Swarm)
	}{
		{"rules only", func(s *Swarm) {}},
		{"walls", func(s *Swarm) { s.SetWallsEnabled(true) }},
		{"predator", func(s *Swarm) { s.SetPredatorEnabled(true) }},
		{"dead angle", func(s *Swarm) {
			s.SetDeadAngleEnabled(true)
			s.SetDeadAngle(120)
		}},
		{"repel cursor", func(s *Swarm) { s.SetCursorMode(CursorRepel) }},
		{"attract cursor", func(s *Swarm) {
			s.SetCursorPos(geometry.Vector2D{X: 200, Y: 100})
			s.SetCursorMode(CursorAttract)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.WorldWidth, cfg.WorldHeight = 400, 300
			cfg.NumBoids = 80
			cfg.Seed = 7
			s := New(cfg)
			s.SetSpeed(7)
			tt.setup(s)

			for range 30 {
				s.Step()
			}

			snap := s.Snapshot(nil)
			for i, b := range snap.Boids {
				require.InDelta(t, 7.0, b.Vel.Len(), 1e-6, "boid %d speed", i)
				require.True(t, b.Pos.X >= 0 && b.Pos.X < 400, "boid %d x=%v", i, b.Pos.X)
				require.True(t, b.Pos.Y >= 0 && b.Pos.Y < 300, "boid %d y=%v", i, b.Pos.Y)
			}
		})
	}
}

func TestStep_ObstacleAvoidance(t *testing.T) {
	s := newTestSwarm(t, 200, 200)
	s.boids = s.boids[:1]
	s.boids[0] = Boid{Pos: geometry.Vector2D{X: 50, Y: 50}, Vel: geometry.Vector2D{X: 5, Y: 0}}
	s.SetDebugVectors(true)
	require.True(t, s.AddObstacle(geometry.Vector2D{X: 50, Y: 60}, ObstacleFieldPoint))

	s.Step()

	b, _ := s.Boid(0)
	require.NotNil(t, b.Debug)
	// (pos - obstacle) / (dist / 4) with dist 10
	assert.True(t, b.Debug.Obstacle.Eq(geometry.Vector2D{X: 0, Y: -4}), "obstacle vector %v", b.Debug.Obstacle)
	want := geometry.Vector2D{X: 5, Y: -4}.SetMag(5)
	assert.True(t, b.Vel.Eq(want), "velocity %v, want %v", b.Vel, want)
}

func TestStep_ObstacleOutOfReach(t *testing.T) {
	s := newTestSwarm(t, 200, 200)
	s.boids = s.boids[:1]
	s.boids[0] = Boid{Pos: geometry.Vector2D{X: 50, Y: 50}, Vel: geometry.Vector2D{X: 5, Y: 0}}
	require.True(t, s.AddObstacle(geometry.Vector2D{X: 50, Y: 50 + ObstacleAvoidRadius}, ObstacleFieldPoint))

	s.Step()

	b, _ := s.Boid(0)
	assert.True(t, b.Vel.Eq(geometry.Vector2D{X: 5, Y: 0}), "velocity %v", b.Vel)
}

func TestStep_CursorAttract(t *testing.T) {
	s := newTestSwarm(t, 200, 200)
	s.boids = s.boids[:1]
	s.boids[0] = Boid{Pos: geometry.Vector2D{X: 50, Y: 50}, Vel: geometry.Vector2D{X: 5, Y: 0}}
	s.SetCursorPos(geometry.Vector2D{X: 50, Y: 150})
	s.SetCursorMode(CursorAttract)

	s.Step()

	b, _ := s.Boid(0)
	want := geometry.Vector2D{X: 5, Y: 1}.SetMag(5)
	assert.True(t, b.Vel.Eq(want), "velocity %v, want %v", b.Vel, want)
}

func TestStep_CursorAttractIgnoresAwayCursor(t *testing.T) {
	s := newTestSwarm(t, 200, 200)
	s.boids = s.boids[:1]
	s.boids[0] = Boid{Pos: geometry.Vector2D{X: 50, Y: 50}, Vel: geometry.Vector2D{X: 5, Y: 0}}
	s.SetCursorMode(CursorAttract)
	s.SetCursorPos(CursorAway)

	s.Step()

	b, _ := s.Boid(0)
	assert.True(t, b.Vel.Eq(geometry.Vector2D{X: 5, Y: 0}), "velocity %v", b.Vel)
}

func TestStep_Predator(t *testing.T) {
	t.Run("hunting", func(t *testing.T) {
		s := newTestSwarm(t, 1000, 1000)
		s.SetPredatorEnabled(true)
		s.obstacles[0] = Predator{Pos: geometry.Vector2D{X: 500, Y: 500}, Vel: geometry.Vector2D{X: 0, Y: 5}}
		s.boids = []Boid{
			{Pos: geometry.Vector2D{X: 600, Y: 500}, Vel: geometry.Vector2D{X: 5, Y: 0}},
		}

		s.Step()

		o, ok := s.ObstacleByKind(ObstaclePredator)
		require.True(t, ok)
		p := o.(Predator)
		assert.InDelta(t, s.Speed()*predatorHuntFactor, p.Vel.Len(), tolerance)
		assert.Greater(t, p.Vel.X, 0.0, "predator should turn toward the boid")
	})

	t.Run("searching", func(t *testing.T) {
		s := newTestSwarm(t, 1000, 1000)
		s.SetPredatorEnabled(true)
		s.obstacles[0] = Predator{Pos: geometry.Vector2D{X: 100, Y: 100}, Vel: geometry.Vector2D{X: 0, Y: 5}}
		s.boids = []Boid{
			{Pos: geometry.Vector2D{X: 900, Y: 900}, Vel: geometry.Vector2D{X: 5, Y: 0}},
		}

		s.Step()

		o, _ := s.ObstacleByKind(ObstaclePredator)
		p := o.(Predator)
		assert.InDelta(t, s.Speed()*predatorSearchFactor, p.Vel.Len(), tolerance)
		assert.InDelta(t, 0, p.Vel.X, tolerance)
		assert.InDelta(t, 100+s.Speed()*predatorSearchFactor, p.Pos.Y, tolerance)
	})

	t.Run("boids flee", func(t *testing.T) {
		s := newTestSwarm(t, 1000, 1000)
		s.SetPredatorEnabled(true)
		s.obstacles[0] = Predator{Pos: geometry.Vector2D{X: 500, Y: 500}, Vel: geometry.Vector2D{X: 5, Y: 0}}
		s.boids = []Boid{
			{Pos: geometry.Vector2D{X: 500, Y: 400}, Vel: geometry.Vector2D{X: 5, Y: 0}},
		}

		s.Step()

		b, _ := s.Boid(0)
		assert.Less(t, b.Vel.Y, 0.0, "boid should move away from the predator")
	})
}

func TestStep_DebugVectorsStayStale(t *testing.T) {
	s := newTestSwarm(t, 200, 200)
	s.SetDebugVectors(true)
	s.Step()
	before, _ := s.Boid(0)
	require.NotNil(t, before.Debug)

	s.SetDebugVectors(false)
	s.AddObstacle(before.Pos.Add(before.Vel), ObstacleFieldPoint)
	s.Step()

	after, _ := s.Boid(0)
	require.NotNil(t, after.Debug)
	assert.Equal(t, *before.Debug, *after.Debug)
}

func TestSteer_KeepsHeadingOnNullSum(t *testing.T) {
	prev := geometry.Vector2D{X: 3, Y: 4}
	got := steer(prev, geometry.Vector2D{}, 10)
	assert.True(t, got.Eq(geometry.Vector2D{X: 6, Y: 8}), "got %v", got)
	assert.False(t, math.IsNaN(got.X))
}

func BenchmarkStep(b *testing.B) {
	cfg := DefaultConfig()
	cfg.NumBoids = 400
	cfg.Seed = 1
	s := New(cfg)
	b.ResetTimer()
	for b.Loop() {
		s.Step()
	}
}
