package simulation

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Snapshot is a consistent copy of the swarm taken between two steps.
// It shares no memory with the engine.
type Snapshot struct {
	Step          uint64
	Width, Height int
	Boids         []Boid
	Obstacles     []Obstacle
	Cursor        Cursor
}

// Snapshot copies the current state into dst, reusing its buffers, and
// returns it. A nil dst allocates a new Snapshot.
func (s *Swarm) Snapshot(dst *Snapshot) *Snapshot {
	if dst == nil {
		dst = &Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dst.Step = s.steps
	dst.Width, dst.Height = s.width, s.height
	dst.Cursor = s.cursor

	dst.Boids = dst.Boids[:0]
	for i := range s.boids {
		dst.Boids = append(dst.Boids, s.boids[i].clone())
	}
	// Obstacle implementations are plain values.
	dst.Obstacles = append(dst.Obstacles[:0], s.obstacles...)
	return dst
}

// Boid returns a copy of the boid at index i.
func (s *Swarm) Boid(i int) (Boid, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.boids) {
		return Boid{}, false
	}
	return s.boids[i].clone(), true
}

// ToProto converts the snapshot to a protobuf Struct, ready for protojson.
func (snap *Snapshot) ToProto() (*structpb.Struct, error) {
	boids := make([]any, len(snap.Boids))
	for i, b := range snap.Boids {
		boids[i] = map[string]any{
			"x":         b.Pos.X,
			"y":         b.Pos.Y,
			"vx":        b.Vel.X,
			"vy":        b.Vel.Y,
			"proximity": b.Proximity,
		}
	}

	obstacles := make([]any, len(snap.Obstacles))
	for i, o := range snap.Obstacles {
		p := o.Position()
		m := map[string]any{
			"kind": o.Kind().String(),
			"x":    p.X,
			"y":    p.Y,
		}
		if pr, ok := o.(Predator); ok {
			m["vx"], m["vy"] = pr.Vel.X, pr.Vel.Y
		}
		obstacles[i] = m
	}

	st, err := structpb.NewStruct(map[string]any{
		"step":      float64(snap.Step),
		"width":     snap.Width,
		"height":    snap.Height,
		"cursor":    snap.Cursor.Mode.String(),
		"boids":     boids,
		"obstacles": obstacles,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot struct: %w", err)
	}
	return st, nil
}
