package physics_test

import (
	"testing"

	"blockworld/internal/physics"
	"blockworld/internal/registry"
	"blockworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

func newWorld(t testing.TB) *world.Manager {
	t.Helper()
	m := world.NewManager(registry.NewDefault(), nil)
	c := m.Create(world.ChunkCoord{})
	c.Cache()
	m.Activate(c)
	return m
}

func set(t testing.TB, m *world.Manager, x, y, z int, id registry.ID) {
	t.Helper()
	if _, err := m.SetBlock(x, y, z, id); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	m.Commit()
}

func TestRaycast(t *testing.T) {
	w := newWorld(t)
	set(t, w, 5, 10, 0, registry.Stone)

	start := mgl32.Vec3{0.5, 10.5, 0.5}
	result := physics.Raycast(start, mgl32.Vec3{1, 0, 0}, 0.1, 10, w)
	if !result.Hit {
		t.Fatalf("Expected hit, got miss")
	}
	if result.HitPosition != [3]int{5, 10, 0} {
		t.Errorf("Expected hit at {5,10,0}, got %v", result.HitPosition)
	}
	if result.AdjacentPosition != [3]int{4, 10, 0} {
		t.Errorf("Expected adjacent at {4,10,0}, got %v", result.AdjacentPosition)
	}
	if result.Face != world.SideLeft {
		t.Errorf("Expected the -X face, got %v", result.Face)
	}
	// the ray starts at x=0.5 and enters the cell at x=5
	if result.Distance < 4.49 || result.Distance > 4.51 {
		t.Errorf("Expected distance 4.5, got %f", result.Distance)
	}

	if r := physics.Raycast(start, mgl32.Vec3{1, 0, 0}, 0.1, 4, w); r.Hit {
		t.Errorf("Expected miss due to maxDist, got hit at %v", r.HitPosition)
	}
	if r := physics.Raycast(start, mgl32.Vec3{0, 1, 0}, 0.1, 10, w); r.Hit {
		t.Errorf("Expected miss, got hit at %v", r.HitPosition)
	}
	if r := physics.Raycast(start, mgl32.Vec3{}, 0.1, 10, w); r.Hit {
		t.Errorf("zero direction hit %v", r.HitPosition)
	}
}

func TestRaycastDiagonalAndFaces(t *testing.T) {
	w := newWorld(t)
	set(t, w, 2, 12, 2, registry.Stone)
	set(t, w, 8, 3, 8, registry.Stone)

	start := mgl32.Vec3{0.5, 10.5, 0.5}
	r := physics.Raycast(start, mgl32.Vec3{1, 1, 1}, 0.1, 10, w)
	if !r.Hit || r.HitPosition != [3]int{2, 12, 2} {
		t.Fatalf("diagonal: %+v", r)
	}

	down := physics.Raycast(mgl32.Vec3{8.5, 8.5, 8.5}, mgl32.Vec3{0, -1, 0}, 0.1, 10, w)
	if !down.Hit || down.Face != world.SideTop || down.AdjacentPosition != [3]int{8, 4, 8} {
		t.Fatalf("looking down: %+v", down)
	}
}

func TestRaycastHitsNonCubes(t *testing.T) {
	w := newWorld(t)
	set(t, w, 3, 9, 0, registry.Stone)
	set(t, w, 3, 10, 0, registry.Torch)
	r := physics.Raycast(mgl32.Vec3{0.5, 10.5, 0.5}, mgl32.Vec3{1, 0, 0}, 0.1, 10, w)
	if !r.Hit || r.HitPosition != [3]int{3, 10, 0} {
		t.Fatalf("torch not targeted: %+v", r)
	}
}

func BenchmarkRaycast(b *testing.B) {
	w := newWorld(b)
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			w.SetBlock(x, y, 5, registry.Grass)
		}
	}
	w.Commit()
	start := mgl32.Vec3{0, 8, 0}
	dir := mgl32.Vec3{0, 0, 1}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = physics.Raycast(start, dir, physics.MinReachDistance, physics.MaxReachDistance, w)
	}
}
