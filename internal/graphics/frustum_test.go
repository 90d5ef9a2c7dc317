package graphics

import (
	"testing"

	"blockworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

func testCamera() *Camera {
	c := NewCamera(800, 600)
	c.Position = mgl32.Vec3{8, 64, 8}
	c.Yaw = 0 // looking down +X
	c.Pitch = 0
	c.FarPlane = 200
	return c
}

func TestFrustumCullsBoxes(t *testing.T) {
	c := testCamera()
	f := NewFrustum(c.ProjectionMatrix().Mul4(c.ViewMatrix()))

	tests := []struct {
		name   string
		lo, hi mgl32.Vec3
		want   bool
	}{
		{"ahead", mgl32.Vec3{20, 60, 4}, mgl32.Vec3{22, 62, 6}, true},
		{"behind", mgl32.Vec3{-20, 60, 4}, mgl32.Vec3{-18, 62, 6}, false},
		{"beyond far plane", mgl32.Vec3{300, 60, 4}, mgl32.Vec3{302, 62, 6}, false},
		{"around viewer", mgl32.Vec3{7, 63, 7}, mgl32.Vec3{9, 65, 9}, true},
		{"far to the side", mgl32.Vec3{20, 60, 200}, mgl32.Vec3{22, 62, 202}, false},
	}
	for _, tt := range tests {
		if got := f.IntersectsAABB(tt.lo, tt.hi); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFrustumChunks(t *testing.T) {
	c := testCamera()
	f := NewFrustum(c.ProjectionMatrix().Mul4(c.ViewMatrix()))
	if !f.ContainsChunk(world.ChunkCoord{}) {
		t.Fatalf("chunk holding the camera culled")
	}
	if !f.ContainsChunk(world.ChunkCoord{X: 3}) {
		t.Fatalf("chunk ahead culled")
	}
	if f.ContainsChunk(world.ChunkCoord{X: -4}) {
		t.Fatalf("chunk behind kept")
	}
}

func TestCameraLookClampsPitch(t *testing.T) {
	c := NewCamera(800, 600)
	c.Look(0, 0)
	c.Look(0, -10000)
	if c.Pitch != 89 {
		t.Fatalf("pitch = %v, want 89", c.Pitch)
	}
	front := c.Front()
	if front.Y() < 0.99 {
		t.Fatalf("front = %v", front)
	}
}

func TestCameraMoveStaysLevel(t *testing.T) {
	c := NewCamera(800, 600)
	c.Pitch = 60
	c.Yaw = 0
	c.Move(2, 0, 0)
	if c.Position.Y() != 0 || c.Position.X() < 1.99 {
		t.Fatalf("position after forward move = %v", c.Position)
	}
	c.Move(0, 1, 0)
	if c.Position.Z() < 0.99 {
		t.Fatalf("strafe right with yaw 0 should move +Z, got %v", c.Position)
	}
}
