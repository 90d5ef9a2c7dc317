package game

import (
	"testing"
	"time"

	"blockworld/internal/config"
	"blockworld/internal/item"
	"blockworld/internal/meshing"
	"blockworld/internal/registry"
	"blockworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

type countingUploader struct {
	next uint32
	live map[uint32]bool
}

func (u *countingUploader) Upload(verts []float32) (world.Mesh, error) {
	if len(verts) == 0 {
		return world.Mesh{}, nil
	}
	u.next++
	u.live[u.next] = true
	return world.Mesh{Handle: u.next, Vertices: len(verts) / meshing.VertexStride}, nil
}

func (u *countingUploader) Release(m world.Mesh) { delete(u.live, m.Handle) }

func testSettings(dir string) *config.Settings {
	s := config.Default()
	s.SetRenderDistance(1)
	s.SetSeed(42)
	s.SetSaveDir(dir)
	return s
}

func openSession(t *testing.T, s *config.Settings) (*Session, *countingUploader) {
	t.Helper()
	up := &countingUploader{live: make(map[uint32]bool)}
	sess, err := NewSession(s, up, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return sess, up
}

// runUntil updates the session around viewer until done or a timeout
func runUntil(t *testing.T, s *Session, viewer mgl32.Vec3, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(20 * time.Second)
	for !done() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out")
		}
		s.Update(1.0/60, viewer)
		time.Sleep(time.Millisecond)
	}
}

// topOf returns the y of the highest non-air cell in a column
func topOf(s *Session, x, z int) int {
	for y := world.ChunkSizeY - 1; y >= 0; y-- {
		if s.World.Type(x, y, z).Shape != registry.ShapeNone {
			return y
		}
	}
	return -1
}

func meshedActive(s *Session) int {
	n := 0
	s.World.ForEachActive(func(c *world.Chunk) {
		if !c.Dirty() && c.Mesh().Vertices > 0 {
			n++
		}
	})
	return n
}

func TestSessionStreamsAroundViewer(t *testing.T) {
	s, up := openSession(t, testSettings(""))
	defer s.Close()

	viewer := s.Viewer()
	runUntil(t, s, viewer, func() bool { return meshedActive(s) == 5 })
	if len(up.live) < 5 {
		t.Fatalf("live meshes = %d, want at least 5", len(up.live))
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(up.live) != 0 {
		t.Fatalf("live meshes after Close = %d, want 0", len(up.live))
	}
}

func TestSessionPersistsEdits(t *testing.T) {
	dir := t.TempDir()
	s, _ := openSession(t, testSettings(dir))

	spawn := s.Viewer()
	viewer := spawn.Add(mgl32.Vec3{2, 0, 2})
	x, z := int(viewer.X()), int(viewer.Z())
	loaded := func() bool { return s.World.Loaded(x, 0, z) }
	runUntil(t, s, viewer, loaded)

	y := topOf(s, x, z) + 1
	if _, err := s.World.SetBlock(x, y, z, registry.Glowstone); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	s.Update(1.0/60, viewer)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, _ = openSession(t, testSettings(dir))
	defer s.Close()
	if got := s.Viewer(); got != viewer {
		t.Fatalf("last position = %v, want %v", got, viewer)
	}
	if got := s.Gen.Spawn(); got != spawn {
		t.Fatalf("spawn = %v, want %v", got, spawn)
	}
	runUntil(t, s, viewer, loaded)
	if got := s.World.Type(x, y, z); got == nil || got.ID != registry.Glowstone {
		t.Fatalf("block after reopen = %v, want glowstone", got)
	}
}

func TestSessionDigAndPlace(t *testing.T) {
	s, _ := openSession(t, testSettings(""))
	defer s.Close()

	viewer := s.Viewer()
	x, z := int(viewer.X()), int(viewer.Z())
	runUntil(t, s, viewer, func() bool { return s.World.Loaded(x, 0, z) })

	// a planks block on top of the column under an eye looking straight down
	y := topOf(s, x, z) + 1
	if _, err := s.World.SetBlock(x, y, z, registry.Planks); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	s.World.Commit()
	eye := mgl32.Vec3{float32(x) + 0.5, float32(y) + 3.5, float32(z) + 0.5}
	down := mgl32.Vec3{0, -1, 0}

	hit := s.Target(eye, down)
	if !hit.Hit || hit.HitPosition != [3]int{x, y, z} || hit.Face != world.SideTop {
		t.Fatalf("Target = %+v", hit)
	}

	if err := s.Place(eye, down, registry.Glass); err != nil {
		t.Fatalf("Place: %v", err)
	}
	s.World.Commit()
	if got := s.World.Type(x, y+1, z); got == nil || got.ID != registry.Glass {
		t.Fatalf("placed = %v, want glass", got)
	}

	// glass is now the target; dig it out
	for i := 0; i < 100 && !s.Dig(eye, down, 1); i++ {
	}
	s.World.Commit()
	if got := s.World.Type(x, y+1, z); got.Shape != registry.ShapeNone {
		t.Fatalf("cell after dig = %v, want air", got.Name)
	}
}

func TestSessionPickup(t *testing.T) {
	s, _ := openSession(t, testSettings(""))
	defer s.Close()

	viewer := s.Viewer()
	x, z := int(viewer.X()), int(viewer.Z())
	runUntil(t, s, viewer, func() bool { return s.World.Loaded(x, 0, z) })

	feet := mgl32.Vec3{float32(x) + 0.5, float32(topOf(s, x, z) + 1), float32(z) + 0.5}
	s.Entities.Drop(feet, []item.ItemStack{
		item.NewItemStack(registry.Dirt, 10),
		item.NewItemStack(registry.Dirt, 5),
	})
	if n := s.Pickup(feet); n != 0 {
		t.Fatalf("picked %d items before the pickup delay", n)
	}
	for i := 0; i < 10; i++ {
		s.Entities.Update(0.1)
	}
	if n := s.Pickup(feet); n != 15 {
		t.Fatalf("picked %d items, want 15", n)
	}
	if got := s.Satchel.GetItem(0); got == nil || got.Type != registry.Dirt || got.Count != 15 {
		t.Fatalf("satchel slot 0 = %+v, want 15 dirt", got)
	}
	s.Entities.Update(0.1)
	if s.Entities.Len() != 0 {
		t.Fatalf("entities left = %d", s.Entities.Len())
	}
}
