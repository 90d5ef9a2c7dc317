package meshing

import (
	"errors"
	"testing"

	"blockworld/internal/registry"
	"blockworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// fakeUploader hands out increasing handles and records releases
type fakeUploader struct {
	next     uint32
	fail     error
	live     map[uint32]int
	released []uint32
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{live: make(map[uint32]int)}
}

func (f *fakeUploader) Upload(verts []float32) (world.Mesh, error) {
	if f.fail != nil {
		return world.Mesh{}, f.fail
	}
	f.next++
	n := len(verts) / VertexStride
	f.live[f.next] = n
	return world.Mesh{Handle: f.next, Vertices: n}, nil
}

func (f *fakeUploader) Release(m world.Mesh) {
	delete(f.live, m.Handle)
	f.released = append(f.released, m.Handle)
}

func newTestPipeline(t *testing.T, m *world.Manager, up Uploader, perFrame int) *Pipeline {
	t.Helper()
	p := NewPipeline(m, NewBuilder(m.Light, true), up, nil, perFrame, 2)
	t.Cleanup(p.Close)
	return p
}

func TestPipelineInstallsAndReplaces(t *testing.T) {
	m := newWorld(t, 0)
	place(t, m, 4, 10, 4, registry.Stone)
	up := newFakeUploader()
	p := newTestPipeline(t, m, up, 4)

	if n := p.Rebuild(mgl32.Vec3{}); n != 1 {
		t.Fatalf("Rebuild = %d, want 1", n)
	}
	c := m.Chunk(world.ChunkCoord{})
	first := c.Mesh()
	if first.Handle == 0 || first.Vertices != 24 {
		t.Fatalf("mesh = %+v", first)
	}
	if c.Dirty() {
		t.Fatalf("chunk still dirty after rebuild")
	}
	if n := p.Rebuild(mgl32.Vec3{}); n != 0 {
		t.Fatalf("clean chunk rebuilt: %d", n)
	}

	place(t, m, 5, 10, 4, registry.Stone)
	if n := p.Rebuild(mgl32.Vec3{}); n != 1 {
		t.Fatalf("Rebuild after edit = %d", n)
	}
	if got := c.Mesh(); got.Handle == first.Handle || got.Vertices != 40 {
		t.Fatalf("mesh after edit = %+v", got)
	}
	if len(up.released) != 1 || up.released[0] != first.Handle {
		t.Fatalf("old mesh not released: %v", up.released)
	}
}

func TestPipelineBudgetNearestFirst(t *testing.T) {
	m := newWorld(t, 1)
	up := newFakeUploader()
	p := newTestPipeline(t, m, up, 4)

	center := mgl32.Vec3{8, 0, 8}
	if n := p.Rebuild(center); n != 4 {
		t.Fatalf("first frame rebuilt %d, want 4", n)
	}
	if m.Chunk(world.ChunkCoord{}).Dirty() {
		t.Fatalf("center chunk not rebuilt first")
	}
	if n := p.Rebuild(center); n != 4 {
		t.Fatalf("second frame rebuilt %d, want 4", n)
	}
	if n := p.Rebuild(center); n != 1 {
		t.Fatalf("third frame rebuilt %d, want 1", n)
	}
	if len(up.live) != 9 {
		t.Fatalf("live meshes = %d, want 9", len(up.live))
	}
}

func TestPipelineRetriesBufferShortage(t *testing.T) {
	m := newWorld(t, 0)
	place(t, m, 4, 10, 4, registry.Stone)
	up := newFakeUploader()
	up.fail = ErrNoBuffer
	p := newTestPipeline(t, m, up, 4)
	c := m.Chunk(world.ChunkCoord{})

	for i := 0; i < 2*maxMeshFailures; i++ {
		if n := p.Rebuild(mgl32.Vec3{}); n != 0 {
			t.Fatalf("frame %d: Rebuild = %d with no buffers", i, n)
		}
		if !c.Dirty() || c.MeshFailures() != 0 {
			t.Fatalf("frame %d: dirty=%v failures=%d", i, c.Dirty(), c.MeshFailures())
		}
	}

	up.fail = nil
	if n := p.Rebuild(mgl32.Vec3{}); n != 1 {
		t.Fatalf("retry = %d", n)
	}
	if c.Dirty() || c.Mesh().Handle == 0 {
		t.Fatalf("retry did not install: dirty=%v mesh=%+v", c.Dirty(), c.Mesh())
	}
}

func TestPipelineShortageKeepsOldMesh(t *testing.T) {
	m := newWorld(t, 0)
	place(t, m, 4, 10, 4, registry.Stone)
	up := newFakeUploader()
	p := newTestPipeline(t, m, up, 4)
	c := m.Chunk(world.ChunkCoord{})
	p.Rebuild(mgl32.Vec3{})
	old := c.Mesh()

	up.fail = ErrNoBuffer
	place(t, m, 5, 10, 4, registry.Stone)
	for i := 0; i < 2*maxMeshFailures; i++ {
		p.Rebuild(mgl32.Vec3{})
	}
	if c.Mesh() != old || !c.Dirty() {
		t.Fatalf("mesh=%+v dirty=%v, want old mesh %+v kept and chunk queued", c.Mesh(), c.Dirty(), old)
	}
	if _, ok := up.live[old.Handle]; !ok {
		t.Fatalf("old mesh released during shortage")
	}
}

func TestPipelineGivesUpAfterRepeatedFailures(t *testing.T) {
	m := newWorld(t, 0)
	place(t, m, 4, 10, 4, registry.Stone)
	up := newFakeUploader()
	p := newTestPipeline(t, m, up, 4)
	c := m.Chunk(world.ChunkCoord{})
	p.Rebuild(mgl32.Vec3{})
	old := c.Mesh()

	up.fail = errors.New("device lost")
	place(t, m, 5, 10, 4, registry.Stone)
	for i := 0; i < maxMeshFailures; i++ {
		p.Rebuild(mgl32.Vec3{})
	}
	if c.Mesh().Handle != 0 {
		t.Fatalf("chunk kept a mesh after %d failures", maxMeshFailures)
	}
	if c.Dirty() {
		t.Fatalf("chunk still queued after giving up")
	}
	if _, ok := up.live[old.Handle]; ok {
		t.Fatalf("stale mesh %d not released", old.Handle)
	}
}

func TestPipelineReleasesRetired(t *testing.T) {
	m := newWorld(t, 0)
	place(t, m, 4, 10, 4, registry.Stone)
	up := newFakeUploader()
	p := newTestPipeline(t, m, up, 4)
	p.Rebuild(mgl32.Vec3{})

	c := m.Chunk(world.ChunkCoord{})
	m.RetireMesh(c.SetMesh(world.Mesh{}))
	m.RetireMesh(world.Mesh{})
	p.Rebuild(mgl32.Vec3{})
	if len(up.live) != 0 || len(up.released) != 1 {
		t.Fatalf("live=%v released=%v", up.live, up.released)
	}
}

func TestPipelineReleaseAll(t *testing.T) {
	m := newWorld(t, 1)
	up := newFakeUploader()
	p := newTestPipeline(t, m, up, 9)
	p.Rebuild(mgl32.Vec3{})
	p.ReleaseAll()
	if len(up.live) != 0 {
		t.Fatalf("%d meshes leaked", len(up.live))
	}
	for _, c := range m.Chunks() {
		if c.Mesh().Handle != 0 {
			t.Fatalf("chunk %v kept its handle", c.Coord)
		}
	}
}

func TestQuadIndices(t *testing.T) {
	got := QuadIndices(8)
	want := []uint32{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d = %d, want %d", i, got[i], want[i])
		}
	}
	if len(QuadIndices(3)) != 0 {
		t.Fatalf("partial quad produced indices")
	}
}
