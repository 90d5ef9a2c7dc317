package meshing

import (
	"errors"
	"log"
	"sort"

	"blockworld/internal/profiling"
	"blockworld/internal/world"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// Uploader hands vertex buffers to the graphics backend. Both methods are
// called on the thread owning the graphics context.
type Uploader interface {
	// Upload returns a handle for verts; ErrNoBuffer means retry later
	Upload(verts []float32) (world.Mesh, error)
	Release(m world.Mesh)
}

// maxMeshFailures is the number of failed builds after which a chunk is
// left without a mesh until its next edit
const maxMeshFailures = 3

// Pipeline rebuilds dirty chunk meshes once per frame within a budget.
type Pipeline struct {
	m        *world.Manager
	builder  *Builder
	uploader Uploader
	prof     *profiling.Profiler
	pool     pond.Pool
	perFrame int
}

// NewPipeline creates a rebuild loop building up to perFrame meshes per
// Rebuild on workers goroutines
func NewPipeline(m *world.Manager, b *Builder, up Uploader, prof *profiling.Profiler, perFrame, workers int) *Pipeline {
	return &Pipeline{
		m:        m,
		builder:  b,
		uploader: up,
		prof:     prof,
		pool:     pond.NewPool(max(workers, 1)),
		perFrame: max(perFrame, 1),
	}
}

// SetBudget sets the number of meshes rebuilt per frame
func (p *Pipeline) SetBudget(perFrame int) { p.perFrame = max(perFrame, 1) }

type buildResult struct {
	c     *world.Chunk
	verts []float32
	err   error
}

// Rebuild releases retired meshes, then rebuilds the dirty active chunks
// nearest to center. It returns the number of meshes replaced.
func (p *Pipeline) Rebuild(center mgl32.Vec3) int {
	defer p.prof.Track("meshing.Rebuild")()
	for _, mesh := range p.m.DrainRetired() {
		p.release(mesh)
	}

	var dirty []*world.Chunk
	p.m.ForEachActive(func(c *world.Chunk) {
		if c.Dirty() {
			dirty = append(dirty, c)
		}
	})
	cc := world.ChunkCoordFor(center)
	sort.Slice(dirty, func(i, j int) bool {
		return dirty[i].Coord.DistSq(cc) < dirty[j].Coord.DistSq(cc)
	})
	if len(dirty) > p.perFrame {
		dirty = dirty[:p.perFrame]
	}

	// chunks are built in parallel while the main thread waits; nothing
	// mutates the grid until the builds return
	results := make([]buildResult, len(dirty))
	tasks := make([]pond.Task, len(dirty))
	for i, c := range dirty {
		c.Commit()
		c.ClearDirty()
		tasks[i] = p.pool.Submit(func() {
			verts, err := p.builder.BuildChunk(c)
			results[i] = buildResult{c: c, verts: verts, err: err}
		})
	}
	for _, t := range tasks {
		t.Wait()
	}

	done := 0
	for _, r := range results {
		if p.install(r) {
			done++
		}
	}
	return done
}

func (p *Pipeline) install(r buildResult) bool {
	c := r.c
	if r.err != nil {
		log.Printf("meshing: %v", r.err)
		p.fail(c)
		return false
	}
	mesh, err := p.uploader.Upload(r.verts)
	if errors.Is(err, ErrNoBuffer) {
		// the old mesh stays drawn and the chunk is retried next frame
		c.MarkDirty()
		return false
	}
	if err != nil {
		log.Printf("meshing: upload chunk %d,%d: %v", c.Coord.X, c.Coord.Z, err)
		p.fail(c)
		return false
	}
	c.SetMeshFailures(0)
	p.release(c.SetMesh(mesh))
	return true
}

// fail records a failed build or upload. The chunk is retried until
// maxMeshFailures, then draws nothing until its next edit.
func (p *Pipeline) fail(c *world.Chunk) {
	n := c.MeshFailures() + 1
	c.SetMeshFailures(n)
	if n >= maxMeshFailures {
		p.release(c.SetMesh(world.Mesh{}))
		return
	}
	c.MarkDirty()
}

func (p *Pipeline) release(m world.Mesh) {
	if m.Handle != 0 {
		p.uploader.Release(m)
	}
}

// ReleaseAll frees the meshes of every chunk, used at shutdown
func (p *Pipeline) ReleaseAll() {
	for _, c := range p.m.Chunks() {
		p.release(c.SetMesh(world.Mesh{}))
	}
	for _, mesh := range p.m.DrainRetired() {
		p.release(mesh)
	}
}

// Close stops the build workers
func (p *Pipeline) Close() {
	p.pool.StopAndWait()
}

// QuadIndices returns triangle indices for verts vertices laid out as quads
func QuadIndices(verts int) []uint32 {
	quads := verts / 4
	idx := make([]uint32, 0, quads*6)
	for q := 0; q < quads; q++ {
		b := uint32(q * 4)
		idx = append(idx, b, b+1, b+2, b+2, b+3, b)
	}
	return idx
}
