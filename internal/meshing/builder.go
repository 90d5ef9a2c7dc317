package meshing

import (
	"errors"
	"fmt"

	"blockworld/internal/registry"
	"blockworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is number of float32 per vertex (pos.xyz + color.rgb + uv)
const VertexStride = 8

// atlasCells is the number of cells along each side of the texture atlas
const atlasCells = 16

var (
	// ErrMeshSize is returned when a block writes a different number of
	// vertices than it announced
	ErrMeshSize = errors.New("meshing: vertex count mismatch")
	// ErrNoBuffer is returned by an Uploader that could not obtain a native buffer
	ErrNoBuffer = errors.New("meshing: no buffer available")
)

// faceCorners lists the unit corners of each face in counter-clockwise order
// seen from outside the block.
var faceCorners = [6][4]mgl32.Vec3{
	world.SideTop:    {{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}},
	world.SideBottom: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	world.SideLeft:   {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	world.SideRight:  {{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}},
	world.SideFront:  {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	world.SideBack:   {{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}},
}

// quadUVs maps the corners of a free quad (bottom-left first) to texture space
var quadUVs = [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

// Builder turns block geometry into interleaved vertex buffers
type Builder struct {
	light  *world.Lighting
	smooth bool
}

// NewBuilder creates a mesh builder shading with light
func NewBuilder(light *world.Lighting, smooth bool) *Builder {
	return &Builder{light: light, smooth: smooth}
}

// SetSmooth switches between flat and per-corner lighting
func (bd *Builder) SetSmooth(smooth bool) { bd.smooth = smooth }

// BuildChunk builds the mesh of every visible, non-manual block of c.
// The buffer is allocated once from the summed vertex counts.
func (bd *Builder) BuildChunk(c *world.Chunk) ([]float32, error) {
	visible := c.Visible()
	total := 0
	for i := 0; i < visible.Len(); i++ {
		b := c.BlockAt(visible.At(i))
		if b == nil || b.Manual() {
			continue
		}
		total += b.Behavior().VertexCount(b)
	}

	w := &writer{bd: bd, buf: make([]float32, total*VertexStride)}
	for i := 0; i < visible.Len(); i++ {
		b := c.BlockAt(visible.At(i))
		if b == nil || b.Manual() {
			continue
		}
		w.emit(b, mgl32.Vec3{})
		if w.err != nil {
			return nil, fmt.Errorf("chunk %d,%d: %w", c.Coord.X, c.Coord.Z, w.err)
		}
	}
	if w.n != len(w.buf) {
		return nil, fmt.Errorf("chunk %d,%d wrote %d of %d floats: %w",
			c.Coord.X, c.Coord.Z, w.n, len(w.buf), ErrMeshSize)
	}
	return w.buf, nil
}

// BuildBlock builds a single block displaced by its sub-cell offset.
// It is used for blocks drawn outside the chunk mesh.
func (bd *Builder) BuildBlock(b *world.Block) ([]float32, error) {
	n := b.Behavior().VertexCount(b)
	w := &writer{bd: bd, buf: make([]float32, n*VertexStride)}
	w.emit(b, b.Offset())
	if w.err != nil {
		return nil, w.err
	}
	if w.n != len(w.buf) {
		return nil, fmt.Errorf("block wrote %d of %d floats: %w", w.n, len(w.buf), ErrMeshSize)
	}
	return w.buf, nil
}

// BuildManual builds every block of the manual list of c into one buffer
func (bd *Builder) BuildManual(c *world.Chunk) ([]float32, error) {
	manual := c.Manual()
	var out []float32
	for i := 0; i < manual.Len(); i++ {
		b := c.BlockAt(manual.At(i))
		if b == nil {
			continue
		}
		v, err := bd.BuildBlock(b)
		if err != nil {
			return nil, err
		}
		out = append(out, v...)
	}
	return out, nil
}

// writer implements world.GeometryWriter over a fixed buffer
type writer struct {
	bd     *Builder
	buf    []float32
	n      int
	err    error
	origin mgl32.Vec3
	sample world.LightSample
}

func (w *writer) emit(b *world.Block, offset mgl32.Vec3) {
	w.origin = b.Vec().Add(offset)
	w.bd.light.Sample(b.Chunk(), b.Index(), &w.sample)
	b.Behavior().EmitGeometry(b, w)
}

func (w *writer) vertex(p, color mgl32.Vec3, u, v float32) {
	if w.err != nil {
		return
	}
	if w.n+VertexStride > len(w.buf) {
		w.err = ErrMeshSize
		return
	}
	p = p.Add(w.origin)
	out := w.buf[w.n : w.n+VertexStride]
	out[0], out[1], out[2] = p[0], p[1], p[2]
	out[3], out[4], out[5] = color[0], color[1], color[2]
	out[6], out[7] = u, v
	w.n += VertexStride
}

func brushGroup(s world.Side) int {
	switch s {
	case world.SideTop:
		return registry.BrushTop
	case world.SideBottom:
		return registry.BrushBottom
	}
	return registry.BrushSide
}

// cellUV maps a face-local coordinate pair into the atlas cell of a face
func cellUV(cell uint8, u, v float32) (float32, float32) {
	cu := float32(cell%atlasCells) + u
	cv := float32(cell/atlasCells) + v
	return cu / atlasCells, cv / atlasCells
}

// faceUV projects a block-local point onto the texture plane of side s
func faceUV(s world.Side, p mgl32.Vec3) (float32, float32) {
	switch s {
	case world.SideTop, world.SideBottom:
		return p.X(), p.Z()
	case world.SideLeft, world.SideRight:
		return p.Z(), 1 - p.Y()
	}
	return p.X(), 1 - p.Y()
}

// Face writes the side s of the box [lo, hi]
func (w *writer) Face(b *world.Block, s world.Side, lo, hi mgl32.Vec3) {
	tint := b.Tint(s)
	cell := b.Type().Brush.Cell(brushGroup(s))
	size := hi.Sub(lo)
	for _, corner := range faceCorners[s] {
		p := lo.Add(mgl32.Vec3{corner[0] * size[0], corner[1] * size[1], corner[2] * size[2]})
		u, v := faceUV(s, p)
		u, v = cellUV(cell, u, v)
		w.vertex(p, tint.Mul(w.shade(s, corner)), u, v)
	}
}

// Quad writes a free quad lit like face s
func (w *writer) Quad(b *world.Block, corners [4]mgl32.Vec3, s world.Side) {
	tint := b.Tint(s)
	cell := b.Type().Brush.Cell(registry.BrushSide)
	level := float32(w.sample[world.SampleIndex(0, 0, 0)]) / world.MaxLight
	for i, p := range corners {
		u, v := cellUV(cell, quadUVs[i][0], quadUVs[i][1])
		w.vertex(p, tint.Mul(level), u, v)
	}
}

// shade returns the light factor of one face corner. Flat shading uses the
// cell in front of the face; smooth shading averages the four cells around
// the corner on that layer.
func (w *writer) shade(s world.Side, corner mgl32.Vec3) float32 {
	nx, ny, nz := s.Offset()
	if !w.bd.smooth {
		return float32(w.sample[world.SampleIndex(nx, ny, nz)]) / world.MaxLight
	}
	// step toward the corner along each in-plane axis
	step := func(n int, c float32) [2]int {
		if n != 0 {
			return [2]int{n, n}
		}
		if c < 0.5 {
			return [2]int{0, -1}
		}
		return [2]int{0, 1}
	}
	ax, ay, az := step(nx, corner[0]), step(ny, corner[1]), step(nz, corner[2])
	var sum int
	for _, dx := range uniq(ax) {
		for _, dy := range uniq(ay) {
			for _, dz := range uniq(az) {
				sum += int(w.sample[world.SampleIndex(dx, dy, dz)])
			}
		}
	}
	return float32(sum) / 4 / world.MaxLight
}

func uniq(a [2]int) []int {
	if a[0] == a[1] {
		return a[:1]
	}
	return a[:]
}
