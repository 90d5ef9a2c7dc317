package world

import (
	"math"

	"blockworld/internal/registry"
)

const (
	MaxLight = 15
	SunSteps = 16
)

// BlockLight returns the emitted light channel of a cell
func (c *Chunk) BlockLight(idx int) uint8 { return c.light[idx] & 0x0F }

// SkyLight returns the sky channel of a cell
func (c *Chunk) SkyLight(idx int) uint8 { return c.light[idx] >> 4 }

// RawLight returns both channels packed, block light in the low nibble
func (c *Chunk) RawLight(idx int) uint8 { return c.light[idx] }

func (c *Chunk) setBlockLight(idx int, v uint8) {
	c.light[idx] = c.light[idx]&0xF0 | v&0x0F
	c.lightTouched(idx)
}

func (c *Chunk) setSkyLight(idx int, v uint8) {
	c.light[idx] = c.light[idx]&0x0F | v<<4
}

// lightTouched dirties the meshes that sample a changed cell
func (c *Chunk) lightTouched(idx int) {
	c.meshDirty.Store(true)
	x, _, z := Position(idx)
	if x == 0 || x == ChunkSizeX-1 || z == 0 || z == ChunkSizeZ-1 {
		c.dirtyBorder(x, z)
	}
}

// dirtyBorder marks the neighbours sharing the seam at local column (x, z)
func (c *Chunk) dirtyBorder(x, z int) {
	mark := func(s Side) {
		if n := c.Neighbor(s); n != nil {
			n.meshDirty.Store(true)
		}
	}
	if x == 0 {
		mark(SideLeft)
	} else if x == ChunkSizeX-1 {
		mark(SideRight)
	}
	if z == 0 {
		mark(SideBack)
	} else if z == ChunkSizeZ-1 {
		mark(SideFront)
	}
}

// passable reports whether light travels through a cell
func passable(c *Chunk, idx int) bool {
	b := c.blocks[idx]
	return b == nil || b.typ.Shape != registry.ShapeCube || b.typ.Transparent
}

// Effective combines both channels into the shading value:
// max(2*block, sky*sun*2) clamped to MaxLight.
func Effective(raw uint8, sun float32) uint8 {
	block := int(raw & 0x0F)
	sky := int(math.Round(float64(raw>>4) * float64(sun) * 2))
	return uint8(min(MaxLight, max(2*block, sky)))
}

// computeSky fills the sky channel of every column top-down
func (c *Chunk) computeSky() {
	for x := 0; x < ChunkSizeX; x++ {
		for z := 0; z < ChunkSizeZ; z++ {
			c.computeSkyColumn(x, z)
		}
	}
}

func (c *Chunk) computeSkyColumn(x, z int) {
	level := uint8(MaxLight)
	for y := ChunkSizeY - 1; y >= 0; y-- {
		idx := Index(x, y, z)
		if !passable(c, idx) {
			level = 0
		}
		c.setSkyLight(idx, level)
	}
}

// seedEmitters spreads block light from every luminous block in the chunk
func (c *Chunk) seedEmitters() {
	for idx, b := range c.blocks {
		if b == nil {
			continue
		}
		if lum := b.Luminosity(); lum > 0 {
			spreadLight(c, idx, lum)
		}
	}
}

type lightNode struct {
	c   *Chunk
	idx int
	lvl uint8
}

func stepCell(c *Chunk, idx int, s Side) (*Chunk, int, bool) {
	x, y, z := Position(idx)
	dx, dy, dz := s.Offset()
	n, nidx, st := c.resolve(x+dx, y+dy, z+dz)
	return n, nidx, st == resolved
}

// spreadLight raises block light outward from origin breadth first.
// The origin itself is always processed; other cells must let light through
// and are skipped when already at least as bright as the incoming value.
func spreadLight(c *Chunk, idx int, level uint8) {
	if level == 0 {
		return
	}
	level = min(level, MaxLight)
	if c.BlockLight(idx) < level {
		c.setBlockLight(idx, level)
	}
	queue := []lightNode{{c, idx, level}}
	for head := 0; head < len(queue); head++ {
		n := queue[head]
		if n.lvl <= 1 {
			continue
		}
		next := n.lvl - 1
		for _, s := range Sides {
			m, midx, ok := stepCell(n.c, n.idx, s)
			if !ok || !passable(m, midx) || m.BlockLight(midx) >= next {
				continue
			}
			m.setBlockLight(midx, next)
			queue = append(queue, lightNode{m, midx, next})
		}
	}
}

// unspreadLight removes the light a source of the given level contributed
// around origin, then re-seeds from brighter cells on the frontier and from
// emitters found inside the cleared area.
func unspreadLight(c *Chunk, idx int, level uint8) {
	if level == 0 {
		return
	}
	c.setBlockLight(idx, 0)
	var reseed, emitters []lightNode
	queue := []lightNode{{c, idx, level}}
	for head := 0; head < len(queue); head++ {
		n := queue[head]
		for _, s := range Sides {
			m, midx, ok := stepCell(n.c, n.idx, s)
			if !ok {
				continue
			}
			ml := m.BlockLight(midx)
			if ml == 0 {
				continue
			}
			if ml < n.lvl {
				m.setBlockLight(midx, 0)
				queue = append(queue, lightNode{m, midx, ml})
				if b := m.blocks[midx]; b != nil {
					if lum := b.Luminosity(); lum > 0 {
						emitters = append(emitters, lightNode{m, midx, lum})
					}
				}
			} else {
				reseed = append(reseed, lightNode{m, midx, ml})
			}
		}
	}
	for _, r := range reseed {
		spreadLight(r.c, r.idx, r.c.BlockLight(r.idx))
	}
	for _, e := range emitters {
		spreadLight(e.c, e.idx, e.lvl)
	}
}

// lightBlocked updates light after a cell stopped letting light through
func lightBlocked(c *Chunk, idx int) {
	if v := c.BlockLight(idx); v > 0 {
		unspreadLight(c, idx, v)
	}
	x, _, z := Position(idx)
	c.computeSkyColumn(x, z)
	c.lightTouched(idx)
}

// lightOpened pulls neighbouring light into a cell that became passable
func lightOpened(c *Chunk, idx int) {
	var best uint8
	for _, s := range Sides {
		if m, midx, ok := stepCell(c, idx, s); ok {
			best = max(best, m.BlockLight(midx))
		}
	}
	if best > 1 {
		spreadLight(c, idx, best-1)
	}
	x, _, z := Position(idx)
	c.computeSkyColumn(x, z)
	c.lightTouched(idx)
}

// pullBorderLight exchanges block light across the seam shared with a
// neighbour that was just linked.
func pullBorderLight(c, n *Chunk, s Side) {
	for y := 0; y < ChunkSizeY; y++ {
		for i := 0; i < ChunkSizeX; i++ {
			var a, b int
			switch s {
			case SideLeft:
				a, b = Index(0, y, i), Index(ChunkSizeX-1, y, i)
			case SideRight:
				a, b = Index(ChunkSizeX-1, y, i), Index(0, y, i)
			case SideBack:
				a, b = Index(i, y, 0), Index(i, y, ChunkSizeZ-1)
			case SideFront:
				a, b = Index(i, y, ChunkSizeZ-1), Index(i, y, 0)
			default:
				return
			}
			la, lb := c.BlockLight(a), n.BlockLight(b)
			if la > lb+1 && passable(n, b) {
				spreadLight(n, b, la-1)
			} else if lb > la+1 && passable(c, a) {
				spreadLight(c, a, lb-1)
			}
		}
	}
}

// LightSample holds the effective light of the 3x3x3 cells around a block
type LightSample [27]uint8

// SampleIndex returns the slot of offset (dx, dy, dz) in a LightSample
func SampleIndex(dx, dy, dz int) int {
	return (dx + 1) + 3*(dy+1) + 9*(dz+1)
}

// Lighting owns the global sun intensity and the sky recompute budget
type Lighting struct {
	m        *Manager
	sunStep  int
	perFrame int
}

func newLighting(m *Manager) *Lighting {
	return &Lighting{m: m, sunStep: SunSteps - 1, perFrame: 4}
}

// SetBudget sets how many chunks may recompute sky light per Tick
func (l *Lighting) SetBudget(perFrame int) {
	l.perFrame = max(perFrame, 1)
}

// Sun returns the discretized sun intensity in [0, 1]
func (l *Lighting) Sun() float32 {
	return float32(l.sunStep) / float32(SunSteps-1)
}

// SetSun sets the sun intensity. A change of at least one discrete step marks
// every active chunk dirty-for-light and reports true.
func (l *Lighting) SetSun(intensity float32) bool {
	intensity = max(0, min(1, intensity))
	step := int(math.Round(float64(intensity) * float64(SunSteps-1)))
	if step == l.sunStep {
		return false
	}
	l.sunStep = step
	l.m.ForEachActive(func(c *Chunk) {
		c.lightDirty.Store(true)
	})
	return true
}

// Tick recomputes sky light for a bounded number of dirty chunks.
// It returns how many chunks were processed.
func (l *Lighting) Tick() int {
	defer l.m.prof.Track("world.Lighting.Tick")()
	done := 0
	l.m.ForEachActive(func(c *Chunk) {
		if done >= l.perFrame || !c.lightDirty.Load() {
			return
		}
		c.computeSky()
		c.lightDirty.Store(false)
		c.MarkDirty()
		done++
	})
	return done
}

// Spread raises block light around the world position (x, y, z)
func (l *Lighting) Spread(x, y, z int, level uint8) {
	if c, idx := l.m.cell(x, y, z); c != nil {
		spreadLight(c, idx, level)
	}
}

// Unspread removes the light a source of the given level contributed at (x, y, z)
func (l *Lighting) Unspread(x, y, z int, level uint8) {
	if c, idx := l.m.cell(x, y, z); c != nil {
		unspreadLight(c, idx, level)
	}
}

// Sample fills out with the effective light around cell idx of chunk c.
// Unresolved cells and cells above the world read as open sky, cells below
// the world as dark. The grid is never modified.
func (l *Lighting) Sample(c *Chunk, idx int, out *LightSample) {
	sun := l.Sun()
	open := Effective(MaxLight<<4, sun)
	x, y, z := Position(idx)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				v := open
				n, nidx, st := c.resolve(x+dx, y+dy, z+dz)
				switch {
				case st == resolved:
					v = Effective(n.light[nidx], sun)
				case st == outside && y+dy < 0:
					v = 0
				}
				out[SampleIndex(dx, dy, dz)] = v
			}
		}
	}
}
