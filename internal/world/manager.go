package world

import (
	"fmt"
	"sort"
	"sync"

	"blockworld/internal/item"
	"blockworld/internal/profiling"
	"blockworld/internal/registry"

	"github.com/go-gl/mathgl/mgl32"
)

type blockMove struct {
	from, to [3]int
}

// Manager is the authoritative map from chunk coordinates to chunks.
// Apart from Chunk lookups, its methods must be called from the main thread.
type Manager struct {
	reg   *registry.Registry
	prof  *profiling.Profiler
	Light *Lighting

	mu      sync.RWMutex
	regions map[uint64]*region
	count   int

	moves  []blockMove
	breaks [][3]int

	retiredMu sync.Mutex
	retired   []Mesh

	onDrop dropFunc
}

// NewManager creates an empty chunk manager
func NewManager(reg *registry.Registry, prof *profiling.Profiler) *Manager {
	m := &Manager{
		reg:     reg,
		prof:    prof,
		regions: make(map[uint64]*region),
	}
	m.Light = newLighting(m)
	return m
}

// Registry returns the block type registry
func (m *Manager) Registry() *registry.Registry { return m.reg }

// SetDropHandler installs the callback receiving items left by smashed containers
func (m *Manager) SetDropHandler(fn func(pos mgl32.Vec3, items []item.ItemStack)) {
	m.onDrop = fn
}

func (m *Manager) drop(b *Block, items []item.ItemStack) {
	if m.onDrop != nil {
		m.onDrop(b.Vec(), items)
	}
}

// cell returns the active chunk and cell index holding world position (x, y, z)
func (m *Manager) cell(x, y, z int) (*Chunk, int) {
	if y < 0 || y >= ChunkSizeY {
		return nil, 0
	}
	c := m.ActiveChunk(ChunkCoordAt(x, z))
	if c == nil {
		return nil, 0
	}
	return c, Index(mod(x, ChunkSizeX), y, mod(z, ChunkSizeZ))
}

// Block returns the block at world coordinates, nil for empty or unloaded cells
func (m *Manager) Block(x, y, z int) *Block {
	c, idx := m.cell(x, y, z)
	if c == nil {
		return nil
	}
	return c.blocks[idx]
}

// Type returns the type at world coordinates, air for empty or unloaded cells
func (m *Manager) Type(x, y, z int) *registry.BlockType {
	if b := m.Block(x, y, z); b != nil {
		return b.typ
	}
	return m.reg.Type(registry.Air)
}

// Loaded reports whether the cell belongs to an active chunk
func (m *Manager) Loaded(x, y, z int) bool {
	c, _ := m.cell(x, y, z)
	return c != nil
}

// LightAt returns the effective light at world coordinates
func (m *Manager) LightAt(x, y, z int) uint8 {
	c, idx := m.cell(x, y, z)
	if c == nil {
		return Effective(MaxLight<<4, m.Light.Sun())
	}
	return Effective(c.light[idx], m.Light.Sun())
}

func (m *Manager) editCell(x, y, z int) (*Chunk, int, error) {
	if y < 0 || y >= ChunkSizeY {
		return nil, 0, fmt.Errorf("edit %d,%d,%d: %w", x, y, z, ErrOutOfWorld)
	}
	c, idx := m.cell(x, y, z)
	if c == nil {
		return nil, 0, fmt.Errorf("edit %d,%d,%d: %w", x, y, z, ErrNoChunk)
	}
	return c, idx, nil
}

// SetBlock places a block of type id at world coordinates, replacing whatever
// was there. Placing air breaks the existing block.
func (m *Manager) SetBlock(x, y, z int, id registry.ID) (*Block, error) {
	defer m.prof.Track("world.SetBlock")()
	c, idx, err := m.editCell(x, y, z)
	if err != nil {
		return nil, err
	}
	if id == registry.Air {
		m.remove(c, idx, true)
		return nil, nil
	}
	t := m.reg.Type(id)
	if t == nil {
		return nil, fmt.Errorf("set block %d,%d,%d: unknown type %d", x, y, z, id)
	}
	return m.place(c, idx, t), nil
}

// Break smashes the block at world coordinates. It reports whether a block was removed.
func (m *Manager) Break(x, y, z int) bool {
	c, idx := m.cell(x, y, z)
	if c == nil || c.blocks[idx] == nil {
		return false
	}
	m.remove(c, idx, true)
	return true
}

// Damage reduces a block's health by amount divided by its type's resistance
// and smashes it at zero. Types with negative resistance are indestructible.
// It reports whether the block broke.
func (m *Manager) Damage(x, y, z int, amount float32) bool {
	b := m.Block(x, y, z)
	if b == nil || b.typ.Resistance < 0 || amount <= 0 {
		return false
	}
	b.health -= amount / b.typ.Resistance
	if b.health > 0 {
		return false
	}
	return m.Break(x, y, z)
}

// QueueMove asks for the block at from to move to to at the next Commit
func (m *Manager) QueueMove(fx, fy, fz, tx, ty, tz int) {
	m.moves = append(m.moves, blockMove{from: [3]int{fx, fy, fz}, to: [3]int{tx, ty, tz}})
}

// QueueBreak asks for the block at (x, y, z) to be smashed at the next Commit
func (m *Manager) QueueBreak(x, y, z int) {
	m.breaks = append(m.breaks, [3]int{x, y, z})
}

// Commit applies queued moves and breaks, then every active chunk's
// pending list changes. It is called once per frame outside any iteration.
func (m *Manager) Commit() {
	defer m.prof.Track("world.Commit")()
	for len(m.moves) > 0 || len(m.breaks) > 0 {
		moves, breaks := m.moves, m.breaks
		m.moves, m.breaks = nil, nil
		for _, mv := range moves {
			m.applyMove(mv)
		}
		for _, p := range breaks {
			m.Break(p[0], p[1], p[2])
		}
	}
	m.ForEachActive(func(c *Chunk) {
		c.Commit()
	})
}

// Update runs one tick for every block in the update lists
func (m *Manager) Update(dt float32) {
	defer m.prof.Track("world.Update")()
	m.ForEachActive(func(c *Chunk) {
		for i := 0; i < c.updating.Len(); i++ {
			if b := c.blocks[c.updating.At(i)]; b != nil {
				b.behavior.Update(b, dt)
			}
		}
	})
}

func (m *Manager) place(c *Chunk, idx int, t *registry.BlockType) *Block {
	if c.blocks[idx] != nil {
		m.remove(c, idx, true)
	}
	b := newBlock(c, idx, t)
	c.blocks[idx] = b
	c.count++
	m.attached(b)
	if p, ok := b.behavior.(placer); ok {
		p.Placed(b)
	}
	return b
}

// attached updates light, lists and neighbours after b entered its cell
func (m *Manager) attached(b *Block) {
	c, idx := b.chunk, b.index
	if !passable(c, idx) {
		lightBlocked(c, idx)
	}
	if lum := b.Luminosity(); lum > 0 {
		spreadLight(c, idx, lum)
	}
	b.recheck()
	if b.typ.Updates {
		b.setUpdating(true)
	}
	notifyNeighbors(b)
	m.cellChanged(c, idx)
}

func (m *Manager) remove(c *Chunk, idx int, smash bool) {
	b := c.blocks[idx]
	if b == nil {
		return
	}
	if smash {
		b.behavior.Smashed(b)
	}
	m.detach(b)
}

// detach takes b out of its cell and repairs light and neighbours
func (m *Manager) detach(b *Block) {
	c, idx := b.chunk, b.index
	lum := b.Luminosity()
	opaque := !passable(c, idx)

	c.blocks[idx] = nil
	c.count--
	if b.flags&flagVisible != 0 {
		c.listRemove(&c.visible, idx)
	}
	if b.flags&flagUpdating != 0 {
		c.listRemove(&c.updating, idx)
	}
	if b.flags&flagManual != 0 {
		c.listRemove(&c.manual, idx)
	}
	b.flags = 0
	b.vis = visUnknown

	if lum > 0 {
		unspreadLight(c, idx, max(lum, c.BlockLight(idx)))
	}
	if opaque || lum > 0 {
		lightOpened(c, idx)
	}
	for _, s := range Sides {
		if n, nidx, ok := stepCell(c, idx, s); ok {
			if nb := n.blocks[nidx]; nb != nil {
				nb.behavior.NeighborChanged(nb, s.Opposite())
			}
		}
	}
	m.cellChanged(c, idx)
}

func (m *Manager) cellChanged(c *Chunk, idx int) {
	c.MarkDirty()
	x, _, z := Position(idx)
	c.dirtyBorder(x, z)
}

func (m *Manager) applyMove(mv blockMove) {
	src, sidx := m.cell(mv.from[0], mv.from[1], mv.from[2])
	dst, didx := m.cell(mv.to[0], mv.to[1], mv.to[2])
	if src == nil {
		return
	}
	b := src.blocks[sidx]
	if b == nil {
		return
	}
	if dst == nil || dst.blocks[didx] != nil {
		// target unloaded or taken: settle where it is
		if f, ok := b.behavior.(*fallingBehavior); ok && f.moving {
			f.land(b)
		}
		return
	}
	manual := b.Manual()
	m.detach(b)
	b.chunk, b.index = dst, didx
	dst.blocks[didx] = b
	dst.count++
	if manual {
		b.setManual(true)
	}
	m.attached(b)
}

// RetireMesh queues a mesh for release by the graphics thread. It is safe to
// call from any goroutine.
func (m *Manager) RetireMesh(mesh Mesh) {
	if mesh.Handle == 0 {
		return
	}
	m.retiredMu.Lock()
	m.retired = append(m.retired, mesh)
	m.retiredMu.Unlock()
}

// DrainRetired returns and clears the meshes waiting for release
func (m *Manager) DrainRetired() []Mesh {
	m.retiredMu.Lock()
	defer m.retiredMu.Unlock()
	out := m.retired
	m.retired = nil
	return out
}

// Activate publishes a cached chunk to the main thread: it links light and
// faces across the seams with active neighbours and connects signal blocks.
func (m *Manager) Activate(c *Chunk) {
	defer m.prof.Track("world.Activate")()
	c.isolated = false
	c.setState(StateActive)

	for _, s := range HorizontalSides {
		n := c.Neighbor(s)
		if n == nil {
			continue
		}
		pullBorderLight(c, n, s)
		recheckBorder(c, s)
		recheckBorder(n, s.Opposite())
		n.MarkDirty()
	}
	for _, b := range c.blocks {
		if b != nil && b.typ.Redstone {
			connectAll(b)
		}
	}
	c.MarkDirty()
}

// recheckBorder notifies the blocks on the seam facing side s
func recheckBorder(c *Chunk, s Side) {
	for y := 0; y < ChunkSizeY; y++ {
		for i := 0; i < ChunkSizeX; i++ {
			var x, z int
			switch s {
			case SideLeft:
				x, z = 0, i
			case SideRight:
				x, z = ChunkSizeX-1, i
			case SideBack:
				x, z = i, 0
			case SideFront:
				x, z = i, ChunkSizeZ-1
			default:
				return
			}
			if b := c.blocks[Index(x, y, z)]; b != nil {
				b.behavior.NeighborChanged(b, s)
			}
		}
	}
}

// Plan answers the active-window query around center: the missing chunk
// coordinates within loadRadius ordered nearest first, and the chunks
// beyond evictRadius.
func (m *Manager) Plan(center mgl32.Vec3, loadRadius, evictRadius int) (load []ChunkCoord, evict []*Chunk) {
	defer m.prof.Track("world.Plan")()
	cc := ChunkCoordFor(center)
	r2 := loadRadius * loadRadius
	for dx := -loadRadius; dx <= loadRadius; dx++ {
		for dz := -loadRadius; dz <= loadRadius; dz++ {
			if dx*dx+dz*dz > r2 {
				continue
			}
			coord := ChunkCoord{X: cc.X + dx, Z: cc.Z + dz}
			if m.Chunk(coord) == nil {
				load = append(load, coord)
			}
		}
	}
	sort.Slice(load, func(i, j int) bool {
		di, dj := load[i].DistSq(cc), load[j].DistSq(cc)
		if di != dj {
			return di < dj
		}
		if load[i].X != load[j].X {
			return load[i].X < load[j].X
		}
		return load[i].Z < load[j].Z
	})

	e2 := evictRadius * evictRadius
	for _, c := range m.Chunks() {
		if c.Coord.DistSq(cc) > e2 {
			evict = append(evict, c)
		}
	}
	return load, evict
}
