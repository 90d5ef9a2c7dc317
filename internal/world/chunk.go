package world

import (
	"sync"
	"sync/atomic"

	"blockworld/internal/item"
	"blockworld/internal/registry"
)

// State is a chunk's lifecycle stage
type State int32

const (
	StateCreated State = iota
	StateLoading
	StateGenerating
	StateCached // grid populated and lists built, waiting for activation
	StateActive
	StateDestroying
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateLoading:
		return "loading"
	case StateGenerating:
		return "generating"
	case StateCached:
		return "cached"
	case StateActive:
		return "active"
	case StateDestroying:
		return "destroying"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// Mesh is the uploaded geometry of a chunk. Handle is owned by the graphics backend.
type Mesh struct {
	Handle   uint32
	Vertices int
}

type resolveStatus uint8

const (
	resolved   resolveStatus = iota
	outside                  // above or below the world
	unresolved               // neighbouring chunk not available
)

// Chunk represents a 16x128x16 column of the world
type Chunk struct {
	Coord ChunkCoord

	reg     *registry.Registry
	manager *Manager

	blocks [ChunkVolume]*Block
	light  [ChunkVolume]uint8 // low nibble block light, high nibble sky light
	count  int

	visible  BlockList
	updating BlockList
	manual   BlockList

	mesh         Mesh
	meshDirty    atomic.Bool
	lightDirty   atomic.Bool
	meshFailures int

	state     atomic.Int32
	busy      atomic.Bool
	generated bool
	// isolated is set while a worker owns the grid; cross-chunk lookups then
	// report the neighbour as unresolved.
	isolated bool
	linked   uint8 // bit i set when HorizontalSides[i] is linked

	job sync.Mutex
}

// NewChunk creates an empty chunk at the specified chunk coordinates
func NewChunk(coord ChunkCoord, reg *registry.Registry) *Chunk {
	c := &Chunk{Coord: coord, reg: reg}
	c.meshDirty.Store(true)
	return c
}

// State returns the lifecycle stage
func (c *Chunk) State() State { return State(c.state.Load()) }

func (c *Chunk) setState(s State) { c.state.Store(int32(s)) }

func (c *Chunk) casState(from, to State) bool {
	return c.state.CompareAndSwap(int32(from), int32(to))
}

// Busy reports whether a worker job currently owns the chunk
func (c *Chunk) Busy() bool { return c.busy.Load() }

// Generated reports whether the grid came from the procedural generator
func (c *Chunk) Generated() bool { return c.generated }

// SetGenerated records where the grid came from
func (c *Chunk) SetGenerated(g bool) { c.generated = g }

// Count returns the number of non-empty cells
func (c *Chunk) Count() int { return c.count }

// Registry returns the block type registry used by the chunk
func (c *Chunk) Registry() *registry.Registry { return c.reg }

// Block returns the block at local coordinates, nil for empty or out of range
func (c *Chunk) Block(x, y, z int) *Block {
	if !InBounds(x, y, z) {
		return nil
	}
	return c.blocks[Index(x, y, z)]
}

// BlockAt returns the block at a cell index
func (c *Chunk) BlockAt(idx int) *Block {
	return c.blocks[idx]
}

// TypeID returns the type id at local coordinates
func (c *Chunk) TypeID(x, y, z int) registry.ID {
	if b := c.Block(x, y, z); b != nil {
		return b.typ.ID
	}
	return registry.Air
}

// TypeAt returns the type id at a cell index
func (c *Chunk) TypeAt(idx int) registry.ID {
	if b := c.blocks[idx]; b != nil {
		return b.typ.ID
	}
	return registry.Air
}

// SetType writes a cell without notifying anything. It is used to populate
// a chunk before Cache builds its lists.
func (c *Chunk) SetType(x, y, z int, id registry.ID) {
	if !InBounds(x, y, z) {
		return
	}
	c.setRaw(Index(x, y, z), id)
}

func (c *Chunk) setRaw(idx int, id registry.ID) {
	old := c.blocks[idx]
	if old != nil {
		c.count--
		c.blocks[idx] = nil
	}
	if id == registry.Air {
		return
	}
	t := c.reg.Type(id)
	if t == nil {
		return
	}
	c.blocks[idx] = newBlock(c, idx, t)
	c.count++
}

// Highest returns the y of the highest non-empty cell in a column, or -1
func (c *Chunk) Highest(x, z int) int {
	for y := ChunkSizeY - 1; y >= 0; y-- {
		if c.blocks[Index(x, y, z)] != nil {
			return y
		}
	}
	return -1
}

// resolve maps local coordinates that may fall outside the chunk to the chunk
// that contains them. X is resolved before Z.
func (c *Chunk) resolve(x, y, z int) (*Chunk, int, resolveStatus) {
	if y < 0 || y >= ChunkSizeY {
		return nil, 0, outside
	}
	ch := c
	for x < 0 {
		if ch = ch.Neighbor(SideLeft); ch == nil {
			return nil, 0, unresolved
		}
		x += ChunkSizeX
	}
	for x >= ChunkSizeX {
		if ch = ch.Neighbor(SideRight); ch == nil {
			return nil, 0, unresolved
		}
		x -= ChunkSizeX
	}
	for z < 0 {
		if ch = ch.Neighbor(SideBack); ch == nil {
			return nil, 0, unresolved
		}
		z += ChunkSizeZ
	}
	for z >= ChunkSizeZ {
		if ch = ch.Neighbor(SideFront); ch == nil {
			return nil, 0, unresolved
		}
		z -= ChunkSizeZ
	}
	return ch, Index(x, y, z), resolved
}

func linkBit(s Side) uint8 {
	return 1 << (s - SideLeft)
}

// Linked reports whether the chunk holds a link toward side s
func (c *Chunk) Linked(s Side) bool {
	return s >= SideLeft && c.linked&linkBit(s) != 0
}

func (c *Chunk) link(s Side)   { c.linked |= linkBit(s) }
func (c *Chunk) unlink(s Side) { c.linked &^= linkBit(s) }

// Neighbor returns the active chunk linked on a horizontal side, or nil
func (c *Chunk) Neighbor(s Side) *Chunk {
	if c.isolated || c.manager == nil || !c.Linked(s) {
		return nil
	}
	if st := c.State(); st == StateDestroying || st == StateDestroyed {
		return nil
	}
	n := c.manager.Chunk(c.Coord.Neighbor(s))
	if n == nil || n.State() != StateActive {
		return nil
	}
	return n
}

// MarkDirty flags the mesh for rebuild
func (c *Chunk) MarkDirty() { c.meshDirty.Store(true) }

// Dirty reports whether the mesh must be rebuilt before the next draw
func (c *Chunk) Dirty() bool { return c.meshDirty.Load() }

// ClearDirty is called by the mesh pipeline after a successful upload
func (c *Chunk) ClearDirty() { c.meshDirty.Store(false) }

// Mesh returns the current uploaded mesh
func (c *Chunk) Mesh() Mesh { return c.mesh }

// SetMesh replaces the mesh and returns the previous one
func (c *Chunk) SetMesh(m Mesh) Mesh {
	old := c.mesh
	c.mesh = m
	return old
}

// MeshFailures counts consecutive failed builds
func (c *Chunk) MeshFailures() int { return c.meshFailures }

// SetMeshFailures is maintained by the mesh pipeline
func (c *Chunk) SetMeshFailures(n int) { c.meshFailures = n }

// Visible returns the list of blocks with at least one exposed face
func (c *Chunk) Visible() *BlockList { return &c.visible }

// Updating returns the list of blocks that receive Update calls
func (c *Chunk) Updating() *BlockList { return &c.updating }

// Manual returns the list of blocks drawn outside the chunk mesh
func (c *Chunk) Manual() *BlockList { return &c.manual }

func (c *Chunk) listAdd(l *BlockList, idx int) {
	if c.isolated {
		l.Add(idx)
		return
	}
	l.BufferAdd(idx)
}

func (c *Chunk) listRemove(l *BlockList, idx int) {
	if c.isolated {
		l.Remove(idx)
		return
	}
	l.BufferRemove(idx)
}

// Commit applies list changes queued during the frame
func (c *Chunk) Commit() {
	c.visible.Commit()
	c.updating.Commit()
	c.manual.Commit()
}

// Cache rebuilds face masks, the three lists and the chunk-local light.
func (c *Chunk) Cache() {
	c.visible.Clear()
	c.updating.Clear()
	c.manual.Clear()
	for _, b := range c.blocks {
		if b == nil {
			continue
		}
		b.flags = 0
		b.vis = visUnknown
		b.faces = 0
		b.recheck()
		if b.typ.Updates {
			b.setUpdating(true)
		}
	}
	c.Commit()
	c.computeSky()
	c.seedEmitters()
	c.MarkDirty()
}

// Reset empties the grid, light and lists
func (c *Chunk) Reset() {
	clear(c.blocks[:])
	clear(c.light[:])
	c.count = 0
	c.generated = false
	c.visible.Clear()
	c.updating.Clear()
	c.manual.Clear()
}

// SpecialState is block state persisted beside the type grid
type SpecialState struct {
	Index  int
	Health float32
	Power  uint8
	Slots  []*item.ItemStack // nil when the block has no inventory
}

// SpecialStates collects every block whose state differs from a fresh placement
func (c *Chunk) SpecialStates() []SpecialState {
	var out []SpecialState
	for idx, b := range c.blocks {
		if b == nil {
			continue
		}
		st := SpecialState{Index: idx, Health: b.health}
		special := b.health < 1
		if sc, ok := b.behavior.(SignalConductor); ok && sc.Power() > 0 {
			st.Power = sc.Power()
			special = true
		}
		if h, ok := b.behavior.(Holder); ok {
			inv := h.Inventory()
			st.Slots = make([]*item.ItemStack, inv.Len())
			for i := range st.Slots {
				if s := inv.GetItem(i); s != nil {
					cp := *s
					st.Slots[i] = &cp
				}
			}
			special = true
		}
		if special {
			out = append(out, st)
		}
	}
	return out
}

// RestoreSpecial applies persisted block state to an already populated grid
func (c *Chunk) RestoreSpecial(states []SpecialState) {
	for _, st := range states {
		if st.Index < 0 || st.Index >= ChunkVolume {
			continue
		}
		b := c.blocks[st.Index]
		if b == nil {
			continue
		}
		b.health = st.Health
		if sc, ok := b.behavior.(powerSetter); ok {
			sc.setPower(st.Power)
		}
		if h, ok := b.behavior.(Holder); ok && st.Slots != nil {
			inv := h.Inventory()
			for i, s := range st.Slots {
				inv.SetItem(i, s)
			}
		}
	}
}
