package world

import (
	"blockworld/internal/registry"

	"github.com/go-gl/mathgl/mgl32"
)

type blockFlags uint8

const (
	flagVisible blockFlags = 1 << iota // member (or pending member) of the visible list
	flagUpdating
	flagManual
)

type visState uint8

const (
	visUnknown visState = iota
	visVisible
	visHidden
)

// Block is one placed voxel. It is owned by its chunk slot and should not be
// held across frames; look it up again by position instead.
type Block struct {
	chunk    *Chunk
	index    int
	typ      *registry.BlockType
	health   float32
	faces    FaceMask
	flags    blockFlags
	vis      visState
	behavior Behavior
}

func newBlock(c *Chunk, index int, t *registry.BlockType) *Block {
	b := &Block{
		chunk:  c,
		index:  index,
		typ:    t,
		health: 1,
	}
	b.behavior = newBehavior(t)
	return b
}

// Type returns the block's type
func (b *Block) Type() *registry.BlockType { return b.typ }

// Chunk returns the owning chunk
func (b *Block) Chunk() *Chunk { return b.chunk }

// Index returns the block's cell index within its chunk
func (b *Block) Index() int { return b.index }

// Faces returns the current face visibility mask
func (b *Block) Faces() FaceMask { return b.faces }

// Health returns the remaining health in [0, 1]
func (b *Block) Health() float32 { return b.health }

// Behavior returns the block's variant behaviour
func (b *Block) Behavior() Behavior { return b.behavior }

// Visible reports whether the block is (or is about to be) in the visible list
func (b *Block) Visible() bool { return b.flags&flagVisible != 0 }

// Manual reports whether the block is drawn outside the chunk mesh
func (b *Block) Manual() bool { return b.flags&flagManual != 0 }

// Local returns the block's coordinates within its chunk
func (b *Block) Local() (x, y, z int) {
	return Position(b.index)
}

// Position returns the block's world coordinates
func (b *Block) Position() (x, y, z int) {
	lx, ly, lz := Position(b.index)
	ox, oz := b.chunk.Coord.Origin()
	return ox + lx, ly, oz + lz
}

// Vec returns the world position of the block's minimum corner
func (b *Block) Vec() mgl32.Vec3 {
	x, y, z := b.Position()
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}

// Neighbor returns the block adjacent on side s.
// ok is false when the neighbouring chunk cannot be resolved.
func (b *Block) Neighbor(s Side) (n *Block, ok bool) {
	x, y, z := Position(b.index)
	dx, dy, dz := s.Offset()
	c, idx, st := b.chunk.resolve(x+dx, y+dy, z+dz)
	switch st {
	case resolved:
		return c.blocks[idx], true
	case outside:
		return nil, true
	}
	return nil, false
}

// Luminosity returns the block light the block currently emits
func (b *Block) Luminosity() uint8 {
	if l, ok := b.behavior.(interface{ Luminosity(*Block) uint8 }); ok {
		return l.Luminosity(b)
	}
	return b.typ.Luminosity
}

// Tint returns the color multiplier applied to a face
func (b *Block) Tint(s Side) mgl32.Vec3 {
	brush := b.typ.Brush
	tinted := brush.TintSides
	if s == SideTop {
		tinted = brush.TintTop
	}
	c := mgl32.Vec3{1, 1, 1}
	if tinted {
		c = mgl32.Vec3{brush.Tint[0], brush.Tint[1], brush.Tint[2]}
	}
	if sc, ok := b.behavior.(SignalConductor); ok && b.typ.Kind == registry.KindWire {
		c = c.Mul(0.3 + 0.7*float32(sc.Power())/MaxPower)
	}
	return c
}

// Offset returns the sub-cell displacement of a moving block
func (b *Block) Offset() mgl32.Vec3 {
	if m, ok := b.behavior.(*fallingBehavior); ok {
		return mgl32.Vec3{0, m.offset, 0}
	}
	return mgl32.Vec3{}
}

// computeFaces applies the default cube visibility rule
func (b *Block) computeFaces() FaceMask {
	var mask FaceMask
	_, y, _ := Position(b.index)
	for _, s := range Sides {
		if s == SideBottom && y == 0 {
			continue
		}
		n, ok := b.Neighbor(s)
		if !ok || n == nil || !n.occludes(b) {
			mask |= s.Bit()
		}
	}
	return mask
}

// occludes reports whether b hides the face of its neighbour other
func (b *Block) occludes(other *Block) bool {
	if b.Manual() || b.typ.Shape != registry.ShapeCube {
		return false
	}
	if !b.typ.Transparent {
		return true
	}
	// transparent cubes merge with their own kind
	return other.typ == b.typ
}

// setFaces stores a new mask, dirtying the mesh and updating visible-list
// membership when the outcome changed.
func (b *Block) setFaces(mask FaceMask) {
	wasVisible := b.flags&flagVisible != 0
	nowVisible := mask != 0
	if mask != b.faces || wasVisible != nowVisible || b.vis == visUnknown {
		b.chunk.MarkDirty()
	}
	b.faces = mask
	if nowVisible {
		b.vis = visVisible
	} else {
		b.vis = visHidden
	}
	if nowVisible == wasVisible {
		return
	}
	if nowVisible {
		b.flags |= flagVisible
		b.chunk.listAdd(&b.chunk.visible, b.index)
	} else {
		b.flags &^= flagVisible
		b.chunk.listRemove(&b.chunk.visible, b.index)
	}
}

// recheck recomputes face visibility through the behaviour
func (b *Block) recheck() {
	b.behavior.Visibility(b)
}

// setManual moves the block in or out of the manual render list
func (b *Block) setManual(on bool) {
	if on == b.Manual() {
		return
	}
	if on {
		b.flags |= flagManual
		b.chunk.listAdd(&b.chunk.manual, b.index)
	} else {
		b.flags &^= flagManual
		b.chunk.listRemove(&b.chunk.manual, b.index)
	}
	b.chunk.MarkDirty()
}

// setUpdating moves the block in or out of the update list
func (b *Block) setUpdating(on bool) {
	if on == (b.flags&flagUpdating != 0) {
		return
	}
	if on {
		b.flags |= flagUpdating
		b.chunk.listAdd(&b.chunk.updating, b.index)
	} else {
		b.flags &^= flagUpdating
		b.chunk.listRemove(&b.chunk.updating, b.index)
	}
}

// manager returns the owning manager, nil for detached chunks
func (b *Block) manager() *Manager {
	return b.chunk.manager
}

// notifyNeighbors tells every resolved neighbour that b's cell changed
func notifyNeighbors(b *Block) {
	for _, s := range Sides {
		if n, ok := b.Neighbor(s); ok && n != nil {
			n.behavior.NeighborChanged(n, s.Opposite())
		}
	}
}
