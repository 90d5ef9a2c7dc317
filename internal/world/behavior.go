package world

import (
	"blockworld/internal/inventory"
	"blockworld/internal/item"
	"blockworld/internal/registry"

	"github.com/go-gl/mathgl/mgl32"
)

// Behavior is the variant-specific part of a block.
// Stateless variants share one value; stateful ones are allocated per block.
type Behavior interface {
	Update(b *Block, dt float32)
	// Visibility recomputes the face mask and list membership
	Visibility(b *Block)
	// NeighborChanged is called when the cell on side s changed
	NeighborChanged(b *Block, s Side)
	// Smashed is called just before the block leaves the grid
	Smashed(b *Block)
	// VertexCount is the exact number of vertices EmitGeometry writes
	VertexCount(b *Block) int
	EmitGeometry(b *Block, w GeometryWriter)
}

// GeometryWriter receives block geometry in block-local units [0,1]
type GeometryWriter interface {
	// Face writes one axis aligned face of the box [min, max]
	Face(b *Block, s Side, min, max mgl32.Vec3)
	// Quad writes an arbitrary quad shaded like face s
	Quad(b *Block, corners [4]mgl32.Vec3, s Side)
}

// placer is implemented by behaviours that react to being placed by an edit
type placer interface {
	Placed(b *Block)
}

// Holder is implemented by blocks owning an inventory
type Holder interface {
	Inventory() *inventory.Inventory
}

var (
	unitMin = mgl32.Vec3{0, 0, 0}
	unitMax = mgl32.Vec3{1, 1, 1}
)

var sharedCube = cubeBehavior{}

func newBehavior(t *registry.BlockType) Behavior {
	switch t.Kind {
	case registry.KindPlant:
		return plantBehavior{}
	case registry.KindFalling:
		return &fallingBehavior{}
	case registry.KindWire:
		return &wireBehavior{}
	case registry.KindTorch:
		if t.Redstone {
			return &torchBehavior{conductor{role: roleSource}}
		}
		return plainTorch{}
	case registry.KindLamp:
		return &lampBehavior{conductor{role: roleSink}}
	case registry.KindContainer:
		return &containerBehavior{inv: inventory.New(inventory.ContainerSize)}
	case registry.KindCrafting:
		return &containerBehavior{inv: inventory.New(inventory.CraftingSize)}
	}
	return sharedCube
}

// cubeBehavior is the plain full cube
type cubeBehavior struct{}

func (cubeBehavior) Update(*Block, float32) {}

func (cubeBehavior) Visibility(b *Block) {
	b.setFaces(b.computeFaces())
}

func (c cubeBehavior) NeighborChanged(b *Block, _ Side) {
	c.Visibility(b)
}

func (cubeBehavior) Smashed(*Block) {}

func (cubeBehavior) VertexCount(b *Block) int {
	return 4 * b.faces.Count()
}

func (cubeBehavior) EmitGeometry(b *Block, w GeometryWriter) {
	for _, s := range Sides {
		if b.faces.Has(s) {
			w.Face(b, s, unitMin, unitMax)
		}
	}
}

// supported reports whether the block below is a full cube.
// Unresolved cells count as support so chunk borders do not break plants.
func supported(b *Block) bool {
	below, ok := b.Neighbor(SideBottom)
	if !ok {
		return true
	}
	return below != nil && below.typ.Shape == registry.ShapeCube && !below.Manual()
}

// breakIfUnsupported queues a break for blocks that lost their support
func breakIfUnsupported(b *Block) {
	if m := b.manager(); m != nil && !supported(b) {
		x, y, z := b.Position()
		m.QueueBreak(x, y, z)
	}
}

// plantBehavior draws two crossed double sided quads
type plantBehavior struct{}

func (plantBehavior) Update(*Block, float32) {}

func (plantBehavior) Visibility(b *Block) {
	b.setFaces(AllFaces)
}

func (plantBehavior) NeighborChanged(b *Block, s Side) {
	if s == SideBottom {
		breakIfUnsupported(b)
	}
}

func (plantBehavior) Placed(b *Block) {
	breakIfUnsupported(b)
}

func (plantBehavior) Smashed(*Block) {}

func (plantBehavior) VertexCount(*Block) int { return 16 }

func (plantBehavior) EmitGeometry(b *Block, w GeometryWriter) {
	a := [4]mgl32.Vec3{{0, 0, 0}, {1, 0, 1}, {1, 1, 1}, {0, 1, 0}}
	c := [4]mgl32.Vec3{{1, 0, 0}, {0, 0, 1}, {0, 1, 1}, {1, 1, 0}}
	w.Quad(b, a, SideFront)
	w.Quad(b, [4]mgl32.Vec3{a[1], a[0], a[3], a[2]}, SideBack)
	w.Quad(b, c, SideLeft)
	w.Quad(b, [4]mgl32.Vec3{c[1], c[0], c[3], c[2]}, SideRight)
}

// plainTorch is a light source without signal behaviour
type plainTorch struct{}

func (plainTorch) Update(*Block, float32) {}

func (plainTorch) Visibility(b *Block) { b.setFaces(AllFaces) }

func (plainTorch) NeighborChanged(b *Block, s Side) {
	if s == SideBottom {
		breakIfUnsupported(b)
	}
}

func (plainTorch) Placed(b *Block) { breakIfUnsupported(b) }

func (plainTorch) Smashed(*Block) {}

func (plainTorch) VertexCount(*Block) int { return torchVertices }

func (plainTorch) EmitGeometry(b *Block, w GeometryWriter) { emitTorch(b, w) }

const torchVertices = 20

// emitTorch writes a thin post: four sides and a top
func emitTorch(b *Block, w GeometryWriter) {
	in := b.typ.Brush.Inset
	lo := mgl32.Vec3{in, 0, in}
	hi := mgl32.Vec3{1 - in, 10.0 / 16, 1 - in}
	w.Face(b, SideTop, lo, hi)
	for _, s := range HorizontalSides {
		w.Face(b, s, lo, hi)
	}
}

const (
	gravity       = 20.0
	terminalSpeed = 30.0
)

// fallingBehavior is a cube that drops when nothing is below it.
// While moving it is drawn outside the chunk mesh with its sub-cell offset.
type fallingBehavior struct {
	moving   bool
	velocity float32
	offset   float32
}

func (f *fallingBehavior) Update(b *Block, dt float32) {
	m := b.manager()
	if m == nil {
		return
	}
	below, ok := b.Neighbor(SideBottom)
	_, y, _ := b.Position()
	free := ok && below == nil && y > 0

	if !f.moving {
		if free {
			f.moving = true
			f.velocity = 0
			b.setManual(true)
			f.Visibility(b)
			notifyNeighbors(b)
		}
		return
	}

	if !free {
		f.land(b)
		return
	}

	f.velocity = min(f.velocity+gravity*dt, terminalSpeed)
	f.offset -= f.velocity * dt
	if f.offset <= -1 {
		x, y, z := b.Position()
		m.QueueMove(x, y, z, x, y-1, z)
		f.offset += 1
	}
}

func (f *fallingBehavior) land(b *Block) {
	f.moving = false
	f.velocity = 0
	f.offset = 0
	b.setManual(false)
	f.Visibility(b)
	notifyNeighbors(b)
}

// Moving reports whether the block is currently falling
func (f *fallingBehavior) Moving() bool { return f.moving }

func (f *fallingBehavior) Visibility(b *Block) {
	if f.moving {
		b.setFaces(AllFaces)
		return
	}
	b.setFaces(b.computeFaces())
}

func (f *fallingBehavior) NeighborChanged(b *Block, _ Side) {
	f.Visibility(b)
}

func (f *fallingBehavior) Smashed(*Block) {}

func (f *fallingBehavior) VertexCount(b *Block) int {
	return 4 * b.faces.Count()
}

func (f *fallingBehavior) EmitGeometry(b *Block, w GeometryWriter) {
	sharedCube.EmitGeometry(b, w)
}

// containerBehavior is a cube with slots; chests and crafting surfaces
type containerBehavior struct {
	inv *inventory.Inventory
}

func (c *containerBehavior) Inventory() *inventory.Inventory { return c.inv }

func (c *containerBehavior) Update(*Block, float32) {}

func (c *containerBehavior) Visibility(b *Block) { sharedCube.Visibility(b) }

func (c *containerBehavior) NeighborChanged(b *Block, s Side) { sharedCube.NeighborChanged(b, s) }

func (c *containerBehavior) Smashed(b *Block) {
	items := c.inv.Drain()
	if m := b.manager(); m != nil && len(items) > 0 {
		m.drop(b, items)
	}
}

func (c *containerBehavior) VertexCount(b *Block) int { return sharedCube.VertexCount(b) }

func (c *containerBehavior) EmitGeometry(b *Block, w GeometryWriter) { sharedCube.EmitGeometry(b, w) }

// dropFunc receives the items left behind by a smashed block
type dropFunc func(pos mgl32.Vec3, items []item.ItemStack)
