package registry

import (
	"fmt"
)

// ID identifies a block type. 0 is always air.
type ID uint8

const Air ID = 0

// Shape describes the bounding geometry of a block type
type Shape uint8

const (
	ShapeNone  Shape = iota // air
	ShapeCube               // full cube, occludes neighbours
	ShapeCross              // two crossed quads (plants)
	ShapeFlat               // single quad lying on the block below (wire)
	ShapeTorch              // thin post
)

// Kind selects the behaviour variant created when a type is placed
type Kind uint8

const (
	KindCube Kind = iota
	KindPlant
	KindFalling
	KindWire
	KindTorch
	KindLamp
	KindContainer
	KindCrafting
)

// Face order used by Brush.Cells: top, bottom, then the four sides.
const (
	BrushTop = iota
	BrushBottom
	BrushSide
)

// Brush describes how a block type is painted: one atlas cell per face group,
// a tint color and the faces the tint applies to.
type Brush struct {
	Top, Bottom, Side uint8 // atlas cells, row-major in a 16x16 atlas
	Tint              [3]float32
	TintTop           bool
	TintSides         bool
	Inset             float32 // shrinks side faces inwards (torches)
}

// Cell returns the atlas cell for a face group
func (b Brush) Cell(group int) uint8 {
	switch group {
	case BrushTop:
		return b.Top
	case BrushBottom:
		return b.Bottom
	default:
		return b.Side
	}
}

// BlockType defines the immutable properties of a block type
type BlockType struct {
	ID          ID
	Name        string
	Kind        Kind
	Shape       Shape
	Solid       bool
	Fallable    bool
	Transparent bool
	Resistance  float32 // negative means indestructible
	Luminosity  uint8
	Updates     bool // wants periodic Update calls
	Redstone    bool // participates in signal propagation
	Brush       Brush
}

// Occludes reports whether the type hides the faces of adjacent blocks
func (t *BlockType) Occludes() bool {
	return t != nil && t.Shape == ShapeCube && !t.Transparent
}

// Registry holds every block type known to the engine.
// It is built once at startup and read-only afterwards.
type Registry struct {
	types [256]*BlockType
	names map[string]ID
}

// New creates a registry that only knows air
func New() *Registry {
	r := &Registry{names: make(map[string]ID)}
	r.types[Air] = &BlockType{ID: Air, Name: "air", Shape: ShapeNone, Transparent: true}
	r.names["air"] = Air
	return r
}

// Register adds a type. Ids and names must be unique.
func (r *Registry) Register(def *BlockType) error {
	if def.ID == Air {
		return fmt.Errorf("register %q: id 0 is reserved for air", def.Name)
	}
	if r.types[def.ID] != nil {
		return fmt.Errorf("register %q: id %d already used by %q", def.Name, def.ID, r.types[def.ID].Name)
	}
	if _, ok := r.names[def.Name]; ok {
		return fmt.Errorf("register %q: duplicate name", def.Name)
	}
	if def.Resistance == 0 {
		def.Resistance = 1
	}
	r.types[def.ID] = def
	r.names[def.Name] = def.ID
	return nil
}

// Type returns the type for id, or nil if unknown
func (r *Registry) Type(id ID) *BlockType {
	return r.types[id]
}

// Lookup returns the type registered under name
func (r *Registry) Lookup(name string) (*BlockType, bool) {
	id, ok := r.names[name]
	if !ok {
		return nil, false
	}
	return r.types[id], true
}

// MustLookup is Lookup for names known at compile time
func (r *Registry) MustLookup(name string) *BlockType {
	t, ok := r.Lookup(name)
	if !ok {
		panic("registry: unknown block " + name)
	}
	return t
}

// Len returns the number of registered types including air
func (r *Registry) Len() int {
	return len(r.names)
}
