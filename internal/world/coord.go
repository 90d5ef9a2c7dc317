package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Chunk dimensions
	ChunkSizeX = 16
	ChunkSizeY = 128
	ChunkSizeZ = 16

	ChunkVolume = ChunkSizeX * ChunkSizeY * ChunkSizeZ

	// RegionSize is the width of a region in chunks along X and Z
	RegionSize = 16
)

// Side names one of the six cube faces
type Side uint8

const (
	SideTop Side = iota
	SideBottom
	SideLeft  // -X
	SideRight // +X
	SideFront // +Z
	SideBack  // -Z
)

// Sides lists every side in bit order
var Sides = [6]Side{SideTop, SideBottom, SideLeft, SideRight, SideFront, SideBack}

// HorizontalSides are the sides along which chunks link to each other
var HorizontalSides = [4]Side{SideLeft, SideRight, SideFront, SideBack}

var sideOffsets = [6][3]int{
	SideTop:    {0, 1, 0},
	SideBottom: {0, -1, 0},
	SideLeft:   {-1, 0, 0},
	SideRight:  {1, 0, 0},
	SideFront:  {0, 0, 1},
	SideBack:   {0, 0, -1},
}

// Opposite returns the side facing the other way
func (s Side) Opposite() Side {
	return s ^ 1
}

// Offset returns the unit step toward the side
func (s Side) Offset() (dx, dy, dz int) {
	o := sideOffsets[s]
	return o[0], o[1], o[2]
}

// Normal returns the outward unit normal of the side
func (s Side) Normal() mgl32.Vec3 {
	o := sideOffsets[s]
	return mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}
}

// Bit returns the side's bit in a FaceMask
func (s Side) Bit() FaceMask {
	return 1 << s
}

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideFront:
		return "front"
	case SideBack:
		return "back"
	}
	return "invalid"
}

// FaceMask is a set of sides, one bit per side
type FaceMask uint8

const AllFaces FaceMask = 1<<6 - 1

// Has reports whether side s is in the mask
func (m FaceMask) Has(s Side) bool {
	return m&s.Bit() != 0
}

// Count returns the number of sides in the mask
func (m FaceMask) Count() int {
	n := 0
	for v := m & AllFaces; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// ChunkCoord addresses a chunk column in chunk units
type ChunkCoord struct {
	X, Z int
}

// ChunkCoordAt returns the coordinate of the chunk containing world column (x, z)
func ChunkCoordAt(x, z int) ChunkCoord {
	return ChunkCoord{X: floorDiv(x, ChunkSizeX), Z: floorDiv(z, ChunkSizeZ)}
}

// ChunkCoordFor returns the chunk containing a world position
func ChunkCoordFor(pos mgl32.Vec3) ChunkCoord {
	return ChunkCoordAt(int(math.Floor(float64(pos.X()))), int(math.Floor(float64(pos.Z()))))
}

// Neighbor returns the adjacent chunk coordinate toward a horizontal side
func (c ChunkCoord) Neighbor(s Side) ChunkCoord {
	dx, _, dz := s.Offset()
	return ChunkCoord{X: c.X + dx, Z: c.Z + dz}
}

// Origin returns the world coordinate of the chunk's minimum corner
func (c ChunkCoord) Origin() (x, z int) {
	return c.X * ChunkSizeX, c.Z * ChunkSizeZ
}

// Region returns the region holding the chunk and the chunk's slot within it
func (c ChunkCoord) Region() (region RegionCoord, lx, lz int) {
	region = RegionCoord{X: floorDiv(c.X, RegionSize), Z: floorDiv(c.Z, RegionSize)}
	return region, mod(c.X, RegionSize), mod(c.Z, RegionSize)
}

// DistSq returns the squared distance in chunks
func (c ChunkCoord) DistSq(o ChunkCoord) int {
	dx, dz := c.X-o.X, c.Z-o.Z
	return dx*dx + dz*dz
}

// RegionCoord addresses a region in region units
type RegionCoord struct {
	X, Z int
}

// Key returns the bijective pairing of the region coordinates
func (r RegionCoord) Key() uint64 {
	return Pair(r.X, r.Z)
}

// Index returns the cell index of local coordinates in chunk scan order:
// y runs fastest, then z, then x.
func Index(x, y, z int) int {
	return y + ChunkSizeY*(z+ChunkSizeZ*x)
}

// Position is the inverse of Index
func Position(index int) (x, y, z int) {
	y = index % ChunkSizeY
	index /= ChunkSizeY
	z = index % ChunkSizeZ
	x = index / ChunkSizeZ
	return x, y, z
}

// InBounds reports whether local coordinates fall inside a chunk
func InBounds(x, y, z int) bool {
	return x >= 0 && x < ChunkSizeX && y >= 0 && y < ChunkSizeY && z >= 0 && z < ChunkSizeZ
}

// floorDiv divides rounding toward negative infinity
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns a non-negative remainder
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
