package entity

import (
	"math"

	"blockworld/internal/item"
	"blockworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Item entity dimensions
	ItemEntityWidth  = 0.25
	ItemEntityHeight = 0.25

	// Stacking search range expansion
	StackSearchExpandX = 0.5
	StackSearchExpandZ = 0.5

	// StackSearchInterval is the number of updates between merge searches
	// while the item stays inside one cell
	StackSearchInterval = 25

	// DespawnAge is the lifetime of a dropped item in seconds
	DespawnAge = 300.0

	// DefaultPickupDelay is the time before a fresh drop can be collected
	DefaultPickupDelay = 0.5

	gravity  = 18.0
	drag     = 0.98
	friction = 0.6
)

// NearbyItemsFunc returns the items whose position lies within the given
// half-extents of a center point
type NearbyItemsFunc func(center mgl32.Vec3, rangeX, rangeY, rangeZ float32) []*ItemEntity

// ItemEntity is a stack lying in the world, typically spilled from a
// smashed container
type ItemEntity struct {
	Stack       item.ItemStack
	Pos         mgl32.Vec3
	Vel         mgl32.Vec3
	World       WorldSource
	Age         float64
	OnGround    bool
	Dead        bool
	PickupDelay float64

	ticksExisted                       int
	prevBlockX, prevBlockY, prevBlockZ int

	// GetNearbyItems is set by the owning Manager for merge queries
	GetNearbyItems NearbyItemsFunc
}

// NewItemEntity creates a drop at pos moving with vel
func NewItemEntity(w WorldSource, pos, vel mgl32.Vec3, stack item.ItemStack) *ItemEntity {
	bx, by, bz := cellOf(pos)
	return &ItemEntity{
		Stack:       stack,
		Pos:         pos,
		Vel:         vel,
		World:       w,
		PickupDelay: DefaultPickupDelay,
		prevBlockX:  bx,
		prevBlockY:  by,
		prevBlockZ:  bz,
	}
}

func cellOf(p mgl32.Vec3) (int, int, int) {
	return int(math.Floor(float64(p.X()))),
		int(math.Floor(float64(p.Y()))),
		int(math.Floor(float64(p.Z())))
}

// Update advances the item by dt seconds. Items inside unloaded chunks are
// frozen until their chunk comes back.
func (e *ItemEntity) Update(dt float64) {
	if e.Dead {
		return
	}
	bx, by, bz := cellOf(e.Pos)
	if world.InBounds(0, by, 0) && !e.World.Loaded(bx, by, bz) {
		return
	}

	e.Age += dt
	if e.PickupDelay > 0 {
		e.PickupDelay -= dt
	}
	if e.Age >= DespawnAge {
		e.Dead = true
		return
	}

	e.Vel = e.Vel.Sub(mgl32.Vec3{0, gravity * float32(dt), 0})
	e.Vel = e.Vel.Mul(float32(math.Pow(drag, dt*20)))
	delta := e.Vel.Mul(float32(dt))

	// resolve one axis at a time
	if e.collides(e.Pos.X()+delta.X(), e.Pos.Y(), e.Pos.Z()) {
		e.Vel[0] = 0
	} else {
		e.Pos[0] += delta.X()
	}

	if e.collides(e.Pos.X(), e.Pos.Y()+delta.Y(), e.Pos.Z()) {
		if e.Vel.Y() < 0 {
			e.OnGround = true
		}
		e.Vel[1] = 0
	} else {
		e.Pos[1] += delta.Y()
		e.OnGround = false
	}

	if e.collides(e.Pos.X(), e.Pos.Y(), e.Pos.Z()+delta.Z()) {
		e.Vel[2] = 0
	} else {
		e.Pos[2] += delta.Z()
	}

	if e.OnGround {
		f := float32(math.Pow(friction, dt*20))
		e.Vel[0] *= f
		e.Vel[2] *= f
	}

	e.ticksExisted++

	cx, cy, cz := cellOf(e.Pos)
	crossed := cx != e.prevBlockX || cy != e.prevBlockY || cz != e.prevBlockZ
	e.prevBlockX, e.prevBlockY, e.prevBlockZ = cx, cy, cz

	if e.GetNearbyItems != nil && (crossed || e.ticksExisted%StackSearchInterval == 0) {
		e.searchForOtherItemsNearby()
	}
}

func (e *ItemEntity) searchForOtherItemsNearby() {
	rangeX := float32(ItemEntityWidth/2 + StackSearchExpandX)
	rangeY := float32(ItemEntityHeight / 2)
	rangeZ := float32(ItemEntityWidth/2 + StackSearchExpandZ)

	for _, other := range e.GetNearbyItems(e.Pos, rangeX, rangeY, rangeZ) {
		if e.combineItems(other) {
			return
		}
	}
}

// combineItems merges the smaller of two equal stacks into the larger.
// It returns true when e was absorbed.
func (e *ItemEntity) combineItems(other *ItemEntity) bool {
	if other == e || other.Dead || e.Dead {
		return false
	}
	this, that := e.Stack, other.Stack
	if !this.IsStackable() || !that.IsStackable() || !this.IsItemEqual(that) {
		return false
	}
	if that.Count < this.Count {
		return other.combineItems(e)
	}
	if this.Count+that.Count > this.GetMaxStackSize() {
		return false
	}

	other.Stack.Count += this.Count
	other.PickupDelay = max(other.PickupDelay, e.PickupDelay)
	other.Age = min(other.Age, e.Age)
	e.SetDead()
	return true
}

// collides tests the item box at (x, y, z) against solid cells
func (e *ItemEntity) collides(x, y, z float32) bool {
	const r = ItemEntityWidth / 2

	minX := int(math.Floor(float64(x - r)))
	maxX := int(math.Floor(float64(x + r)))
	minY := int(math.Floor(float64(y)))
	maxY := int(math.Floor(float64(y + ItemEntityHeight)))
	minZ := int(math.Floor(float64(z - r)))
	maxZ := int(math.Floor(float64(z + r)))

	for bx := minX; bx <= maxX; bx++ {
		for by := minY; by <= maxY; by++ {
			for bz := minZ; bz <= maxZ; bz++ {
				if by < 0 {
					return true
				}
				if t := e.World.Type(bx, by, bz); t != nil && t.Solid {
					return true
				}
			}
		}
	}
	return false
}

func (e *ItemEntity) Position() mgl32.Vec3 { return e.Pos }

func (e *ItemEntity) IsDead() bool { return e.Dead }

func (e *ItemEntity) SetDead() { e.Dead = true }

// CanPickup reports whether the item may be collected now
func (e *ItemEntity) CanPickup() bool {
	return !e.Dead && e.PickupDelay <= 0
}
