package entity

import (
	"blockworld/internal/registry"

	"github.com/go-gl/mathgl/mgl32"
)

// WorldSource is the view of the world entities collide with
type WorldSource interface {
	// Type returns the block type at a cell, air for empty cells
	Type(x, y, z int) *registry.BlockType
	// Loaded reports whether the cell belongs to a simulated chunk
	Loaded(x, y, z int) bool
}

// Entity interface
type Entity interface {
	Update(dt float64)
	Position() mgl32.Vec3
	IsDead() bool
	SetDead()
}
