package item

import "blockworld/internal/registry"

// MaxStackSize is the largest count a stackable stack may hold
const MaxStackSize = 64

// ItemStack represents a stack of items.
// A stack with positive Health is a single worn item and never merges.
type ItemStack struct {
	Type   registry.ID
	Count  int
	Health float32
}

// NewItemStack creates a new item stack
func NewItemStack(t registry.ID, count int) ItemStack {
	return ItemStack{
		Type:  t,
		Count: count,
	}
}

// NewSingle creates a one-off item carrying its own health
func NewSingle(t registry.ID, health float32) ItemStack {
	return ItemStack{
		Type:   t,
		Count:  1,
		Health: health,
	}
}

// GetMaxStackSize returns the maximum stack size for this item
func (s ItemStack) GetMaxStackSize() int {
	if !s.IsStackable() {
		return 1
	}
	return MaxStackSize
}

// IsStackable returns if the item can be stacked
func (s ItemStack) IsStackable() bool {
	return s.Health <= 0
}

// IsItemEqual checks if two stacks contain the same item type
func (s ItemStack) IsItemEqual(other ItemStack) bool {
	return s.Type == other.Type
}
