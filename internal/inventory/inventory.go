package inventory

import (
	"blockworld/internal/item"
)

const (
	ContainerSize = 27 // chest
	CraftingSize  = 9  // 3x3 crafting surface
)

// Inventory is a fixed number of item slots owned by a block
type Inventory struct {
	slots []*item.ItemStack
}

func New(size int) *Inventory {
	return &Inventory{slots: make([]*item.ItemStack, size)}
}

// Len returns the number of slots
func (inv *Inventory) Len() int {
	return len(inv.slots)
}

// GetItem returns the item stack at index, nil for empty or out of range
func (inv *Inventory) GetItem(index int) *item.ItemStack {
	if index >= 0 && index < len(inv.slots) {
		return inv.slots[index]
	}
	return nil
}

// SetItem sets the item stack at index. Empty stacks clear the slot.
func (inv *Inventory) SetItem(index int, stack *item.ItemStack) {
	if index < 0 || index >= len(inv.slots) {
		return
	}
	if stack != nil && stack.Count <= 0 {
		stack = nil
	}
	inv.slots[index] = stack
}

// AddItem attempts to add an item stack to the inventory.
// Returns true if successful (fully added), false if failed (inventory full).
// Updates the passed stack's count if partially added.
func (inv *Inventory) AddItem(stack *item.ItemStack) bool {
	if stack == nil || stack.Count == 0 {
		return false
	}

	// 1. Try to merge with existing stacks
	if stack.IsStackable() {
		for _, existing := range inv.slots {
			if existing == nil || !existing.IsStackable() || !existing.IsItemEqual(*stack) {
				continue
			}
			space := existing.GetMaxStackSize() - existing.Count
			if space <= 0 {
				continue
			}
			toAdd := min(stack.Count, space)
			existing.Count += toAdd
			stack.Count -= toAdd
			if stack.Count == 0 {
				return true
			}
		}
	}

	// 2. Place in empty slots
	for stack.Count > 0 {
		emptySlot := inv.GetFirstEmptyStack()
		if emptySlot < 0 {
			return false
		}
		toAdd := min(stack.Count, stack.GetMaxStackSize())
		placed := *stack
		placed.Count = toAdd
		inv.slots[emptySlot] = &placed
		stack.Count -= toAdd
	}

	return true
}

// Take removes up to n items from slot index and returns them
func (inv *Inventory) Take(index, n int) *item.ItemStack {
	existing := inv.GetItem(index)
	if existing == nil || n <= 0 {
		return nil
	}
	taken := *existing
	taken.Count = min(n, existing.Count)
	existing.Count -= taken.Count
	if existing.Count == 0 {
		inv.slots[index] = nil
	}
	return &taken
}

// GetFirstEmptyStack returns the index of the first empty slot
func (inv *Inventory) GetFirstEmptyStack() int {
	for i := range inv.slots {
		if inv.slots[i] == nil {
			return i
		}
	}
	return -1
}

// HasItem checks if the inventory contains a specific item type
func (inv *Inventory) HasItem(t item.ItemStack) bool {
	for _, slot := range inv.slots {
		if slot != nil && slot.IsItemEqual(t) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether every slot is empty
func (inv *Inventory) IsEmpty() bool {
	return inv.count() == 0
}

func (inv *Inventory) count() int {
	n := 0
	for _, slot := range inv.slots {
		if slot != nil {
			n++
		}
	}
	return n
}

// Drain empties the inventory and returns everything it held
func (inv *Inventory) Drain() []item.ItemStack {
	var out []item.ItemStack
	for i, slot := range inv.slots {
		if slot != nil {
			out = append(out, *slot)
			inv.slots[i] = nil
		}
	}
	return out
}
