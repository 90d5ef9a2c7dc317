package inventory

import (
	"testing"

	"blockworld/internal/item"
	"blockworld/internal/registry"
)

func TestAddItemMergesThenFills(t *testing.T) {
	inv := New(3)
	first := item.NewItemStack(registry.Dirt, 60)
	if !inv.AddItem(&first) {
		t.Fatalf("first add should fit")
	}

	more := item.NewItemStack(registry.Dirt, 10)
	if !inv.AddItem(&more) {
		t.Fatalf("second add should fit")
	}
	if got := inv.GetItem(0).Count; got != 64 {
		t.Fatalf("slot 0: got %d, want 64", got)
	}
	if got := inv.GetItem(1).Count; got != 6 {
		t.Fatalf("slot 1: got %d, want 6", got)
	}

	overflow := item.NewItemStack(registry.Stone, 200)
	if inv.AddItem(&overflow) {
		t.Fatalf("expected inventory full")
	}
	if overflow.Count != 200-64 {
		t.Fatalf("remaining: got %d, want %d", overflow.Count, 200-64)
	}
}

func TestSingleItemsNeverMerge(t *testing.T) {
	inv := New(CraftingSize)
	a := item.NewSingle(registry.Torch, 0.5)
	b := item.NewSingle(registry.Torch, 0.25)
	inv.AddItem(&a)
	inv.AddItem(&b)
	if inv.GetItem(0) == nil || inv.GetItem(1) == nil {
		t.Fatalf("expected two separate slots")
	}
	if inv.GetItem(1).Health != 0.25 {
		t.Fatalf("health not preserved")
	}
}

func TestTakeAndDrain(t *testing.T) {
	inv := New(ContainerSize)
	s := item.NewItemStack(registry.Sand, 5)
	inv.AddItem(&s)

	got := inv.Take(0, 3)
	if got == nil || got.Count != 3 || inv.GetItem(0).Count != 2 {
		t.Fatalf("take: got %+v, left %+v", got, inv.GetItem(0))
	}
	if inv.Take(0, 5).Count != 2 || inv.GetItem(0) != nil {
		t.Fatalf("take rest should clear the slot")
	}
	if !inv.IsEmpty() {
		t.Fatalf("expected empty")
	}

	s = item.NewItemStack(registry.Sand, 1)
	inv.SetItem(4, &s)
	if items := inv.Drain(); len(items) != 1 || !inv.IsEmpty() {
		t.Fatalf("drain: %v", items)
	}
}
