package entity

import (
	"testing"

	"blockworld/internal/item"
	"blockworld/internal/registry"
	"blockworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// floorWorld is solid below floorY and air above, loaded only for x < edge
type floorWorld struct {
	reg    *registry.Registry
	floorY int
	edge   int
}

func newFloorWorld(floorY int) *floorWorld {
	return &floorWorld{reg: registry.NewDefault(), floorY: floorY, edge: 1 << 30}
}

func (w *floorWorld) Type(x, y, z int) *registry.BlockType {
	if y < w.floorY {
		return w.reg.Type(registry.Stone)
	}
	return w.reg.Type(registry.Air)
}

func (w *floorWorld) Loaded(x, y, z int) bool { return x < w.edge }

func step(em *Manager, n int) {
	for i := 0; i < n; i++ {
		em.Update(0.05)
	}
}

func items(em *Manager) []*ItemEntity {
	var out []*ItemEntity
	for _, e := range em.GetAll() {
		if it, ok := e.(*ItemEntity); ok {
			out = append(out, it)
		}
	}
	return out
}

func TestItemFallsAndLands(t *testing.T) {
	w := newFloorWorld(10)
	em := NewManager(w, nil, 1)
	it := NewItemEntity(w, mgl32.Vec3{0.5, 20, 0.5}, mgl32.Vec3{}, item.NewItemStack(registry.Dirt, 1))
	em.Add(it)
	step(em, 80)
	if !it.OnGround {
		t.Fatalf("item still airborne at %v", it.Pos)
	}
	if y := it.Pos.Y(); y < 10 || y > 10.5 {
		t.Fatalf("item rests at y=%v, want on the floor at 10", y)
	}
}

func TestItemsMerge(t *testing.T) {
	tests := []struct {
		name      string
		a, b      item.ItemStack
		wantCount []int
	}{
		{"same type", item.NewItemStack(registry.Dirt, 3), item.NewItemStack(registry.Dirt, 5), []int{8}},
		{"different type", item.NewItemStack(registry.Dirt, 3), item.NewItemStack(registry.Sand, 5), []int{3, 5}},
		{"over stack limit", item.NewItemStack(registry.Dirt, 40), item.NewItemStack(registry.Dirt, 40), []int{40, 40}},
		{"worn singles", item.NewSingle(registry.Glass, 0.5), item.NewSingle(registry.Glass, 0.5), []int{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newFloorWorld(10)
			em := NewManager(w, nil, 1)
			em.Add(NewItemEntity(w, mgl32.Vec3{0.5, 10, 0.5}, mgl32.Vec3{}, tt.a))
			em.Add(NewItemEntity(w, mgl32.Vec3{0.7, 10, 0.5}, mgl32.Vec3{}, tt.b))
			step(em, StackSearchInterval+1)

			got := items(em)
			if len(got) != len(tt.wantCount) {
				t.Fatalf("%d items left, want %d", len(got), len(tt.wantCount))
			}
			for i, it := range got {
				if it.Stack.Count != tt.wantCount[i] {
					t.Fatalf("item %d count = %d, want %d", i, it.Stack.Count, tt.wantCount[i])
				}
			}
		})
	}
}

func TestItemDespawns(t *testing.T) {
	w := newFloorWorld(10)
	em := NewManager(w, nil, 1)
	em.Add(NewItemEntity(w, mgl32.Vec3{0.5, 10, 0.5}, mgl32.Vec3{}, item.NewItemStack(registry.Dirt, 1)))
	em.Update(DespawnAge - 1)
	if em.Len() != 1 {
		t.Fatalf("item despawned early")
	}
	em.Update(2)
	if em.Len() != 0 {
		t.Fatalf("item outlived its age")
	}
}

func TestItemFrozenInUnloadedChunk(t *testing.T) {
	w := newFloorWorld(10)
	w.edge = 0
	em := NewManager(w, nil, 1)
	it := NewItemEntity(w, mgl32.Vec3{4.5, 30, 0.5}, mgl32.Vec3{0, -1, 0}, item.NewItemStack(registry.Dirt, 1))
	em.Add(it)
	step(em, 20)
	if it.Pos != (mgl32.Vec3{4.5, 30, 0.5}) || it.Age != 0 {
		t.Fatalf("unloaded item moved to %v age %v", it.Pos, it.Age)
	}
}

func TestCollectHonoursPickupDelay(t *testing.T) {
	w := newFloorWorld(10)
	em := NewManager(w, nil, 1)
	em.Drop(mgl32.Vec3{0.5, 10, 0.5}, []item.ItemStack{
		item.NewItemStack(registry.Planks, 12),
		{},
	})
	if em.Len() != 1 {
		t.Fatalf("empty stacks should not spawn, got %d entities", em.Len())
	}
	if got := em.Collect(mgl32.Vec3{0.5, 10, 0.5}, 3); len(got) != 0 {
		t.Fatalf("collected before the pickup delay: %v", got)
	}
	step(em, 40)
	got := em.Collect(mgl32.Vec3{0.5, 10, 0.5}, 3)
	if len(got) != 1 || got[0].Count != 12 {
		t.Fatalf("collected %v", got)
	}
	em.Update(0.05)
	if em.Len() != 0 {
		t.Fatalf("collected item still tracked")
	}
}

func TestSmashedChestSpillsItems(t *testing.T) {
	m := world.NewManager(registry.NewDefault(), nil)
	c := m.Create(world.ChunkCoord{})
	for x := 0; x < world.ChunkSizeX; x++ {
		for z := 0; z < world.ChunkSizeZ; z++ {
			c.SetType(x, 0, z, registry.Stone)
		}
	}
	c.Cache()
	m.Activate(c)

	em := NewManager(m, nil, 7)
	m.SetDropHandler(em.Drop)

	b, err := m.SetBlock(4, 1, 4, registry.Chest)
	if err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	h := b.Behavior().(world.Holder)
	planks := item.NewItemStack(registry.Planks, 20)
	h.Inventory().AddItem(&planks)
	glass := item.NewSingle(registry.Glass, 0.25)
	h.Inventory().AddItem(&glass)
	m.Break(4, 1, 4)
	m.Commit()

	if em.Len() != 2 {
		t.Fatalf("spilled %d entities, want 2", em.Len())
	}
	step(em, 60)
	for _, it := range items(em) {
		if !it.OnGround || it.Pos.Y() < 1 || it.Pos.Y() > 1.5 {
			t.Fatalf("item %v did not settle on the floor: %v", it.Stack, it.Pos)
		}
	}
}
