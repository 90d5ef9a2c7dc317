package world

import (
	"testing"

	"blockworld/internal/registry"
)

// newTestWorld builds an active square of chunks with radius r around the
// origin chunk and a stone floor filling y in [0, floor].
func newTestWorld(t *testing.T, r, floor int) *Manager {
	t.Helper()
	m := NewManager(registry.NewDefault(), nil)
	var chunks []*Chunk
	for x := -r; x <= r; x++ {
		for z := -r; z <= r; z++ {
			c := m.Create(ChunkCoord{X: x, Z: z})
			for lx := 0; lx < ChunkSizeX; lx++ {
				for lz := 0; lz < ChunkSizeZ; lz++ {
					for y := 0; y <= floor; y++ {
						c.SetType(lx, y, lz, registry.Stone)
					}
				}
			}
			c.Cache()
			chunks = append(chunks, c)
		}
	}
	for _, c := range chunks {
		m.Activate(c)
	}
	m.Commit()
	return m
}

func mustSet(t *testing.T, m *Manager, x, y, z int, id registry.ID) *Block {
	t.Helper()
	b, err := m.SetBlock(x, y, z, id)
	if err != nil {
		t.Fatalf("SetBlock(%d,%d,%d,%d): %v", x, y, z, id, err)
	}
	return b
}

func blockLight(t *testing.T, m *Manager, x, y, z int) uint8 {
	t.Helper()
	c, idx := m.cell(x, y, z)
	if c == nil {
		t.Fatalf("cell %d,%d,%d not loaded", x, y, z)
	}
	return c.BlockLight(idx)
}

func power(t *testing.T, m *Manager, x, y, z int) uint8 {
	t.Helper()
	b := m.Block(x, y, z)
	if b == nil {
		t.Fatalf("no block at %d,%d,%d", x, y, z)
	}
	sc, ok := b.Behavior().(SignalConductor)
	if !ok {
		t.Fatalf("block at %d,%d,%d is not a conductor", x, y, z)
	}
	return sc.Power()
}
