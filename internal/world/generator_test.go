package world

import (
	"crypto/sha256"
	"testing"

	"blockworld/internal/registry"
)

func TestGeneratorsImplementInterface(t *testing.T) {
	var _ TerrainGenerator = NewGenerator(123, 48)
	var _ TerrainGenerator = NewFlatGenerator(10)
}

func TestFlatGeneratorPopulate(t *testing.T) {
	c := NewChunk(ChunkCoord{}, registry.NewDefault())
	g := NewFlatGenerator(5)
	g.PopulateChunk(c)

	if id := c.TypeID(0, 0, 0); id != registry.Bedrock {
		t.Errorf("expected bedrock at 0,0,0, got %v", id)
	}
	for y := 1; y < 5; y++ {
		if id := c.TypeID(0, y, 0); id != registry.Dirt {
			t.Errorf("expected dirt at 0,%d,0, got %v", y, id)
		}
	}
	if id := c.TypeID(0, 5, 0); id != registry.Grass {
		t.Errorf("expected grass at 0,5,0, got %v", id)
	}
	if id := c.TypeID(0, 6, 0); id != registry.Air {
		t.Errorf("expected air at 0,6,0, got %v", id)
	}
	if !c.Generated() || c.Count() != ChunkSizeX*ChunkSizeZ*6 {
		t.Errorf("generated=%v count=%d", c.Generated(), c.Count())
	}
}

// hashChunkBlocks computes a SHA-256 hash of all cells in a chunk
func hashChunkBlocks(c *Chunk) [32]byte {
	h := sha256.New()
	for idx := 0; idx < ChunkVolume; idx++ {
		h.Write([]byte{byte(c.TypeAt(idx))})
	}
	var result [32]byte
	copy(result[:], h.Sum(nil))
	return result
}

func TestGeneratorDeterminism(t *testing.T) {
	reg := registry.NewDefault()
	for _, coord := range []ChunkCoord{{0, 0}, {1, 0}, {0, 1}, {-1, -1}, {7, -3}} {
		c1 := NewChunk(coord, reg)
		NewGenerator(12345, 48).PopulateChunk(c1)
		c2 := NewChunk(coord, reg)
		NewGenerator(12345, 48).PopulateChunk(c2)
		if hashChunkBlocks(c1) != hashChunkBlocks(c2) {
			t.Errorf("chunk %v not deterministic", coord)
		}
	}
}

func TestGeneratorColumns(t *testing.T) {
	reg := registry.NewDefault()
	g := NewGenerator(1337, 48)
	c := NewChunk(ChunkCoord{X: 2, Z: -5}, reg)
	g.PopulateChunk(c)
	ox, oz := c.Coord.Origin()
	for x := 0; x < ChunkSizeX; x++ {
		for z := 0; z < ChunkSizeZ; z++ {
			if c.TypeID(x, 0, z) != registry.Bedrock {
				t.Fatalf("column %d,%d lacks bedrock", x, z)
			}
			h := g.HeightAt(ox+x, oz+z)
			if h < 1 || h >= ChunkSizeY-8 {
				t.Fatalf("height %d out of range", h)
			}
			if c.TypeID(x, h, z) == registry.Air {
				t.Fatalf("surface at %d,%d,%d is empty", x, h, z)
			}
			if c.TypeID(x, 1, z) == registry.Air {
				t.Fatalf("hole at the bottom of %d,%d", x, z)
			}
		}
	}
}

func TestHeightIsContinuous(t *testing.T) {
	g := NewGenerator(99, 48)
	prev := g.HeightAt(-200, 40)
	for x := -199; x < 200; x++ {
		h := g.HeightAt(x, 40)
		if d := h - prev; d > 6 || d < -6 {
			t.Fatalf("height jumps by %d at x=%d", d, x)
		}
		prev = h
	}
}

func TestTreeSpacing(t *testing.T) {
	reg := registry.NewDefault()
	g := NewGenerator(4242, 48)
	for x := -3; x <= 3; x++ {
		for z := -3; z <= 3; z++ {
			g.PopulateChunk(NewChunk(ChunkCoord{X: x, Z: z}, reg))
		}
	}
	trees := g.Snapshot().Trees
	for i := range trees {
		for j := i + 1; j < len(trees); j++ {
			dx, dz := trees[i].X-trees[j].X, trees[i].Z-trees[j].Z
			if dx*dx+dz*dz < treeSpacing*treeSpacing {
				t.Fatalf("trees %v and %v closer than %d", trees[i], trees[j], treeSpacing)
			}
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	reg := registry.NewDefault()
	g := NewGenerator(7, 48)
	a := NewChunk(ChunkCoord{X: 1, Z: 1}, reg)
	g.PopulateChunk(a)
	level := g.Snapshot()
	if len(level.Heights) == 0 || len(level.Humidity) != len(level.Heights) {
		t.Fatalf("snapshot anchors: %d heights, %d humidity", len(level.Heights), len(level.Humidity))
	}

	// a fresh generator reproduces the terrain from the recorded anchors
	other := NewGenerator(7, 48)
	other.Restore(level)
	if other.Spawn() != g.Spawn() {
		t.Fatalf("spawn not restored")
	}
	for x := 16; x < 32; x++ {
		if other.HeightAt(x, 20) != g.HeightAt(x, 20) {
			t.Fatalf("height differs at %d after restore", x)
		}
	}
	if got := len(other.Snapshot().Trees); got != len(level.Trees) {
		t.Fatalf("restored %d trees, want %d", got, len(level.Trees))
	}
}

func TestBiomeSelection(t *testing.T) {
	cases := []struct {
		h, hum, temp float64
		want         *Biome
	}{
		{90, 50, 50, BiomeMountains},
		{60, 20, 80, BiomeDesert},
		{60, 50, 10, BiomeTundra},
		{60, 80, 50, BiomeForest},
		{60, 40, 50, BiomePlains},
	}
	for _, tc := range cases {
		if got := pickBiome(tc.h, tc.hum, tc.temp); got != tc.want {
			t.Errorf("pickBiome(%v,%v,%v) = %s, want %s", tc.h, tc.hum, tc.temp, got.Name, tc.want.Name)
		}
	}
}
