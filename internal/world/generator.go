package world

import (
	"math"
	"sort"
	"sync"

	"blockworld/internal/registry"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"
)

// TerrainGenerator fills a freshly created chunk
type TerrainGenerator interface {
	PopulateChunk(c *Chunk)
	HeightAt(worldX, worldZ int) int
}

const (
	// anchorSpacing is the distance in blocks between climate anchors
	anchorSpacing = 64
	minHeight     = 40
	maxHeight     = 90
	treeSpacing   = 5
)

type anchorKey struct{ x, z int32 }

// Generator handles terrain generation logic.
// Climate is sampled at anchors every anchorSpacing blocks and interpolated
// in between; anchors and tree placements are recorded so they survive a reload.
type Generator struct {
	seed     int64
	seaLevel int

	height      opensimplex.Noise
	detail      opensimplex.Noise
	humidity    opensimplex.Noise
	temperature opensimplex.Noise

	mu           sync.Mutex
	heights      map[anchorKey]int32
	humid        map[anchorKey]int32
	temp         map[anchorKey]int32
	trees        map[ChunkCoord][]TreeRecord
	spawn        [2]mgl32.Vec3
	spawnDefined bool
}

// NewGenerator creates a new generator for seed
func NewGenerator(seed int64, seaLevel int) *Generator {
	return &Generator{
		seed:        seed,
		seaLevel:    seaLevel,
		height:      opensimplex.NewNormalized(seed),
		detail:      opensimplex.NewNormalized(seed + 1),
		humidity:    opensimplex.NewNormalized(seed + 2),
		temperature: opensimplex.NewNormalized(seed + 3),
		heights:     make(map[anchorKey]int32),
		humid:       make(map[anchorKey]int32),
		temp:        make(map[anchorKey]int32),
		trees:       make(map[ChunkCoord][]TreeRecord),
	}
}

// anchor returns the recorded value at an anchor, sampling the noise the first time
func (g *Generator) anchor(m map[anchorKey]int32, k anchorKey, sample func(x, z float64) float64) int32 {
	if v, ok := m[k]; ok {
		return v
	}
	v := int32(math.Round(sample(float64(k.x)*anchorSpacing, float64(k.z)*anchorSpacing)))
	m[k] = v
	return v
}

func (g *Generator) sampleHeight(x, z float64) float64 {
	n := octaveNoise2D(g.height, x/512, z/512, 3, 0.5, 2.0)
	return minHeight + n*(maxHeight-minHeight)
}

func (g *Generator) sampleHumidity(x, z float64) float64 {
	return 100 * octaveNoise2D(g.humidity, x/900, z/900, 2, 0.5, 2.0)
}

func (g *Generator) sampleTemperature(x, z float64) float64 {
	return 100 * octaveNoise2D(g.temperature, x/1100, z/1100, 2, 0.5, 2.0)
}

// interpolate bilinearly blends the four anchors around a column.
// Callers hold g.mu.
func (g *Generator) interpolate(m map[anchorKey]int32, x, z int, sample func(x, z float64) float64) float64 {
	ax, az := floorDiv(x, anchorSpacing), floorDiv(z, anchorSpacing)
	tx := float64(mod(x, anchorSpacing)) / anchorSpacing
	tz := float64(mod(z, anchorSpacing)) / anchorSpacing
	v00 := float64(g.anchor(m, anchorKey{int32(ax), int32(az)}, sample))
	v10 := float64(g.anchor(m, anchorKey{int32(ax + 1), int32(az)}, sample))
	v01 := float64(g.anchor(m, anchorKey{int32(ax), int32(az + 1)}, sample))
	v11 := float64(g.anchor(m, anchorKey{int32(ax + 1), int32(az + 1)}, sample))
	return lerp(lerp(v00, v10, tx), lerp(v01, v11, tx), tz)
}

// climate returns height, humidity and temperature at a column
func (g *Generator) climate(x, z int) (height, humidity, temperature float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	height = g.interpolate(g.heights, x, z, g.sampleHeight)
	humidity = g.interpolate(g.humid, x, z, g.sampleHumidity)
	temperature = g.interpolate(g.temp, x, z, g.sampleTemperature)
	return height, humidity, temperature
}

// HeightAt computes world surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	h, _, _ := g.climate(worldX, worldZ)
	d := octaveNoise2D(g.detail, float64(worldX)/24, float64(worldZ)/24, 2, 0.5, 2.0)
	height := int(math.Floor(h + (d-0.5)*8))
	return max(1, min(height, ChunkSizeY-12))
}

// BiomeAt returns the biome of a column
func (g *Generator) BiomeAt(worldX, worldZ int) *Biome {
	h, hum, temp := g.climate(worldX, worldZ)
	return pickBiome(h, hum, temp)
}

// PopulateChunk fills a chunk with terrain, plants and trees.
func (g *Generator) PopulateChunk(c *Chunk) {
	ox, oz := c.Coord.Origin()
	for lx := range ChunkSizeX {
		for lz := range ChunkSizeZ {
			wx, wz := ox+lx, oz+lz
			height := g.HeightAt(wx, wz)
			biome := g.BiomeAt(wx, wz)

			c.SetType(lx, 0, lz, registry.Bedrock)
			for y := 1; y < height; y++ {
				id := registry.Stone
				if y >= height-3 {
					id = biome.FillerBlock
				}
				c.SetType(lx, y, lz, id)
			}
			top := biome.TopBlock
			if top == registry.Grass && height < g.seaLevel {
				top = registry.Sand
			}
			if biome == BiomeMountains && height > 84 {
				top = registry.Snow
			}
			c.SetType(lx, height, lz, top)

			if top == registry.Grass && chance(wx, wz, g.seed, 1) < biome.PlantChance {
				plant := registry.TallGrass
				if chance(wx, wz, g.seed, 2) < 0.15 {
					plant = registry.Flower
				}
				c.SetType(lx, height+1, lz, plant)
			}
		}
	}
	g.plantTrees(c)
	c.SetGenerated(true)
}

// plantTrees places trees whose canopy fits inside the chunk and keeps at
// least treeSpacing blocks from every recorded tree.
func (g *Generator) plantTrees(c *Chunk) {
	ox, oz := c.Coord.Origin()
	for lx := 2; lx < ChunkSizeX-2; lx++ {
		for lz := 2; lz < ChunkSizeZ-2; lz++ {
			wx, wz := ox+lx, oz+lz
			biome := g.BiomeAt(wx, wz)
			if chance(wx, wz, g.seed, 3) >= biome.TreeChance {
				continue
			}
			y := c.Highest(lx, lz)
			if y < 0 || y+8 >= ChunkSizeY {
				continue
			}
			ground := c.TypeID(lx, y, lz)
			if ground == registry.TallGrass || ground == registry.Flower {
				c.SetType(lx, y, lz, registry.Air)
				y--
				ground = c.TypeID(lx, y, lz)
			}
			if ground != biome.TopBlock {
				continue
			}
			rec := TreeRecord{X: int32(wx), Y: int32(y + 1), Z: int32(wz), Species: biome.Species}
			if !g.recordTree(rec) {
				continue
			}
			buildTree(c, lx, y+1, lz, rec.Species, chance(wx, wz, g.seed, 4))
		}
	}
}

// recordTree adds a tree to the log unless another tree is too close
func (g *Generator) recordTree(t TreeRecord) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	home := ChunkCoordAt(int(t.X), int(t.Z))
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			for _, o := range g.trees[ChunkCoord{X: home.X + dx, Z: home.Z + dz}] {
				ddx, ddz := o.X-t.X, o.Z-t.Z
				if ddx*ddx+ddz*ddz < treeSpacing*treeSpacing {
					return false
				}
			}
		}
	}
	g.trees[home] = append(g.trees[home], t)
	return true
}

func buildTree(c *Chunk, x, y, z int, species uint8, r float64) {
	switch species {
	case SpeciesCactus:
		h := 2 + int(r*2)
		for i := 0; i < h; i++ {
			c.SetType(x, y+i, z, registry.Cactus)
		}
	case SpeciesSpruce:
		h := 5 + int(r*3)
		for i := 0; i < h; i++ {
			c.SetType(x, y+i, z, registry.SpruceLog)
		}
		for i := 2; i <= h; i++ {
			radius := 2 - (i-2)*2/(h-1)
			for dx := -radius; dx <= radius; dx++ {
				for dz := -radius; dz <= radius; dz++ {
					if (dx != 0 || dz != 0 || i == h) && abs(dx)+abs(dz) <= radius+1 {
						setIfEmpty(c, x+dx, y+i, z+dz, registry.SpruceLeaves)
					}
				}
			}
		}
	default:
		h := 4 + int(r*2)
		for i := 0; i < h; i++ {
			c.SetType(x, y+i, z, registry.Log)
		}
		for i := h - 2; i <= h+1; i++ {
			radius := 2
			if i >= h {
				radius = 1
			}
			for dx := -radius; dx <= radius; dx++ {
				for dz := -radius; dz <= radius; dz++ {
					if abs(dx) == radius && abs(dz) == radius && i >= h-1 {
						continue
					}
					setIfEmpty(c, x+dx, y+i, z+dz, registry.Leaves)
				}
			}
		}
	}
}

func setIfEmpty(c *Chunk, x, y, z int, id registry.ID) {
	if InBounds(x, y, z) && c.blocks[Index(x, y, z)] == nil {
		c.SetType(x, y, z, id)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Spawn returns the world spawn point, computing it on first use
func (g *Generator) Spawn() mgl32.Vec3 {
	g.mu.Lock()
	defined := g.spawnDefined
	s := g.spawn[0]
	g.mu.Unlock()
	if defined {
		return s
	}
	s = mgl32.Vec3{0.5, float32(g.HeightAt(0, 0) + 2), 0.5}
	g.mu.Lock()
	g.spawn[0], g.spawnDefined = s, true
	g.spawn[1] = s
	g.mu.Unlock()
	return s
}

// SetLastPosition records the viewer position saved with the level
func (g *Generator) SetLastPosition(p mgl32.Vec3) {
	g.mu.Lock()
	g.spawn[1] = p
	g.mu.Unlock()
}

// LastPosition returns the recorded viewer position
func (g *Generator) LastPosition() mgl32.Vec3 {
	g.Spawn()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.spawn[1]
}

func samplesOf(m map[anchorKey]int32) []SamplePoint {
	out := make([]SamplePoint, 0, len(m))
	for k, v := range m {
		out = append(out, SamplePoint{X: k.x, Z: k.z, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Z < out[j].Z
	})
	return out
}

// Snapshot returns the recorded climate anchors, tree log and spawn points
func (g *Generator) Snapshot() Level {
	g.Spawn()
	g.mu.Lock()
	defer g.mu.Unlock()
	l := Level{
		Spawn:       g.spawn,
		Heights:     samplesOf(g.heights),
		Humidity:    samplesOf(g.humid),
		Temperature: samplesOf(g.temp),
	}
	for _, ts := range g.trees {
		l.Trees = append(l.Trees, ts...)
	}
	sort.Slice(l.Trees, func(i, j int) bool {
		a, b := l.Trees[i], l.Trees[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.Y < b.Y
	})
	return l
}

// Restore replaces the recorded state with a saved level
func (g *Generator) Restore(l Level) {
	g.mu.Lock()
	defer g.mu.Unlock()
	load := func(m map[anchorKey]int32, pts []SamplePoint) {
		clear(m)
		for _, p := range pts {
			m[anchorKey{p.X, p.Z}] = p.Value
		}
	}
	load(g.heights, l.Heights)
	load(g.humid, l.Humidity)
	load(g.temp, l.Temperature)
	clear(g.trees)
	for _, t := range l.Trees {
		home := ChunkCoordAt(int(t.X), int(t.Z))
		g.trees[home] = append(g.trees[home], t)
	}
	g.spawn = l.Spawn
	g.spawnDefined = true
}

// FlatGenerator produces a flat world of a fixed height, used for tests and
// superflat worlds.
type FlatGenerator struct {
	height int
}

// NewFlatGenerator creates a flat generator with grass at height
func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{height: max(1, min(height, ChunkSizeY-1))}
}

// HeightAt returns the fixed surface height
func (g *FlatGenerator) HeightAt(worldX, worldZ int) int { return g.height }

// PopulateChunk fills bedrock, dirt and a grass surface
func (g *FlatGenerator) PopulateChunk(c *Chunk) {
	for x := range ChunkSizeX {
		for z := range ChunkSizeZ {
			c.SetType(x, 0, z, registry.Bedrock)
			for y := 1; y < g.height; y++ {
				c.SetType(x, y, z, registry.Dirt)
			}
			c.SetType(x, g.height, z, registry.Grass)
		}
	}
	c.SetGenerated(true)
}
