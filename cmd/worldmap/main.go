// Command worldmap renders a top-down image of a world: the top block of
// every column, shaded by height. Saved chunks are read from -dir when
// present, the rest is generated from the seed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"runtime"
	"sync"

	"blockworld/internal/config"
	"blockworld/internal/registry"
	"blockworld/internal/storage"
	"blockworld/internal/world"

	"github.com/alitto/pond/v2"
	"github.com/xlab/closer"
	xdraw "golang.org/x/image/draw"
)

var colors = map[registry.ID]color.RGBA{
	registry.Air:          {0, 0, 0, 255},
	registry.Stone:        {125, 125, 125, 255},
	registry.Dirt:         {134, 96, 67, 255},
	registry.Grass:        {95, 159, 53, 255},
	registry.Sand:         {219, 207, 163, 255},
	registry.Gravel:       {136, 126, 126, 255},
	registry.Bedrock:      {60, 60, 60, 255},
	registry.Log:          {102, 81, 51, 255},
	registry.Leaves:       {60, 120, 40, 255},
	registry.TallGrass:    {110, 170, 70, 255},
	registry.Flower:       {200, 60, 60, 255},
	registry.Planks:       {162, 130, 78, 255},
	registry.Glass:        {200, 230, 240, 255},
	registry.Glowstone:    {250, 220, 120, 255},
	registry.Torch:        {255, 200, 80, 255},
	registry.RedstoneWire: {170, 20, 20, 255},
	registry.Snow:         {240, 250, 250, 255},
	registry.Cobblestone:  {110, 110, 110, 255},
	registry.SpruceLog:    {70, 52, 30, 255},
	registry.SpruceLeaves: {50, 90, 60, 255},
	registry.Cactus:       {80, 130, 40, 255},
}

var fallback = color.RGBA{255, 0, 255, 255}

// mapper yields the chunks of one world, stored or freshly generated
type mapper struct {
	reg   *registry.Registry
	gen   *world.Generator
	store *storage.Provider // nil when only generating
}

func (m *mapper) chunk(coord world.ChunkCoord) (*world.Chunk, error) {
	c := world.NewChunk(coord, m.reg)
	if m.store != nil {
		err := m.store.LoadChunk(c)
		if err == nil && c.Generated() {
			return c, nil
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		c = world.NewChunk(coord, m.reg)
	}
	m.gen.PopulateChunk(c)
	return c, nil
}

// render draws the chunks within radius of center, one pixel per column,
// generating them on workers goroutines
func (m *mapper) render(center world.ChunkCoord, radius, workers int) (*image.RGBA, error) {
	side := (2*radius + 1) * world.ChunkSizeX
	img := image.NewRGBA(image.Rect(0, 0, side, side))

	pool := pond.NewPool(max(workers, 1))
	var (
		mu   sync.Mutex
		errs []error
	)
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			coord := world.ChunkCoord{X: center.X + dx, Z: center.Z + dz}
			px := (dx + radius) * world.ChunkSizeX
			pz := (dz + radius) * world.ChunkSizeZ
			pool.Submit(func() {
				c, err := m.chunk(coord)
				if err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
					return
				}
				paintChunk(img, c, px, pz)
			})
		}
	}
	pool.StopAndWait()
	return img, errors.Join(errs...)
}

// paintChunk writes the columns of c at pixel offset px, pz. Chunks own
// disjoint pixel rectangles.
func paintChunk(img *image.RGBA, c *world.Chunk, px, pz int) {
	for x := range world.ChunkSizeX {
		for z := range world.ChunkSizeZ {
			y := c.Highest(x, z)
			id := registry.Air
			if y >= 0 {
				id = c.TypeID(x, y, z)
			}
			img.SetRGBA(px+x, pz+z, shade(id, y))
		}
	}
}

// shade darkens low columns and brightens high ones around y=64
func shade(id registry.ID, y int) color.RGBA {
	col, ok := colors[id]
	if !ok {
		col = fallback
	}
	f := 0.75 + 0.5*float64(max(0, min(y, world.ChunkSizeY)))/float64(world.ChunkSizeY)
	scale := func(v uint8) uint8 { return uint8(min(255, float64(v)*f)) }
	return color.RGBA{scale(col.R), scale(col.G), scale(col.B), 255}
}

func writePNG(path string, img image.Image, scale int) error {
	if scale > 1 {
		b := img.Bounds()
		big := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		xdraw.NearestNeighbor.Scale(big, big.Bounds(), img, b, xdraw.Src, nil)
		img = big
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func main() {
	defaults := config.Default()
	var (
		seed   = flag.Int64("seed", defaults.Seed(), "world seed for generated chunks")
		sea    = flag.Int("sea", defaults.SeaLevel(), "sea level")
		dir    = flag.String("dir", "", "world save directory to read chunks and level from")
		cx     = flag.Int("x", 0, "center chunk x")
		cz     = flag.Int("z", 0, "center chunk z")
		radius = flag.Int("radius", 8, "radius in chunks")
		scale  = flag.Int("scale", 2, "pixels per column")
		out    = flag.String("out", "worldmap.png", "output image")
	)
	flag.Parse()
	defer closer.Close()

	m := &mapper{reg: registry.NewDefault(), gen: world.NewGenerator(*seed, *sea)}
	if *dir != "" {
		store, err := storage.Open(*dir)
		if err != nil {
			closer.Fatalln(err)
		}
		closer.Bind(func() { store.Close() })
		m.store = store
		switch level, err := store.LoadLevel(); {
		case err == nil:
			m.gen.Restore(level)
		case errors.Is(err, storage.ErrNotFound):
		default:
			closer.Fatalln(err)
		}
	}

	img, err := m.render(world.ChunkCoord{X: *cx, Z: *cz}, max(*radius, 0), runtime.NumCPU())
	if err != nil {
		closer.Fatalln(err)
	}
	if err := writePNG(*out, img, *scale); err != nil {
		closer.Fatalln(err)
	}
	log.Printf("worldmap: wrote %s", *out)
}
