package game

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"time"

	"blockworld/internal/config"
	"blockworld/internal/entity"
	"blockworld/internal/inventory"
	"blockworld/internal/item"
	"blockworld/internal/meshing"
	"blockworld/internal/physics"
	"blockworld/internal/profiling"
	"blockworld/internal/registry"
	"blockworld/internal/storage"
	"blockworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// slowFrame is the frame time above which the top profiler entries are logged
const slowFrame = 50 * time.Millisecond

const (
	// SatchelSize is the number of slots items are picked up into
	SatchelSize = 36
	// PickupRadius is the distance from the feet within which items are collected
	PickupRadius = 1.5
)

// ErrCellOccupied is returned when placing into a cell that is not empty
var ErrCellOccupied = errors.New("game: cell occupied")

// Session owns one open world and every service driving it. All methods run
// on the main thread.
type Session struct {
	Settings *config.Settings
	Prof     *profiling.Profiler
	Registry *registry.Registry
	Store    *storage.Provider
	World    *world.Manager
	Gen      *world.Generator
	Life     *world.Lifecycle
	Entities *entity.Manager
	Builder  *meshing.Builder
	Pipeline *meshing.Pipeline
	Satchel  *inventory.Inventory

	viewer mgl32.Vec3
	closed bool
}

// FrameStats reports the work done by one Update
type FrameStats struct {
	world.TickStats
	Lit      int
	Meshes   int
	Duration time.Duration
}

// NewSession opens the world in settings.SaveDir (in memory when empty) and
// wires the services. Chunk meshes are handed to up.
func NewSession(settings *config.Settings, up meshing.Uploader, prof *profiling.Profiler) (*Session, error) {
	var (
		store *storage.Provider
		err   error
	)
	if dir := settings.SaveDir(); dir != "" {
		store, err = storage.Open(dir)
	} else {
		store, err = storage.OpenMem()
	}
	if err != nil {
		return nil, err
	}

	gen := world.NewGenerator(settings.Seed(), settings.SeaLevel())
	level, err := store.LoadLevel()
	switch {
	case err == nil:
		gen.Restore(level)
	case errors.Is(err, storage.ErrNotFound):
		log.Printf("game: new world %s, seed %d", store.WorldID(), settings.Seed())
	default:
		store.Close()
		return nil, err
	}

	reg := registry.NewDefault()
	m := world.NewManager(reg, prof)
	m.Light.SetBudget(settings.LightPerFrame())

	ents := entity.NewManager(m, prof, settings.Seed())
	m.SetDropHandler(ents.Drop)

	builder := meshing.NewBuilder(m.Light, settings.SmoothLighting())
	workers := max(runtime.NumCPU()-1, 1)

	return &Session{
		Settings: settings,
		Prof:     prof,
		Registry: reg,
		Store:    store,
		World:    m,
		Gen:      gen,
		Life:     world.NewLifecycle(m, gen, store, settings),
		Entities: ents,
		Builder:  builder,
		Pipeline: meshing.NewPipeline(m, builder, up, prof, settings.MeshesPerFrame(), workers),
		Satchel:  inventory.New(SatchelSize),
		viewer:   gen.LastPosition(),
	}, nil
}

// Viewer returns the position the world is streamed around
func (s *Session) Viewer() mgl32.Vec3 { return s.viewer }

// Update runs one frame around viewer: chunk lifecycle, block updates, the
// commit point, entities, light and mesh rebuilds
func (s *Session) Update(dt float64, viewer mgl32.Vec3) FrameStats {
	var st FrameStats
	if s.closed {
		return st
	}
	start := time.Now()
	s.Prof.ResetFrame()
	s.viewer = viewer

	st.TickStats = s.Life.Tick(viewer)
	s.World.Update(float32(dt))
	s.World.Commit()
	s.Entities.Update(dt)
	st.Lit = s.World.Light.Tick()

	s.Builder.SetSmooth(s.Settings.SmoothLighting())
	s.Pipeline.SetBudget(s.Settings.MeshesPerFrame())
	st.Meshes = s.Pipeline.Rebuild(viewer)

	st.Duration = time.Since(start)
	if st.Duration > slowFrame {
		log.Printf("game: slow frame %v. Top tasks: %s", st.Duration, s.Prof.TopN(5))
	}
	return st
}

// Target returns the block the ray from eye along dir points at
func (s *Session) Target(eye, dir mgl32.Vec3) physics.RaycastResult {
	return physics.Raycast(eye, dir, physics.MinReachDistance, physics.MaxReachDistance, s.World)
}

// Dig damages the targeted block by amount and reports whether it broke
func (s *Session) Dig(eye, dir mgl32.Vec3, amount float32) bool {
	hit := s.Target(eye, dir)
	if !hit.Hit {
		return false
	}
	p := hit.HitPosition
	return s.World.Damage(p[0], p[1], p[2], amount)
}

// Place puts a block of type id against the targeted face
func (s *Session) Place(eye, dir mgl32.Vec3, id registry.ID) error {
	hit := s.Target(eye, dir)
	if !hit.Hit {
		return nil
	}
	p := hit.AdjacentPosition
	if t := s.World.Type(p[0], p[1], p[2]); t != nil && t.Shape != registry.ShapeNone {
		return fmt.Errorf("place at %d,%d,%d: %w", p[0], p[1], p[2], ErrCellOccupied)
	}
	_, err := s.World.SetBlock(p[0], p[1], p[2], id)
	return err
}

// Pickup moves the collectable items near feet into the satchel. Stacks
// that do not fit are dropped back. It returns the number of items taken.
func (s *Session) Pickup(feet mgl32.Vec3) int {
	taken := 0
	var left []item.ItemStack
	for _, st := range s.Entities.Collect(feet, PickupRadius) {
		n := st.Count
		if !s.Satchel.AddItem(&st) {
			left = append(left, st)
		}
		taken += n - st.Count
	}
	if len(left) > 0 {
		s.Entities.Drop(feet, left)
	}
	return taken
}

// SetSun sets the sun intensity in [0, 1]
func (s *Session) SetSun(intensity float32) {
	s.World.Light.SetSun(intensity)
}

// Save writes every idle resident chunk and the level record. Chunks with a
// job in flight are skipped.
func (s *Session) Save() error {
	var errs []error
	saved := 0
	for _, c := range s.World.Chunks() {
		switch err := s.Life.SaveNow(c); {
		case err == nil:
			saved++
		case errors.Is(err, world.ErrChunkBusy), errors.Is(err, world.ErrNoChunk):
		default:
			errs = append(errs, err)
		}
	}
	s.Gen.SetLastPosition(s.viewer)
	if err := s.Store.SaveLevel(s.Gen.Snapshot()); err != nil {
		errs = append(errs, err)
	}
	log.Printf("game: saved %d chunks", saved)
	return errors.Join(errs...)
}

// Close stops the workers, saves the world and releases every mesh
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	s.Pipeline.Close()
	if err := s.Life.Close(); err != nil {
		errs = append(errs, err)
	}
	s.Gen.SetLastPosition(s.viewer)
	if err := s.Store.SaveLevel(s.Gen.Snapshot()); err != nil {
		errs = append(errs, err)
	}
	s.Pipeline.ReleaseAll()
	if err := s.Store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
