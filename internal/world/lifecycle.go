package world

import (
	"errors"
	"fmt"
	"log"

	"blockworld/internal/config"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// ChunkProvider reads and writes persisted chunks.
// LoadChunk returns ErrChunkNotFound when no record exists.
type ChunkProvider interface {
	LoadChunk(c *Chunk) error
	SaveChunk(c *Chunk) error
}

// Lifecycle drives chunks through loading, generation, caching, activation
// and eviction. Tick, Close and SaveNow run on the main thread; the jobs run
// on four worker pools and only ever touch the chunk they were given.
type Lifecycle struct {
	m        *Manager
	gen      TerrainGenerator
	provider ChunkProvider
	settings *config.Settings

	generate pond.Pool
	load     pond.Pool
	save     pond.Pool
	remove   pond.Pool

	closed bool
}

// NewLifecycle creates the worker pools sized from settings
func NewLifecycle(m *Manager, gen TerrainGenerator, provider ChunkProvider, settings *config.Settings) *Lifecycle {
	g, l, s, r := settings.Workers()
	return &Lifecycle{
		m:        m,
		gen:      gen,
		provider: provider,
		settings: settings,
		generate: pond.NewPool(g),
		load:     pond.NewPool(l),
		save:     pond.NewPool(s),
		remove:   pond.NewPool(r),
	}
}

// TickStats reports what one Tick started
type TickStats struct {
	Loads, Evictions, Activated, Removed int
}

// Tick runs one frame of the lifecycle around the viewer position
func (l *Lifecycle) Tick(center mgl32.Vec3) TickStats {
	defer l.m.prof.Track("world.Lifecycle.Tick")()
	var st TickStats
	if l.closed {
		return st
	}

	load, evict := l.m.Plan(center, l.settings.LoadRadius(), l.settings.EvictRadius())
	for _, c := range evict {
		if l.evict(c) {
			st.Evictions++
		}
	}

	budget := l.settings.LoadsPerFrame()
	// chunks whose earlier job failed go back to the load pool first
	cc := ChunkCoordFor(center)
	r2 := l.settings.LoadRadius() * l.settings.LoadRadius()
	for _, c := range l.m.Chunks() {
		switch {
		case c.Busy():
		case c.State() == StateCreated && budget > 0 && c.Coord.DistSq(cc) <= r2:
			l.submitLoad(c)
			budget--
			st.Loads++
		case c.State() == StateCached:
			l.m.Activate(c)
			st.Activated++
		case c.State() == StateDestroyed:
			l.m.Remove(c.Coord)
			st.Removed++
		}
	}
	for _, coord := range load {
		if budget == 0 {
			break
		}
		l.submitLoad(l.m.Create(coord))
		budget--
		st.Loads++
	}
	return st
}

// evict starts unloading c unless a job owns it or it is already leaving
func (l *Lifecycle) evict(c *Chunk) bool {
	if c.Busy() {
		return false
	}
	prev := c.State()
	switch prev {
	case StateLoading, StateGenerating, StateDestroying, StateDestroyed:
		return false
	case StateCreated:
		c.setState(StateDestroyed)
		return true
	}
	c.isolated = true
	c.setState(StateDestroying)
	l.m.RetireMesh(c.SetMesh(Mesh{}))
	if prev == StateActive {
		for _, s := range HorizontalSides {
			if n := l.m.ActiveChunk(c.Coord.Neighbor(s)); n != nil {
				recheckBorder(n, s.Opposite())
				n.MarkDirty()
			}
		}
	}
	// a failed save leaves the grid intact: the chunk goes back to cached,
	// the next Tick reactivates it and Plan evicts it again
	l.submit(l.save, c, "save", StateCached, func() error {
		return l.provider.SaveChunk(c)
	}, func() {
		l.submit(l.remove, c, "remove", StateDestroyed, func() error {
			c.Reset()
			c.setState(StateDestroyed)
			return nil
		}, nil)
	})
	return true
}

func (l *Lifecycle) submitLoad(c *Chunk) {
	c.isolated = true
	c.setState(StateLoading)
	l.submit(l.load, c, "load", StateCreated, func() error {
		err := l.provider.LoadChunk(c)
		if errors.Is(err, ErrChunkNotFound) {
			c.Reset()
			c.setState(StateGenerating)
			return nil
		}
		if err != nil {
			c.Reset()
			return err
		}
		c.Cache()
		c.setState(StateCached)
		return nil
	}, func() {
		if c.State() == StateGenerating {
			l.submit(l.generate, c, "generate", StateCreated, func() error {
				l.gen.PopulateChunk(c)
				c.Cache()
				c.setState(StateCached)
				return nil
			}, nil)
		}
	})
}

// submit hands a job to pool. The chunk is marked busy until the job ends;
// on error or panic its state returns to restore. then runs after success.
func (l *Lifecycle) submit(pool pond.Pool, c *Chunk, name string, restore State, job func() error, then func()) {
	c.busy.Store(true)
	pool.Submit(func() {
		if err := l.run(c, name, restore, job); err != nil {
			log.Printf("world: %s chunk %d,%d: %v", name, c.Coord.X, c.Coord.Z, err)
			return
		}
		if then != nil {
			then()
		}
	})
}

func (l *Lifecycle) run(c *Chunk, name string, restore State, job func() error) (err error) {
	defer l.m.prof.Track("world.job." + name)()
	c.job.Lock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			c.setState(restore)
		}
		c.busy.Store(false)
		c.job.Unlock()
	}()
	return job()
}

// SaveNow writes a resident chunk synchronously
func (l *Lifecycle) SaveNow(c *Chunk) error {
	if c.Busy() {
		return ErrChunkBusy
	}
	switch c.State() {
	case StateCached, StateActive:
	default:
		return fmt.Errorf("save chunk %d,%d in state %v: %w", c.Coord.X, c.Coord.Z, c.State(), ErrNoChunk)
	}
	c.job.Lock()
	defer c.job.Unlock()
	return l.provider.SaveChunk(c)
}

// Close waits for pending jobs and saves every resident chunk
func (l *Lifecycle) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.load.StopAndWait()
	l.generate.StopAndWait()
	l.save.StopAndWait()
	l.remove.StopAndWait()

	var errs []error
	for _, c := range l.m.Chunks() {
		if err := l.SaveNow(c); err != nil && !errors.Is(err, ErrNoChunk) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
