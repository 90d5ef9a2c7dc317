package entity

import (
	"math/rand"
	"sync"

	"blockworld/internal/item"
	"blockworld/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// Manager handles the lifecycle and updates of entities in the world.
type Manager struct {
	world    WorldSource
	prof     *profiling.Profiler
	rng      *rand.Rand
	entities []Entity
	mu       sync.RWMutex
}

// NewManager creates an entity manager over w. seed drives the scatter of
// dropped items.
func NewManager(w WorldSource, prof *profiling.Profiler, seed int64) *Manager {
	return &Manager{
		world: w,
		prof:  prof,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Add adds an entity to the manager.
func (em *Manager) Add(e Entity) {
	em.mu.Lock()
	defer em.mu.Unlock()
	if it, ok := e.(*ItemEntity); ok && it.GetNearbyItems == nil {
		it.GetNearbyItems = em.nearbyLocked
	}
	em.entities = append(em.entities, e)
}

// Drop spawns one item entity per stack at pos with a small random scatter.
// Its signature matches the world drop handler.
func (em *Manager) Drop(pos mgl32.Vec3, items []item.ItemStack) {
	for _, s := range items {
		if s.Count <= 0 {
			continue
		}
		vel := mgl32.Vec3{
			float32(em.rng.Float64()*0.2 - 0.1),
			0.4,
			float32(em.rng.Float64()*0.2 - 0.1),
		}
		em.Add(NewItemEntity(em.world, pos, vel, s))
	}
}

// Update updates all entities and removes dead ones.
func (em *Manager) Update(dt float64) {
	defer em.prof.Track("entity.Update")()
	em.mu.Lock()
	defer em.mu.Unlock()

	alive := 0
	for _, e := range em.entities {
		if e.IsDead() {
			continue
		}
		e.Update(dt)
		if !e.IsDead() {
			em.entities[alive] = e
			alive++
		}
	}
	clear(em.entities[alive:])
	em.entities = em.entities[:alive]
}

// nearbyLocked is handed to items; it runs inside Update with the lock held
func (em *Manager) nearbyLocked(center mgl32.Vec3, rx, ry, rz float32) []*ItemEntity {
	var out []*ItemEntity
	for _, e := range em.entities {
		it, ok := e.(*ItemEntity)
		if !ok || it.Dead {
			continue
		}
		d := it.Pos.Sub(center)
		if abs32(d.X()) <= rx && abs32(d.Y()) <= ry && abs32(d.Z()) <= rz {
			out = append(out, it)
		}
	}
	return out
}

// Collect removes the collectable items within radius of pos and returns
// their stacks
func (em *Manager) Collect(pos mgl32.Vec3, radius float32) []item.ItemStack {
	em.mu.Lock()
	defer em.mu.Unlock()
	var out []item.ItemStack
	for _, e := range em.entities {
		it, ok := e.(*ItemEntity)
		if !ok || !it.CanPickup() || it.Pos.Sub(pos).Len() > radius {
			continue
		}
		out = append(out, it.Stack)
		it.SetDead()
	}
	return out
}

// GetAll returns a copy of the live entities.
func (em *Manager) GetAll() []Entity {
	em.mu.RLock()
	defer em.mu.RUnlock()

	result := make([]Entity, len(em.entities))
	copy(result, em.entities)
	return result
}

// Len returns the number of tracked entities
func (em *Manager) Len() int {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return len(em.entities)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
