package config

import "sync"

// Settings holds the runtime configuration of the world engine.
// A single instance is created at startup and handed to every service that needs it.
type Settings struct {
	mu sync.RWMutex

	renderDistance int // in chunks
	evictMargin    int // extra chunks kept before eviction
	seed           int64
	seaLevel       int
	saveDir        string

	generateWorkers int
	loadWorkers     int
	saveWorkers     int
	deleteWorkers   int
	loadsPerFrame   int

	smoothLighting bool
	lightPerFrame  int // chunks whose sky light may be recomputed per frame
	meshesPerFrame int

	fpsLimit int // 0 = unlimited
}

// Default returns settings with the reference values.
func Default() *Settings {
	return &Settings{
		renderDistance:  6,
		evictMargin:     2,
		seaLevel:        48,
		saveDir:         "saves/world",
		generateWorkers: 1,
		loadWorkers:     1,
		saveWorkers:     1,
		deleteWorkers:   1,
		loadsPerFrame:   16,
		smoothLighting:  true,
		lightPerFrame:   4,
		meshesPerFrame:  8,
		fpsLimit:        120,
	}
}

// RenderDistance returns the active window radius in chunks
func (s *Settings) RenderDistance() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renderDistance
}

// SetRenderDistance sets the active window radius in chunks
func (s *Settings) SetRenderDistance(distance int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clamp to reasonable values
	if distance < 1 {
		distance = 1
	}
	if distance > 32 {
		distance = 32
	}
	s.renderDistance = distance
}

// LoadRadius returns radius for chunk loading
func (s *Settings) LoadRadius() int {
	return s.RenderDistance()
}

// EvictRadius returns radius for chunk eviction (larger than load radius)
func (s *Settings) EvictRadius() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renderDistance + s.evictMargin
}

// Seed returns the world seed
func (s *Settings) Seed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seed
}

// SetSeed sets the world seed
func (s *Settings) SetSeed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed = seed
}

// SeaLevel returns the configured sea level
func (s *Settings) SeaLevel() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seaLevel
}

// SetSeaLevel sets the sea level
func (s *Settings) SetSeaLevel(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if level < 1 {
		level = 1
	}
	s.seaLevel = level
}

// SaveDir returns the directory holding chunk records and the level file.
// An empty directory keeps everything in memory.
func (s *Settings) SaveDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveDir
}

// SetSaveDir sets the save directory
func (s *Settings) SetSaveDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveDir = dir
}

// Workers returns the concurrency of the generate, load, save and delete pools.
func (s *Settings) Workers() (generate, load, save, remove int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generateWorkers, s.loadWorkers, s.saveWorkers, s.deleteWorkers
}

// SetWorkers sets the pool sizes. Values below one are raised to one.
func (s *Settings) SetWorkers(generate, load, save, remove int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generateWorkers = max(generate, 1)
	s.loadWorkers = max(load, 1)
	s.saveWorkers = max(save, 1)
	s.deleteWorkers = max(remove, 1)
}

// LoadsPerFrame caps how many new chunks are scheduled per frame
func (s *Settings) LoadsPerFrame() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadsPerFrame
}

// SmoothLighting reports whether vertex light is interpolated
func (s *Settings) SmoothLighting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.smoothLighting
}

// SetSmoothLighting toggles interpolated vertex light
func (s *Settings) SetSmoothLighting(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.smoothLighting = enabled
}

// LightPerFrame returns the sky light recompute budget in chunks per frame
func (s *Settings) LightPerFrame() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lightPerFrame
}

// MeshesPerFrame returns the mesh rebuild budget per frame
func (s *Settings) MeshesPerFrame() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meshesPerFrame
}

// SetMeshesPerFrame sets the mesh rebuild budget per frame
func (s *Settings) SetMeshesPerFrame(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = 1
	}
	s.meshesPerFrame = n
}

// FPSLimit returns the frame cap, 0 when unlimited
func (s *Settings) FPSLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fpsLimit
}

// SetFPSLimit sets the frame cap. Negative values disable the cap.
func (s *Settings) SetFPSLimit(limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit < 0 {
		limit = 0
	}
	s.fpsLimit = limit
}
