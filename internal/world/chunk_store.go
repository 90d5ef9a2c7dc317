package world

// region groups RegionSize x RegionSize chunks
type region struct {
	coord  RegionCoord
	chunks [RegionSize * RegionSize]*Chunk
	count  int
}

func regionSlot(lx, lz int) int {
	return lx*RegionSize + lz
}

// Chunk returns the chunk at coord in any lifecycle state, or nil
func (m *Manager) Chunk(coord ChunkCoord) *Chunk {
	rc, lx, lz := coord.Region()
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := m.regions[rc.Key()]
	if r == nil {
		return nil
	}
	return r.chunks[regionSlot(lx, lz)]
}

// ActiveChunk returns the chunk at coord only if it is active
func (m *Manager) ActiveChunk(coord ChunkCoord) *Chunk {
	c := m.Chunk(coord)
	if c == nil || c.State() != StateActive {
		return nil
	}
	return c
}

// Create adds an empty chunk at coord and links it with its existing
// neighbours. An existing chunk is returned unchanged.
func (m *Manager) Create(coord ChunkCoord) *Chunk {
	if c := m.Chunk(coord); c != nil {
		return c
	}
	c := NewChunk(coord, m.reg)
	c.manager = m

	rc, lx, lz := coord.Region()
	m.mu.Lock()
	r := m.regions[rc.Key()]
	if r == nil {
		r = &region{coord: rc}
		m.regions[rc.Key()] = r
	}
	r.chunks[regionSlot(lx, lz)] = c
	r.count++
	m.count++
	m.mu.Unlock()

	for _, s := range HorizontalSides {
		if n := m.Chunk(coord.Neighbor(s)); n != nil {
			c.link(s)
			n.link(s.Opposite())
		}
	}
	return c
}

// Remove unlinks the chunk at coord from its neighbours and drops it from
// the region map. The chunk ends in StateDestroyed.
func (m *Manager) Remove(coord ChunkCoord) {
	c := m.Chunk(coord)
	if c == nil {
		return
	}
	for _, s := range HorizontalSides {
		if n := m.Chunk(coord.Neighbor(s)); n != nil {
			n.unlink(s.Opposite())
			n.MarkDirty()
		}
		c.unlink(s)
	}

	rc, lx, lz := coord.Region()
	m.mu.Lock()
	if r := m.regions[rc.Key()]; r != nil {
		r.chunks[regionSlot(lx, lz)] = nil
		r.count--
		if r.count == 0 {
			delete(m.regions, rc.Key())
		}
	}
	m.count--
	m.mu.Unlock()
	c.setState(StateDestroyed)
}

// Len returns the number of chunks in the map
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// Regions returns the number of regions holding at least one chunk
func (m *Manager) Regions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.regions)
}

// Chunks returns a snapshot of every chunk in the map
func (m *Manager) Chunks() []*Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Chunk, 0, m.count)
	for _, r := range m.regions {
		for _, c := range r.chunks {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

// ForEachActive calls fn for every active chunk
func (m *Manager) ForEachActive(fn func(c *Chunk)) {
	for _, c := range m.Chunks() {
		if c.State() == StateActive {
			fn(c)
		}
	}
}
