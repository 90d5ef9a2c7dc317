package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sync"

	"blockworld/internal/registry"
	"blockworld/internal/world"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/df-mc/goleveldb/leveldb/storage"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no record exists; it matches world.ErrChunkNotFound
	ErrNotFound = world.ErrChunkNotFound
	// ErrCorruptChunk is returned for a chunk record of the wrong size
	ErrCorruptChunk = errors.New("storage: corrupt chunk record")
)

const (
	prefixChunk   = 'c'
	prefixSpecial = 's'

	keyWorldID = "meta/world-id"
	keyLevel   = "level.dat"

	chunkRecordSize = 1 + world.ChunkVolume
)

// Provider persists chunks and the world-level state in a LevelDB database.
// It is safe for concurrent use by the lifecycle workers.
type Provider struct {
	db *leveldb.DB
	id uuid.UUID

	mu     sync.Mutex
	closed bool
}

// Open opens or creates a world database in dir
func Open(dir string) (*Provider, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{Compression: opt.SnappyCompression})
	if err != nil {
		return nil, fmt.Errorf("open world %s: %w", dir, err)
	}
	p, err := newProvider(db)
	if err != nil {
		return nil, err
	}
	log.Printf("storage: opened world %s at %s", p.id, dir)
	return p, nil
}

// OpenMem opens a database held in memory
func OpenMem() (*Provider, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open memory world: %w", err)
	}
	return newProvider(db)
}

func newProvider(db *leveldb.DB) (*Provider, error) {
	p := &Provider{db: db}
	raw, err := db.Get([]byte(keyWorldID), nil)
	switch {
	case err == nil:
		p.id, err = uuid.FromBytes(raw)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("read world id: %w", err)
		}
	case errors.Is(err, leveldb.ErrNotFound):
		p.id = uuid.New()
		if err := db.Put([]byte(keyWorldID), p.id[:], nil); err != nil {
			db.Close()
			return nil, fmt.Errorf("write world id: %w", err)
		}
	default:
		db.Close()
		return nil, fmt.Errorf("read world id: %w", err)
	}
	return p, nil
}

// WorldID returns the identity assigned when the world was first created
func (p *Provider) WorldID() uuid.UUID { return p.id }

// recordKey names a chunk record by the pairing of its coordinates
func recordKey(prefix byte, c world.ChunkCoord) []byte {
	k := make([]byte, 9)
	k[0] = prefix
	binary.BigEndian.PutUint64(k[1:], world.Pair(c.X, c.Z))
	return k
}

// LoadChunk fills c from its stored record
func (p *Provider) LoadChunk(c *world.Chunk) error {
	rec, err := p.db.Get(recordKey(prefixChunk, c.Coord), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return fmt.Errorf("load chunk %d,%d: %w", c.Coord.X, c.Coord.Z, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load chunk %d,%d: %w", c.Coord.X, c.Coord.Z, err)
	}
	if len(rec) != chunkRecordSize {
		return fmt.Errorf("load chunk %d,%d: %d bytes, want %d: %w",
			c.Coord.X, c.Coord.Z, len(rec), chunkRecordSize, ErrCorruptChunk)
	}
	for idx, id := range rec[1:] {
		if id == 0 {
			continue
		}
		x, y, z := world.Position(idx)
		c.SetType(x, y, z, registry.ID(id))
	}
	c.SetGenerated(rec[0] == 1)

	special, err := p.db.Get(recordKey(prefixSpecial, c.Coord), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load chunk %d,%d state: %w", c.Coord.X, c.Coord.Z, err)
	}
	states, err := DecodeSpecial(special)
	if err != nil {
		return fmt.Errorf("load chunk %d,%d state: %w", c.Coord.X, c.Coord.Z, err)
	}
	c.RestoreSpecial(states)
	return nil
}

// SaveChunk writes the type grid and the special block state of c
func (p *Provider) SaveChunk(c *world.Chunk) error {
	rec := make([]byte, chunkRecordSize)
	if c.Generated() {
		rec[0] = 1
	}
	for idx := 0; idx < world.ChunkVolume; idx++ {
		rec[1+idx] = byte(c.TypeAt(idx))
	}

	batch := new(leveldb.Batch)
	batch.Put(recordKey(prefixChunk, c.Coord), rec)
	if states := c.SpecialStates(); len(states) > 0 {
		batch.Put(recordKey(prefixSpecial, c.Coord), EncodeSpecial(states))
	} else {
		batch.Delete(recordKey(prefixSpecial, c.Coord))
	}
	if err := p.db.Write(batch, nil); err != nil {
		return fmt.Errorf("save chunk %d,%d: %w", c.Coord.X, c.Coord.Z, err)
	}
	return nil
}

// DeleteChunk removes the records of a chunk
func (p *Provider) DeleteChunk(coord world.ChunkCoord) error {
	batch := new(leveldb.Batch)
	batch.Delete(recordKey(prefixChunk, coord))
	batch.Delete(recordKey(prefixSpecial, coord))
	return p.db.Write(batch, nil)
}

// SaveLevel stores the world-level save file
func (p *Provider) SaveLevel(l world.Level) error {
	data, err := EncodeLevel(l)
	if err != nil {
		return err
	}
	if err := p.db.Put([]byte(keyLevel), data, nil); err != nil {
		return fmt.Errorf("save level: %w", err)
	}
	return nil
}

// LoadLevel reads the world-level save file. ErrNotFound means a new world.
func (p *Provider) LoadLevel() (world.Level, error) {
	data, err := p.db.Get([]byte(keyLevel), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return world.Level{}, fmt.Errorf("load level: %w", ErrNotFound)
	}
	if err != nil {
		return world.Level{}, fmt.Errorf("load level: %w", err)
	}
	return DecodeLevel(data)
}

// Close closes the database
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}
