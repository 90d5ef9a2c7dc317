package world

import "errors"

var (
	// ErrNoChunk is returned by edits addressed to a cell whose chunk is not active
	ErrNoChunk = errors.New("world: no active chunk")
	// ErrChunkBusy is returned by a synchronous save of a chunk a worker job owns
	ErrChunkBusy = errors.New("world: chunk busy")
	// ErrOutOfWorld is returned for edits above or below the world
	ErrOutOfWorld = errors.New("world: position outside the world")
	// ErrChunkNotFound is returned by a ChunkProvider holding no record for a chunk
	ErrChunkNotFound = errors.New("world: chunk not stored")
)
