package world

import "github.com/go-gl/mathgl/mgl32"

// SamplePoint is one climate anchor: a value recorded at a world column
type SamplePoint struct {
	X, Z  int32
	Value int32
}

// TreeRecord is a placed tree kept for spacing checks
type TreeRecord struct {
	X, Y, Z int32
	Species uint8
}

// Level is the world-level state persisted beside the chunk records
type Level struct {
	// Spawn[0] is the world spawn, Spawn[1] the last viewer position
	Spawn       [2]mgl32.Vec3
	Heights     []SamplePoint
	Humidity    []SamplePoint
	Temperature []SamplePoint
	Trees       []TreeRecord
}
