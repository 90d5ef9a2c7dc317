package physics

import (
	"math"

	"blockworld/internal/registry"
	"blockworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 5.0
)

// BlockSource is the read view the queries run against. world.Manager
// satisfies it.
type BlockSource interface {
	Type(x, y, z int) *registry.BlockType
}

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitPosition      [3]int
	AdjacentPosition [3]int
	Face             world.Side // face of the hit cell the ray entered through
	Distance         float32
	Hit              bool
}

// Raycast walks the cells crossed by the ray and returns the first non-air
// one between minDist and maxDist. Cells span [x, x+1) on every axis.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, src BlockSource) RaycastResult {
	result := RaycastResult{}
	if direction.Len() == 0 {
		return result
	}
	dir := direction.Normalize()

	var cell, step [3]int
	var tMax, tDelta [3]float64
	for i := 0; i < 3; i++ {
		p := float64(start[i])
		d := float64(dir[i])
		cell[i] = int(math.Floor(p))
		switch {
		case d > 0:
			step[i] = 1
			tMax[i] = (float64(cell[i]+1) - p) / d
			tDelta[i] = 1 / d
		case d < 0:
			step[i] = -1
			tMax[i] = (p - float64(cell[i])) / -d
			tDelta[i] = -1 / d
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	// faces entered when stepping along each axis in the positive direction
	enterPos := [3]world.Side{world.SideLeft, world.SideBottom, world.SideBack}
	enterNeg := [3]world.Side{world.SideRight, world.SideTop, world.SideFront}

	prev := cell
	face := world.SideTop
	dist := 0.0
	for dist <= float64(maxDist) {
		if dist >= float64(minDist) {
			if t := src.Type(cell[0], cell[1], cell[2]); t != nil && t.Shape != registry.ShapeNone {
				result.HitPosition = cell
				result.AdjacentPosition = prev
				result.Face = face
				result.Distance = float32(dist)
				result.Hit = true
				return result
			}
		}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		prev = cell
		cell[axis] += step[axis]
		dist = tMax[axis]
		tMax[axis] += tDelta[axis]
		if step[axis] > 0 {
			face = enterPos[axis]
		} else {
			face = enterNeg[axis]
		}
	}
	return result
}
