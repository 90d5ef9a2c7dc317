package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying viewer: position, yaw/pitch in degrees and the
// projection parameters
type Camera struct {
	Position    mgl32.Vec3
	Yaw, Pitch  float64
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
	Sensitivity float64

	lastX, lastY float64
	firstMouse   bool
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		Yaw:         -90,
		FOV:         70.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
		Sensitivity: 0.1,
		firstMouse:  true,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio; zero sizes (minimized window) are ignored
func (c *Camera) SetViewport(width, height int) {
	if width > 0 && height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}

// Look applies an absolute cursor position as mouse look
func (c *Camera) Look(xpos, ypos float64) {
	if c.firstMouse {
		c.lastX, c.lastY = xpos, ypos
		c.firstMouse = false
		return
	}
	dx := (xpos - c.lastX) * c.Sensitivity
	dy := (c.lastY - ypos) * c.Sensitivity
	c.lastX, c.lastY = xpos, ypos

	c.Yaw += dx
	c.Pitch = max(-89, min(89, c.Pitch+dy))
}

// ResetLook makes the next cursor position the reference for mouse look
func (c *Camera) ResetLook() { c.firstMouse = true }

// Front returns the unit view direction
func (c *Camera) Front() mgl32.Vec3 {
	y := mgl32.DegToRad(float32(c.Yaw))
	pt := mgl32.DegToRad(float32(c.Pitch))
	fx := float32(math.Cos(float64(y)) * math.Cos(float64(pt)))
	fy := float32(math.Sin(float64(pt)))
	fz := float32(math.Sin(float64(y)) * math.Cos(float64(pt)))
	return mgl32.Vec3{fx, fy, fz}.Normalize()
}

// Displacement converts a movement along the view axes into world space:
// forward along the view direction projected on the ground, right
// perpendicular to it and up along world Y
func (c *Camera) Displacement(forward, right, up float32) mgl32.Vec3 {
	f := c.Front()
	flat := mgl32.Vec3{f.X(), 0, f.Z()}
	if flat.Len() > 0 {
		flat = flat.Normalize()
	}
	side := flat.Cross(mgl32.Vec3{0, 1, 0})
	return flat.Mul(forward).Add(side.Mul(right)).Add(mgl32.Vec3{0, up, 0})
}

// Move translates the camera by Displacement(forward, right, up)
func (c *Camera) Move(forward, right, up float32) {
	c.Position = c.Position.Add(c.Displacement(forward, right, up))
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}
