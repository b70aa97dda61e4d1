package camera

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	minDistance = 1.5
	maxDistance = 20.0
	maxPitch    = 89.0
)

// OrbitCamera circles a target point. Yaw and Pitch are in degrees; yaw 0
// looks down -Z from the +Z side.
type OrbitCamera struct {
	Target    rl.Vector3
	Yaw       float32
	Pitch     float32
	Distance  float32
	LookSpeed float32
	ZoomSpeed float32
	Fovy      float32
}

func New(target rl.Vector3) *OrbitCamera {
	return &OrbitCamera{
		Target:    target,
		Yaw:       20,
		Pitch:     25,
		Distance:  6,
		LookSpeed: 0.3,
		ZoomSpeed: 0.5,
		Fovy:      45,
	}
}

// Update orbits while the right mouse button is held and zooms with the wheel.
func (c *OrbitCamera) Update() {
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		c.Orbit(delta.X*c.LookSpeed, delta.Y*c.LookSpeed)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		c.Zoom(-wheel * c.ZoomSpeed)
	}
}

// Orbit turns the camera by the given degrees, keeping pitch short of the poles.
func (c *OrbitCamera) Orbit(yaw, pitch float32) {
	c.Yaw = math32.Mod(c.Yaw+yaw, 360)
	c.Pitch = clamp(c.Pitch+pitch, -maxPitch, maxPitch)
}

func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance = clamp(c.Distance+delta, minDistance, maxDistance)
}

// Position is the eye point on the orbit sphere.
func (c *OrbitCamera) Position() rl.Vector3 {
	yaw := c.Yaw * rl.Deg2rad
	pitch := c.Pitch * rl.Deg2rad
	return rl.Vector3{
		X: c.Target.X + c.Distance*math32.Cos(pitch)*math32.Sin(yaw),
		Y: c.Target.Y + c.Distance*math32.Sin(pitch),
		Z: c.Target.Z + c.Distance*math32.Cos(pitch)*math32.Cos(yaw),
	}
}

func (c *OrbitCamera) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position(),
		Target:     c.Target,
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       c.Fovy,
		Projection: rl.CameraPerspective,
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
