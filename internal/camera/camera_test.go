package camera

import (
	"testing"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestPositionOnOrbit(t *testing.T) {
	c := New(rl.Vector3{X: 1, Y: 2, Z: 3})
	c.Yaw, c.Pitch, c.Distance = 0, 0, 5

	got := c.Position()
	want := rl.Vector3{X: 1, Y: 2, Z: 8}
	if rl.Vector3Distance(got, want) > 1e-4 {
		t.Errorf("position = %v, want %v", got, want)
	}

	c.Yaw, c.Pitch = 90, 30
	if d := rl.Vector3Distance(c.Position(), c.Target); math32.Abs(d-5) > 1e-4 {
		t.Errorf("distance to target = %v, want 5", d)
	}
}

func TestOrbitClampsPitch(t *testing.T) {
	c := New(rl.Vector3{})
	c.Orbit(0, 500)
	if c.Pitch != maxPitch {
		t.Errorf("pitch = %v, want %v", c.Pitch, float32(maxPitch))
	}
	c.Orbit(0, -1000)
	if c.Pitch != -maxPitch {
		t.Errorf("pitch = %v, want %v", c.Pitch, float32(-maxPitch))
	}
	c.Yaw = 350
	c.Orbit(20, 0)
	if math32.Abs(c.Yaw-10) > 1e-4 {
		t.Errorf("yaw = %v, want 10", c.Yaw)
	}
}

func TestZoomLimits(t *testing.T) {
	c := New(rl.Vector3{})
	c.Zoom(-100)
	if c.Distance != minDistance {
		t.Errorf("distance = %v, want %v", c.Distance, float32(minDistance))
	}
	c.Zoom(100)
	if c.Distance != maxDistance {
		t.Errorf("distance = %v, want %v", c.Distance, float32(maxDistance))
	}
}

func TestRaylibCamera(t *testing.T) {
	c := New(rl.Vector3{Y: 1})
	cam := c.GetRaylibCamera()
	if cam.Target != c.Target || cam.Projection != rl.CameraPerspective || cam.Fovy != 45 {
		t.Errorf("camera = %+v", cam)
	}
}
