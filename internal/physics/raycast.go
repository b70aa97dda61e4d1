package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/components"
	"clawmachine/internal/geometry"
)

type RaycastHit struct {
	Body     *components.Rigidbody
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// Raycast returns the closest body whose world box the ray enters within
// maxDistance. Held and dispensed bodies are ignored.
func (p *PhysicsWorld) Raycast(origin, direction rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	direction = rl.Vector3Normalize(direction)
	closest := RaycastHit{Distance: maxDistance}
	hit := false

	for _, body := range p.bodies {
		if body.IsHeld || body.IsBeingDispensed {
			continue
		}
		if h, ok := raycastBox(origin, direction, body.WorldBounds(), maxDistance); ok && h.Distance < closest.Distance {
			closest = h
			closest.Body = body
			hit = true
		}
	}
	return closest, hit
}

// raycastBox is the slab test against an axis-aligned box.
func raycastBox(origin, direction rl.Vector3, box geometry.AABB, maxDistance float32) (RaycastHit, bool) {
	tmin := float32(-1e30)
	tmax := float32(1e30)
	for axis := 0; axis < 3; axis++ {
		o := geometry.Axis(origin, axis)
		d := geometry.Axis(direction, axis)
		lo := geometry.Axis(box.Min, axis)
		hi := geometry.Axis(box.Max, axis)
		if d == 0 {
			if o < lo || o > hi {
				return RaycastHit{}, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return RaycastHit{}, false
		}
	}

	t := tmin
	if t < 0 {
		t = tmax
	}
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))

	// Normal of the face the point lies on
	var normal rl.Vector3
	const epsilon = 0.001
	switch {
	case math32.Abs(point.X-box.Min.X) < epsilon:
		normal = rl.Vector3{X: -1}
	case math32.Abs(point.X-box.Max.X) < epsilon:
		normal = rl.Vector3{X: 1}
	case math32.Abs(point.Y-box.Min.Y) < epsilon:
		normal = rl.Vector3{Y: -1}
	case math32.Abs(point.Y-box.Max.Y) < epsilon:
		normal = rl.Vector3{Y: 1}
	case math32.Abs(point.Z-box.Min.Z) < epsilon:
		normal = rl.Vector3{Z: -1}
	default:
		normal = rl.Vector3{Z: 1}
	}

	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}
