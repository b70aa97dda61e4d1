package world

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/geometry"
)

const (
	frustumNear = 0.05
	frustumFar  = 200.0
)

// Frustum represents the 6 planes of a view frustum for culling
type Frustum struct {
	planes [6]Plane // left, right, bottom, top, near, far
}

// Plane represents a plane in 3D space (ax + by + cz + d = 0). The normal
// points into the frustum.
type Plane struct {
	normal   rl.Vector3
	distance float32
}

// planeThrough builds the plane with the given inward normal passing
// through p.
func planeThrough(normal, p rl.Vector3) Plane {
	n := rl.Vector3Normalize(normal)
	return Plane{normal: n, distance: -rl.Vector3DotProduct(n, p)}
}

// ExtractFrustum builds the frustum of a camera for the given aspect ratio
// from the camera basis. raylib-go's MatrixLookAt and MatrixFrustum do not
// follow the Vector3Transform layout, so no view-projection matrix is used.
func ExtractFrustum(camera rl.Camera3D, aspect float32) Frustum {
	eye := camera.Position
	forward := rl.Vector3Normalize(rl.Vector3Subtract(camera.Target, eye))
	right := rl.Vector3Normalize(rl.Vector3CrossProduct(forward, camera.Up))
	up := rl.Vector3CrossProduct(right, forward)

	var f Frustum
	if camera.Projection == rl.CameraPerspective {
		halfV := camera.Fovy * rl.Deg2rad / 2
		halfH := math32.Atan(math32.Tan(halfV) * aspect)
		side := func(axis rl.Vector3, half float32) Plane {
			n := rl.Vector3Add(rl.Vector3Scale(axis, math32.Cos(half)), rl.Vector3Scale(forward, math32.Sin(half)))
			return planeThrough(n, eye)
		}
		f.planes[0] = side(right, halfH)
		f.planes[1] = side(rl.Vector3Negate(right), halfH)
		f.planes[2] = side(up, halfV)
		f.planes[3] = side(rl.Vector3Negate(up), halfV)
	} else {
		halfH := camera.Fovy / 2
		halfW := halfH * aspect
		f.planes[0] = planeThrough(right, rl.Vector3Subtract(eye, rl.Vector3Scale(right, halfW)))
		f.planes[1] = planeThrough(rl.Vector3Negate(right), rl.Vector3Add(eye, rl.Vector3Scale(right, halfW)))
		f.planes[2] = planeThrough(up, rl.Vector3Subtract(eye, rl.Vector3Scale(up, halfH)))
		f.planes[3] = planeThrough(rl.Vector3Negate(up), rl.Vector3Add(eye, rl.Vector3Scale(up, halfH)))
	}
	f.planes[4] = planeThrough(forward, rl.Vector3Add(eye, rl.Vector3Scale(forward, frustumNear)))
	f.planes[5] = planeThrough(rl.Vector3Negate(forward), rl.Vector3Add(eye, rl.Vector3Scale(forward, frustumFar)))
	return f
}

// ContainsPoint tests if a point is inside the frustum
func (f *Frustum) ContainsPoint(point rl.Vector3) bool {
	for i := 0; i < 6; i++ {
		dist := rl.Vector3DotProduct(f.planes[i].normal, point) + f.planes[i].distance
		if dist < 0 {
			return false
		}
	}
	return true
}

// ContainsBox reports whether any part of the box may be visible. For each
// plane only the corner furthest along the plane normal is tested.
func (f *Frustum) ContainsBox(box geometry.AABB) bool {
	for i := 0; i < 6; i++ {
		n := f.planes[i].normal
		p := box.Min
		if n.X >= 0 {
			p.X = box.Max.X
		}
		if n.Y >= 0 {
			p.Y = box.Max.Y
		}
		if n.Z >= 0 {
			p.Z = box.Max.Z
		}
		if rl.Vector3DotProduct(n, p)+f.planes[i].distance < 0 {
			return false
		}
	}
	return true
}
