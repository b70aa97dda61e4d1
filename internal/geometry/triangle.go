package geometry

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const parallelEpsilon = 1e-8

// Triangle represents a single triangle with precomputed normal
type Triangle struct {
	V0, V1, V2 rl.Vector3
	Normal     rl.Vector3
}

func NewTriangle(v0, v1, v2 rl.Vector3) Triangle {
	n := rl.Vector3CrossProduct(rl.Vector3Subtract(v1, v0), rl.Vector3Subtract(v2, v0))
	return Triangle{V0: v0, V1: v1, V2: v2, Normal: rl.Vector3Normalize(n)}
}

func (t Triangle) Transform(m rl.Matrix) Triangle {
	return NewTriangle(
		rl.Vector3Transform(t.V0, m),
		rl.Vector3Transform(t.V1, m),
		rl.Vector3Transform(t.V2, m),
	)
}

func (t Triangle) Centroid() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(rl.Vector3Add(t.V0, t.V1), t.V2), 1.0/3.0)
}

func (t Triangle) Bounds() AABB {
	return AABBFromPoints(t.V0, t.V1, t.V2)
}

// closestPointOnTriangle finds the closest point on a triangle to point p
func closestPointOnTriangle(p, a, b, c rl.Vector3) rl.Vector3 {
	// Check if P in vertex region outside A
	ab := rl.Vector3Subtract(b, a)
	ac := rl.Vector3Subtract(c, a)
	ap := rl.Vector3Subtract(p, a)

	d1 := rl.Vector3DotProduct(ab, ap)
	d2 := rl.Vector3DotProduct(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	// Check if P in vertex region outside B
	bp := rl.Vector3Subtract(p, b)
	d3 := rl.Vector3DotProduct(ab, bp)
	d4 := rl.Vector3DotProduct(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	// Check if P in edge region of AB
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return rl.Vector3Add(a, rl.Vector3Scale(ab, v))
	}

	// Check if P in vertex region outside C
	cp := rl.Vector3Subtract(p, c)
	d5 := rl.Vector3DotProduct(ab, cp)
	d6 := rl.Vector3DotProduct(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	// Check if P in edge region of AC
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return rl.Vector3Add(a, rl.Vector3Scale(ac, w))
	}

	// Check if P in edge region of BC
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return rl.Vector3Add(b, rl.Vector3Scale(rl.Vector3Subtract(c, b), w))
	}

	// P inside face region
	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return rl.Vector3Add(a, rl.Vector3Add(rl.Vector3Scale(ab, v), rl.Vector3Scale(ac, w)))
}

// segmentIntersectsTriangle is Möller-Trumbore restricted to t in [0,1].
// Segments parallel to the triangle plane never hit.
func segmentIntersectsTriangle(p, q rl.Vector3, tri *Triangle) bool {
	dir := rl.Vector3Subtract(q, p)
	e1 := rl.Vector3Subtract(tri.V1, tri.V0)
	e2 := rl.Vector3Subtract(tri.V2, tri.V0)

	h := rl.Vector3CrossProduct(dir, e2)
	det := rl.Vector3DotProduct(e1, h)
	if math32.Abs(det) < parallelEpsilon {
		return false
	}
	f := 1 / det

	s := rl.Vector3Subtract(p, tri.V0)
	u := f * rl.Vector3DotProduct(s, h)
	if u < 0 || u > 1 {
		return false
	}

	qv := rl.Vector3CrossProduct(s, e1)
	v := f * rl.Vector3DotProduct(dir, qv)
	if v < 0 || u+v > 1 {
		return false
	}

	t := f * rl.Vector3DotProduct(e2, qv)
	return t >= 0 && t <= 1
}

// trianglesIntersect reports whether two non-coplanar triangles cross. Two
// such triangles intersect exactly when an edge of one pierces the other.
func trianglesIntersect(a, b *Triangle) bool {
	if !a.Bounds().Intersects(b.Bounds()) {
		return false
	}
	return segmentIntersectsTriangle(a.V0, a.V1, b) ||
		segmentIntersectsTriangle(a.V1, a.V2, b) ||
		segmentIntersectsTriangle(a.V2, a.V0, b) ||
		segmentIntersectsTriangle(b.V0, b.V1, a) ||
		segmentIntersectsTriangle(b.V1, b.V2, a) ||
		segmentIntersectsTriangle(b.V2, b.V0, a)
}

// triangleOverlapsBox is the separating axis test of a triangle against a
// box centred at the origin with the given half extents.
func triangleOverlapsBox(v0, v1, v2, half rl.Vector3) bool {
	// Box face normals
	for axis := 0; axis < 3; axis++ {
		a, b, c := Axis(v0, axis), Axis(v1, axis), Axis(v2, axis)
		h := Axis(half, axis)
		if math32.Min(a, math32.Min(b, c)) > h || math32.Max(a, math32.Max(b, c)) < -h {
			return false
		}
	}

	edges := [3]rl.Vector3{
		rl.Vector3Subtract(v1, v0),
		rl.Vector3Subtract(v2, v1),
		rl.Vector3Subtract(v0, v2),
	}

	// Triangle plane
	normal := rl.Vector3CrossProduct(edges[0], edges[1])
	d := rl.Vector3DotProduct(normal, v0)
	r := half.X*math32.Abs(normal.X) + half.Y*math32.Abs(normal.Y) + half.Z*math32.Abs(normal.Z)
	if math32.Abs(d) > r {
		return false
	}

	// Cross products of box axes and triangle edges
	boxAxes := [3]rl.Vector3{{X: 1}, {Y: 1}, {Z: 1}}
	for _, e := range edges {
		for _, u := range boxAxes {
			axis := rl.Vector3CrossProduct(u, e)
			if rl.Vector3DotProduct(axis, axis) < parallelEpsilon {
				continue
			}
			p0 := rl.Vector3DotProduct(v0, axis)
			p1 := rl.Vector3DotProduct(v1, axis)
			p2 := rl.Vector3DotProduct(v2, axis)
			r := half.X*math32.Abs(axis.X) + half.Y*math32.Abs(axis.Y) + half.Z*math32.Abs(axis.Z)
			if math32.Min(p0, math32.Min(p1, p2)) > r || math32.Max(p0, math32.Max(p1, p2)) < -r {
				return false
			}
		}
	}
	return true
}
