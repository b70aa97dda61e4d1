package geometry

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	leafTriangles = 4
	maxDepth      = 20
)

// BVHNode is a node in the bounding volume hierarchy
type BVHNode struct {
	Bounds    AABB
	Left      *BVHNode
	Right     *BVHNode
	Triangles []int // indices into the triangle array (only for leaf nodes)
}

func (n *BVHNode) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// buildBVH constructs a bounding volume hierarchy for fast queries
func (m *Mesh) buildBVH() {
	if len(m.Triangles) == 0 {
		m.root = nil
		return
	}

	indices := make([]int, len(m.Triangles))
	for i := range indices {
		indices[i] = i
	}

	m.root = m.buildBVHNode(indices, 0)
}

func (m *Mesh) buildBVHNode(indices []int, depth int) *BVHNode {
	node := &BVHNode{Bounds: m.computeBounds(indices)}

	if len(indices) <= leafTriangles || depth > maxDepth {
		node.Triangles = indices
		return node
	}

	// Split on the longest axis
	size := node.Bounds.Size()
	axis := 0
	if size.Y > size.X {
		axis = 1
	}
	if size.Z > Axis(size, axis) {
		axis = 2
	}

	mid := m.partitionTriangles(indices, axis)
	if mid == 0 || mid == len(indices) {
		node.Triangles = indices
		return node
	}

	node.Left = m.buildBVHNode(indices[:mid], depth+1)
	node.Right = m.buildBVHNode(indices[mid:], depth+1)
	return node
}

func (m *Mesh) computeBounds(indices []int) AABB {
	bounds := EmptyAABB()
	for _, idx := range indices {
		tri := &m.Triangles[idx]
		bounds = bounds.ExpandByPoint(tri.V0).ExpandByPoint(tri.V1).ExpandByPoint(tri.V2)
	}
	return bounds
}

// partitionTriangles splits around the mean centroid on the given axis.
func (m *Mesh) partitionTriangles(indices []int, axis int) int {
	center := float32(0)
	for _, idx := range indices {
		center += Axis(m.Triangles[idx].Centroid(), axis)
	}
	center /= float32(len(indices))

	left := 0
	right := len(indices) - 1
	for left <= right {
		if Axis(m.Triangles[indices[left]].Centroid(), axis) < center {
			left++
		} else {
			indices[left], indices[right] = indices[right], indices[left]
			right--
		}
	}
	return left
}

// meshQuery caches the other mesh's triangles once mapped into this mesh's frame.
type meshQuery struct {
	self, other *Mesh
	toLocal     rl.Matrix
	mapped      []Triangle
	done        []bool
}

func (q *meshQuery) otherTriangle(i int) *Triangle {
	if !q.done[i] {
		q.mapped[i] = q.other.Triangles[i].Transform(q.toLocal)
		q.done[i] = true
	}
	return &q.mapped[i]
}

func (q *meshQuery) intersect(a, b *BVHNode) bool {
	if !a.Bounds.Intersects(b.Bounds.Transform(q.toLocal)) {
		return false
	}

	switch {
	case a.IsLeaf() && b.IsLeaf():
		for _, i := range a.Triangles {
			ta := &q.self.Triangles[i]
			for _, j := range b.Triangles {
				if trianglesIntersect(ta, q.otherTriangle(j)) {
					return true
				}
			}
		}
		return false
	case a.IsLeaf():
		return q.intersect(a, b.Left) || q.intersect(a, b.Right)
	default:
		return q.intersect(a.Left, b) || q.intersect(a.Right, b)
	}
}

// IntersectsMesh reports whether the surfaces of m and other cross, with
// otherToLocal mapping other's local coordinates into m's local frame.
func (m *Mesh) IntersectsMesh(other *Mesh, otherToLocal rl.Matrix) bool {
	if m == nil || other == nil || m.root == nil || other.root == nil {
		return false
	}
	q := &meshQuery{
		self:    m,
		other:   other,
		toLocal: otherToLocal,
		mapped:  make([]Triangle, len(other.Triangles)),
		done:    make([]bool, len(other.Triangles)),
	}
	return q.intersect(m.root, other.root)
}

// ClosestPoint returns the nearest surface point to p (local space) and
// its distance.
func (m *Mesh) ClosestPoint(p rl.Vector3) (rl.Vector3, float32, error) {
	if m == nil || m.root == nil {
		return rl.Vector3{}, 0, ErrNoBoundsTree
	}

	var best rl.Vector3
	bestSq := float32(-1)

	stack := []*BVHNode{m.root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if bestSq >= 0 && node.Bounds.DistanceSqToPoint(p) > bestSq {
			continue
		}
		if node.IsLeaf() {
			for _, idx := range node.Triangles {
				tri := &m.Triangles[idx]
				c := closestPointOnTriangle(p, tri.V0, tri.V1, tri.V2)
				d := rl.Vector3Subtract(p, c)
				if dSq := rl.Vector3DotProduct(d, d); bestSq < 0 || dSq < bestSq {
					bestSq = dSq
					best = c
				}
			}
			continue
		}
		// Visit the nearer child first so the far one is pruned more often.
		near, far := node.Left, node.Right
		if far.Bounds.DistanceSqToPoint(p) < near.Bounds.DistanceSqToPoint(p) {
			near, far = far, near
		}
		stack = append(stack, far, near)
	}

	return best, rl.Vector3Distance(p, best), nil
}

// IntersectsBox tests an axis-aligned box given in some other frame;
// boxToLocal maps that frame into the mesh's local space, so the box may
// arrive rotated.
func (m *Mesh) IntersectsBox(box AABB, boxToLocal rl.Matrix) bool {
	if m == nil || m.root == nil || box.IsEmpty() {
		return false
	}

	center := box.Center()
	half := rl.Vector3Scale(box.Size(), 0.5)
	origin := rl.Vector3Transform(center, boxToLocal)

	// Oriented box axes in local space; the half extents absorb any scale.
	var axes [3]rl.Vector3
	var extents rl.Vector3
	for i := 0; i < 3; i++ {
		offset := SetAxis(rl.Vector3{}, i, Axis(half, i))
		edge := rl.Vector3Subtract(rl.Vector3Transform(rl.Vector3Add(center, offset), boxToLocal), origin)
		length := rl.Vector3Length(edge)
		extents = SetAxis(extents, i, length)
		if length > 0 {
			axes[i] = rl.Vector3Scale(edge, 1/length)
		} else {
			axes[i] = SetAxis(rl.Vector3{}, i, 1)
		}
	}

	toBox := func(v rl.Vector3) rl.Vector3 {
		d := rl.Vector3Subtract(v, origin)
		return rl.Vector3{
			X: rl.Vector3DotProduct(d, axes[0]),
			Y: rl.Vector3DotProduct(d, axes[1]),
			Z: rl.Vector3DotProduct(d, axes[2]),
		}
	}

	query := box.Transform(boxToLocal)
	stack := []*BVHNode{m.root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !node.Bounds.Intersects(query) {
			continue
		}
		if !node.IsLeaf() {
			stack = append(stack, node.Left, node.Right)
			continue
		}
		for _, idx := range node.Triangles {
			tri := &m.Triangles[idx]
			if triangleOverlapsBox(toBox(tri.V0), toBox(tri.V1), toBox(tri.V2), extents) {
				return true
			}
		}
	}
	return false
}
