package components

import (
	"fmt"

	"clawmachine/internal/engine"
	"clawmachine/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// BoundsTree is the spatial index a collider carries. Queries run in the
// tree's local space; callers pass the matrix that maps their geometry in.
type BoundsTree interface {
	IntersectsMesh(other *geometry.Mesh, otherToLocal rl.Matrix) bool
	ClosestPoint(p rl.Vector3) (rl.Vector3, float32, error)
	IntersectsBox(box geometry.AABB, boxToLocal rl.Matrix) bool
	Bounds() geometry.AABB
	Vertices() []rl.Vector3
}

var _ BoundsTree = (*geometry.Mesh)(nil)

// MeshCollider attaches a BVH-backed mesh to a GameObject. Unlike a baked
// collider it follows the object: every query composes the current world
// matrix, so bodies and claw fingers can move freely.
type MeshCollider struct {
	engine.BaseComponent
	Mesh *geometry.Mesh
}

func NewMeshCollider(mesh *geometry.Mesh) *MeshCollider {
	return &MeshCollider{Mesh: mesh}
}

// IsBuilt returns true if the BVH has been built
func (m *MeshCollider) IsBuilt() bool {
	return m != nil && m.Mesh.HasBoundsTree()
}

// Tree returns the collider's bounds tree, or nil when there is none.
func (m *MeshCollider) Tree() BoundsTree {
	if !m.IsBuilt() {
		return nil
	}
	return m.Mesh
}

// TriangleCount returns the number of triangles in the collider
func (m *MeshCollider) TriangleCount() int {
	if m == nil || m.Mesh == nil {
		return 0
	}
	return len(m.Mesh.Triangles)
}

func (m *MeshCollider) WorldMatrix() rl.Matrix {
	if g := m.GetGameObject(); g != nil {
		return g.WorldMatrix()
	}
	return rl.MatrixIdentity()
}

// WorldBounds is the world AABB of the mesh at the object's current pose.
func (m *MeshCollider) WorldBounds() geometry.AABB {
	if m == nil || m.Mesh == nil {
		return geometry.EmptyAABB()
	}
	return m.Mesh.Bounds().Transform(m.WorldMatrix())
}

// Center is the world-space centre of the local bounding box.
func (m *MeshCollider) Center() rl.Vector3 {
	return rl.Vector3Transform(m.Mesh.Bounds().Center(), m.WorldMatrix())
}

// Intersects maps other into this collider's frame and tests the two
// surfaces. A collider without a tree never intersects.
func (m *MeshCollider) Intersects(other *MeshCollider) bool {
	if !m.IsBuilt() || !other.IsBuilt() {
		return false
	}
	otherToLocal := rl.MatrixMultiply(other.WorldMatrix(), rl.MatrixInvert(m.WorldMatrix()))
	return m.Mesh.IntersectsMesh(other.Mesh, otherToLocal)
}

// ClosestPoint returns the nearest world-space surface point to p and the
// world distance to it.
func (m *MeshCollider) ClosestPoint(p rl.Vector3) (rl.Vector3, float32, error) {
	tree := m.Tree()
	if tree == nil {
		return rl.Vector3{}, 0, fmt.Errorf("closest point on %s: %w", m.name(), geometry.ErrNoBoundsTree)
	}
	world := m.WorldMatrix()
	local, _, err := tree.ClosestPoint(rl.Vector3Transform(p, rl.MatrixInvert(world)))
	if err != nil {
		return rl.Vector3{}, 0, fmt.Errorf("closest point on %s: %w", m.name(), err)
	}
	closest := rl.Vector3Transform(local, world)
	return closest, rl.Vector3Distance(p, closest), nil
}

// IntersectsWorldBox tests a world-space AABB against the mesh surface.
func (m *MeshCollider) IntersectsWorldBox(box geometry.AABB) bool {
	tree := m.Tree()
	if tree == nil {
		return false
	}
	return tree.IntersectsBox(box, rl.MatrixInvert(m.WorldMatrix()))
}

func (m *MeshCollider) name() string {
	if g := m.GetGameObject(); g != nil {
		return g.Name
	}
	return "<detached>"
}
