package geometry

import (
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ErrNoBoundsTree is returned by queries against a mesh that has no BVH,
// either because it is nil or because it carries no triangles.
var ErrNoBoundsTree = errors.New("geometry: mesh has no bounds tree")

// Mesh is a local-space triangle soup with a BVH built once at construction.
// Queries take transforms instead of rebuilding the tree.
type Mesh struct {
	Triangles []Triangle
	vertices  []rl.Vector3
	bounds    AABB
	root      *BVHNode
}

// NewMesh builds a mesh from indexed vertices. Every three indices form one
// triangle; a trailing partial triangle is an error.
func NewMesh(vertices []rl.Vector3, indices []uint16) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("geometry: %d indices do not form whole triangles", len(indices))
	}

	m := &Mesh{
		Triangles: make([]Triangle, 0, len(indices)/3),
		vertices:  dedupe(vertices),
		bounds:    AABBFromPoints(vertices...),
	}
	for i := 0; i < len(indices); i += 3 {
		a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		if a >= len(vertices) || b >= len(vertices) || c >= len(vertices) {
			return nil, fmt.Errorf("geometry: triangle %d references vertex out of range", i/3)
		}
		m.Triangles = append(m.Triangles, NewTriangle(vertices[a], vertices[b], vertices[c]))
	}

	m.buildBVH()
	return m, nil
}

// mustMesh is for the procedural builders, whose indices are known good.
func mustMesh(vertices []rl.Vector3, indices []uint16) *Mesh {
	m, err := NewMesh(vertices, indices)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Mesh) Bounds() AABB {
	if m == nil {
		return EmptyAABB()
	}
	return m.bounds
}

// Vertices returns the unique local-space vertices.
func (m *Mesh) Vertices() []rl.Vector3 {
	if m == nil {
		return nil
	}
	return m.vertices
}

func (m *Mesh) HasBoundsTree() bool {
	return m != nil && m.root != nil
}

func dedupe(vertices []rl.Vector3) []rl.Vector3 {
	seen := make(map[rl.Vector3]struct{}, len(vertices))
	out := make([]rl.Vector3, 0, len(vertices))
	for _, v := range vertices {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
