package components

import (
	"clawmachine/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type DrawMode int

const (
	DrawSolid DrawMode = iota
	DrawWireframe
)

// MeshRenderer draws the object's collider mesh at its world pose. The
// viewer has no asset pipeline, so what you see is what collides.
type MeshRenderer struct {
	engine.BaseComponent
	Mode  DrawMode
	Color rl.Color
}

func NewMeshRenderer(mode DrawMode, color rl.Color) *MeshRenderer {
	return &MeshRenderer{
		Mode:  mode,
		Color: color,
	}
}

func (m *MeshRenderer) Draw() {
	g := m.GetGameObject()
	if g == nil || !g.Active || !g.Visible {
		return
	}
	col := engine.GetComponent[*MeshCollider](g)
	if col == nil || col.Mesh == nil {
		return
	}

	world := g.WorldMatrix()
	for _, tri := range col.Mesh.Triangles {
		v0 := rl.Vector3Transform(tri.V0, world)
		v1 := rl.Vector3Transform(tri.V1, world)
		v2 := rl.Vector3Transform(tri.V2, world)

		switch m.Mode {
		case DrawSolid:
			rl.DrawTriangle3D(v0, v1, v2, m.Color)
		case DrawWireframe:
			rl.DrawLine3D(v0, v1, m.Color)
			rl.DrawLine3D(v1, v2, m.Color)
			rl.DrawLine3D(v2, v0, m.Color)
		}
	}
}
