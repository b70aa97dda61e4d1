package world

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/components"
	"clawmachine/internal/engine"
	"clawmachine/internal/geometry"
)

const floorSize = 12

// Renderer draws the world as debug geometry: every collider is drawn the
// way it collides. Must be called between BeginMode3D and EndMode3D.
type Renderer struct {
	ShowBounds bool
	// Culled counts objects skipped by frustum culling on the last frame.
	Culled int
}

func NewRenderer() *Renderer {
	return &Renderer{ShowBounds: true}
}

func (r *Renderer) Draw(w *World, camera rl.Camera3D, aspect float32) {
	frustum := ExtractFrustum(camera, aspect)
	r.Culled = 0

	rl.DrawGrid(floorSize, 0.5)
	drawBox(w.MachineBox(), rl.Gray)

	for _, g := range w.Scene.GameObjects {
		r.drawObject(g, &frustum)
	}

	if r.ShowBounds {
		if b, ok := w.Physics.PrizeBounds(); ok {
			drawBox(b, rl.Fade(rl.Green, 0.4))
		}
		if b, ok := w.Physics.CandyBounds(); ok {
			drawBox(b, rl.Fade(rl.Lime, 0.4))
		}
	}

	r.drawDispenser(w)
	r.drawClawTarget(w)
}

func (r *Renderer) drawObject(g *engine.GameObject, frustum *Frustum) {
	if !g.Active || !g.Visible {
		return
	}
	if renderer := engine.GetComponent[*components.MeshRenderer](g); renderer != nil {
		col := engine.GetComponent[*components.MeshCollider](g)
		if col != nil && col.Mesh != nil && !frustum.ContainsBox(col.WorldBounds()) {
			r.Culled++
		} else {
			renderer.Draw()
		}
	}
	for _, child := range g.Children {
		r.drawObject(child, frustum)
	}
}

// drawDispenser shows the parts of the candy machine that are not
// simulated: the lowered gate, the release door and the knob.
func (r *Renderer) drawDispenser(w *World) {
	d := w.Dispenser
	target := d.Target()

	gate := rl.Vector3{X: target.X, Y: target.Y - d.GateOffset(), Z: target.Z}
	rl.DrawCubeWires(gate, 0.4, 0.05, 0.4, rl.Maroon)

	hinge := w.cfg.Candy.DoorHinge.Vector()
	angle := d.DoorAngle()
	tip := rl.Vector3{X: hinge.X, Y: hinge.Y - 0.3*math32.Cos(angle), Z: hinge.Z + 0.3*math32.Sin(angle)}
	rl.DrawLine3D(hinge, tip, rl.Maroon)

	knob := rl.Vector3{X: target.X + 0.6, Y: target.Y, Z: target.Z + 0.1}
	spoke := rl.Vector3{X: knob.X + 0.15*math32.Cos(d.KnobAngle()), Y: knob.Y, Z: knob.Z + 0.15*math32.Sin(d.KnobAngle())}
	rl.DrawCylinderWires(knob, 0.15, 0.15, 0.05, 12, rl.Gold)
	rl.DrawLine3D(knob, spoke, rl.Gold)

	if candy := d.DispensingCandy(); candy != nil {
		rl.DrawSphereWires(candy.Position, d.CandyRadius()*1.3, 6, 8, rl.White)
	}
}

// drawClawTarget marks where the claw will stop on its way down.
func (r *Renderer) drawClawTarget(w *World) {
	c := w.Claw
	pos := c.Rig().Position()
	if c.IsAnimating() {
		target := rl.Vector3{X: pos.X, Y: c.DropTargetY(), Z: pos.Z}
		rl.DrawLine3D(pos, target, rl.Yellow)
		rl.DrawSphere(target, 0.02, rl.Yellow)
	} else {
		floor := rl.Vector3{X: pos.X, Y: w.MachineBox().Min.Y, Z: pos.Z}
		rl.DrawLine3D(pos, floor, rl.Fade(rl.Yellow, 0.3))
	}
	if c.IsInDropZone() {
		drawBox(w.ChuteBox(), rl.Green)
	}
}

func drawBox(b geometry.AABB, color rl.Color) {
	rl.DrawBoundingBox(rl.BoundingBox{Min: b.Min, Max: b.Max}, color)
}
