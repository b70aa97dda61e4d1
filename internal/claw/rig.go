package claw

import (
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/components"
	"clawmachine/internal/engine"
	"clawmachine/internal/geometry"
	"clawmachine/internal/interaction"
)

// Rig geometry
const (
	boneRadius     = 0.22
	fingerRadius   = 0.035
	fingerLength   = 0.4
	fingerSegments = 10
	// openRoll is the rest angle of each finger; negative roll swings the
	// tip towards the claw axis.
	openRoll = 0.35
)

var hubSize = rl.Vector3{X: 0.3, Y: 0.1, Z: 0.3}

// proxyNames are the finger collision proxies, indexed by finger.
var proxyNames = [...]string{
	interaction.FingerA: "Cylinder",
	interaction.FingerB: "Cylinder003",
	interaction.FingerC: "Cylinder008",
}

// Rig is the three-fingered gripper: a group object carrying a hub and
// three bones, each with a cylinder proxy hanging below it.
type Rig struct {
	Group     *engine.GameObject
	Hub       *engine.GameObject
	Bones     [3]*engine.GameObject
	Cylinders [3]*engine.GameObject

	yaw      [3]rl.Quaternion
	roll     [3]float32
	restRoll [3]float32
}

// NewRig builds the gripper at the origin with the fingers open. Bones are
// spaced 120 degrees apart around the claw axis.
func NewRig(name string) *Rig {
	r := &Rig{Group: engine.NewGameObject(name)}

	r.Hub = engine.NewGameObject(name + "_hub")
	r.Hub.Transform.Position = rl.Vector3{Y: hubSize.Y / 2}
	r.Hub.AddComponent(components.NewMeshCollider(geometry.NewBoxMesh(hubSize)))
	r.Hub.AddComponent(components.NewMeshRenderer(components.DrawSolid, rl.Gray))
	r.Group.AddChild(r.Hub)

	for _, f := range interaction.Fingers {
		yaw := rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, float32(f)*2*math32.Pi/3)
		r.yaw[f] = yaw

		bone := engine.NewGameObject(fmt.Sprintf("%s_bone%s", name, f))
		bone.Transform.Position = rl.Vector3RotateByQuaternion(rl.Vector3{X: boneRadius}, yaw)
		r.Group.AddChild(bone)
		r.Bones[f] = bone

		cyl := engine.NewGameObject(proxyNames[f])
		cyl.Transform.Position = rl.Vector3{Y: -fingerLength / 2}
		cyl.AddComponent(components.NewMeshCollider(geometry.NewCylinderMesh(fingerRadius, fingerLength, fingerSegments)))
		cyl.AddComponent(components.NewMeshRenderer(components.DrawSolid, rl.LightGray))
		bone.AddChild(cyl)
		r.Cylinders[f] = cyl

		r.restRoll[f] = openRoll
		r.SetRoll(f, openRoll)
	}
	return r
}

// Roll is the finger's current swing angle about its bone's local Z.
func (r *Rig) Roll(f interaction.Finger) float32 {
	return r.roll[f]
}

func (r *Rig) RestRoll(f interaction.Finger) float32 {
	return r.restRoll[f]
}

func (r *Rig) SetRoll(f interaction.Finger, angle float32) {
	r.roll[f] = angle
	roll := rl.QuaternionFromAxisAngle(rl.Vector3{Z: 1}, angle)
	r.Bones[f].Transform.Rotation = rl.QuaternionMultiply(r.yaw[f], roll)
}

func (r *Rig) Position() rl.Vector3 {
	return r.Group.Transform.Position
}

func (r *Rig) SetPosition(p rl.Vector3) {
	r.Group.Transform.Position = p
}

// Proxies returns the finger collision proxies in finger order.
func (r *Rig) Proxies() []*engine.GameObject {
	return r.Cylinders[:]
}

// FingerBounds is the world box of one finger proxy.
func (r *Rig) FingerBounds(f interaction.Finger) geometry.AABB {
	return engine.GetComponent[*components.MeshCollider](r.Cylinders[f]).WorldBounds()
}

// WorldBounds is the world box around the hub and every finger.
func (r *Rig) WorldBounds() geometry.AABB {
	box := engine.GetComponent[*components.MeshCollider](r.Hub).WorldBounds()
	for _, f := range interaction.Fingers {
		box = box.Union(r.FingerBounds(f))
	}
	return box
}
