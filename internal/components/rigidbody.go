package components

import (
	"log/slog"

	"clawmachine/internal/engine"
	"clawmachine/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Sleep thresholds
const (
	SleepThreshold = 0.1 // kinetic energy below which a body counts as resting
	FramesToSleep  = 30  // consecutive resting steps before the body sleeps
)

const (
	linearDamping  = 0.92
	angularDamping = 0.90
)

// Rigidbody is the physical state of one movable object. The GameObject
// transform mirrors Position and Orientation; it is never the source of
// truth while the body is registered with a physics world.
type Rigidbody struct {
	engine.BaseComponent

	Position        rl.Vector3
	Orientation     rl.Quaternion
	LinearVelocity  rl.Vector3
	AngularVelocity rl.Vector3
	Force           rl.Vector3
	Torque          rl.Vector3

	Mass           float32
	InverseMass    float32 // 0 means kinematic
	BoundingRadius float32
	Restitution    float32
	Friction       float32

	IsSleeping          bool
	IsBlocked           bool
	IsHeld              bool
	IsBeingDispensed    bool
	IsBeingReleased     bool
	IgnoreClawCollision bool
	CanFallThrough      bool
	IsCandy             bool

	// HasTouchedClaw latches the first time the body leaves its bounds for
	// two consecutive frames; only a respawn clears it.
	HasTouchedClaw    bool
	TouchedFrameCount int

	SleepyTimer int

	// WakeAt is the wall-clock time (ms) a bounds sleep lock expires; 0 when unset.
	WakeAt           float64
	ReleaseStartTime float64
}

func NewRigidbody(mass float32) *Rigidbody {
	r := &Rigidbody{
		Orientation: rl.QuaternionIdentity(),
		Friction:    0.5,
	}
	r.SetMass(mass)
	return r
}

func (r *Rigidbody) SetMass(mass float32) {
	r.Mass = mass
	if mass > 0 {
		r.InverseMass = 1 / mass
	} else {
		r.InverseMass = 0
	}
}

// CaptureFromObject copies the owning object's pose into the body and
// derives the bounding radius from the collider's world box. Call once the
// collider is attached and the object is placed.
func (r *Rigidbody) CaptureFromObject() {
	g := r.GetGameObject()
	if g == nil {
		return
	}
	r.Position = g.Transform.Position
	r.Orientation = g.Transform.Rotation
	if col := engine.GetComponent[*MeshCollider](g); col != nil && col.Mesh != nil {
		r.BoundingRadius = rl.Vector3Length(col.WorldBounds().Size()) * 0.5
	}
}

func (r *Rigidbody) Start() {
	r.CaptureFromObject()
}

// Name is the owning object's name, used in logs and events.
func (r *Rigidbody) Name() string {
	if g := r.GetGameObject(); g != nil {
		return g.Name
	}
	return ""
}

func (r *Rigidbody) IsKinematic() bool {
	return r.InverseMass == 0
}

func (r *Rigidbody) Collider() *MeshCollider {
	return engine.GetComponent[*MeshCollider](r.GetGameObject())
}

// ApplyImpulse changes momentum at a world-space point and wakes the body,
// resetting its sleep counter. Solver contacts go through
// ApplyContactImpulse, which keeps the counter for low-energy bodies.
func (r *Rigidbody) ApplyImpulse(impulse, point rl.Vector3) {
	if r.InverseMass == 0 {
		return
	}
	r.Wake()
	r.LinearVelocity = rl.Vector3Add(r.LinearVelocity, rl.Vector3Scale(impulse, r.InverseMass))
	relative := rl.Vector3Subtract(point, r.Position)
	r.AngularVelocity = rl.Vector3Add(r.AngularVelocity,
		rl.Vector3Scale(rl.Vector3CrossProduct(relative, impulse), r.InverseMass))
}

// ApplyContactImpulse is ApplyImpulse for resting contacts: the body is
// woken, but its sleep counter only resets when it was carrying real
// energy. A body settling on a floor gets a small corrective impulse every
// step and must still be able to fall asleep.
func (r *Rigidbody) ApplyContactImpulse(impulse, point rl.Vector3) {
	if r.InverseMass == 0 {
		return
	}
	energetic := r.KineticEnergy() >= SleepThreshold
	timer := r.SleepyTimer
	r.ApplyImpulse(impulse, point)
	if !energetic {
		r.SleepyTimer = timer
	}
}

// AddForceAtPoint accumulates a force and the torque it produces about the
// body's position.
func (r *Rigidbody) AddForceAtPoint(force, point rl.Vector3) {
	relative := rl.Vector3Subtract(point, r.Position)
	r.Force = rl.Vector3Add(r.Force, force)
	r.Torque = rl.Vector3Add(r.Torque, rl.Vector3CrossProduct(relative, force))
}

// Wake forces the rigidbody out of sleep state
func (r *Rigidbody) Wake() {
	r.IsSleeping = false
	r.SleepyTimer = 0
}

// Sleep puts the body to rest with no motion.
func (r *Rigidbody) Sleep() {
	r.IsSleeping = true
	r.LinearVelocity = rl.Vector3{}
	r.AngularVelocity = rl.Vector3{}
}

// ClearMotion zeroes velocities and the force accumulators.
func (r *Rigidbody) ClearMotion() {
	r.LinearVelocity = rl.Vector3{}
	r.AngularVelocity = rl.Vector3{}
	r.Force = rl.Vector3{}
	r.Torque = rl.Vector3{}
}

// KineticEnergy treats the inertia tensor as identity.
func (r *Rigidbody) KineticEnergy() float32 {
	v := r.LinearVelocity
	w := r.AngularVelocity
	return 0.5*r.Mass*rl.Vector3DotProduct(v, v) + 0.5*rl.Vector3DotProduct(w, w)
}

// Integrate advances the body by dt. Kinematic, sleeping, blocked, held and
// dispensed bodies are not simulated, but their transform is still synced
// so external drivers can move them by writing Position.
func (r *Rigidbody) Integrate(dt float32) {
	if !(r.InverseMass == 0 || r.IsSleeping || r.IsBlocked || r.IsBeingDispensed || r.IsHeld) {
		r.LinearVelocity = rl.Vector3Add(r.LinearVelocity, rl.Vector3Scale(r.Force, r.InverseMass*dt))
		r.AngularVelocity = rl.Vector3Add(r.AngularVelocity, rl.Vector3Scale(r.Torque, dt))

		r.Position = rl.Vector3Add(r.Position, rl.Vector3Scale(r.LinearVelocity, dt))

		// First-order update: q += (w*dt/2) * q, then renormalise.
		half := rl.Vector3Scale(r.AngularVelocity, dt*0.5)
		delta := rl.QuaternionMultiply(rl.Quaternion{X: half.X, Y: half.Y, Z: half.Z, W: 0}, r.Orientation)
		r.Orientation = rl.QuaternionNormalize(rl.Quaternion{
			X: r.Orientation.X + delta.X,
			Y: r.Orientation.Y + delta.Y,
			Z: r.Orientation.Z + delta.Z,
			W: r.Orientation.W + delta.W,
		})

		r.Force = rl.Vector3{}
		r.Torque = rl.Vector3{}

		r.LinearVelocity = rl.Vector3Scale(r.LinearVelocity, linearDamping)
		r.AngularVelocity = rl.Vector3Scale(r.AngularVelocity, angularDamping)

		if r.KineticEnergy() < SleepThreshold {
			r.SleepyTimer++
			if r.SleepyTimer >= FramesToSleep {
				r.Sleep()
			}
		} else {
			r.SleepyTimer = 0
		}
	}

	r.SyncTransform()
}

// SyncTransform mirrors the body pose onto the owning object.
func (r *Rigidbody) SyncTransform() {
	if g := r.GetGameObject(); g != nil {
		g.Transform.Position = r.Position
		g.Transform.Rotation = r.Orientation
	}
}

// WorldBounds is the AABB of the body's mesh at its current pose.
func (r *Rigidbody) WorldBounds() geometry.AABB {
	col := r.Collider()
	if col == nil || col.Mesh == nil {
		return geometry.NewAABBFromCenter(r.Position, rl.Vector3{})
	}
	return col.Mesh.Bounds().Transform(r.poseMatrix())
}

// WorldVertices returns the mesh's unique vertices scaled, rotated by the
// body orientation and offset by its position.
func (r *Rigidbody) WorldVertices() []rl.Vector3 {
	col := r.Collider()
	if col == nil || col.Mesh == nil {
		return nil
	}
	local := col.Mesh.Vertices()
	scale := r.scale()
	out := make([]rl.Vector3, len(local))
	for i, v := range local {
		v = rl.Vector3{X: v.X * scale.X, Y: v.Y * scale.Y, Z: v.Z * scale.Z}
		out[i] = rl.Vector3Add(rl.Vector3RotateByQuaternion(v, r.Orientation), r.Position)
	}
	return out
}

func (r *Rigidbody) scale() rl.Vector3 {
	if g := r.GetGameObject(); g != nil {
		return g.Transform.Scale
	}
	return rl.Vector3{X: 1, Y: 1, Z: 1}
}

func (r *Rigidbody) poseMatrix() rl.Matrix {
	s := r.scale()
	return engine.Transform{Position: r.Position, Rotation: r.Orientation, Scale: s}.Matrix()
}

// LogValue implements slog.LogValuer.
func (r *Rigidbody) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", r.Name()),
		slog.Any("position", r.Position),
		slog.Bool("sleeping", r.IsSleeping),
		slog.Bool("held", r.IsHeld),
		slog.Bool("releasing", r.IsBeingReleased),
	)
}
