package components

import (
	"testing"

	"clawmachine/internal/engine"
	"clawmachine/internal/geometry"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

func near(a, b float32) bool {
	return math32.Abs(a-b) < 1e-4
}

func newBody(name string, mass float32, pos rl.Vector3) (*engine.GameObject, *Rigidbody) {
	g := engine.NewGameObject(name)
	g.Transform.Position = pos
	g.AddComponent(NewMeshCollider(geometry.NewBoxMesh(rl.Vector3{X: 1, Y: 1, Z: 1})))
	rb := NewRigidbody(mass)
	g.AddComponent(rb)
	rb.CaptureFromObject()
	return g, rb
}

func TestNewRigidbodyDefaults(t *testing.T) {
	_, rb := newBody("cube", 2, rl.Vector3{Y: 1})

	if !near(rb.InverseMass, 0.5) {
		t.Errorf("InverseMass = %v, want 0.5", rb.InverseMass)
	}
	if rb.Restitution != 0 || !near(rb.Friction, 0.5) {
		t.Errorf("restitution/friction = %v/%v, want 0/0.5", rb.Restitution, rb.Friction)
	}
	if !near(rb.BoundingRadius, math32.Sqrt(3)/2) {
		t.Errorf("BoundingRadius = %v, want half the unit cube diagonal", rb.BoundingRadius)
	}
	if rb.Position.Y != 1 {
		t.Errorf("Position not captured from transform: %v", rb.Position)
	}

	kin := NewRigidbody(0)
	if !kin.IsKinematic() {
		t.Error("mass 0 should be kinematic")
	}
}

func TestApplyImpulse(t *testing.T) {
	_, rb := newBody("cube", 2, rl.Vector3{})
	rb.IsSleeping = true
	rb.SleepyTimer = 7

	rb.ApplyImpulse(rl.Vector3{X: 2}, rl.Vector3{Y: 1})

	if rb.IsSleeping || rb.SleepyTimer != 0 {
		t.Error("impulse should wake the body")
	}
	if !near(rb.LinearVelocity.X, 1) {
		t.Errorf("LinearVelocity.X = %v, want 1", rb.LinearVelocity.X)
	}
	// (0,1,0) x (2,0,0) = (0,0,-2), scaled by inverse mass
	if !near(rb.AngularVelocity.Z, -1) {
		t.Errorf("AngularVelocity.Z = %v, want -1", rb.AngularVelocity.Z)
	}

	_, kin := newBody("wall", 0, rl.Vector3{})
	kin.ApplyImpulse(rl.Vector3{X: 5}, rl.Vector3{})
	if kin.LinearVelocity.X != 0 {
		t.Error("kinematic bodies ignore impulses")
	}
}

func TestIntegrateAppliesForceAndDamping(t *testing.T) {
	g, rb := newBody("cube", 1, rl.Vector3{})
	rb.Force = rl.Vector3{Y: -9.81}
	dt := float32(1.0 / 60.0)

	rb.Integrate(dt)

	wantV := -9.81 * dt
	if !near(rb.Position.Y, wantV*dt) {
		t.Errorf("Position.Y = %v, want %v", rb.Position.Y, wantV*dt)
	}
	if !near(rb.LinearVelocity.Y, wantV*0.92) {
		t.Errorf("LinearVelocity.Y = %v, want damped %v", rb.LinearVelocity.Y, wantV*0.92)
	}
	if rb.Force != (rl.Vector3{}) {
		t.Error("force accumulator should be cleared")
	}
	if g.Transform.Position != rb.Position {
		t.Error("transform should mirror the body position")
	}
}

func TestIntegrateKeepsOrientationNormalised(t *testing.T) {
	_, rb := newBody("cube", 1, rl.Vector3{})
	for i := 0; i < 50; i++ {
		rb.AngularVelocity = rl.Vector3{X: 3, Y: 7, Z: -2}
		rb.Integrate(1.0 / 60.0)
	}
	q := rb.Orientation
	if l := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W); !near(l, 1) {
		t.Errorf("orientation length = %v, want 1", l)
	}
	if q == rl.QuaternionIdentity() {
		t.Error("orientation should have changed")
	}
}

func TestIntegrateSkippedStatesStillSync(t *testing.T) {
	tests := []struct {
		name string
		set  func(*Rigidbody)
	}{
		{"held", func(r *Rigidbody) { r.IsHeld = true }},
		{"blocked", func(r *Rigidbody) { r.IsBlocked = true }},
		{"dispensed", func(r *Rigidbody) { r.IsBeingDispensed = true }},
		{"sleeping", func(r *Rigidbody) { r.IsSleeping = true }},
		{"kinematic", func(r *Rigidbody) { r.SetMass(0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, rb := newBody("cube", 1, rl.Vector3{})
			tt.set(rb)
			rb.LinearVelocity = rl.Vector3{X: 3}
			rb.Position = rl.Vector3{X: 4, Y: 5, Z: 6}

			rb.Integrate(1.0 / 60.0)

			if rb.Position != (rl.Vector3{X: 4, Y: 5, Z: 6}) {
				t.Errorf("position integrated while skipped: %v", rb.Position)
			}
			if rb.LinearVelocity.X != 3 {
				t.Error("velocity should be untouched")
			}
			if g.Transform.Position != rb.Position {
				t.Error("transform should still mirror the body")
			}
		})
	}
}

func TestBodyFallsAsleepAfterQuietFrames(t *testing.T) {
	_, rb := newBody("cube", 1, rl.Vector3{})
	rb.LinearVelocity = rl.Vector3{X: 0.01}

	for i := 0; i < FramesToSleep-1; i++ {
		rb.Integrate(1.0 / 60.0)
	}
	if rb.IsSleeping {
		t.Fatal("slept too early")
	}
	rb.Integrate(1.0 / 60.0)
	if !rb.IsSleeping {
		t.Fatal("expected body to sleep")
	}
	if rb.LinearVelocity != (rl.Vector3{}) || rb.AngularVelocity != (rl.Vector3{}) {
		t.Error("sleeping body should have zero velocity")
	}
}

func TestEnergeticBodyResetsSleepTimer(t *testing.T) {
	_, rb := newBody("cube", 1, rl.Vector3{})
	rb.SleepyTimer = 10
	rb.LinearVelocity = rl.Vector3{X: 5}

	rb.Integrate(1.0 / 60.0)

	if rb.SleepyTimer != 0 {
		t.Errorf("SleepyTimer = %d, want 0", rb.SleepyTimer)
	}
}

func TestWorldVerticesFollowPose(t *testing.T) {
	_, rb := newBody("cube", 1, rl.Vector3{})
	rb.Position = rl.Vector3{Y: 2}
	rb.Orientation = rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, math32.Pi/4)

	verts := rb.WorldVertices()
	if len(verts) != 8 {
		t.Fatalf("got %d vertices, want 8", len(verts))
	}
	b := rb.WorldBounds()
	if !near(b.Max.X, math32.Sqrt(2)/2) || !near(b.Center().Y, 2) {
		t.Errorf("world bounds = %+v", b)
	}
}

func TestColliderMatchesRotatedVertices(t *testing.T) {
	g := engine.NewGameObject("bar")
	col := NewMeshCollider(geometry.NewBoxMesh(rl.Vector3{X: 1, Y: 0.1, Z: 0.1}))
	g.AddComponent(col)
	rb := NewRigidbody(1)
	g.AddComponent(rb)
	rb.CaptureFromObject()

	rb.Position = rl.Vector3{X: 0.5, Y: 1}
	rb.Orientation = rl.QuaternionFromAxisAngle(rl.Vector3{Z: 1}, math32.Pi/4)
	rb.SyncTransform()

	// The +X end of the bar tilts up.
	tip := rl.Vector3Add(rb.Position, rl.Vector3RotateByQuaternion(rl.Vector3{X: 0.5}, rb.Orientation))
	if tip.Y <= rb.Position.Y {
		t.Fatalf("tip %v should sit above the centre", tip)
	}

	bounds := rb.WorldBounds()
	for _, v := range rb.WorldVertices() {
		_, dist, err := col.ClosestPoint(v)
		if err != nil {
			t.Fatal(err)
		}
		if dist > 1e-3 {
			t.Errorf("vertex %v is %v away from the collider surface", v, dist)
		}
		if !bounds.ExpandByScalar(1e-4).ContainsPoint(v) {
			t.Errorf("vertex %v outside world bounds %+v", v, bounds)
		}
	}

	tipBox := geometry.NewAABBFromCenter(tip, rl.Vector3{X: 0.02, Y: 0.02, Z: 0.02})
	if !col.IntersectsWorldBox(tipBox) {
		t.Errorf("collider misses the tip at %v", tip)
	}
	mirrored := rl.Vector3{X: tip.X, Y: 2*rb.Position.Y - tip.Y, Z: tip.Z}
	if col.IntersectsWorldBox(geometry.NewAABBFromCenter(mirrored, rl.Vector3{X: 0.02, Y: 0.02, Z: 0.02})) {
		t.Errorf("collider reaches the mirrored tip at %v", mirrored)
	}
}

func TestApplyContactImpulseKeepsSleepCounter(t *testing.T) {
	tests := []struct {
		name      string
		velocity  rl.Vector3
		wantTimer int
	}{
		{"resting contact keeps the counter", rl.Vector3{Y: -0.15}, 12},
		{"energetic contact resets it", rl.Vector3{Y: -2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rb := newBody("cube", 1, rl.Vector3{})
			rb.LinearVelocity = tt.velocity
			rb.SleepyTimer = 12

			rb.ApplyContactImpulse(rl.Vector3{Y: -tt.velocity.Y}, rl.Vector3{Y: -0.5})

			if rb.SleepyTimer != tt.wantTimer {
				t.Errorf("SleepyTimer = %d, want %d", rb.SleepyTimer, tt.wantTimer)
			}
			if !near(rb.LinearVelocity.Y, 0) {
				t.Errorf("LinearVelocity.Y = %v, want 0", rb.LinearVelocity.Y)
			}
		})
	}
}
