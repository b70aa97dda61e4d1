package interaction

import (
	"testing"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/components"
	"clawmachine/internal/engine"
	"clawmachine/internal/geometry"
)

func near(a, b float32) bool {
	return math32.Abs(a-b) < 1e-4
}

func newProxy(name string, pos rl.Vector3) *engine.GameObject {
	g := engine.NewGameObject(name)
	g.Transform.Position = pos
	g.AddComponent(components.NewMeshCollider(geometry.NewCylinderMesh(0.035, 0.4, 8)))
	return g
}

func newPrize(name string, pos rl.Vector3) *components.Rigidbody {
	g := engine.NewGameObject(name)
	g.Transform.Position = pos
	g.AddComponent(components.NewMeshCollider(geometry.NewBoxMesh(rl.Vector3{X: 0.24, Y: 0.24, Z: 0.24})))
	rb := components.NewRigidbody(1)
	g.AddComponent(rb)
	rb.CaptureFromObject()
	return rb
}

// setup places fingers A and B on opposite faces of a prize at the origin
// and finger C well away from it.
func setup() (*Interaction, *components.Rigidbody, []*engine.GameObject) {
	proxies := []*engine.GameObject{
		newProxy("Cylinder", rl.Vector3{X: 0.12}),
		newProxy("Cylinder003", rl.Vector3{X: -0.12}),
		newProxy("Cylinder008", rl.Vector3{X: 5}),
	}
	in := New(proxies)
	prize := newPrize("star_0", rl.Vector3{})
	in.AddGrabbableObject(prize, "star_0")
	return in, prize, proxies
}

func TestFingerCollisions(t *testing.T) {
	in, _, _ := setup()
	in.Update()

	if !in.HasCollisions() {
		t.Fatal("expected finger collisions")
	}
	fingers := in.CollidingFingers()
	if len(fingers) != 2 || fingers[0] != FingerA || fingers[1] != FingerB {
		t.Errorf("colliding fingers = %v, want [A B]", fingers)
	}
	if touched := in.TouchedObjects(); len(touched) != 1 || touched[0].Name != "star_0" {
		t.Errorf("touched = %v, want star_0 once", touched)
	}
	if _, ok := in.Contact(FingerC); ok {
		t.Error("finger C should have no contact")
	}
}

func TestGrabbableCandidateThreshold(t *testing.T) {
	tests := []struct {
		threshold int
		wantOK    bool
	}{
		{1, true},
		{2, true},
		{3, false},
	}

	in, prize, _ := setup()
	in.Update()

	for _, tt := range tests {
		c := in.GrabbableCandidate(tt.threshold)
		if c.OK != tt.wantOK {
			t.Errorf("threshold %d: OK = %v, want %v", tt.threshold, c.OK, tt.wantOK)
		}
		if c.OK && (c.Body != prize || c.Name != "star_0") {
			t.Errorf("threshold %d: candidate = %+v", tt.threshold, c)
		}
	}
}

func TestContactForcePushesAway(t *testing.T) {
	in := New([]*engine.GameObject{newProxy("Cylinder", rl.Vector3{X: 0.12})})
	prize := newPrize("star_0", rl.Vector3{})
	prize.IsSleeping = true
	prize.SleepyTimer = 5
	in.AddGrabbableObject(prize, "star_0")

	in.Update()

	c, ok := in.Contact(FingerA)
	if !ok {
		t.Fatal("finger A should touch the prize")
	}
	// Finger centre sits on the face: depth is half the finger width plus padding.
	if !near(c.Depth, 0.045) {
		t.Errorf("depth = %v, want 0.045", c.Depth)
	}
	if !near(prize.Force.X, -0.9) {
		t.Errorf("force = %v, want -0.9 along X", prize.Force)
	}
	if prize.IsSleeping || prize.SleepyTimer != 0 {
		t.Error("contact should wake the prize")
	}
}

func TestSkippedObjects(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *components.Rigidbody)
	}{
		{"held", func(b *components.Rigidbody) { b.IsHeld = true }},
		{"ignores claw", func(b *components.Rigidbody) { b.IgnoreClawCollision = true }},
		{"kinematic", func(b *components.Rigidbody) { b.SetMass(0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, prize, _ := setup()
			tt.setup(prize)
			in.Update()

			if in.HasCollisions() {
				t.Error("skipped object should not collide")
			}
			if in.GrabbableCandidate(2).OK {
				t.Error("skipped object should not be a candidate")
			}
		})
	}
}

func TestFingerContactEventFiresOnNewTouch(t *testing.T) {
	in, _, proxies := setup()
	var events []Finger
	in.OnFingerContact.AddListener(func(fc FingerContact) {
		events = append(events, fc.Finger)
	})

	in.Update()
	in.Update()
	if len(events) != 2 {
		t.Fatalf("events after steady contact = %v, want one per finger", events)
	}

	// Lift finger A away and back.
	proxies[0].Transform.Position.X = 3
	in.Update()
	proxies[0].Transform.Position.X = 0.12
	in.Update()
	if len(events) != 3 || events[2] != FingerA {
		t.Errorf("events = %v, want a new A contact", events)
	}
}

func TestRemoveGrabbableObject(t *testing.T) {
	in, prize, _ := setup()
	in.RemoveGrabbableObject(prize)
	in.Update()

	if len(in.Objects()) != 0 || in.HasCollisions() {
		t.Error("removed object still tracked")
	}
}

func TestUnknownProxyIgnored(t *testing.T) {
	in := New([]*engine.GameObject{newProxy("Finger", rl.Vector3{X: 0.12}), nil})
	prize := newPrize("star_0", rl.Vector3{})
	in.AddGrabbableObject(prize, "star_0")
	in.Update()

	if in.HasCollisions() {
		t.Error("unmapped proxy should not register contacts")
	}
}
