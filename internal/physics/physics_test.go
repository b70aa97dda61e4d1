package physics

import (
	"testing"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/components"
	"clawmachine/internal/engine"
	"clawmachine/internal/geometry"
)

const dt = float32(1.0 / 60.0)

func near(a, b, eps float32) bool {
	return math32.Abs(a-b) < eps
}

func addBody(p *PhysicsWorld, name string, mesh *geometry.Mesh, pos rl.Vector3, mass float32) *components.Rigidbody {
	g := engine.NewGameObject(name)
	g.Transform.Position = pos
	g.AddComponent(components.NewMeshCollider(mesh))
	rb := components.NewRigidbody(mass)
	g.AddComponent(rb)
	p.AddBody(rb)
	return rb
}

func unitCube() *geometry.Mesh {
	return geometry.NewBoxMesh(rl.Vector3{X: 1, Y: 1, Z: 1})
}

func TestStaticPenetrationPushesOut(t *testing.T) {
	p := NewPhysicsWorld(engine.NewManualClock(0))
	floor := engine.NewGameObject("floor")
	floor.AddComponent(components.NewMeshCollider(geometry.NewQuadMesh(4, 4)))
	p.AddStaticCollider(floor)

	body := addBody(p, "cube", unitCube(), rl.Vector3{Y: 0.3}, 1)
	pen := body.BoundingRadius - 0.3

	p.resolveStaticCollisions()

	if want := 0.3 + 2*pen; !near(body.Position.Y, want, 1e-3) {
		t.Errorf("Position.Y = %v, want %v", body.Position.Y, want)
	}
	if body.LinearVelocity.Y == ejectVelocity.Y {
		t.Error("shallow contact should not eject the body")
	}
	if body.Force.Y <= 0 {
		t.Errorf("penalty force should point up, got %v", body.Force)
	}
	if floor.Transform.Position.Y != 0 {
		t.Error("static collider moved")
	}
}

func TestStaticSkipsFallThroughBodies(t *testing.T) {
	p := NewPhysicsWorld(engine.NewManualClock(0))
	floor := engine.NewGameObject("floor")
	floor.AddComponent(components.NewMeshCollider(geometry.NewQuadMesh(4, 4)))
	p.AddStaticCollider(floor)

	body := addBody(p, "cube", unitCube(), rl.Vector3{Y: 0.3}, 1)
	body.CanFallThrough = true

	p.resolveStaticCollisions()

	if body.Position.Y != 0.3 {
		t.Errorf("fall-through body was pushed to %v", body.Position.Y)
	}
}

func TestAddStaticColliderSkipsUnbuilt(t *testing.T) {
	p := NewPhysicsWorld(nil)

	bare := engine.NewGameObject("bare")
	p.AddStaticCollider(bare)

	empty := engine.NewGameObject("empty")
	empty.AddComponent(components.NewMeshCollider(nil))
	p.AddStaticCollider(empty)

	if n := len(p.Statics()); n != 0 {
		t.Errorf("statics = %d, want 0", n)
	}
}

func TestBodyPairCorrection(t *testing.T) {
	tests := []struct {
		name      string
		kinematic bool
		wantA     float32
		wantB     float32
	}{
		{"dynamic pair shares a soft correction", false, -0.023275, 0.823275},
		{"kinematic pair pushes the dynamic body hard", true, 0, 0.8 + 0.7448},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPhysicsWorld(engine.NewManualClock(0))
			var a *components.Rigidbody
			if tt.kinematic {
				a = addBody(p, "pusher", unitCube(), rl.Vector3{}, 0)
				a.IsBeingDispensed = true
			} else {
				a = addBody(p, "a", unitCube(), rl.Vector3{}, 1)
			}
			b := addBody(p, "b", unitCube(), rl.Vector3{X: 0.8}, 1)

			p.resolveBodyCollisions()

			if !near(a.Position.X, tt.wantA, 1e-4) {
				t.Errorf("a.X = %v, want %v", a.Position.X, tt.wantA)
			}
			if !near(b.Position.X, tt.wantB, 1e-4) {
				t.Errorf("b.X = %v, want %v", b.Position.X, tt.wantB)
			}
			if b.GetGameObject().Transform.Position.X != b.Position.X {
				t.Error("transform not synced after correction")
			}
		})
	}
}

func TestBodyPairsExclusions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *components.Rigidbody)
	}{
		{"held", func(b *components.Rigidbody) { b.IsHeld = true }},
		{"blocked", func(b *components.Rigidbody) { b.IsBlocked = true }},
		{"releasing", func(b *components.Rigidbody) { b.IsBeingReleased = true }},
		{"kinematic", func(b *components.Rigidbody) { b.SetMass(0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPhysicsWorld(engine.NewManualClock(0))
			addBody(p, "a", unitCube(), rl.Vector3{}, 1)
			b := addBody(p, "b", unitCube(), rl.Vector3{X: 0.5}, 1)
			tt.setup(b)

			if pairs := p.bodyPairs(); len(pairs) != 0 {
				t.Errorf("got %d pairs, want none", len(pairs))
			}
		})
	}
}

func TestRestingBodyFallsAsleep(t *testing.T) {
	clock := engine.NewManualClock(0)
	p := NewPhysicsWorld(clock)
	p.SetWorldBounds(rl.Vector3{X: -10, Y: -1, Z: -10}, rl.Vector3{X: 10, Y: 10, Z: 10})
	p.SetPrizeBounds(geometry.AABB{Min: rl.Vector3{X: -5, Y: 0, Z: -5}, Max: rl.Vector3{X: 5, Y: 5, Z: 5}})

	ball := addBody(p, "ball", geometry.NewSphereMesh(0.5, 8, 8), rl.Vector3{Y: 0.7}, 1)

	slept := -1
	for i := 0; i < 300; i++ {
		clock.AdvanceSeconds(dt)
		p.Update(dt)
		if ball.IsSleeping {
			slept = i
			break
		}
	}

	if slept < 0 {
		t.Fatalf("ball never slept, KE = %v at %v", ball.KineticEnergy(), ball.Position)
	}
	if !near(ball.Position.Y, 0.51, 0.02) {
		t.Errorf("ball rests at y = %v, want about 0.51", ball.Position.Y)
	}
	if !near(ball.Position.X, 0, 1e-3) || !near(ball.Position.Z, 0, 1e-3) {
		t.Errorf("ball drifted sideways to %v", ball.Position)
	}
	if ball.HasTouchedClaw {
		t.Error("ball inside its bounds should not latch")
	}
}

func TestBoundsLatchSleepsThenWakes(t *testing.T) {
	clock := engine.NewManualClock(1000)
	p := NewPhysicsWorld(clock)
	p.SetWorldBounds(rl.Vector3{X: -10, Y: -10, Z: -10}, rl.Vector3{X: 10, Y: 10, Z: 10})
	p.SetPrizeBounds(geometry.AABB{Min: rl.Vector3{X: -1, Y: 0, Z: -1}, Max: rl.Vector3{X: 1, Y: 1, Z: 1}})

	body := addBody(p, "prize", unitCube(), rl.Vector3{Y: -5}, 1)
	body.CanFallThrough = true

	p.handleCollisions()
	if body.IsSleeping {
		t.Fatal("one frame outside should not lock")
	}
	p.handleCollisions()
	if !body.IsSleeping || !body.HasTouchedClaw {
		t.Fatal("two frames outside should lock the body")
	}
	if body.WakeAt != 1150 {
		t.Errorf("WakeAt = %v, want 1150", body.WakeAt)
	}

	clock.Advance(100)
	p.expireSleepLocks()
	if !body.IsSleeping {
		t.Error("lock expired early")
	}

	clock.Advance(50)
	p.expireSleepLocks()
	if body.IsSleeping || body.WakeAt != 0 {
		t.Error("lock should expire after 150ms")
	}
}

func TestCleanRelease(t *testing.T) {
	clock := engine.NewManualClock(1000)
	p := NewPhysicsWorld(clock)
	prize := addBody(p, "prize", unitCube(), rl.Vector3{Y: 2}, 1)
	prize.LinearVelocity = rl.Vector3{X: 1, Y: -1}
	prize.IsSleeping = true

	p.BeginCleanRelease(prize)
	if !prize.IsBeingReleased || !prize.IgnoreClawCollision || prize.IsSleeping {
		t.Fatalf("release flags not set: %v", prize)
	}
	if prize.LinearVelocity != (rl.Vector3{}) {
		t.Error("release should clear motion")
	}

	prize.LinearVelocity.X = 3
	clock.Advance(600)
	p.Update(dt)
	if !prize.IsBeingReleased {
		t.Fatal("release ended early")
	}
	if prize.LinearVelocity.X != 0 || prize.LinearVelocity.Y >= 0 {
		t.Errorf("releasing body should fall straight down, v = %v", prize.LinearVelocity)
	}

	clock.Advance(700)
	p.Update(dt)
	if prize.IsBeingReleased || prize.IgnoreClawCollision || prize.ReleaseStartTime != 0 {
		t.Error("release should end after the timeout")
	}
}

func TestCleanReleaseResetsOnInvalidTime(t *testing.T) {
	tests := []struct {
		name    string
		advance float64
	}{
		{"clock went backwards", -500},
		{"clock jumped", 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := engine.NewManualClock(1000)
			p := NewPhysicsWorld(clock)
			prize := addBody(p, "prize", unitCube(), rl.Vector3{Y: 2}, 1)
			p.BeginCleanRelease(prize)

			clock.Advance(tt.advance)
			p.updateCleanRelease()

			if prize.IsBeingReleased || prize.IgnoreClawCollision {
				t.Error("invalid elapsed time should reset the release")
			}
		})
	}
}

func TestReleasingBodyIgnoresOthers(t *testing.T) {
	p := NewPhysicsWorld(engine.NewManualClock(0))
	a := addBody(p, "a", unitCube(), rl.Vector3{}, 1)
	b := addBody(p, "b", unitCube(), rl.Vector3{X: 0.5}, 1)
	p.BeginCleanRelease(b)

	p.resolveBodyCollisions()

	if a.Position.X != 0 || b.Position.X != 0.5 {
		t.Errorf("releasing body was resolved: a=%v b=%v", a.Position, b.Position)
	}
}

func TestCandyConstraints(t *testing.T) {
	p := NewPhysicsWorld(engine.NewManualClock(0))
	p.SetCandyBounds(rl.Vector3{X: -1, Y: 0, Z: -1}, rl.Vector3{X: 1, Y: 1, Z: 1})
	p.SetDispenserSafetyZone(rl.Vector3{}, 0.5)

	small := geometry.NewSphereMesh(0.05, 4, 6)

	outside := addBody(p, "candy_out", small, rl.Vector3{X: 3, Y: 0.5}, 0.5)
	p.applyCandyConstraints(outside)
	if outside.Position.X != 1 {
		t.Errorf("candy not clamped into bounds: %v", outside.Position)
	}

	inZone := addBody(p, "candy_zone", small, rl.Vector3{X: 0.1, Y: 0.5}, 0.5)
	inZone.LinearVelocity = rl.Vector3{X: -1, Z: 0.5}
	p.applyCandyConstraints(inZone)
	if !near(inZone.Position.X, 0.5, 1e-5) {
		t.Errorf("candy not pushed to the safety radius: %v", inZone.Position)
	}
	if inZone.LinearVelocity.X != 0 || inZone.LinearVelocity.Z != 0.5 {
		t.Errorf("only the inward velocity should be cancelled: %v", inZone.LinearVelocity)
	}

	for _, x := range []float32{0.1, 3} {
		dispensed := addBody(p, "candy_out_now", small, rl.Vector3{X: x, Y: 0.5}, 0.5)
		dispensed.IsBeingDispensed = true
		p.applyCandyConstraints(dispensed)
		if dispensed.Position.X != x {
			t.Errorf("dispensed candy at x=%v was constrained: %v", x, dispensed.Position)
		}
	}
}

func TestRaycast(t *testing.T) {
	p := NewPhysicsWorld(nil)
	near1 := addBody(p, "near", unitCube(), rl.Vector3{}, 1)
	addBody(p, "far", unitCube(), rl.Vector3{Z: 3}, 1)

	hit, ok := p.Raycast(rl.Vector3{Z: -5}, rl.Vector3{Z: 1}, 100)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Body != near1 {
		t.Errorf("hit %s, want the nearest body", hit.Body.Name())
	}
	if !near(hit.Distance, 4.5, 1e-4) || hit.Normal != (rl.Vector3{Z: -1}) {
		t.Errorf("hit = %+v", hit)
	}

	if _, ok := p.Raycast(rl.Vector3{X: 3, Z: -5}, rl.Vector3{Z: 1}, 100); ok {
		t.Error("ray beside the bodies should miss")
	}
	if _, ok := p.Raycast(rl.Vector3{Z: -5}, rl.Vector3{Z: 1}, 2); ok {
		t.Error("hit beyond max distance should be ignored")
	}
}
