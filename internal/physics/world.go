package physics

import (
	"log/slog"

	"clawmachine/internal/components"
	"clawmachine/internal/engine"
	"clawmachine/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// DefaultGravity matches earth gravity in scene units.
var DefaultGravity = rl.Vector3{X: 0, Y: -9.81, Z: 0}

// prizeMargin keeps prizes off the exact edge of their container.
const prizeMargin = 0.01

// PhysicsWorld owns every registered body and static collider and steps
// them once per tick. Bodies keep insertion order; pair iteration and the
// resolution passes depend on it.
type PhysicsWorld struct {
	Gravity rl.Vector3
	bodies  []*components.Rigidbody
	statics []*components.MeshCollider

	worldBounds *geometry.AABB
	prizeBounds *geometry.AABB
	candyBounds *geometry.AABB

	dispenserCenter       *rl.Vector3
	dispenserSafetyRadius float32

	clock engine.Clock
}

func NewPhysicsWorld(clock engine.Clock) *PhysicsWorld {
	return &PhysicsWorld{
		Gravity: DefaultGravity,
		bodies:  make([]*components.Rigidbody, 0),
		statics: make([]*components.MeshCollider, 0),
		clock:   clock,
	}
}

func (p *PhysicsWorld) Clock() engine.Clock {
	return p.clock
}

// AddBody registers a body and captures its pose from the owning object.
func (p *PhysicsWorld) AddBody(body *components.Rigidbody) {
	if body == nil {
		return
	}
	body.CaptureFromObject()
	p.bodies = append(p.bodies, body)
}

func (p *PhysicsWorld) RemoveBody(body *components.Rigidbody) {
	for i, b := range p.bodies {
		if b == body {
			p.bodies = append(p.bodies[:i], p.bodies[i+1:]...)
			return
		}
	}
}

func (p *PhysicsWorld) Bodies() []*components.Rigidbody {
	return p.bodies
}

func (p *PhysicsWorld) Statics() []*components.MeshCollider {
	return p.statics
}

// AddStaticCollider registers an immovable mesh. Objects without a built
// bounds tree are skipped.
func (p *PhysicsWorld) AddStaticCollider(g *engine.GameObject) {
	col := engine.GetComponent[*components.MeshCollider](g)
	if !col.IsBuilt() {
		name := ""
		if g != nil {
			name = g.Name
		}
		slog.Warn("static collider has no bounds tree, skipping", "object", name)
		return
	}
	p.statics = append(p.statics, col)
	slog.Debug("added static collider", "object", g.Name, "triangles", col.TriangleCount())
}

func (p *PhysicsWorld) SetWorldBounds(min, max rl.Vector3) {
	p.worldBounds = &geometry.AABB{Min: min, Max: max}
}

// SetPrizeBounds stores the prize container shrunk by a small margin on
// every face.
func (p *PhysicsWorld) SetPrizeBounds(box geometry.AABB) {
	m := rl.Vector3{X: prizeMargin, Y: prizeMargin, Z: prizeMargin}
	p.prizeBounds = &geometry.AABB{
		Min: rl.Vector3Add(box.Min, m),
		Max: rl.Vector3Subtract(box.Max, m),
	}
	slog.Debug("prize bounds set", "min", p.prizeBounds.Min, "max", p.prizeBounds.Max)
}

func (p *PhysicsWorld) SetCandyBounds(min, max rl.Vector3) {
	p.candyBounds = &geometry.AABB{Min: min, Max: max}
	slog.Debug("candy bounds set", "min", min, "max", max)
}

// SetDispenserSafetyZone defines the vertical cylinder candies are kept out of.
func (p *PhysicsWorld) SetDispenserSafetyZone(center rl.Vector3, radius float32) {
	c := center
	p.dispenserCenter = &c
	p.dispenserSafetyRadius = radius
}

func (p *PhysicsWorld) WorldBounds() (geometry.AABB, bool) {
	return deref(p.worldBounds)
}

func (p *PhysicsWorld) PrizeBounds() (geometry.AABB, bool) {
	return deref(p.prizeBounds)
}

func (p *PhysicsWorld) CandyBounds() (geometry.AABB, bool) {
	return deref(p.candyBounds)
}

// Update advances the simulation by one fixed step. The order of the passes
// is part of the behaviour: release bookkeeping, gravity, body pairs,
// statics, bounds, then integration.
func (p *PhysicsWorld) Update(deltaTime float32) {
	p.expireSleepLocks()

	// 1. Clean-release bookkeeping
	p.updateCleanRelease()

	// 2. Gravity, with releasing bodies pinned to a vertical drop
	p.applyGravity()

	// 3. Body vs body
	p.resolveBodyCollisions()

	// 4. Body vs static meshes
	p.resolveStaticCollisions()

	// 5. Body vs container bounds
	if p.worldBounds != nil {
		p.handleCollisions()
	}

	// 6. Integration
	for _, body := range p.bodies {
		if body.IsSleeping {
			continue
		}
		body.Integrate(deltaTime)
		if body.IsCandy {
			p.applyCandyConstraints(body)
		}
	}
}

func (p *PhysicsWorld) now() float64 {
	if p.clock == nil {
		return 0
	}
	return p.clock.NowMillis()
}

// expireSleepLocks wakes bodies whose bounds sleep lock has run out.
func (p *PhysicsWorld) expireSleepLocks() {
	now := p.now()
	for _, body := range p.bodies {
		if body.WakeAt > 0 && now >= body.WakeAt {
			body.IsSleeping = false
			body.WakeAt = 0
		}
	}
}

func (p *PhysicsWorld) applyGravity() {
	for _, body := range p.bodies {
		if body.InverseMass > 0 && !body.IsSleeping && !body.IsBeingDispensed {
			body.Force = rl.Vector3Add(body.Force, rl.Vector3Scale(p.Gravity, body.Mass))
		}

		if body.IsBeingReleased && body.InverseMass > 0 {
			body.Force = rl.Vector3{Y: p.Gravity.Y * body.Mass}
			body.LinearVelocity.X = 0
			body.LinearVelocity.Z = 0
			body.AngularVelocity = rl.Vector3{}
		}
	}
}
