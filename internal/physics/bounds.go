package physics

import (
	"log/slog"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/components"
	"clawmachine/internal/geometry"
)

const (
	// boundsPush slightly overshoots so the vertex ends inside the bounds.
	boundsPush = 1.01
	// outsideFramesToLock is how many consecutive frames outside the bounds
	// trigger the one-shot sleep lock.
	outsideFramesToLock = 2
	// sleepLockMillis is the wall-clock length of that lock.
	sleepLockMillis = 150.0
	minClosingSpeed = 0.01
	bounceSpeed     = 0.1
)

// boundsFor picks the container a body is constrained by.
func (p *PhysicsWorld) boundsFor(body *components.Rigidbody) *geometry.AABB {
	switch {
	case body.IsCandy:
		return p.candyBounds
	case p.prizeBounds != nil:
		return p.prizeBounds
	default:
		return p.worldBounds
	}
}

func (p *PhysicsWorld) handleCollisions() {
	for _, body := range p.bodies {
		if body.InverseMass == 0 || body.IsSleeping || body.IsBeingDispensed || body.IsBeingReleased || body.IsBlocked {
			continue
		}
		bounds := p.boundsFor(body)
		if bounds == nil {
			continue
		}

		if !body.HasTouchedClaw {
			if !body.WorldBounds().Intersects(*bounds) {
				body.TouchedFrameCount++
			} else {
				body.TouchedFrameCount = 0
			}
			if body.TouchedFrameCount >= outsideFramesToLock {
				slog.Info("body left its bounds, locking", "body", body.Name())
				body.Sleep()
				body.HasTouchedClaw = true
				body.WakeAt = p.now() + sleepLockMillis
			}
		}

		// Vertices ride along with each correction, so one face contact
		// is not pushed once per vertex.
		for _, v := range body.WorldVertices() {
			offset := rl.Vector3Subtract(v, body.Position)
			for axis := 0; axis < 3; axis++ {
				checkCollision(body, rl.Vector3Add(body.Position, offset), axis, 1, *bounds)
				checkCollision(body, rl.Vector3Add(body.Position, offset), axis, -1, *bounds)
			}
		}
		body.SyncTransform()
	}
}

// checkCollision tests one vertex against one face of the bounds. dir is +1
// for the max face and -1 for the min face.
func checkCollision(body *components.Rigidbody, vertex rl.Vector3, axis int, dir float32, bounds geometry.AABB) {
	// Bodies over the chute may drop through the floor, but not the walls.
	if body.CanFallThrough && axis == 1 && dir < 0 {
		return
	}

	limit := geometry.Axis(bounds.Min, axis)
	if dir > 0 {
		limit = geometry.Axis(bounds.Max, axis)
	}
	coord := geometry.Axis(vertex, axis)
	if (dir > 0 && coord <= limit) || (dir < 0 && coord >= limit) {
		return
	}

	penetration := limit - coord
	body.Position = geometry.SetAxis(body.Position, axis, geometry.Axis(body.Position, axis)+penetration*boundsPush)

	relative := rl.Vector3Subtract(vertex, body.Position)
	contactVelocity := rl.Vector3Add(body.LinearVelocity, rl.Vector3CrossProduct(body.AngularVelocity, relative))

	closingSpeed := geometry.Axis(contactVelocity, axis) * dir
	if closingSpeed <= 0 || closingSpeed < minClosingSpeed {
		return
	}

	impulseMag := -closingSpeed
	normalImpulse := geometry.SetAxis(rl.Vector3{}, axis, impulseMag*dir)
	if closingSpeed > bounceSpeed {
		bounce := -closingSpeed * body.Restitution
		normalImpulse = geometry.SetAxis(normalImpulse, axis, geometry.Axis(normalImpulse, axis)+bounce*dir)
	}

	tangent := geometry.SetAxis(contactVelocity, axis, 0)
	maxFriction := math32.Abs(impulseMag) * body.Friction
	frictionMag := math32.Min(rl.Vector3Length(tangent), maxFriction)
	friction := rl.Vector3Scale(rl.Vector3Normalize(tangent), -frictionMag)

	body.ApplyContactImpulse(rl.Vector3Add(normalImpulse, friction), vertex)
}
