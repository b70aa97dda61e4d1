package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/components"
)

const (
	// dynamicCorrectionFactor lets resting piles settle softly.
	dynamicCorrectionFactor = 0.05
	// kinematicCorrectionFactor lets a scripted body plough through others.
	kinematicCorrectionFactor = 0.8
	// slop is the overlap tolerated before any correction happens.
	slop = 0.001
	// restitutionThreshold is the closing speed under which contacts never bounce.
	restitutionThreshold = 0.1
)

// bodyPair is one broad-phase candidate, A before B in insertion order.
type bodyPair struct {
	A, B *components.Rigidbody
}

// excludedFromPairs reports whether a body takes no part in body-body
// collisions: static (unless being dispensed), held, or blocked.
func excludedFromPairs(b *components.Rigidbody) bool {
	return (b.InverseMass == 0 && !b.IsBeingDispensed) || b.IsHeld || b.IsBlocked
}

// bodyPairs returns candidate pairs whose bounding spheres overlap.
func (p *PhysicsWorld) bodyPairs() []bodyPair {
	var pairs []bodyPair
	for i, a := range p.bodies {
		if excludedFromPairs(a) {
			continue
		}
		for _, b := range p.bodies[i+1:] {
			if excludedFromPairs(b) {
				continue
			}
			// Prizes in clean release touch nothing.
			if a.IsBeingReleased || b.IsBeingReleased {
				continue
			}
			maxDist := a.BoundingRadius + b.BoundingRadius
			if lengthSq(rl.Vector3Subtract(a.Position, b.Position)) < maxDist*maxDist {
				pairs = append(pairs, bodyPair{A: a, B: b})
			}
		}
	}
	return pairs
}

func (p *PhysicsWorld) resolveBodyCollisions() {
	for _, pair := range p.bodyPairs() {
		colA, colB := pair.A.Collider(), pair.B.Collider()
		if !colA.Intersects(colB) {
			continue
		}
		resolveBodyPair(pair.A, pair.B)
	}
}

// resolveBodyPair separates two intersecting bodies along the line between
// their centres and applies a normal impulse.
func resolveBodyPair(a, b *components.Rigidbody) {
	invSum := a.InverseMass + b.InverseMass
	if invSum == 0 {
		return
	}

	n := rl.Vector3Subtract(b.Position, a.Position)
	dist := rl.Vector3Length(n)
	if dist < 1e-6 {
		n = upAxis
		dist = 1e-6
	}

	penetration := (a.BoundingRadius + b.BoundingRadius) - dist
	if penetration <= slop {
		return
	}
	n = rl.Vector3Normalize(n)

	factor := float32(dynamicCorrectionFactor)
	if a.InverseMass == 0 || b.InverseMass == 0 {
		factor = kinematicCorrectionFactor
	}
	correction := rl.Vector3Scale(n, math32.Max(0, penetration-slop)*factor)

	a.Position = rl.Vector3Add(a.Position, rl.Vector3Scale(correction, -a.InverseMass/invSum))
	b.Position = rl.Vector3Add(b.Position, rl.Vector3Scale(correction, b.InverseMass/invSum))
	a.SyncTransform()
	b.SyncTransform()

	rv := rl.Vector3Subtract(b.LinearVelocity, a.LinearVelocity)
	velAlongNormal := rl.Vector3DotProduct(rv, n)
	if velAlongNormal > 0 {
		return
	}

	e := math32.Min(a.Restitution, b.Restitution)
	if math32.Abs(velAlongNormal) < restitutionThreshold {
		e = 0
	}

	j := -(1 + e) * velAlongNormal / invSum
	impulse := rl.Vector3Scale(n, j)
	a.LinearVelocity = rl.Vector3Add(a.LinearVelocity, rl.Vector3Scale(impulse, -a.InverseMass))
	b.LinearVelocity = rl.Vector3Add(b.LinearVelocity, rl.Vector3Scale(impulse, b.InverseMass))

	a.Wake()
	b.Wake()
}
