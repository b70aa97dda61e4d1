package physics

import (
	"github.com/chewxy/math32"

	"clawmachine/internal/components"
)

// applyCandyConstraints keeps a candy inside its container and out of the
// vertical cylinder above the dispenser. The candy currently being
// dispensed is driven by the dispenser and exempt from both.
func (p *PhysicsWorld) applyCandyConstraints(body *components.Rigidbody) {
	if body.IsBeingDispensed {
		return
	}
	if p.candyBounds != nil {
		b := p.candyBounds
		body.Position.X = clamp(body.Position.X, b.Min.X, b.Max.X)
		body.Position.Y = clamp(body.Position.Y, b.Min.Y, b.Max.Y)
		body.Position.Z = clamp(body.Position.Z, b.Min.Z, b.Max.Z)
	}

	if p.dispenserCenter != nil {
		dx := body.Position.X - p.dispenserCenter.X
		dz := body.Position.Z - p.dispenserCenter.Z
		distSq := dx*dx + dz*dz
		r := p.dispenserSafetyRadius
		if distSq < r*r && distSq > 1e-6 {
			dist := math32.Sqrt(distSq)
			nx, nz := dx/dist, dz/dist
			body.Position.X = p.dispenserCenter.X + nx*r
			body.Position.Z = p.dispenserCenter.Z + nz*r

			// Drop only the inward part of the horizontal velocity.
			if inward := body.LinearVelocity.X*nx + body.LinearVelocity.Z*nz; inward < 0 {
				body.LinearVelocity.X -= inward * nx
				body.LinearVelocity.Z -= inward * nz
			}
		}
	}

	body.SyncTransform()
}
