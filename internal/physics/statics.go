package physics

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/components"
)

const (
	staticCorrectionFactor = 2.0
	// embedRatio is the share of the bounding radius beyond which a body is
	// considered stuck inside a static mesh and kicked out downwards.
	embedRatio      = 0.9
	staticStiffness = 1000.0
	staticDamping   = 0.9
)

// ejectVelocity is the kick given to a body embedded in a static mesh.
var ejectVelocity = rl.Vector3{X: 0, Y: -2, Z: 0}

func skipsStatics(b *components.Rigidbody) bool {
	return b.CanFallThrough || b.InverseMass == 0 || b.IsSleeping || b.IsBlocked ||
		b.IsBeingDispensed || b.IsBeingReleased || b.IsHeld
}

func (p *PhysicsWorld) resolveStaticCollisions() {
	if len(p.statics) == 0 {
		return
	}
	for _, body := range p.bodies {
		if skipsStatics(body) {
			continue
		}
		col := body.Collider()
		for _, static := range p.statics {
			if !col.Intersects(static) {
				continue
			}
			p.resolveStaticContact(body, static)
		}
	}
}

// resolveStaticContact pushes a body out of a static mesh along the
// direction from the nearest surface point to the body centre, then layers
// a spring-damper force on top for the next integration.
func (p *PhysicsWorld) resolveStaticContact(body *components.Rigidbody, static *components.MeshCollider) {
	body.Wake()

	closest, _, err := static.ClosestPoint(body.Position)
	if err != nil {
		slog.Debug("static closest point failed, treating as no contact", "body", body.Name(), "err", err)
		return
	}

	normal := rl.Vector3Subtract(body.Position, closest)
	dist := rl.Vector3Length(normal)
	if dist < 1e-6 {
		normal = upAxis
	} else {
		normal = rl.Vector3Scale(normal, 1/dist)
	}

	penetration := body.BoundingRadius - dist
	if penetration <= 0 {
		return
	}

	body.Position = rl.Vector3Add(body.Position, rl.Vector3Scale(normal, penetration*staticCorrectionFactor))
	body.SyncTransform()

	if penetration > body.BoundingRadius*embedRatio {
		slog.Warn("body deeply embedded in static mesh", "body", body.Name(), "static", staticName(static))
		body.LinearVelocity = ejectVelocity
		body.AngularVelocity = rl.Vector3{}
	}

	penalty := rl.Vector3Scale(normal, penetration*staticStiffness)
	damping := rl.Vector3Scale(normal, -rl.Vector3DotProduct(body.LinearVelocity, normal)*staticDamping)
	body.AddForceAtPoint(rl.Vector3Add(penalty, damping), closest)
}

func staticName(c *components.MeshCollider) string {
	if g := c.GetGameObject(); g != nil {
		return g.Name
	}
	return ""
}
