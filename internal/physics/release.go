package physics

import (
	"log/slog"

	"clawmachine/internal/components"
)

// CleanReleaseTimeout is how long (wall-clock ms) a released prize falls
// straight down, ignoring the claw and other prizes.
const CleanReleaseTimeout = 1200.0

// BeginCleanRelease puts a body into the vertical-drop mode with no motion
// and wakes it. The claw calls this when it lets go of a prize.
func (p *PhysicsWorld) BeginCleanRelease(body *components.Rigidbody) {
	body.IgnoreClawCollision = true
	body.IsBeingReleased = true
	body.ReleaseStartTime = p.now()
	body.ClearMotion()
	body.IsSleeping = false
	slog.Info("clean release started", "body", body.Name())
}

func (p *PhysicsWorld) updateCleanRelease() {
	now := p.now()
	for _, body := range p.bodies {
		if !body.IsBeingReleased {
			continue
		}
		elapsed := now - body.ReleaseStartTime

		// Clock went backwards or jumped: never leave a body stuck in release.
		if elapsed < 0 || elapsed > CleanReleaseTimeout*2 {
			slog.Warn("invalid clean release time, resetting", "body", body.Name(), "elapsed_ms", elapsed)
			body.IgnoreClawCollision = false
			body.IsBeingReleased = false
			body.ReleaseStartTime = 0
			continue
		}

		if elapsed > CleanReleaseTimeout {
			body.IgnoreClawCollision = false
			body.IsBeingReleased = false
			body.ReleaseStartTime = 0
			slog.Info("clean release complete", "body", body.Name(), "elapsed_ms", elapsed)
		}
	}
}
