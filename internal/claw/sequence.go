package claw

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/interaction"
)

// Finger animation timing. Steps run on the wall clock, not on ticks.
const (
	closeAngleStep  = 0.03
	closeIntervalMs = 50.0
	maxCloseSteps   = 60
	openSteps       = 30
	openIntervalMs  = 30.0
	grabSettleMs    = 300.0
	releaseSettleMs = 500.0
)

type taskKind int

const (
	taskClose taskKind = iota
	taskOpen
	taskWait
)

func (k taskKind) String() string {
	switch k {
	case taskClose:
		return "close"
	case taskOpen:
		return "open"
	default:
		return "wait"
	}
}

// task is one timed step of a sequence. then runs once the task is done and
// may start the next task.
type task struct {
	kind   taskKind
	steps  int
	nextAt float64
	from   [3]float32
	then   func()
}

// Busy reports whether a finger animation or a sequence wait is pending.
func (c *Controller) Busy() bool {
	return c.task != nil
}

func (c *Controller) now() float64 {
	return c.clock.NowMillis()
}

// runTask runs every step that has come due since the last update, so a
// slow frame does not stretch the animation. A finished task's follow-up
// starts timing from the current clock.
func (c *Controller) runTask() {
	now := c.now()
	for c.task != nil && now >= c.task.nextAt {
		t := c.task

		var done bool
		switch t.kind {
		case taskClose:
			done = c.closeStep(t)
			t.nextAt += closeIntervalMs
		case taskOpen:
			done = c.openStep(t)
			t.nextAt += openIntervalMs
		case taskWait:
			done = true
		}
		if !done {
			continue
		}

		c.task = nil
		if t.then != nil {
			t.then()
		}
	}
}

// closeClaw swings every finger inwards until all of them have touched a
// neighbour or the step budget runs out.
func (c *Controller) closeClaw(then func()) {
	slog.Debug("closing claw")
	c.isClosing = true
	c.stopStatus = [3]bool{}
	c.task = &task{kind: taskClose, nextAt: c.now() + closeIntervalMs, then: then}
}

func (c *Controller) closeStep(t *task) bool {
	t.steps++
	for _, f := range interaction.Fingers {
		if !c.stopStatus[f] {
			c.rig.SetRoll(f, c.rig.Roll(f)-closeAngleStep)
		}
	}
	c.checkFingerCollisions()

	allStopped := c.stopStatus[0] && c.stopStatus[1] && c.stopStatus[2]
	if t.steps < maxCloseSteps && !allStopped {
		return false
	}

	c.isClosed = true
	c.isClosing = false
	reason := "timeout"
	if allStopped {
		reason = "finger collision"
	}
	slog.Debug("claw closed", "reason", reason, "steps", t.steps)
	return true
}

// checkFingerCollisions stops both fingers of any pair whose proxy boxes
// overlap.
func (c *Controller) checkFingerCollisions() {
	fingers := interaction.Fingers
	for i := 0; i < len(fingers); i++ {
		for j := i + 1; j < len(fingers); j++ {
			a, b := fingers[i], fingers[j]
			if c.rig.FingerBounds(a).Intersects(c.rig.FingerBounds(b)) {
				if !c.stopStatus[a] || !c.stopStatus[b] {
					slog.Debug("fingers collided", "a", a, "b", b)
				}
				c.stopStatus[a] = true
				c.stopStatus[b] = true
			}
		}
	}
}

// openClaw eases every finger back to its rest angle.
func (c *Controller) openClaw(then func()) {
	slog.Debug("opening claw")
	t := &task{kind: taskOpen, nextAt: c.now() + openIntervalMs, then: then}
	for _, f := range interaction.Fingers {
		t.from[f] = c.rig.Roll(f)
	}
	c.task = t
}

func (c *Controller) openStep(t *task) bool {
	t.steps++
	progress := float32(t.steps) / openSteps
	for _, f := range interaction.Fingers {
		c.rig.SetRoll(f, rl.Lerp(t.from[f], c.rig.RestRoll(f), progress))
	}
	if t.steps < openSteps {
		return false
	}
	c.isClosed = false
	slog.Debug("claw opened")
	return true
}

func (c *Controller) wait(ms float64, then func()) {
	c.task = &task{kind: taskWait, nextAt: c.now() + ms, then: then}
}

// runCloseSequence closes on whatever is under the claw, lets the grip
// settle, then starts the ascent. The claw stays closed.
func (c *Controller) runCloseSequence() {
	c.setState(Operating)
	slog.Info("attempting grab")
	c.closeClaw(func() {
		c.wait(grabSettleMs, func() {
			slog.Info("grab attempt finished, ascending", "grabbing", c.isGrabbing)
			c.setState(Ascending)
		})
	})
}

// runReleaseAndReturnSequence hands the held prize to the physics world in
// clean-release mode, opens the claw, and starts the trip home.
func (c *Controller) runReleaseAndReturnSequence() {
	c.setState(ReleasingObject)

	if c.isGrabbing && c.grabbed != nil {
		c.deliveredStars++
		obj := c.grabbed
		body := obj.Body

		body.IsHeld = false
		c.isGrabbing = false
		c.grabbed = nil

		if c.physics != nil {
			c.physics.BeginCleanRelease(body)
		}
		slog.Info("prize delivered", "name", obj.Name, "total", c.deliveredStars)
		c.OnDelivered.Invoke(ObjectDelivered{Body: body, Name: obj.Name, Total: c.deliveredStars})
	}

	c.openClaw(func() {
		c.wait(releaseSettleMs, func() {
			slog.Debug("returning to spawn point")
			c.setState(ReturningAscend)
		})
	})
}

// ToggleClaw opens a closed claw or closes an open one. It does nothing
// while a sequence or another finger animation is running.
func (c *Controller) ToggleClaw() {
	if c.isAnimating || c.Busy() {
		return
	}
	if c.isClosed {
		c.openClaw(nil)
	} else {
		c.closeClaw(nil)
	}
}
