package claw

import (
	"log/slog"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/components"
	"clawmachine/internal/engine"
	"clawmachine/internal/geometry"
	"clawmachine/internal/interaction"
	"clawmachine/internal/physics"
)

// Motion tuning
const (
	MoveSpeed = 1.5
	// MoveMargin keeps the claw this far inside the machine walls.
	MoveMargin = 0.2
	// DropZoneThreshold is the height band above the chute counted as the drop zone.
	DropZoneThreshold = 0.3

	grabFingerThreshold = 2
	holdOffsetY         = 0.15
	dropPenetration     = 0.15
	dropFallbackHeight  = 0.5
	floorClearance      = 0.1
	deliverDescent      = 0.5
	dropOffInset        = 0.1
	lerpFactor          = 0.05
	arriveEpsilon       = 0.01
)

// Grab is the payload of OnGrab.
type Grab struct {
	Body *components.Rigidbody
	Name string
}

// ObjectDelivered is the payload of OnDelivered.
type ObjectDelivered struct {
	Body  *components.Rigidbody
	Name  string
	Total int
}

type Options struct {
	// InitialStars is the starting score.
	InitialStars int
	// Clock drives finger animations and sequence pauses. Defaults to the
	// physics world's clock.
	Clock engine.Clock
}

// Controller drives the claw: manual movement, the automated drop / grab /
// deliver / return cycle, and the hand-off of held prizes to physics.
type Controller struct {
	rig         *Rig
	interaction *interaction.Interaction
	physics     *physics.PhysicsWorld
	clock       engine.Clock

	state     State
	moveState [4]bool

	machineBox *geometry.AABB
	chute      *components.MeshCollider
	chuteBox   *geometry.AABB

	spawnPosition   rl.Vector3
	spawnSet        bool
	dropOffPosition rl.Vector3
	returnY         float32
	dropTargetY     float32
	lastPosition    rl.Vector3

	stopStatus  [3]bool
	isAnimating bool
	isClosed    bool
	isClosing   bool
	isGrabbing  bool
	grabbed     *interaction.Object

	deliveredStars int
	task           *task

	OnStateChange engine.EventWithArg[StateChange]
	OnGrab        engine.EventWithArg[Grab]
	OnDelivered   engine.EventWithArg[ObjectDelivered]
}

func NewController(rig *Rig, in *interaction.Interaction, phys *physics.PhysicsWorld, opts Options) *Controller {
	clock := opts.Clock
	if clock == nil && phys != nil {
		clock = phys.Clock()
	}
	if clock == nil {
		clock = engine.NewSystemClock()
	}
	return &Controller{
		rig:            rig,
		interaction:    in,
		physics:        phys,
		clock:          clock,
		state:          ManualHorizontal,
		deliveredStars: opts.InitialStars,
	}
}

// SetDependencies gives the claw its operating volume and the chute. The
// spawn position is latched from the claw's current position the first
// time, and the drop-off point is the machine's far corner.
func (c *Controller) SetDependencies(machineBox geometry.AABB, chute *components.MeshCollider) {
	box := machineBox
	c.machineBox = &box

	if !c.spawnSet {
		c.spawnPosition = c.rig.Position()
		c.spawnSet = true
	}

	c.dropOffPosition = rl.Vector3{
		X: box.Max.X - MoveMargin - dropOffInset,
		Z: box.Max.Z - MoveMargin - dropOffInset,
	}

	c.chute = chute
	c.chuteBox = nil
	if chute != nil {
		cb := chute.WorldBounds()
		c.chuteBox = &cb
	} else {
		slog.Warn("claw has no chute, drop-zone checks disabled")
	}
}

func (c *Controller) SetMoving(d Direction, moving bool) {
	if d < Left || d > Backward {
		return
	}
	c.moveState[d] = moving
}

// StartDropSequence begins the automated descent. It refuses while the claw
// is over the chute (inflated by half the claw's footprint) and whenever a
// cycle is already running.
func (c *Controller) StartDropSequence() bool {
	if c.chuteBox != nil {
		pos := c.rig.Position()
		half := rl.Vector3Scale(c.rig.WorldBounds().Size(), 0.5)
		cb := c.chuteBox
		overChute := pos.X >= cb.Min.X-half.X && pos.X <= cb.Max.X+half.X &&
			pos.Z >= cb.Min.Z-half.Z && pos.Z <= cb.Max.Z+half.Z
		if overChute {
			slog.Warn("drop blocked, claw too close to the chute", "position", pos)
			return false
		}
	}

	if c.state != ManualHorizontal || c.isAnimating {
		return false
	}

	slog.Info("starting drop sequence")
	c.calculateAndSetDropHeight()
	c.isAnimating = true
	c.returnY = c.rig.Position().Y
	c.setState(Descending)
	return true
}

// calculateAndSetDropHeight aims the descent slightly below the top of the
// tallest free prize.
func (c *Controller) calculateAndSetDropHeight() {
	var fallback float32
	if c.machineBox != nil {
		fallback = c.machineBox.Min.Y + dropFallbackHeight
	}

	var objects []*interaction.Object
	if c.interaction != nil {
		objects = c.interaction.Objects()
	}

	var highest float32
	found := false
	for _, o := range objects {
		if o.Body == nil || o.Body.IsHeld {
			continue
		}
		if !found || o.Body.Position.Y > highest {
			highest = o.Body.Position.Y
		}
		found = true
	}

	if !found {
		c.dropTargetY = fallback
		slog.Warn("no grabbable objects, using fallback drop height", "y", fallback)
		return
	}

	c.dropTargetY = highest + dropPenetration
	if c.machineBox != nil && c.dropTargetY < c.machineBox.Min.Y+floorClearance {
		slog.Warn("drop height below the machine floor, clamping", "y", c.dropTargetY)
		c.dropTargetY = c.machineBox.Min.Y + floorClearance
	}
	slog.Debug("drop height", "target", c.dropTargetY, "highest", highest)
}

// Update advances timers, grab acquisition, the automation state and the
// held-prize link, in that order.
func (c *Controller) Update(dt float32) {
	c.lastPosition = c.rig.Position()
	c.runTask()

	if c.isClosing && !c.isGrabbing && c.interaction != nil {
		cand := c.interaction.GrabbableCandidate(grabFingerThreshold)
		if cand.OK {
			if cand.Body.IsBeingReleased {
				slog.Info("skipping grab of a prize in clean release", "name", cand.Name)
				return
			}
			c.isGrabbing = true
			c.grabbed = &interaction.Object{Body: cand.Body, Name: cand.Name}
			cand.Body.IsHeld = true
			slog.Info("grab success", "name", cand.Name)
			c.OnGrab.Invoke(Grab{Body: cand.Body, Name: cand.Name})
		}
	}

	pos := c.rig.Position()
	switch c.state {
	case ManualHorizontal:
		c.moveManually(dt)

	case Descending:
		if pos.Y > c.dropTargetY {
			pos.Y -= MoveSpeed * dt
			c.rig.SetPosition(pos)
		} else {
			pos.Y = c.dropTargetY
			c.rig.SetPosition(pos)
			c.runCloseSequence()
		}

	case Operating, ReleasingObject:
		// waiting on a sequence task

	case Ascending:
		if pos.Y < c.returnY {
			pos.Y += MoveSpeed * dt
			c.rig.SetPosition(pos)
			break
		}
		pos.Y = c.returnY
		c.rig.SetPosition(pos)
		if c.isGrabbing && c.grabbed != nil {
			slog.Info("prize acquired, delivering", "name", c.grabbed.Name)
			c.setState(DeliveringMoveX)
		} else {
			slog.Info("grab failed, opening claw")
			c.setState(ReleasingObject)
			c.openClaw(func() {
				c.setState(ManualHorizontal)
				c.isAnimating = false
			})
		}

	case DeliveringMoveX:
		if c.lerpAxis(0, c.dropOffPosition.X) {
			c.setState(DeliveringMoveZ)
		}

	case DeliveringMoveZ:
		if c.lerpAxis(2, c.dropOffPosition.Z) {
			c.setState(DeliveringDescend)
		}

	case DeliveringDescend:
		if pos.Y > c.returnY-deliverDescent {
			pos.Y -= MoveSpeed * dt
			c.rig.SetPosition(pos)
		} else {
			c.runReleaseAndReturnSequence()
		}

	case ReturningAscend:
		if pos.Y < c.returnY {
			pos.Y += MoveSpeed * dt
			c.rig.SetPosition(pos)
		} else {
			pos.Y = c.returnY
			c.rig.SetPosition(pos)
			c.setState(ReturningMoveZ)
		}

	case ReturningMoveZ:
		if c.lerpAxis(2, c.spawnPosition.Z) {
			c.setState(ReturningMoveX)
		}

	case ReturningMoveX:
		if c.lerpAxis(0, c.spawnPosition.X) {
			c.rig.SetPosition(c.spawnPosition)
			c.setState(ManualHorizontal)
			c.isAnimating = false
			slog.Info("sequence complete")
		}
	}

	// Linked after the claw has moved, so the prize carries this tick's
	// displacement as its velocity.
	if c.isGrabbing {
		c.applyDirectLink(dt)
	}
}

// lerpAxis eases one axis of the claw towards target and snaps once within
// arriveEpsilon, reporting arrival.
func (c *Controller) lerpAxis(axis int, target float32) bool {
	pos := c.rig.Position()
	current := geometry.Axis(pos, axis)
	if math32.Abs(current-target) < arriveEpsilon {
		c.rig.SetPosition(geometry.SetAxis(pos, axis, target))
		return true
	}
	c.rig.SetPosition(geometry.SetAxis(pos, axis, rl.Lerp(current, target, lerpFactor)))
	return false
}

func (c *Controller) moveManually(dt float32) {
	if c.machineBox == nil {
		return
	}
	var v rl.Vector3
	if c.moveState[Left] {
		v.X--
	}
	if c.moveState[Right] {
		v.X++
	}
	if c.moveState[Forward] {
		v.Z--
	}
	if c.moveState[Backward] {
		v.Z++
	}
	if rl.Vector3DotProduct(v, v) > 0 {
		c.MoveWithChuteCollision(rl.Vector3Scale(rl.Vector3Normalize(v), MoveSpeed*dt))
	}

	box := c.machineBox
	pos := c.rig.Position()
	pos.X = clamp(pos.X, box.Min.X+MoveMargin, box.Max.X-MoveMargin)
	pos.Z = clamp(pos.Z, box.Min.Z+MoveMargin, box.Max.Z-MoveMargin)
	c.rig.SetPosition(pos)
}

// MoveWithChuteCollision moves the claw by velocity, dropping any axis whose
// move alone would push the claw's box into the chute. Reports whether an
// axis was blocked.
func (c *Controller) MoveWithChuteCollision(velocity rl.Vector3) bool {
	blocked := false
	if c.chute != nil {
		for axis := 0; axis < 3; axis++ {
			step := geometry.Axis(velocity, axis)
			if step == 0 {
				continue
			}
			box := c.rig.WorldBounds().Translate(geometry.SetAxis(rl.Vector3{}, axis, step))
			if c.chute.IntersectsWorldBox(box) {
				velocity = geometry.SetAxis(velocity, axis, 0)
				blocked = true
			}
		}
	}
	c.rig.SetPosition(rl.Vector3Add(c.rig.Position(), velocity))
	return blocked
}

// applyDirectLink pins the held prize under the claw and gives it the
// claw's velocity so it keeps its momentum when let go.
func (c *Controller) applyDirectLink(dt float32) {
	if !c.isGrabbing || c.grabbed == nil {
		return
	}
	body := c.grabbed.Body
	body.IsSleeping = false

	target := c.rig.Group.WorldPosition()
	target.Y -= holdOffsetY
	body.Position = target

	if dt > 0 {
		body.LinearVelocity = rl.Vector3Scale(rl.Vector3Subtract(c.rig.Position(), c.lastPosition), 1/dt)
	}
	body.AngularVelocity = rl.Vector3{}
	body.SyncTransform()
}

// IsInDropZone reports whether a claw holding a prize is over the chute and
// within DropZoneThreshold above it.
func (c *Controller) IsInDropZone() bool {
	if c.chuteBox == nil || !c.isGrabbing {
		return false
	}
	pos := c.rig.Position()
	cb := c.chuteBox
	above := pos.X >= cb.Min.X && pos.X <= cb.Max.X && pos.Z >= cb.Min.Z && pos.Z <= cb.Max.Z
	inBand := pos.Y >= cb.Max.Y && pos.Y <= cb.Max.Y+DropZoneThreshold
	return above && inBand
}

func (c *Controller) setState(s State) {
	if s == c.state {
		return
	}
	from := c.state
	c.state = s
	slog.Debug("claw state", "from", from, "to", s)
	c.OnStateChange.Invoke(StateChange{From: from, To: s})
}

func (c *Controller) DeliveredStars() int {
	return c.deliveredStars
}

// SpendStarAsCoin converts one delivered star into a dispenser coin.
func (c *Controller) SpendStarAsCoin() bool {
	if c.deliveredStars <= 0 {
		slog.Warn("not enough stars to insert a coin")
		return false
	}
	c.deliveredStars--
	slog.Info("star spent", "remaining", c.deliveredStars)
	return true
}

// SetDeliveredStars overrides the score, used when restoring a snapshot.
func (c *Controller) SetDeliveredStars(n int) {
	c.deliveredStars = max(n, 0)
}

func (c *Controller) ResetScore() {
	c.deliveredStars = 0
	slog.Info("score reset")
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Rig() *Rig {
	return c.rig
}

func (c *Controller) IsAnimating() bool {
	return c.isAnimating
}

func (c *Controller) IsClosed() bool {
	return c.isClosed
}

func (c *Controller) IsClosing() bool {
	return c.isClosing
}

func (c *Controller) IsGrabbing() bool {
	return c.isGrabbing
}

func (c *Controller) DropTargetY() float32 {
	return c.dropTargetY
}

func (c *Controller) SpawnPosition() rl.Vector3 {
	return c.spawnPosition
}

func (c *Controller) DropOffPosition() rl.Vector3 {
	return c.dropOffPosition
}

// Grabbed returns the held prize, or nil.
func (c *Controller) Grabbed() *interaction.Object {
	return c.grabbed
}

// StopStatus reports which fingers were stopped by a neighbour during the
// current or last close.
func (c *Controller) StopStatus() [3]bool {
	return c.stopStatus
}

// LogValue implements slog.LogValuer.
func (c *Controller) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("state", c.state.String()),
		slog.Any("position", c.rig.Position()),
		slog.Bool("grabbing", c.isGrabbing),
		slog.Int("stars", c.deliveredStars),
	}
	if c.task != nil {
		attrs = append(attrs, slog.String("task", c.task.kind.String()))
	}
	return slog.GroupValue(attrs...)
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
