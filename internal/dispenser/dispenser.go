package dispenser

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/components"
	"clawmachine/internal/engine"
	"clawmachine/internal/geometry"
	"clawmachine/internal/physics"
)

// Stage is a step of the dispensing sequence.
type Stage int

const (
	Idle Stage = iota
	LoweringGate
	MovingCandy
	Descending
	OpeningDoor
	Ejecting
	ClosingDoor
	RaisingGate
	WaitingForKnob
)

var stageNames = [...]string{
	"IDLE",
	"LOWERING_GATE",
	"MOVING_CANDY",
	"DESCENDING",
	"OPENING_DOOR",
	"EJECTING",
	"CLOSING_DOOR",
	"RAISING_GATE",
	"WAITING_FOR_KNOB",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "UNKNOWN"
	}
	return stageNames[s]
}

const (
	CandyMass       = 0.5
	SafetyRadius    = 0.7
	maxSpawnTries   = 100
	animationSpeed  = 2.0
	doorSpeedFactor = 1.5
	ejectSpeed      = 1.0
	parabolaHeight  = 0.8
	knobTurnSeconds = 2.0
	gateDrop        = 0.5
	doorOpenAngle   = math32.Pi / 3

	// Offsets of the exit path from the door hinge.
	descentBelowHinge = 0.9
	exitMidDrop       = 0.5
	exitMidBack       = 1.0
	exitEndRise       = 2.0
	exitEndBack       = 0.5
)

var candyColors = []rl.Color{
	{R: 0xff, G: 0x47, B: 0x57, A: 255},
	{R: 0x2e, G: 0xd5, B: 0x73, A: 255},
	{R: 0x1e, G: 0x90, B: 0xff, A: 255},
	{R: 0xf1, G: 0xc4, B: 0x0f, A: 255},
	{R: 0x9b, G: 0x59, B: 0xb6, A: 255},
	{R: 0xe6, G: 0x7e, B: 0x22, A: 255},
}

// CoinSource pays for a dispense. The claw controller spends a delivered
// star.
type CoinSource interface {
	SpendStarAsCoin() bool
}

// Dispenser is the candy machine next to the claw cabinet. Candies are
// ordinary physics bodies until one is chosen; that one is driven along a
// scripted path as a kinematic body and leaves the world when ejected.
type Dispenser struct {
	physics *physics.PhysicsWorld
	coins   CoinSource
	rng     *rand.Rand

	target      rl.Vector3 // dispense point above the gate
	descentPos  rl.Vector3
	exitMid     rl.Vector3
	exitEnd     rl.Vector3
	candies     []*components.Rigidbody
	candyRadius float32

	hasCoin     bool
	dispensing  bool
	knobTurning bool
	knobDone    bool

	stage        Stage
	gateProgress float32
	moveProgress float32
	doorProgress float32
	knobProgress float32
	candy        *components.Rigidbody
	startPos     rl.Vector3

	gateOffset float32
	doorAngle  float32
	knobAngle  float32

	// OnCandyEjected fires once the chosen candy has left the machine, just
	// before it is removed from the physics world.
	OnCandyEjected engine.EventWithArg[*components.Rigidbody]
	OnStageChange  engine.EventWithArg[Stage]
}

// New builds a dispenser around a dispense point and the hinge of its
// release door. The exit path is derived from the hinge.
func New(phys *physics.PhysicsWorld, coins CoinSource, target, doorHinge rl.Vector3, rng *rand.Rand) *Dispenser {
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 1))
	}
	d := &Dispenser{
		physics: phys,
		coins:   coins,
		rng:     rng,
		target:  target,
	}
	d.descentPos = rl.Vector3{X: target.X, Y: doorHinge.Y - descentBelowHinge, Z: target.Z}
	d.exitMid = rl.Vector3{X: doorHinge.X, Y: doorHinge.Y - exitMidDrop, Z: doorHinge.Z + exitMidBack}
	d.exitEnd = rl.Vector3{X: doorHinge.X, Y: d.exitMid.Y + exitEndRise, Z: doorHinge.Z + exitEndBack}
	return d
}

// SetCoinSource links the dispenser to whatever pays for candy.
func (d *Dispenser) SetCoinSource(coins CoinSource) {
	d.coins = coins
}

// Populate fills the container with count candies of the given radius. The
// spawn box is shrunk by three radii in X and Z and by radius-0.1 in Y, and
// spawn points inside the safety cylinder around the dispense point are
// retried. The shrunk box also becomes the physics candy bounds.
func (d *Dispenser) Populate(container geometry.AABB, count int, radius float32) []*components.Rigidbody {
	marginXZ := radius * 3
	marginY := radius - 0.1
	box := container
	box.Min.X += marginXZ
	box.Max.X -= marginXZ
	box.Min.Z += marginXZ
	box.Max.Z -= marginXZ
	box.Min.Y += marginY
	box.Max.Y -= marginY

	d.candyRadius = radius
	if d.physics != nil {
		d.physics.SetDispenserSafetyZone(d.target, SafetyRadius)
	}

	mesh := geometry.NewSphereMesh(radius, 6, 8)
	created := make([]*components.Rigidbody, 0, count)
	for i := 0; i < count; i++ {
		pos, ok := d.spawnPoint(box)
		if !ok {
			slog.Warn("no safe candy spawn point found, spawning anyway", "candy", i, "tries", maxSpawnTries)
		}

		g := engine.NewGameObject(fmt.Sprintf("Candy_%d", i))
		g.Tags = append(g.Tags, "candy")
		g.Transform.Position = pos
		g.AddComponent(components.NewMeshCollider(mesh))
		g.AddComponent(components.NewMeshRenderer(components.DrawSolid, candyColors[d.rng.IntN(len(candyColors))]))
		body := components.NewRigidbody(CandyMass)
		body.IsCandy = true
		g.AddComponent(body)
		body.CaptureFromObject()

		if d.physics != nil {
			d.physics.AddBody(body)
		}
		d.candies = append(d.candies, body)
		created = append(created, body)
	}

	if d.physics != nil {
		d.physics.SetCandyBounds(box.Min, box.Max)
	}
	slog.Info("candies created", "count", count, "min", box.Min, "max", box.Max)
	return created
}

func (d *Dispenser) spawnPoint(box geometry.AABB) (rl.Vector3, bool) {
	var p rl.Vector3
	for try := 0; try < maxSpawnTries; try++ {
		p = rl.Vector3{
			X: rl.Lerp(box.Min.X, box.Max.X, d.rng.Float32()),
			Y: rl.Lerp(box.Min.Y, box.Max.Y, d.rng.Float32()),
			Z: rl.Lerp(box.Min.Z, box.Max.Z, d.rng.Float32()),
		}
		dx, dz := p.X-d.target.X, p.Z-d.target.Z
		if dx*dx+dz*dz > SafetyRadius*SafetyRadius {
			return p, true
		}
	}
	return p, false
}

// InsertCoin pays for one dispense. It fails while a coin is already in or
// the knob is turning, or when the coin source cannot pay.
func (d *Dispenser) InsertCoin() bool {
	if d.hasCoin || d.knobTurning {
		slog.Info("cannot insert a coin now, a sequence is in progress")
		return false
	}
	if d.coins == nil {
		slog.Warn("dispenser has no coin source")
		return false
	}
	if !d.coins.SpendStarAsCoin() {
		return false
	}
	d.hasCoin = true
	slog.Info("coin inserted")
	return true
}

// StartDispensing begins the sequence if a coin is in, nothing is running
// and there is candy left.
func (d *Dispenser) StartDispensing() bool {
	switch {
	case !d.hasCoin:
		slog.Info("insert a coin first")
		return false
	case d.dispensing || d.knobTurning:
		slog.Info("cannot dispense, a sequence is in progress")
		return false
	case len(d.candies) == 0:
		slog.Warn("candy machine is empty")
		return false
	}

	slog.Info("dispensing candy")
	d.dispensing = true
	d.gateProgress = 0
	d.setStage(LoweringGate)

	d.knobTurning = true
	d.knobDone = false
	d.knobProgress = 0
	return true
}

// Update advances the dispensing stages and the knob turn.
func (d *Dispenser) Update(dt float32) {
	if d.dispensing {
		d.updateStage(dt)
	}

	if d.knobTurning {
		d.knobProgress += dt
		t := math32.Min(d.knobProgress/knobTurnSeconds, 1)
		d.knobAngle = t * 2 * math32.Pi
		if d.knobProgress >= knobTurnSeconds {
			d.knobDone = true
			if d.stage == WaitingForKnob {
				d.complete()
			}
		}
	}
}

func (d *Dispenser) updateStage(dt float32) {
	switch d.stage {
	case LoweringGate:
		d.gateProgress += dt * animationSpeed
		t := math32.Min(d.gateProgress, 1)
		d.gateOffset = gateDrop * t
		if t >= 1 {
			d.pickCandy()
		}

	case MovingCandy:
		if d.driveCandy(d.target, dt) {
			d.setStage(Descending)
		}

	case Descending:
		if d.driveCandy(d.descentPos, dt) {
			d.doorProgress = 0
			d.setStage(OpeningDoor)
		}

	case OpeningDoor:
		d.doorProgress += dt * animationSpeed * doorSpeedFactor
		t := math32.Min(d.doorProgress, 1)
		d.doorAngle = doorOpenAngle * t
		if t >= 1 {
			d.setStage(Ejecting)
		}

	case Ejecting:
		if d.candy == nil {
			d.setStage(ClosingDoor)
			return
		}
		d.moveProgress += dt * ejectSpeed
		t := math32.Min(d.moveProgress, 1)
		d.placeCandy(ExitPoint(d.startPos, d.exitMid, d.exitEnd, t))
		if t >= 1 {
			d.eject()
			d.doorProgress = 0
			d.setStage(ClosingDoor)
		}

	case ClosingDoor:
		d.doorProgress += dt * animationSpeed
		t := math32.Min(d.doorProgress, 1)
		d.doorAngle = doorOpenAngle * (1 - t)
		if t >= 1 {
			d.gateProgress = 0
			d.setStage(RaisingGate)
		}

	case RaisingGate:
		d.gateProgress += dt * animationSpeed
		t := math32.Min(d.gateProgress, 1)
		d.gateOffset = gateDrop * (1 - t)
		if t >= 1 {
			if d.knobDone {
				d.complete()
			} else {
				d.setStage(WaitingForKnob)
			}
		}

	case WaitingForKnob:
		if d.knobDone {
			d.complete()
		}
	}
}

// pickCandy takes a random candy out of physics control. It becomes
// kinematic but still shoves other candies out of its way.
func (d *Dispenser) pickCandy() {
	if len(d.candies) == 0 {
		slog.Warn("no candy left to dispense")
		d.setStage(ClosingDoor)
		return
	}
	c := d.candies[d.rng.IntN(len(d.candies))]
	c.IsBeingDispensed = true
	c.IsSleeping = false
	c.SleepyTimer = 0
	c.WakeAt = 0
	c.InverseMass = 0
	c.ClearMotion()

	d.candy = c
	d.startPos = c.Position
	d.moveProgress = 0
	slog.Debug("candy selected", "candy", c.Name(), "position", c.Position)
	d.setStage(MovingCandy)
}

// driveCandy lerps the chosen candy towards dst and writes the per-tick
// displacement as its velocity. It reports arrival.
func (d *Dispenser) driveCandy(dst rl.Vector3, dt float32) bool {
	if d.candy == nil {
		return true
	}
	d.moveProgress += dt * animationSpeed
	t := math32.Min(d.moveProgress, 1)

	old := d.candy.Position
	d.placeCandy(rl.Vector3Lerp(d.startPos, dst, t))
	if dt > 0 {
		d.candy.LinearVelocity = rl.Vector3Scale(rl.Vector3Subtract(d.candy.Position, old), 1/dt)
	}

	if t < 1 {
		return false
	}
	d.candy.LinearVelocity = rl.Vector3{}
	d.startPos = d.candy.Position
	d.moveProgress = 0
	return true
}

func (d *Dispenser) placeCandy(p rl.Vector3) {
	d.candy.Position = p
	d.candy.SyncTransform()
}

// ExitPoint is the ejection path at progress t: a straight run from start
// to mid over the first half, then mid to end with a parabolic hop.
func ExitPoint(start, mid, end rl.Vector3, t float32) rl.Vector3 {
	if t <= 0.5 {
		return rl.Vector3Lerp(start, mid, t*2)
	}
	u := (t - 0.5) * 2
	p := rl.Vector3Lerp(mid, end, u)
	p.Y += math32.Sin(u*math32.Pi) * parabolaHeight
	return p
}

func (d *Dispenser) eject() {
	c := d.candy
	slog.Info("candy ejected", "candy", c.Name())
	d.OnCandyEjected.Invoke(c)

	if d.physics != nil {
		d.physics.RemoveBody(c)
	}
	for i, b := range d.candies {
		if b == c {
			d.candies = append(d.candies[:i], d.candies[i+1:]...)
			break
		}
	}
	d.candy = nil
}

func (d *Dispenser) complete() {
	d.dispensing = false
	d.candy = nil
	d.knobTurning = false
	d.knobDone = false
	d.knobProgress = 0
	d.knobAngle = 0
	d.hasCoin = false
	d.setStage(Idle)
	slog.Info("dispensing sequence complete", "candies_left", len(d.candies))
}

func (d *Dispenser) setStage(s Stage) {
	if d.stage == s {
		return
	}
	slog.Debug("dispenser stage", "from", d.stage, "to", s)
	d.stage = s
	d.OnStageChange.Invoke(s)
}

func (d *Dispenser) Stage() Stage {
	return d.stage
}

func (d *Dispenser) HasCoin() bool {
	return d.hasCoin
}

func (d *Dispenser) IsDispensing() bool {
	return d.dispensing
}

func (d *Dispenser) Candies() []*components.Rigidbody {
	return d.candies
}

// DispensingCandy is the candy currently on the scripted path, or nil.
func (d *Dispenser) DispensingCandy() *components.Rigidbody {
	return d.candy
}

func (d *Dispenser) Target() rl.Vector3 {
	return d.target
}

func (d *Dispenser) CandyRadius() float32 {
	return d.candyRadius
}

// GateOffset is how far the gate has been lowered, DoorAngle how far the
// release door is tilted open and KnobAngle the knob turn, for drawing.
func (d *Dispenser) GateOffset() float32 {
	return d.gateOffset
}

func (d *Dispenser) DoorAngle() float32 {
	return d.doorAngle
}

func (d *Dispenser) KnobAngle() float32 {
	return d.knobAngle
}

func (d *Dispenser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("stage", d.stage.String()),
		slog.Bool("coin", d.hasCoin),
		slog.Int("candies", len(d.candies)),
	)
}
