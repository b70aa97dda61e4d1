package world

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/claw"
	"clawmachine/internal/components"
	"clawmachine/internal/config"
	"clawmachine/internal/dispenser"
	"clawmachine/internal/engine"
	"clawmachine/internal/geometry"
	"clawmachine/internal/interaction"
	"clawmachine/internal/physics"
)

// Machine layout derived from the prize area box.
const (
	boundsSideX      = 10.0
	floorOffset      = 0.10
	boundsMargin     = 0.15
	clawStartInset   = 0.2
	clawStartDrop    = 0.3
	clawStartBack    = 1.5
	finalHelperDrop  = 0.3
	finalHelperScale = 0.2
	triggerScale     = 0.5
)

// Star grid used by ResetObjects
const (
	gridCols         = 5
	gridRows         = 2
	itemsPerLayer    = gridCols * gridRows
	layerHeight      = 0.25
	spawnWidthRatio  = 0.7
	spawnDepthRatio  = 0.9
	spawnFrontInset  = 0.3
	spawnFloorHeight = 0.1
	chuteAvoidRadius = 0.2
)

var starColor = rl.Color{R: 255, G: 200, B: 40, A: 255}

// PrizeCollected is the payload of OnPrizeCollected.
type PrizeCollected struct {
	Body *components.Rigidbody
	Name string
}

// World is the whole simulation: the cabinet, its prizes, the claw and the
// candy dispenser, stepped together in a fixed order.
type World struct {
	Scene       *engine.Scene
	Physics     *physics.PhysicsWorld
	Interaction *interaction.Interaction
	Claw        *claw.Controller
	Dispenser   *dispenser.Dispenser

	cfg   *config.Config
	clock engine.Clock
	rng   *rand.Rand

	machineBox  geometry.AABB
	chute       *engine.GameObject
	chuteWalls  []*engine.GameObject
	trigger     *engine.GameObject
	finalHelper *engine.GameObject
	container   *engine.GameObject

	stars     []*components.Rigidbody
	inPlay    map[*components.Rigidbody]bool
	animating []*prizeAnimation
	ticks     uint64

	OnPrizeCollected engine.EventWithArg[PrizeCollected]
}

// New builds the machine described by cfg. Every timed behaviour reads
// clock, so a ManualClock makes runs repeatable.
func New(cfg *config.Config, clock engine.Clock) *World {
	if clock == nil {
		clock = engine.NewSystemClock()
	}
	w := &World{
		Scene:      engine.NewScene("ClawMachine"),
		Physics:    physics.NewPhysicsWorld(clock),
		cfg:        cfg,
		clock:      clock,
		rng:        rand.New(rand.NewPCG(cfg.Simulation.Seed, cfg.Simulation.Seed^0x9e3779b97f4a7c15)),
		machineBox: cfg.Machine.AABB(),
		inPlay:     make(map[*components.Rigidbody]bool),
	}

	w.buildChute()
	w.setupBounds()
	w.buildClaw()
	w.createStars()
	w.buildDispenser()

	w.Scene.Start()
	w.ResetObjects()

	slog.Info("world ready",
		"stars", len(w.stars),
		"candies", len(w.Dispenser.Candies()),
		"statics", len(w.Physics.Statics()),
	)
	return w
}

// buildChute creates the solid shell the claw collides with, the open walls
// falling prizes collide with, and the two trigger volumes under it.
func (w *World) buildChute() {
	c := w.cfg.Chute
	center := c.Center.Vector()
	size := c.Size.Vector()

	w.chute = engine.NewGameObject("Chute")
	w.chute.Transform.Position = center
	w.chute.AddComponent(components.NewMeshCollider(geometry.NewBoxMesh(size)))
	w.chute.AddComponent(components.NewMeshRenderer(components.DrawWireframe, rl.DarkGray))
	w.Scene.AddGameObject(w.chute)

	t := c.WallThickness
	walls := []struct {
		name   string
		offset rl.Vector3
		size   rl.Vector3
	}{
		{"ChuteWall_Left", rl.Vector3{X: -size.X / 2}, rl.Vector3{X: t, Y: size.Y, Z: size.Z}},
		{"ChuteWall_Right", rl.Vector3{X: size.X / 2}, rl.Vector3{X: t, Y: size.Y, Z: size.Z}},
		{"ChuteWall_Front", rl.Vector3{Z: -size.Z / 2}, rl.Vector3{X: size.X, Y: size.Y, Z: t}},
		{"ChuteWall_Back", rl.Vector3{Z: size.Z / 2}, rl.Vector3{X: size.X, Y: size.Y, Z: t}},
	}
	for _, wall := range walls {
		g := engine.NewGameObject(wall.name)
		g.Tags = append(g.Tags, "static")
		g.Transform.Position = rl.Vector3Add(center, wall.offset)
		g.AddComponent(components.NewMeshCollider(geometry.NewBoxMesh(wall.size)))
		w.Scene.AddGameObject(g)
		w.Physics.AddStaticCollider(g)
		w.chuteWalls = append(w.chuteWalls, g)
	}

	w.trigger = engine.NewGameObject("ChuteTrigger")
	w.trigger.Transform.Position = center
	w.trigger.AddComponent(components.NewMeshCollider(geometry.NewBoxMesh(rl.Vector3Scale(size, triggerScale))))
	w.trigger.AddComponent(components.NewMeshRenderer(components.DrawWireframe, rl.SkyBlue))
	w.Scene.AddGameObject(w.trigger)

	helperSize := rl.Vector3{X: size.X * triggerScale, Y: size.Y * finalHelperScale, Z: size.Z * triggerScale}
	helperPos := center
	helperPos.Y -= size.Y/2 + helperSize.Y/2 + finalHelperDrop
	w.finalHelper = engine.NewGameObject("FinalPrizeHelper")
	w.finalHelper.Transform.Position = helperPos
	w.finalHelper.AddComponent(components.NewMeshCollider(geometry.NewBoxMesh(helperSize)))
	w.finalHelper.AddComponent(components.NewMeshRenderer(components.DrawWireframe, rl.Orange))
	w.Scene.AddGameObject(w.finalHelper)
}

func (w *World) setupBounds() {
	box := w.machineBox
	w.Physics.SetPrizeBounds(box)
	w.Physics.SetWorldBounds(
		rl.Vector3{X: -boundsSideX, Y: box.Min.Y - floorOffset, Z: box.Min.Z + boundsMargin},
		rl.Vector3{X: boundsSideX, Y: box.Max.Y - boundsMargin, Z: box.Max.Z - boundsMargin},
	)
}

func (w *World) buildClaw() {
	rig := claw.NewRig("Claw")
	box := w.machineBox
	rig.SetPosition(rl.Vector3{
		X: box.Min.X + clawStartInset,
		Y: box.Max.Y - clawStartDrop,
		Z: box.Max.Z - clawStartBack,
	})
	w.Scene.AddGameObject(rig.Group)

	w.Interaction = interaction.New(rig.Proxies())
	w.Claw = claw.NewController(rig, w.Interaction, w.Physics, claw.Options{
		InitialStars: w.cfg.Claw.InitialStars,
		Clock:        w.clock,
	})
	w.Claw.SetDependencies(box, engine.GetComponent[*components.MeshCollider](w.chute))
}

func (w *World) createStars() {
	s := w.cfg.Stars
	mesh := geometry.NewStarMesh(s.OuterRadius, s.InnerRadius, s.Thickness, s.Points)
	for i := 0; i < s.Count; i++ {
		name := fmt.Sprintf("Star_%d", i)
		g := engine.NewGameObject(name)
		g.Tags = append(g.Tags, "star")
		g.AddComponent(components.NewMeshCollider(mesh))
		g.AddComponent(components.NewMeshRenderer(components.DrawSolid, starColor))
		body := components.NewRigidbody(s.Mass)
		g.AddComponent(body)
		w.Scene.AddGameObject(g)

		w.stars = append(w.stars, body)
		w.enterPlay(body)
	}
}

func (w *World) buildDispenser() {
	c := w.cfg.Candy
	w.Dispenser = dispenser.New(w.Physics, w.Claw, c.DispensePoint.Vector(), c.DoorHinge.Vector(), w.rng)

	w.container = engine.NewGameObject("CandyContainer")
	box := c.Container.AABB()
	w.container.Transform.Position = box.Center()
	w.container.AddComponent(components.NewMeshCollider(geometry.NewBoxMesh(box.Size())))
	w.container.AddComponent(components.NewMeshRenderer(components.DrawWireframe, rl.Pink))
	w.Scene.AddGameObject(w.container)

	for _, candy := range w.Dispenser.Populate(box, c.Count, c.Radius) {
		w.Scene.AddGameObject(candy.GetGameObject())
	}
	w.Dispenser.OnCandyEjected.AddListener(func(candy *components.Rigidbody) {
		w.Scene.RemoveGameObject(candy.GetGameObject())
	})
}

// enterPlay registers a star with physics and the claw's contact detector.
func (w *World) enterPlay(body *components.Rigidbody) {
	if w.inPlay[body] {
		return
	}
	w.Physics.AddBody(body)
	w.Interaction.AddGrabbableObject(body, body.Name())
	w.inPlay[body] = true
}

func (w *World) leavePlay(body *components.Rigidbody) {
	if !w.inPlay[body] {
		return
	}
	w.Physics.RemoveBody(body)
	w.Interaction.RemoveGrabbableObject(body)
	delete(w.inPlay, body)
}

// Tick advances everything by one fixed step.
func (w *World) Tick(dt float32) {
	w.Claw.Update(dt)
	w.Interaction.Update()
	w.checkChuteTrigger()
	w.checkFinalPrizeTrigger()
	w.Dispenser.Update(dt)
	w.updatePrizeAnimations(dt)
	w.Physics.Update(dt)
	w.ticks++
}

// ResetObjects stacks every star back into the cabinet in layers of a 5x2
// grid, with odd layers shifted half a column. Spawn points near the chute
// move to the front centre. All motion, flags and latches are cleared, and
// collected stars come back into play.
func (w *World) ResetObjects() {
	box := w.machineBox
	center := box.Center()
	size := box.Size()

	chuteBox := engine.GetComponent[*components.MeshCollider](w.chute).WorldBounds().ExpandByScalar(chuteAvoidRadius)

	width := size.X * spawnWidthRatio
	depth := size.Z * spawnDepthRatio
	spacingX := width / (gridCols - 1)
	spacingZ := depth / (gridRows - 1)
	startX := center.X - width/2
	startZ := box.Min.Z + spawnFrontInset
	baseY := box.Min.Y + spawnFloorHeight

	w.animating = nil

	for i, b := range w.stars {
		layer := i / itemsPerLayer
		inLayer := i % itemsPerLayer
		row := inLayer / gridCols
		col := inLayer % gridCols

		var xOffset float32
		if layer%2 == 1 {
			xOffset = spacingX / 2
		}
		p := rl.Vector3{
			X: startX + float32(col)*spacingX + xOffset,
			Y: baseY + float32(layer)*layerHeight,
			Z: startZ + float32(row)*spacingZ,
		}
		if chuteBox.ContainsPoint(p) {
			p = rl.Vector3{X: center.X, Y: baseY, Z: startZ}
		}

		b.Position = p
		b.Orientation = rl.QuaternionFromEuler(
			w.rng.Float32()*math32.Pi,
			w.rng.Float32()*math32.Pi,
			w.rng.Float32()*math32.Pi,
		)
		b.ClearMotion()
		b.IsSleeping = false
		b.SleepyTimer = 0
		b.WakeAt = 0
		b.HasTouchedClaw = false
		b.TouchedFrameCount = 0
		b.CanFallThrough = false
		b.IsBlocked = false
		b.IsHeld = false
		b.IsBeingReleased = false
		b.IgnoreClawCollision = false
		b.SyncTransform()

		if g := b.GetGameObject(); g != nil {
			g.Visible = true
			if g.Scene == nil {
				w.Scene.AddGameObject(g)
			}
		}
		w.enterPlay(b)
	}
	slog.Info("prizes reset", "count", len(w.stars))
}

func (w *World) Config() *config.Config {
	return w.cfg
}

func (w *World) Clock() engine.Clock {
	return w.clock
}

func (w *World) MachineBox() geometry.AABB {
	return w.machineBox
}

// ChuteBox is the world box of the chute shell.
func (w *World) ChuteBox() geometry.AABB {
	return engine.GetComponent[*components.MeshCollider](w.chute).WorldBounds()
}

func (w *World) TriggerBox() geometry.AABB {
	return engine.GetComponent[*components.MeshCollider](w.trigger).WorldBounds()
}

func (w *World) FinalHelperBox() geometry.AABB {
	return engine.GetComponent[*components.MeshCollider](w.finalHelper).WorldBounds()
}

// Stars returns every star, in play or not.
func (w *World) Stars() []*components.Rigidbody {
	return w.stars
}

// InPlay reports whether a star is still in the cabinet.
func (w *World) InPlay(body *components.Rigidbody) bool {
	return w.inPlay[body]
}

func (w *World) StarsInPlay() int {
	return len(w.inPlay)
}

func (w *World) Ticks() uint64 {
	return w.ticks
}

// KineticEnergy sums the kinetic energy of every awake dynamic body.
func (w *World) KineticEnergy() float32 {
	var total float32
	for _, b := range w.Physics.Bodies() {
		if b.InverseMass == 0 || b.IsSleeping {
			continue
		}
		total += b.KineticEnergy()
	}
	return total
}

// SleepingBodies counts registered bodies that are asleep.
func (w *World) SleepingBodies() int {
	n := 0
	for _, b := range w.Physics.Bodies() {
		if b.IsSleeping {
			n++
		}
	}
	return n
}

func (w *World) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("tick", w.ticks),
		slog.Int("stars_in_play", len(w.inPlay)),
		slog.Int("bodies", len(w.Physics.Bodies())),
		slog.String("claw", w.Claw.State().String()),
		slog.String("dispenser", w.Dispenser.Stage().String()),
	)
}
