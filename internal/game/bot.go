package game

import (
	"log/slog"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/claw"
	"clawmachine/internal/components"
	"clawmachine/internal/engine"
	"clawmachine/internal/geometry"
	"clawmachine/internal/telemetry"
)

const (
	// settleTicks lets the pile come to rest before each round.
	settleTicks = 30
	// lockoutMargin keeps aim points clear of the chute's drop lockout.
	lockoutMargin = 0.05
	rayHeadroom   = 0.5
)

type botPhase int

const (
	phaseSettle botPhase = iota
	phaseMove
	phaseWait
	phaseDone
)

func (p botPhase) String() string {
	switch p {
	case phaseSettle:
		return "settle"
	case phaseMove:
		return "move"
	case phaseWait:
		return "wait"
	case phaseDone:
		return "done"
	default:
		return "?"
	}
}

// Bot plays rounds on its own: it aims at the tallest reachable star,
// steers the claw over it, drops and waits for the claw to come home.
type Bot struct {
	session   *Session
	maxRounds int
	maxTicks  int

	phase      botPhase
	round      int
	roundTicks int
	startTick  uint64

	target    *components.Rigidbody
	aim       rl.Vector3
	grabbed   string
	delivered bool
	dropped   bool

	OnRoundEnd engine.EventWithArg[telemetry.RoundRecord]
}

// NewBot plays rounds rounds, giving up on any round after maxTicks ticks.
func NewBot(s *Session, rounds, maxTicks int) *Bot {
	b := &Bot{
		session:   s,
		maxRounds: rounds,
		maxTicks:  maxTicks,
	}
	c := s.World().Claw
	c.OnGrab.AddListener(func(g claw.Grab) {
		b.grabbed = g.Name
	})
	c.OnDelivered.AddListener(func(claw.ObjectDelivered) {
		b.delivered = true
	})
	if rounds <= 0 {
		b.phase = phaseDone
	}
	return b
}

// Step issues this tick's input. Call it before World.Tick.
func (b *Bot) Step(dt float32) {
	if b.phase == phaseDone {
		return
	}
	b.roundTicks++

	switch b.phase {
	case phaseSettle:
		if !b.session.ClawIdle() {
			if b.roundTicks > b.maxTicks {
				slog.Warn("claw never came back, stopping bot", "round", b.round)
				b.phase = phaseDone
			}
			return
		}
		if b.roundTicks < settleTicks {
			return
		}
		if b.session.GameOver() {
			b.session.NewGame()
		}
		b.beginRound()

	case phaseMove:
		if b.steer(dt) {
			b.stop()
			if !b.session.Drop() {
				slog.Warn("drop refused", "round", b.round, "aim", b.aim)
				b.endRound(false)
				return
			}
			b.dropped = true
			b.phase = phaseWait
		}

	case phaseWait:
		if b.session.ClawIdle() {
			b.endRound(false)
			return
		}
	}

	if b.phase != phaseSettle && b.phase != phaseDone && b.roundTicks >= b.maxTicks {
		slog.Warn("round timed out", "round", b.round, "phase", b.phase)
		b.stop()
		b.endRound(true)
	}
}

func (b *Bot) beginRound() {
	w := b.session.World()
	target, aim, ok := b.ChooseTarget()
	if !ok {
		slog.Info("no reachable prizes left, stopping bot")
		b.phase = phaseDone
		return
	}
	b.round++
	b.roundTicks = 0
	b.startTick = w.Ticks()
	b.target = target
	b.aim = aim
	b.grabbed = ""
	b.delivered = false
	b.dropped = false
	b.phase = phaseMove
	slog.Debug("round started", "round", b.round, "target", target.Name(), "aim", aim)
}

// steer holds the movement keys towards the aim point and reports arrival.
func (b *Bot) steer(dt float32) bool {
	c := b.session.World().Claw
	pos := c.Rig().Position()
	tol := claw.MoveSpeed * dt

	dx := b.aim.X - pos.X
	dz := b.aim.Z - pos.Z
	c.SetMoving(claw.Right, dx > tol)
	c.SetMoving(claw.Left, dx < -tol)
	c.SetMoving(claw.Backward, dz > tol)
	c.SetMoving(claw.Forward, dz < -tol)
	return math32.Abs(dx) <= tol && math32.Abs(dz) <= tol
}

func (b *Bot) stop() {
	c := b.session.World().Claw
	for _, d := range []claw.Direction{claw.Left, claw.Right, claw.Forward, claw.Backward} {
		c.SetMoving(d, false)
	}
}

func (b *Bot) endRound(timedOut bool) {
	w := b.session.World()
	rec := telemetry.RoundRecord{
		Round:       b.round,
		StartTick:   b.startTick,
		EndTick:     w.Ticks(),
		DurationSec: float64(w.Ticks()-b.startTick) * float64(w.Config().Derived.DT32),
		Grabbed:     b.grabbed,
		Delivered:   b.delivered,
		TimedOut:    timedOut,
		StarsInPlay: w.StarsInPlay(),
		CoinsLeft:   b.session.Coins(),
	}
	if b.target != nil {
		rec.Target = b.target.Name()
	}
	slog.Info("round finished",
		"round", rec.Round,
		"target", rec.Target,
		"grabbed", rec.Grabbed,
		"delivered", rec.Delivered,
		"dropped", b.dropped,
		"seconds", rec.DurationSec,
	)
	b.OnRoundEnd.Invoke(rec)

	b.target = nil
	b.roundTicks = 0
	if b.round >= b.maxRounds {
		b.phase = phaseDone
		return
	}
	b.phase = phaseSettle
}

// ChooseTarget casts a ray straight down over every star in play and picks
// the one whose top is highest. Stars the claw cannot reach, or that sit in
// the chute's drop lockout, are skipped.
func (b *Bot) ChooseTarget() (*components.Rigidbody, rl.Vector3, bool) {
	w := b.session.World()
	box := w.MachineBox()
	lockout := b.lockout()

	var best *components.Rigidbody
	var bestAim rl.Vector3
	bestTop := float32(math32.Inf(-1))

	for _, star := range w.Stars() {
		if !w.InPlay(star) || star.IsBlocked || star.CanFallThrough || star.IsHeld {
			continue
		}
		aim := rl.Vector3{
			X: clamp(star.Position.X, box.Min.X+claw.MoveMargin, box.Max.X-claw.MoveMargin),
			Z: clamp(star.Position.Z, box.Min.Z+claw.MoveMargin, box.Max.Z-claw.MoveMargin),
		}
		if aim.X >= lockout.Min.X && aim.X <= lockout.Max.X && aim.Z >= lockout.Min.Z && aim.Z <= lockout.Max.Z {
			continue
		}

		origin := rl.Vector3{X: aim.X, Y: box.Max.Y + rayHeadroom, Z: aim.Z}
		hit, ok := w.Physics.Raycast(origin, rl.Vector3{Y: -1}, box.Size().Y+2*rayHeadroom)
		if !ok || hit.Body.IsCandy {
			continue
		}
		if hit.Point.Y > bestTop {
			bestTop = hit.Point.Y
			best = hit.Body
			bestAim = aim
		}
	}
	if best == nil {
		return nil, rl.Vector3{}, false
	}
	bestAim.Y = w.Claw.Rig().Position().Y
	return best, bestAim, true
}

// lockout is the XZ region where the claw refuses to drop, padded.
func (b *Bot) lockout() geometry.AABB {
	w := b.session.World()
	half := rl.Vector3Scale(w.Claw.Rig().WorldBounds().Size(), 0.5)
	cb := w.ChuteBox()
	pad := rl.Vector3{X: half.X + lockoutMargin, Z: half.Z + lockoutMargin}
	return geometry.AABB{Min: rl.Vector3Subtract(cb.Min, pad), Max: rl.Vector3Add(cb.Max, pad)}
}

func (b *Bot) Done() bool {
	return b.phase == phaseDone
}

func (b *Bot) Round() int {
	return b.round
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
