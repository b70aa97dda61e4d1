package world

import (
	"log/slog"

	"clawmachine/internal/components"
)

const (
	prizeSlideSpeed = 0.5
	prizeSlideExtra = 0.5
)

type prizeAnimation struct {
	body    *components.Rigidbody
	targetZ float32
}

// checkChuteTrigger lets a star that reaches the inside of the chute fall
// through the cabinet floor.
func (w *World) checkChuteTrigger() {
	trigger := w.TriggerBox()
	for _, b := range w.stars {
		if !w.inPlay[b] || b.CanFallThrough {
			continue
		}
		if b.WorldBounds().Intersects(trigger) {
			b.CanFallThrough = true
			slog.Debug("star entered the chute", "star", b.Name())
		}
	}
}

// checkFinalPrizeTrigger catches a falling star under the chute, stops it
// and starts sliding it out of the cabinet.
func (w *World) checkFinalPrizeTrigger() {
	helper := w.FinalHelperBox()
	for _, b := range w.stars {
		if !w.inPlay[b] || !b.CanFallThrough || b.IsBlocked {
			continue
		}
		if !b.WorldBounds().Intersects(helper) {
			continue
		}
		b.IsBlocked = true
		b.ClearMotion()
		b.IsSleeping = false
		b.HasTouchedClaw = false
		b.CanFallThrough = false
		w.startPrizeAnimation(b)
	}
}

func (w *World) startPrizeAnimation(b *components.Rigidbody) {
	slog.Info("prize reached the exit", "star", b.Name())
	w.animating = append(w.animating, &prizeAnimation{
		body:    b,
		targetZ: w.machineBox.Max.Z + prizeSlideExtra,
	})
}

// updatePrizeAnimations slides collected stars out through the front of the
// cabinet, then takes them out of play.
func (w *World) updatePrizeAnimations(dt float32) {
	kept := w.animating[:0]
	for _, a := range w.animating {
		b := a.body
		b.Position.Z += prizeSlideSpeed * dt
		b.SyncTransform()
		if b.Position.Z < a.targetZ {
			kept = append(kept, a)
			continue
		}

		w.leavePlay(b)
		if g := b.GetGameObject(); g != nil {
			g.Visible = false
		}
		slog.Info("prize collected", "star", b.Name(), "remaining", len(w.inPlay))
		w.OnPrizeCollected.Invoke(PrizeCollected{Body: b, Name: b.Name()})
	}
	w.animating = kept
}

// AnimatingPrizes is the number of stars currently sliding out.
func (w *World) AnimatingPrizes() int {
	return len(w.animating)
}
