package world

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/components"
)

const snapshotVersion = 1

// Snapshot is the saved state of the prizes and the score.
type Snapshot struct {
	Version        int        `json:"version"`
	Tick           uint64     `json:"tick"`
	Seed           uint64     `json:"seed"`
	DeliveredStars int        `json:"delivered_stars"`
	ClawState      string     `json:"claw_state"`
	Prizes         []PrizeDef `json:"prizes"`
	Candies        []CandyDef `json:"candies,omitempty"`
}

// PrizeDef is one star. Stars that have been collected are saved with
// InPlay false and no motion.
type PrizeDef struct {
	Name            string     `json:"name"`
	InPlay          bool       `json:"in_play"`
	Position        [3]float32 `json:"position"`
	Orientation     [4]float32 `json:"orientation"`
	LinearVelocity  [3]float32 `json:"linear_velocity"`
	AngularVelocity [3]float32 `json:"angular_velocity"`
	Sleeping        bool       `json:"sleeping,omitempty"`
	TouchedClaw     bool       `json:"touched_claw,omitempty"`
	CanFallThrough  bool       `json:"can_fall_through,omitempty"`
}

type CandyDef struct {
	Name     string     `json:"name"`
	Position [3]float32 `json:"position"`
}

func vec3(v rl.Vector3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func toVector3(a [3]float32) rl.Vector3 {
	return rl.Vector3{X: a[0], Y: a[1], Z: a[2]}
}

// Snapshot captures the current state of every star.
func (w *World) Snapshot() *Snapshot {
	s := &Snapshot{
		Version:        snapshotVersion,
		Tick:           w.ticks,
		Seed:           w.cfg.Simulation.Seed,
		DeliveredStars: w.Claw.DeliveredStars(),
		ClawState:      w.Claw.State().String(),
	}
	for _, b := range w.stars {
		o := b.Orientation
		s.Prizes = append(s.Prizes, PrizeDef{
			Name:            b.Name(),
			InPlay:          w.inPlay[b],
			Position:        vec3(b.Position),
			Orientation:     [4]float32{o.X, o.Y, o.Z, o.W},
			LinearVelocity:  vec3(b.LinearVelocity),
			AngularVelocity: vec3(b.AngularVelocity),
			Sleeping:        b.IsSleeping,
			TouchedClaw:     b.HasTouchedClaw,
			CanFallThrough:  b.CanFallThrough,
		})
	}
	for _, c := range w.Dispenser.Candies() {
		s.Candies = append(s.Candies, CandyDef{Name: c.Name(), Position: vec3(c.Position)})
	}
	return s
}

// Restore puts the stars back the way a snapshot describes them. Stars the
// snapshot does not name are left alone; candies are informational only.
func (w *World) Restore(s *Snapshot) error {
	if s.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", s.Version)
	}

	byName := make(map[string]*components.Rigidbody, len(w.stars))
	for _, b := range w.stars {
		byName[b.Name()] = b
	}
	for _, p := range s.Prizes {
		if _, ok := byName[p.Name]; !ok {
			return fmt.Errorf("snapshot names unknown prize %q", p.Name)
		}
	}

	w.animating = nil
	for _, p := range s.Prizes {
		b := byName[p.Name]
		b.Position = toVector3(p.Position)
		b.Orientation = rl.QuaternionNormalize(rl.Quaternion{
			X: p.Orientation[0], Y: p.Orientation[1], Z: p.Orientation[2], W: p.Orientation[3],
		})
		b.LinearVelocity = toVector3(p.LinearVelocity)
		b.AngularVelocity = toVector3(p.AngularVelocity)
		b.IsSleeping = p.Sleeping
		b.SleepyTimer = 0
		b.WakeAt = 0
		b.HasTouchedClaw = p.TouchedClaw
		b.TouchedFrameCount = 0
		b.CanFallThrough = p.CanFallThrough
		b.IsBlocked = false
		b.IsHeld = false
		b.IsBeingReleased = false
		b.IgnoreClawCollision = false
		b.SyncTransform()

		g := b.GetGameObject()
		if p.InPlay {
			if g != nil {
				g.Visible = true
				if g.Scene == nil {
					w.Scene.AddGameObject(g)
				}
			}
			w.enterPlay(b)
		} else {
			b.ClearMotion()
			if g != nil {
				g.Visible = false
			}
			w.leavePlay(b)
		}
	}
	w.Claw.SetDeliveredStars(s.DeliveredStars)
	return nil
}

// SaveSnapshot writes a snapshot into dir and returns its path.
func SaveSnapshot(s *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", s.Tick))

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &s, nil
}
