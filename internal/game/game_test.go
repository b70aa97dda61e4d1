package game

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/config"
	"clawmachine/internal/engine"
	"clawmachine/internal/world"
)

func newTestSession(t *testing.T, coins int) *Session {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	w := world.New(cfg, engine.NewManualClock(0))
	return NewSession(w, coins)
}

func TestDropSpendsCoin(t *testing.T) {
	s := newTestSession(t, 2)

	if !s.Drop() {
		t.Fatal("first drop refused")
	}
	if s.Coins() != 1 {
		t.Errorf("coins = %d, want 1", s.Coins())
	}
	if s.ClawIdle() {
		t.Error("claw should be busy after a drop")
	}
	if s.Drop() {
		t.Error("drop accepted while the claw is busy")
	}
	if s.Coins() != 1 {
		t.Errorf("busy drop spent a coin: %d", s.Coins())
	}
}

func TestDropRefusedOverChute(t *testing.T) {
	s := newTestSession(t, 3)
	w := s.World()
	chute := w.ChuteBox().Center()
	w.Claw.Rig().SetPosition(rl.Vector3{X: chute.X, Y: 2.2, Z: chute.Z})

	if s.Drop() {
		t.Error("drop over the chute should be refused")
	}
	if s.Coins() != 3 {
		t.Errorf("refused drop spent a coin: %d", s.Coins())
	}
}

func TestGameOverLatches(t *testing.T) {
	s := newTestSession(t, 0)
	s.World().Claw.SetDeliveredStars(3)

	var finals []int
	s.OnGameOver.AddListener(func(score int) {
		finals = append(finals, score)
	})

	s.Update()
	s.Update()
	if !s.GameOver() {
		t.Fatal("no coins and an idle claw should end the game")
	}
	if len(finals) != 1 || finals[0] != 3 {
		t.Errorf("game over events = %v, want [3]", finals)
	}
	if s.Drop() {
		t.Error("drop accepted after game over")
	}

	s.NewGame()
	if s.GameOver() || s.Coins() != 0 || s.Score() != 0 {
		t.Errorf("new game: over=%v coins=%d score=%d", s.GameOver(), s.Coins(), s.Score())
	}
}

func TestNewGameRefillsCoins(t *testing.T) {
	s := newTestSession(t, 5)
	s.coins = 1
	s.NewGame()
	if s.Coins() != 5 {
		t.Errorf("coins = %d, want 5", s.Coins())
	}
	if s.World().StarsInPlay() != 20 {
		t.Errorf("stars in play = %d", s.World().StarsInPlay())
	}
}

func TestCandyNeedsAStar(t *testing.T) {
	s := newTestSession(t, 5)

	if s.InsertCandyCoin() {
		t.Fatal("coin accepted with no stars")
	}
	s.World().Claw.SetDeliveredStars(1)
	if !s.InsertCandyCoin() {
		t.Fatal("coin refused with one star")
	}
	if s.Score() != 0 {
		t.Errorf("score = %d, want the star spent", s.Score())
	}
	if !s.DispenseCandy() {
		t.Fatal("dispense refused with a coin inserted")
	}
	if !s.World().Dispenser.IsDispensing() {
		t.Error("dispenser not running")
	}
}

func TestBotChoosesTallestStar(t *testing.T) {
	s := newTestSession(t, 5)
	w := s.World()
	stars := w.Stars()

	high := stars[0]
	high.Position = rl.Vector3{X: -0.5, Y: 1.2, Z: -0.5}
	high.SyncTransform()

	b := NewBot(s, 1, 3600)
	target, aim, ok := b.ChooseTarget()
	if !ok {
		t.Fatal("no target chosen")
	}
	if target != high {
		t.Errorf("target = %s, want %s", target.Name(), high.Name())
	}
	if aim.X != -0.5 || aim.Z != -0.5 {
		t.Errorf("aim = %v", aim)
	}
	if aim.Y != w.Claw.Rig().Position().Y {
		t.Errorf("aim height %v should stay at the claw's height", aim.Y)
	}
}

func TestBotSkipsStarsOverTheChute(t *testing.T) {
	s := newTestSession(t, 5)
	w := s.World()
	stars := w.Stars()
	chute := w.ChuteBox().Center()

	stars[0].Position = rl.Vector3{X: chute.X, Y: 2.0, Z: chute.Z}
	stars[0].SyncTransform()
	stars[1].Position = rl.Vector3{X: -0.5, Y: 1.2, Z: -0.5}
	stars[1].SyncTransform()

	target, _, ok := NewBot(s, 1, 3600).ChooseTarget()
	if !ok || target != stars[1] {
		t.Errorf("target = %v, want %s", target, stars[1].Name())
	}
}

func TestBotWithNoRoundsIsDone(t *testing.T) {
	s := newTestSession(t, 5)
	b := NewBot(s, 0, 100)
	if !b.Done() {
		t.Error("bot with zero rounds should be done")
	}
	b.Step(1.0 / 60)
	if s.Coins() != 5 {
		t.Error("idle bot spent a coin")
	}
}

func TestHeadlessRun(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "out")

	h, err := NewHeadless(cfg, Options{Rounds: 2, MaxTicks: 20000, OutputDir: dir, BuyCandy: true})
	if err != nil {
		t.Fatalf("NewHeadless: %v", err)
	}
	defer h.Close()

	res, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !h.Bot.Done() {
		t.Fatalf("bot not done after %d ticks", res.Ticks)
	}
	if res.Rounds != 2 || len(h.Rounds()) != 2 {
		t.Fatalf("rounds = %d", res.Rounds)
	}
	if h.Session.Coins() != cfg.Session.Coins-2 {
		t.Errorf("coins = %d, want %d", h.Session.Coins(), cfg.Session.Coins-2)
	}
	for _, r := range h.Rounds() {
		if r.EndTick <= r.StartTick || r.Target == "" {
			t.Errorf("bad round record %+v", r)
		}
	}
	if res.Candies > res.Delivered {
		t.Errorf("%d candies bought with %d stars", res.Candies, res.Delivered)
	}
	if res.RoundSeconds.Count != 2 || res.RoundSeconds.Mean <= 0 {
		t.Errorf("round summary = %+v", res.RoundSeconds)
	}

	for _, name := range []string{"telemetry.csv", "rounds.csv", "deliveries.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
	if res.Snapshot == "" {
		t.Error("no snapshot saved")
	} else if _, err := world.LoadSnapshot(res.Snapshot); err != nil {
		t.Errorf("snapshot unreadable: %v", err)
	}
}

func TestHeadlessStopsOnCancel(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	h, err := NewHeadless(cfg, Options{Rounds: 3})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := h.Run(ctx)
	if err == nil {
		t.Error("expected the context error")
	}
	if res.Ticks != 0 {
		t.Errorf("ran %d ticks after cancel", res.Ticks)
	}
}
