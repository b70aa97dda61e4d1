package game

import (
	"log/slog"

	"clawmachine/internal/claw"
	"clawmachine/internal/engine"
	"clawmachine/internal/world"
)

// Session is one game on the machine: a purse of coins, one per drop, and
// the stars the claw delivers.
type Session struct {
	world      *world.World
	startCoins int
	coins      int
	gameOver   bool

	OnGameOver engine.EventWithArg[int]
}

func NewSession(w *world.World, coins int) *Session {
	return &Session{
		world:      w,
		startCoins: coins,
		coins:      coins,
	}
}

// Drop spends a coin and starts the claw's drop. Nothing is spent when the
// game is over, the claw is busy, or the claw refuses to drop over the chute.
func (s *Session) Drop() bool {
	if s.gameOver || s.coins <= 0 || !s.ClawIdle() {
		return false
	}
	if !s.world.Claw.StartDropSequence() {
		return false
	}
	s.coins--
	slog.Info("coin spent", "coins", s.coins)
	return true
}

// Update latches game over once the last coin has been played out.
func (s *Session) Update() {
	if s.gameOver || s.coins > 0 || !s.ClawIdle() {
		return
	}
	s.gameOver = true
	slog.Info("game over", "score", s.Score())
	s.OnGameOver.Invoke(s.Score())
}

// NewGame refills the purse, clears the score and restacks the prizes.
func (s *Session) NewGame() {
	s.coins = s.startCoins
	s.gameOver = false
	s.world.Claw.ResetScore()
	s.world.ResetObjects()
	slog.Info("new game", "coins", s.coins)
}

// InsertCandyCoin pays the candy machine with one delivered star.
func (s *Session) InsertCandyCoin() bool {
	return s.world.Dispenser.InsertCoin()
}

func (s *Session) DispenseCandy() bool {
	return s.world.Dispenser.StartDispensing()
}

// ClawIdle reports whether the claw is waiting for input.
func (s *Session) ClawIdle() bool {
	c := s.world.Claw
	return c.State() == claw.ManualHorizontal && !c.IsAnimating()
}

func (s *Session) Coins() int {
	return s.coins
}

func (s *Session) Score() int {
	return s.world.Claw.DeliveredStars()
}

func (s *Session) GameOver() bool {
	return s.gameOver
}

func (s *Session) World() *world.World {
	return s.world
}

func (s *Session) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("coins", s.coins),
		slog.Int("score", s.Score()),
		slog.Bool("game_over", s.gameOver),
	)
}
