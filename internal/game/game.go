package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/camera"
	"clawmachine/internal/claw"
	"clawmachine/internal/config"
	"clawmachine/internal/world"
)

// maxStepsPerFrame bounds catch-up after a long frame.
const maxStepsPerFrame = 4

// Game is the interactive viewer: the machine on the system clock, an
// orbit camera, keyboard controls and a HUD.
type Game struct {
	cfg      *config.Config
	World    *world.World
	Session  *Session
	Camera   *camera.OrbitCamera
	Renderer *world.Renderer

	DebugMode   bool
	accumulator float32

	// Debug timing (ms)
	updateMs float64
	drawMs   float64
}

func New(cfg *config.Config) *Game {
	w := world.New(cfg, nil)
	return &Game{
		cfg:      cfg,
		World:    w,
		Session:  NewSession(w, cfg.Session.Coins),
		Camera:   camera.New(w.MachineBox().Center()),
		Renderer: world.NewRenderer(),
	}
}

// Run opens the window and blocks until it is closed.
func (g *Game) Run() {
	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(g.cfg.Screen.Width), int32(g.cfg.Screen.Height), g.cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(g.cfg.Screen.TargetFPS))
	initRayguiStyle()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
	}
}

func (g *Game) Update() {
	updateStart := time.Now()

	g.handleInput()
	g.Camera.Update()

	dt := g.cfg.Derived.DT32
	g.accumulator += rl.GetFrameTime()
	steps := 0
	for g.accumulator >= dt && steps < maxStepsPerFrame {
		g.World.Tick(dt)
		g.accumulator -= dt
		steps++
	}
	if steps == maxStepsPerFrame {
		g.accumulator = 0
	}
	g.Session.Update()

	g.updateMs = float64(time.Since(updateStart).Microseconds()) / 1000.0
}

func (g *Game) handleInput() {
	c := g.World.Claw
	c.SetMoving(claw.Left, rl.IsKeyDown(rl.KeyA) || rl.IsKeyDown(rl.KeyLeft))
	c.SetMoving(claw.Right, rl.IsKeyDown(rl.KeyD) || rl.IsKeyDown(rl.KeyRight))
	c.SetMoving(claw.Forward, rl.IsKeyDown(rl.KeyW))
	c.SetMoving(claw.Backward, rl.IsKeyDown(rl.KeyS))

	if rl.IsKeyPressed(rl.KeyDown) {
		g.Session.Drop()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.Session.InsertCandyCoin()
	}
	if rl.IsKeyPressed(rl.KeyM) {
		g.Session.DispenseCandy()
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.Session.NewGame()
	}
	if rl.IsKeyPressed(rl.KeyF1) {
		g.Renderer.ShowBounds = !g.Renderer.ShowBounds
	}
	if rl.IsKeyPressed(rl.KeyF2) {
		g.DebugMode = !g.DebugMode
	}
}

func (g *Game) Draw() {
	cam := g.Camera.GetRaylibCamera()
	aspect := float32(rl.GetScreenWidth()) / float32(rl.GetScreenHeight())

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(20, 20, 30, 255))

	drawStart := time.Now()
	rl.BeginMode3D(cam)
	g.Renderer.Draw(g.World, cam, aspect)
	rl.EndMode3D()
	g.drawMs = float64(time.Since(drawStart).Microseconds()) / 1000.0

	g.drawHUD()
	rl.EndDrawing()
}
