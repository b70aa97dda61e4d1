package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUD colour scheme
var (
	colorBgDark        = rl.NewColor(18, 18, 24, 230)
	colorBgElement     = rl.NewColor(32, 32, 42, 255)
	colorBgHover       = rl.NewColor(45, 45, 60, 255)
	colorAccent        = rl.NewColor(108, 99, 255, 255)
	colorTextPrimary   = rl.NewColor(240, 240, 245, 255)
	colorTextSecondary = rl.NewColor(160, 160, 175, 255)
	colorWarning       = rl.NewColor(255, 180, 60, 255)
)

const (
	hudX       = 10
	hudY       = 10
	hudWidth   = 230
	buttonH    = 30
	buttonGap  = 6
	textSize   = 18
	lineHeight = 22
)

// initRayguiStyle sets up the dark theme used by the HUD.
func initRayguiStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(colorBgHover))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorTextSecondary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(colorTextPrimary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_PRESSED, gui.NewColorPropertyValue(colorTextPrimary))

	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_NORMAL, gui.NewColorPropertyValue(rl.NewColor(50, 50, 65, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 15)
}

// drawHUD draws the status panel and its buttons. Button presses act on
// the session directly.
func (g *Game) drawHUD() {
	s := g.Session
	w := g.World

	lines := []string{
		fmt.Sprintf("Coins: %d", s.Coins()),
		fmt.Sprintf("Stars: %d", s.Score()),
		fmt.Sprintf("Prizes left: %d", w.StarsInPlay()),
		fmt.Sprintf("Claw: %s", w.Claw.State()),
		fmt.Sprintf("Candy: %s", w.Dispenser.Stage()),
	}
	panelH := int32(len(lines)*lineHeight + 5*(buttonH+buttonGap) + 2*buttonGap)
	rl.DrawRectangle(hudX, hudY, hudWidth, panelH, colorBgDark)

	y := int32(hudY + buttonGap)
	for _, line := range lines {
		rl.DrawText(line, hudX+buttonGap, y, textSize, colorTextPrimary)
		y += lineHeight
	}

	button := func(label string) bool {
		r := rl.Rectangle{X: hudX + buttonGap, Y: float32(y), Width: hudWidth - 2*buttonGap, Height: buttonH}
		y += buttonH + buttonGap
		return gui.Button(r, label)
	}
	if button("Drop [Down]") {
		s.Drop()
	}
	if button("Insert star [C]") {
		s.InsertCandyCoin()
	}
	if button("Dispense candy [M]") {
		s.DispenseCandy()
	}
	if button("New game [N]") {
		s.NewGame()
	}
	g.Renderer.ShowBounds = gui.CheckBox(
		rl.Rectangle{X: hudX + buttonGap, Y: float32(y), Width: 20, Height: 20},
		"Show bounds [F1]",
		g.Renderer.ShowBounds,
	)

	screenW := int32(rl.GetScreenWidth())
	rl.DrawFPS(screenW-100, 10)
	if g.DebugMode {
		rl.DrawText(fmt.Sprintf("Update: %.2f ms", g.updateMs), screenW-200, 40, 16, rl.Green)
		rl.DrawText(fmt.Sprintf("Draw:   %.2f ms", g.drawMs), screenW-200, 60, 16, rl.Green)
		rl.DrawText(fmt.Sprintf("Culled: %d", g.Renderer.Culled), screenW-200, 80, 16, rl.Green)
	}

	if s.GameOver() {
		msg := fmt.Sprintf("GAME OVER - %d stars. Press N for a new game", s.Score())
		screenH := int32(rl.GetScreenHeight())
		width := rl.MeasureText(msg, 28)
		rl.DrawText(msg, (screenW-width)/2, screenH/2, 28, colorWarning)
	}
}
