package game

import (
	"fmt"

	"github.com/cbodonnell/slide/client/input"
	"github.com/cbodonnell/slide/client/scenes"
	"github.com/cbodonnell/slide/pkg/scene"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Game implements ebiten.Game interface, which has Update, Draw and Layout methods.
type Game struct {
	// debug is a boolean value indicating whether debug mode is enabled.
	debug bool
	// scene is the current scene.
	scene scenes.Scene
}

const (
	DefaultScreenWidth  = 640
	DefaultScreenHeight = 480
)

type NewGameOptions struct {
	Debug bool
	Scene *scene.Scene
	// ScenePath is reloaded on change when set.
	ScenePath string
	// MaxIterations overrides the movement iteration limit when positive.
	MaxIterations int
}

func NewGame(opts NewGameOptions) (ebiten.Game, error) {
	g := &Game{
		debug: opts.Debug,
	}

	world, err := scenes.NewWorldScene(scenes.WorldSceneOptions{
		Scene:         opts.Scene,
		ScenePath:     opts.ScenePath,
		MaxIterations: opts.MaxIterations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create world scene: %v", err)
	}
	if err := g.SetScene(world); err != nil {
		return nil, fmt.Errorf("failed to set world scene: %v", err)
	}

	return g, nil
}

func (g *Game) SetScene(next scenes.Scene) error {
	if g.scene != nil {
		if err := g.scene.Destroy(); err != nil {
			return fmt.Errorf("failed to destroy previous scene: %v", err)
		}
	}

	g.scene = next
	if err := g.scene.Init(); err != nil {
		return fmt.Errorf("failed to initialize scene: %v", err)
	}
	g.scene.SetDebug(g.debug)

	return nil
}

func (g *Game) Update() error {
	if input.IsDebugJustPressed() {
		g.debug = !g.debug
		g.scene.SetDebug(g.debug)
	}

	// ebiten.Termination is passed through untouched to end the game cleanly
	return g.scene.Update()
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
	if g.debug {
		g.drawDebugOverlay(screen)
	}
}

func (g *Game) drawDebugOverlay(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n   FPS: %0.1f", ebiten.ActualFPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n   TPS: %0.1f", ebiten.ActualTPS()))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return DefaultScreenWidth, DefaultScreenHeight
}
