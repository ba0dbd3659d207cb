package scenes

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/cbodonnell/slide/client/fonts"
	"github.com/cbodonnell/slide/client/input"
	"github.com/cbodonnell/slide/client/objects"
	"github.com/cbodonnell/slide/pkg/collisions"
	"github.com/cbodonnell/slide/pkg/game"
	"github.com/cbodonnell/slide/pkg/game/types"
	"github.com/cbodonnell/slide/pkg/log"
	"github.com/cbodonnell/slide/pkg/queue"
	"github.com/cbodonnell/slide/pkg/scene"
	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	// Zoom is the zoom scale of the game viewport.
	Zoom = 1.0

	zIndexSolid    = 0
	zIndexPlatform = 1
	zIndexPlayer   = 2
)

var backgroundColor = color.RGBA{0x87, 0xce, 0xeb, 0xff}

type CameraViewport struct {
	X int
	Y int
}

// WorldScene runs a scene locally, one tick per frame, and draws it with a
// camera following the player.
type WorldScene struct {
	*BaseScene

	scene         *scene.Scene
	scenePath     string
	watcher       *scene.Watcher
	maxIterations int
	gameManager   *game.GameManager
	inputQueue    *queue.InMemoryQueue[types.InputEvent]
	entities      []*objects.EntityObject
	banner        *objects.TextOverlayObject
	// world is the world image.
	world *ebiten.Image
	// CameraViewport is the current viewport.
	CameraViewport *CameraViewport

	paused    bool
	quit      bool
	showEdges bool
	pauseUI   *ebitenui.UI
}

var _ Scene = &WorldScene{}

type WorldSceneOptions struct {
	Scene *scene.Scene
	// ScenePath is watched for changes when set, and the world is rebuilt
	// from the new scene on every save.
	ScenePath string
	// MaxIterations overrides the movement iteration limit when positive.
	MaxIterations int
}

func NewWorldScene(opts WorldSceneOptions) (*WorldScene, error) {
	if opts.Scene == nil {
		return nil, fmt.Errorf("scene is required")
	}
	return &WorldScene{
		BaseScene:     NewBaseScene(objects.NewSortedZIndexObject("world-root")),
		scene:         opts.Scene,
		scenePath:     opts.ScenePath,
		maxIterations: opts.MaxIterations,
		inputQueue:    queue.NewInMemoryQueue[types.InputEvent](0),
	}, nil
}

func (s *WorldScene) Init() error {
	if s.scenePath != "" {
		watcher, err := scene.Watch(s.scenePath)
		if err != nil {
			return fmt.Errorf("failed to watch scene: %v", err)
		}
		s.watcher = watcher
	}
	s.banner = objects.NewTextOverlayObject("overlay-paused", "", 0)
	s.pauseUI = newPauseMenu(pauseMenuOptions{
		OnResume: func() { s.setPaused(false) },
		OnReset: func() {
			s.reset()
			s.setPaused(false)
		},
		OnQuit: func() { s.quit = true },
	})
	s.reset()
	return s.BaseScene.Init()
}

func (s *WorldScene) Destroy() error {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			log.Warn("Failed to close scene watcher: %v", err)
		}
		s.watcher = nil
	}
	if s.world != nil {
		s.world.Deallocate()
		s.world = nil
	}
	return s.BaseScene.Destroy()
}

// reset rebuilds the world from the scene and starts again at frame zero.
func (s *WorldScene) reset() {
	size := s.scene.Size
	if s.world == nil || s.world.Bounds().Dx() != int(size.X) || s.world.Bounds().Dy() != int(size.Y) {
		if s.world != nil {
			s.world.Deallocate()
		}
		s.world = ebiten.NewImage(int(size.X), int(size.Y))
	}

	s.inputQueue.Clear()
	state := s.scene.NewGameState()
	s.gameManager = game.NewGameManager(game.NewGameManagerOptions{
		InputQueue:    s.inputQueue,
		GameState:     state,
		MaxIterations: s.maxIterations,
	})

	s.Root.ClearChildren()
	s.entities = s.entities[:0]
	playerID, _ := state.PlayerID()
	platformID, hasPlatform := state.MovingPlatformID()
	state.ForEachEntity(func(id collisions.EntityID, _ types.Entity) {
		zIndex := zIndexSolid
		switch {
		case id == playerID:
			zIndex = zIndexPlayer
		case hasPlatform && id == platformID:
			zIndex = zIndexPlatform
		}
		obj := objects.NewEntityObject(state, id, zIndex)
		obj.ShowEdges = s.showEdges
		if err := s.Root.AddChild(obj); err != nil {
			log.Error("Failed to add entity %d: %v", id, err)
			return
		}
		s.entities = append(s.entities, obj)
	})
	log.Info("Loaded scene %s with %d entities", s.scene.Name, len(s.entities))
}

// reloadScene swaps in the latest scene from the watcher, if any.
func (s *WorldScene) reloadScene() {
	if s.watcher == nil {
		return
	}
	select {
	case next, ok := <-s.watcher.Scenes:
		if !ok {
			s.watcher = nil
			return
		}
		log.Info("Reloading scene %s from %s", next.Name, s.scenePath)
		s.scene = next
		s.reset()
	case err, ok := <-s.watcher.Errors:
		if ok {
			log.Error("Failed to reload scene: %v", err)
		}
	default:
	}
}

func (s *WorldScene) setPaused(paused bool) {
	s.paused = paused
	if paused {
		s.banner.SetText("Paused")
	} else {
		s.banner.SetText("")
	}
}

func (s *WorldScene) SetDebug(debug bool) {
	s.showEdges = debug
	for _, obj := range s.entities {
		obj.ShowEdges = debug
	}
}

func (s *WorldScene) Update() error {
	if s.quit {
		return ebiten.Termination
	}
	s.reloadScene()

	if input.IsPauseJustPressed() {
		s.setPaused(!s.paused)
	}
	if input.IsResetJustPressed() {
		s.reset()
	}

	if s.paused {
		s.pauseUI.Update()
		if input.IsPositiveJustPressed() {
			s.setPaused(false)
		}
		if !input.IsStepJustPressed() {
			return nil
		}
	}

	if err := s.inputQueue.Enqueue(input.ReadInputEvent()); err != nil {
		log.Warn("Dropped input for frame %d: %v", s.gameManager.GameState().Frame, err)
	}
	if err := s.gameManager.Tick(context.Background()); err != nil {
		return fmt.Errorf("failed to tick game: %v", err)
	}

	return s.BaseScene.Update()
}

func (s *WorldScene) Draw(screen *ebiten.Image) {
	s.world.Fill(backgroundColor)
	s.BaseScene.Draw(s.world)
	s.drawViewport(screen, Zoom)
	s.drawHUD(screen)

	if s.paused {
		vector.DrawFilledRect(screen, 0, 0, float32(screen.Bounds().Dx()), float32(screen.Bounds().Dy()), color.RGBA{0, 0, 0, 0x80}, false)
		s.banner.Draw(screen)
		s.pauseUI.Draw(screen)
	}
}

func (s *WorldScene) drawViewport(screen *ebiten.Image, zoom float64) {
	state := s.gameManager.GameState()
	playerID, _ := state.PlayerID()
	player, _ := state.Entity(playerID)
	centre := player.Aabb().Centre()
	s.CameraViewport = &CameraViewport{X: int(centre.X), Y: int(centre.Y)}

	worldWidth, worldHeight := float64(s.world.Bounds().Dx()), float64(s.world.Bounds().Dy())
	zoomFactor := 1.0 / (zoom * 2)
	minX, maxX := clampSpan(float64(s.CameraViewport.X), float64(screen.Bounds().Dx())*zoomFactor, worldWidth)
	minY, maxY := clampSpan(float64(s.CameraViewport.Y), float64(screen.Bounds().Dy())*zoomFactor, worldHeight)

	viewport := s.world.SubImage(image.Rectangle{
		Min: image.Point{X: int(minX), Y: int(minY)},
		Max: image.Point{X: int(maxX), Y: int(maxY)},
	}).(*ebiten.Image)

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(zoom, zoom)

	screen.DrawImage(viewport, opts)
}

// clampSpan returns the range of half width halfSpan around centre, moved
// to lie within [0, limit] where possible.
func clampSpan(centre, halfSpan, limit float64) (float64, float64) {
	lo, hi := centre-halfSpan, centre+halfSpan
	if lo < 0 {
		hi -= lo
		lo = 0
	}
	if hi > limit {
		lo = max(0, lo-(hi-limit))
		hi = limit
	}
	return lo, hi
}

func (s *WorldScene) drawHUD(screen *ebiten.Image) {
	state := s.gameManager.GameState()
	playerID, _ := state.PlayerID()
	player, _ := state.Entity(playerID)
	velocity := state.Velocity(playerID)

	status := fmt.Sprintf("frame %d  position (%.1f, %.1f)  velocity (%.2f, %.2f)",
		state.Frame, player.Position.X, player.Position.Y, velocity.X, velocity.Y)
	if state.CanJump(playerID) {
		status += "  grounded"
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(8, float64(screen.Bounds().Dy())-8)
	op.ColorScale.ScaleWithColor(color.White)
	text.DrawWithOptions(screen, status, fonts.HUDFont, op)
}
