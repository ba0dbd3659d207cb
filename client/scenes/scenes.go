package scenes

import (
	"github.com/cbodonnell/slide/client/objects"
	"github.com/hajimehoshi/ebiten/v2"
)

type Scene interface {
	// Game flow methods
	Init() error
	Destroy() error
	Update() error
	Draw(screen *ebiten.Image)

	// SetDebug toggles any debug drawing the scene does.
	SetDebug(debug bool)
}

// BaseScene updates and draws a tree of objects.
type BaseScene struct {
	Root *objects.SortedZIndexObject
}

func NewBaseScene(root *objects.SortedZIndexObject) *BaseScene {
	return &BaseScene{Root: root}
}

func (s *BaseScene) Init() error {
	return nil
}

func (s *BaseScene) Destroy() error {
	s.Root.ClearChildren()
	return nil
}

func (s *BaseScene) Update() error {
	return s.Root.Update()
}

func (s *BaseScene) Draw(screen *ebiten.Image) {
	s.Root.Draw(screen)
}

func (s *BaseScene) SetDebug(debug bool) {}
