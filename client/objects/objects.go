package objects

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// GameObject is the highest level interface for game related types.
type GameObject interface {
	GetID() string
	GetZIndex() int
	Update() error
	Draw(screen *ebiten.Image)
}

type BaseObject struct {
	id     string
	zIndex int
}

type NewBaseObjectOpts struct {
	// ZIndex orders drawing within a SortedZIndexObject, lowest first.
	ZIndex int
}

func NewBaseObject(id string, opts *NewBaseObjectOpts) *BaseObject {
	o := &BaseObject{id: id}
	if opts != nil {
		o.zIndex = opts.ZIndex
	}
	return o
}

func (o *BaseObject) GetID() string {
	return o.id
}

func (o *BaseObject) GetZIndex() int {
	return o.zIndex
}

func (o *BaseObject) Update() error {
	return nil
}

func (o *BaseObject) Draw(screen *ebiten.Image) {}
