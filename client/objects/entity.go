package objects

import (
	"fmt"
	"image/color"

	"github.com/cbodonnell/slide/pkg/collisions"
	"github.com/cbodonnell/slide/pkg/game/types"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	edgeColor       = color.RGBA{0xff, 0xff, 0xff, 0xff}
	floorEdgeColor  = color.RGBA{0xff, 0xd7, 0x00, 0xff}
	canJumpColor    = color.RGBA{0xc8, 0x00, 0xc8, 0xff}
	edgeStrokeWidth = float32(1)
)

// EntityObject draws one entity of a game state at its current position.
type EntityObject struct {
	*BaseObject

	state *types.GameState
	id    collisions.EntityID
	// ShowEdges outlines the collision edges of the entity.
	ShowEdges bool
	edges     []collisions.Edge
}

var _ GameObject = &EntityObject{}

func NewEntityObject(state *types.GameState, id collisions.EntityID, zIndex int) *EntityObject {
	return &EntityObject{
		BaseObject: NewBaseObject(fmt.Sprintf("entity-%d", id), &NewBaseObjectOpts{
			ZIndex: zIndex,
		}),
		state: state,
		id:    id,
	}
}

func (o *EntityObject) Draw(screen *ebiten.Image) {
	entity, ok := o.state.Entity(o.id)
	if !ok {
		return
	}

	clr := entity.Colour.RGBA()
	if playerID, ok := o.state.PlayerID(); ok && playerID == o.id && o.state.CanJump(o.id) {
		clr = canJumpColor
	}

	switch entity.Shape.Kind {
	case collisions.ShapeKindAxisAlignedRect:
		size := entity.Shape.Rect.Dimensions
		vector.DrawFilledRect(screen, float32(entity.Position.X), float32(entity.Position.Y), float32(size.X), float32(size.Y), clr, false)
	case collisions.ShapeKindLineSegment:
		segment := entity.Shape.Segment
		start, end := entity.Position.Add(segment.Start), entity.Position.Add(segment.End)
		vector.StrokeLine(screen, float32(start.X), float32(start.Y), float32(end.X), float32(end.Y), float32(2*segment.HalfWidth), clr, true)
	}

	if o.ShowEdges {
		o.drawEdges(screen, entity)
	}
}

func (o *EntityObject) drawEdges(screen *ebiten.Image, entity types.Entity) {
	o.edges = entity.Shape.Edges(entity.Position, o.edges[:0])
	for _, edge := range o.edges {
		clr := edgeColor
		if edge.Channels == collisions.ChannelFloor {
			clr = floorEdgeColor
		}
		vector.StrokeLine(screen, float32(edge.Start.X), float32(edge.Start.Y), float32(edge.End.X), float32(edge.End.Y), edgeStrokeWidth, clr, true)
		// a short tick into the solid side shows the edge direction
		mid := edge.Start.Add(edge.End).Scale(0.5)
		tick := mid.Add(edge.SolidNormal().Scale(4))
		vector.StrokeLine(screen, float32(mid.X), float32(mid.Y), float32(tick.X), float32(tick.Y), edgeStrokeWidth, clr, true)
	}
}
