package collisions

import (
	"fmt"

	"github.com/cbodonnell/slide/pkg/aabb"
	"github.com/cbodonnell/slide/pkg/kinematic"
)

// ShapeKind selects the populated variant of a Shape.
type ShapeKind uint8

const (
	ShapeKindAxisAlignedRect ShapeKind = iota + 1
	ShapeKindLineSegment
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeKindAxisAlignedRect:
		return "rect"
	case ShapeKindLineSegment:
		return "line_segment"
	default:
		return fmt.Sprintf("ShapeKind(%d)", uint8(k))
	}
}

// RectRole picks the channels and flags given to the sides of a rect.
type RectRole uint8

const (
	// RoleMain is a regular solid block.
	RoleMain RectRole = iota
	// RoleCharacter is a moving body that can bump over small ledges and
	// stand on corners with its side edges.
	RoleCharacter
	// RoleFloorOnly is a one-way platform, solid from above only.
	RoleFloorOnly
)

// AxisAlignedRect is a box whose top left corner is at the entity position.
type AxisAlignedRect struct {
	Dimensions kinematic.Vector
	Role       RectRole
}

// LineSegment is a thick segment between two points relative to the entity
// position. It collides as a quad extending HalfWidth to either side.
type LineSegment struct {
	Start     kinematic.Vector
	End       kinematic.Vector
	HalfWidth float64
}

// DefaultHalfWidth is the thickness used when a segment does not set one.
const DefaultHalfWidth = 1.0

// Shape is a tagged union of the collidable shapes.
type Shape struct {
	Kind    ShapeKind
	Rect    AxisAlignedRect
	Segment LineSegment
}

func NewRect(dimensions kinematic.Vector) Shape {
	return Shape{Kind: ShapeKindAxisAlignedRect, Rect: AxisAlignedRect{Dimensions: dimensions, Role: RoleMain}}
}

func NewCharacter(dimensions kinematic.Vector) Shape {
	return Shape{Kind: ShapeKindAxisAlignedRect, Rect: AxisAlignedRect{Dimensions: dimensions, Role: RoleCharacter}}
}

func NewFloorOnly(dimensions kinematic.Vector) Shape {
	return Shape{Kind: ShapeKindAxisAlignedRect, Rect: AxisAlignedRect{Dimensions: dimensions, Role: RoleFloorOnly}}
}

func NewLineSegment(start, end kinematic.Vector, halfWidth float64) Shape {
	return Shape{Kind: ShapeKindLineSegment, Segment: LineSegment{Start: start, End: end, HalfWidth: halfWidth}}
}

// Aabb returns the bound of the shape placed at position.
func (s Shape) Aabb(position kinematic.Vector) aabb.Aabb {
	switch s.Kind {
	case ShapeKindAxisAlignedRect:
		return aabb.New(position, s.Rect.Dimensions)
	case ShapeKindLineSegment:
		padding := kinematic.Vec(s.Segment.HalfWidth, s.Segment.HalfWidth)
		bound := aabb.FromCorners(s.Segment.Start.Add(position), s.Segment.End.Add(position))
		return aabb.New(bound.TopLeft.Sub(padding), bound.Size.Add(padding.Scale(2)))
	default:
		panic(fmt.Sprintf("unknown shape kind: %v", s.Kind))
	}
}

// Edges appends the boundary of the shape placed at position to dst. Edge
// order is stable for a given shape and is used to break ties between
// simultaneous contacts.
func (s Shape) Edges(position kinematic.Vector, dst []Edge) []Edge {
	switch s.Kind {
	case ShapeKindAxisAlignedRect:
		return s.Rect.edges(position, dst)
	case ShapeKindLineSegment:
		return s.Segment.edges(position, dst)
	default:
		panic(fmt.Sprintf("unknown shape kind: %v", s.Kind))
	}
}

func (r AxisAlignedRect) edges(position kinematic.Vector, dst []Edge) []Edge {
	topLeft := position
	topRight := position.Add(kinematic.Vec(r.Dimensions.X, 0))
	bottomLeft := position.Add(kinematic.Vec(0, r.Dimensions.Y))
	bottomRight := position.Add(r.Dimensions)

	var top, bottom, left, right Channel
	var leftFlags, rightFlags Flag
	switch r.Role {
	case RoleMain:
		top, bottom = ChannelAll, ChannelAll
		left, right = ChannelMain, ChannelMain
	case RoleCharacter:
		top, bottom = ChannelMain, ChannelAll
		left, right = ChannelMain, ChannelMain
		leftFlags = FlagBumpStart | FlagFloorStart
		rightFlags = FlagBumpEnd | FlagFloorEnd
	case RoleFloorOnly:
		top = ChannelFloor
	default:
		panic(fmt.Sprintf("unknown rect role: %d", r.Role))
	}

	return append(dst,
		NewEdge(bottomRight, bottomLeft, bottom, FlagNone),
		NewEdge(topLeft, topRight, top, FlagNone),
		NewEdge(bottomLeft, topLeft, left, leftFlags),
		NewEdge(topRight, bottomRight, right, rightFlags),
	)
}

func (l LineSegment) edges(position kinematic.Vector, dst []Edge) []Edge {
	start := l.Start.Add(position)
	end := l.End.Add(position)
	offset := end.Sub(start).Left().NormalizeTo(l.HalfWidth)

	// a runs back along the left side, b runs forward along the right side
	a := NewEdge(end.Add(offset), start.Add(offset), ChannelAll, FlagNone)
	b := NewEdge(start.Sub(offset), end.Sub(offset), ChannelAll, FlagNone)
	return append(dst,
		a,
		b,
		NewEdge(a.End, b.Start, ChannelAll, FlagNone),
		NewEdge(b.End, a.Start, ChannelAll, FlagNone),
	)
}
